// ABOUTME: Uniform API error body shape
// ABOUTME: Every failure outcome serializes as {"type": ..., "message": ...}

package models

// Error kinds used in the uniform error body. The kind is coarse on purpose:
// ownership failures surface as not_found so a non-owner cannot distinguish
// "exists, not yours" from "doesn't exist".
const (
	ErrKindUnauthorized = "unauthorized"
	ErrKindForbidden    = "forbidden"
	ErrKindNotFound     = "not_found"
	ErrKindConflict     = "conflict"
	ErrKindBadRequest   = "bad_request"
	ErrKindRateLimited  = "rate_limited"
	ErrKindInternal     = "internal"
)

// ErrorResponse is the uniform error body for all API failures.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
