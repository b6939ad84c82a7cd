// ABOUTME: Recommendation request entity and its API payloads
// ABOUTME: Status is an open string; Pending/Completed/Rejected are the recognized values

package models

import "time"

// Recognized status values. The status column is an open string for
// compatibility with clients that send their own labels; any non-Pending
// value is treated as terminal for the completion-date invariant.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusRejected  = "Rejected"
)

// RecommendationRequest tracks a student's letter request to a professor.
// SubmissionDate is system-set at creation and immutable. CompletionDate is
// non-nil exactly when Status != Pending.
type RecommendationRequest struct {
	ID             int64      `json:"id"`
	RequesterID    int64      `json:"requester_id"`
	ProfessorID    int64      `json:"professor_id"`
	RequestType    string     `json:"request_type"`
	Details        string     `json:"details,omitempty"`
	NeededByDate   *time.Time `json:"needed_by_date,omitempty"`
	SubmissionDate time.Time  `json:"submission_date"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	Status         string     `json:"status"`
}

// Terminal reports whether the request has left the Pending state.
func (r *RecommendationRequest) Terminal() bool {
	return r.Status != StatusPending
}

// CreateRequestInput is the payload for creating a request. The requester is
// always the caller; the professor is resolved from the supplied email.
type CreateRequestInput struct {
	ProfessorEmail string     `json:"professor_email"`
	RequestType    string     `json:"request_type"`
	Details        string     `json:"details,omitempty"`
	NeededByDate   *time.Time `json:"needed_by_date,omitempty"`
}

// UpdateRequestInput replaces the non-status fields of a request.
type UpdateRequestInput struct {
	RequestType  string     `json:"request_type"`
	Details      string     `json:"details,omitempty"`
	NeededByDate *time.Time `json:"needed_by_date,omitempty"`
}

// UpdateStatusInput drives a lifecycle transition. Details may be updated in
// the same call (the operation is a full-record replace, not a patch).
type UpdateStatusInput struct {
	Status  string  `json:"status"`
	Details *string `json:"details,omitempty"`
}
