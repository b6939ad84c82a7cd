// ABOUTME: Auth request/response models for BFF OAuth pattern
// ABOUTME: Defines session structure and login/logout API contracts

package models

import "time"

// LoginRequest represents credentials for authentication
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the result of a login attempt
type LoginResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UserInfoResponse represents the current user's authentication state.
// Roles reflect the account's capability flags as of this request.
type UserInfoResponse struct {
	Authenticated bool     `json:"authenticated"`
	Email         string   `json:"email,omitempty"`
	Name          string   `json:"name,omitempty"`
	AccountID     int64    `json:"account_id,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

// Session stores server-side authentication state
// Tokens are never exposed to the client
type Session struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	AccessToken  string    `json:"-"` // Never expose to client
	RefreshToken string    `json:"-"` // Never expose to client
	CSRFToken    string    `json:"-"`
	TokenExpiry  time.Time `json:"token_expiry"`
	CreatedAt    time.Time `json:"created_at"`
}
