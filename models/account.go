// ABOUTME: Account entity with capability flags
// ABOUTME: Flags deterministically control per-request role grants

package models

import "time"

// Account is a locally provisioned user profile, keyed by the email the
// identity provider asserts. Created at first login; the capability flags
// are mutated only through the admin flag-toggle endpoint.
type Account struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	IsAdmin     bool      `json:"is_admin"`
	IsProfessor bool      `json:"is_professor"`
	IsStudent   bool      `json:"is_student"`
	CreatedAt   time.Time `json:"created_at"`
}

// AccountFlags is the payload for the admin-only flag toggle endpoint.
type AccountFlags struct {
	IsAdmin     bool `json:"is_admin"`
	IsProfessor bool `json:"is_professor"`
	IsStudent   bool `json:"is_student"`
}
