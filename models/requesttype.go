// ABOUTME: Request type catalog entry
// ABOUTME: Flat admin-managed lookup table; requests reference the label by value

package models

// RequestType labels a category of recommendation request (e.g. "Graduate
// School", "Internship"). Labels are unique across the catalog.
type RequestType struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
