package models

import "time"

const (
	// DefaultSessionTTL bounds how long an abandoned booking session
	// survives in the state store.
	DefaultSessionTTL = 24 * time.Hour

	// DefaultDebounce is the quiet period before a search burst issues
	// a network call.
	DefaultDebounce = 800 * time.Millisecond

	// DefaultSearchTimeout caps one round-trip to a search boundary.
	DefaultSearchTimeout = 20 * time.Second
)

const (
	SubmissionSucceeded = "succeeded"
	SubmissionFailed    = "failed"
)

// SessionSnapshot is the persistable state of one workflow session.
type SessionSnapshot struct {
	ID        string      `json:"id"`
	Step      Step        `json:"step"`
	Visited   []Step      `json:"visited"`
	Form      BookingForm `json:"form"`
	Total     Money       `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SubmissionRecord is the audit row written after a booking submission.
// It records the outcome, never the aggregate itself.
type SubmissionRecord struct {
	SessionID   string    `json:"session_id"`
	BookingID   string    `json:"booking_id,omitempty"`
	Status      string    `json:"status"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Attempts    int       `json:"attempts"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// GeoPoint is a resolved free-text place lookup.
type GeoPoint struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
