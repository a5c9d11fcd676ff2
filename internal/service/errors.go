package service

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when no workflow session exists for an ID.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotOnConfirmation is returned when a submit arrives before the
// workflow has reached the confirmation step.
var ErrNotOnConfirmation = errors.New("booking can only be submitted from the confirmation step")

// SubmissionError reports a booking-creation failure. The aggregate is
// preserved, so the caller can offer a retry without re-entering data.
type SubmissionError struct {
	Attempts int
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("booking submission failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
