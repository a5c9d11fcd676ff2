package search

import (
	"errors"
	"fmt"
)

// Slot names; one in-flight request is authoritative per slot.
const (
	SlotFlights = "flights"
	SlotHotels  = "hotels"
)

// ErrNoResults marks a search that completed with an empty result set.
var ErrNoResults = errors.New("no results")

// Kind classifies a search failure for the caller to present.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindEmpty      Kind = "empty"
)

// Error is the typed failure of a flight or hotel search. Search errors
// are recoverable by retry and never invalidate existing selections.
type Error struct {
	Slot string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s search %s error: %v", e.Slot, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AsSearchError extracts a *Error from an error chain.
func AsSearchError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
