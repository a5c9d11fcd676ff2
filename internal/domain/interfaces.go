package domain

import (
	"context"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// SessionRepository persists workflow session snapshots for the lifetime
// of a booking session.
type SessionRepository interface {
	GetSession(ctx context.Context, id string) (*models.SessionSnapshot, error)
	SaveSession(ctx context.Context, snap *models.SessionSnapshot) error
	DeleteSession(ctx context.Context, id string) error
}

// FlightSearcher is the flight search boundary.
type FlightSearcher interface {
	Search(ctx context.Context, params models.FlightSearchParams) (*models.FlightSearchResult, error)
}

// HotelSearcher is the hotel search boundary.
type HotelSearcher interface {
	Search(ctx context.Context, params models.HotelSearchParams) (*models.HotelSearchResult, error)
}

// BookingCreator is the booking-creation boundary.
type BookingCreator interface {
	CreateBooking(ctx context.Context, form models.BookingForm) (string, error)
}

// Geocoder resolves free-text place names to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, query string) ([]models.GeoPoint, error)
}

// EventPublisher fans out workflow events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// AuditRecorder persists booking submission outcomes.
type AuditRecorder interface {
	RecordSubmission(ctx context.Context, rec *models.SubmissionRecord) error
}
