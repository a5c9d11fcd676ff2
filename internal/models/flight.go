package models

import (
	"errors"
	"fmt"
	"time"
)

const (
	CabinEconomy  = "economy"
	CabinPremium  = "premium_economy"
	CabinBusiness = "business"
	CabinFirst    = "first"
)

const DateLayout = "2006-01-02"

var ErrInvalidSearchParams = errors.New("invalid search parameters")

// FlightSegment is one leg of a flight option.
type FlightSegment struct {
	DepartureAirport string    `json:"departure_airport"`
	ArrivalAirport   string    `json:"arrival_airport"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	Carrier          string    `json:"carrier"`
	DurationMinutes  int       `json:"duration_minutes"`
}

// FlightOption is a single search result. Options are immutable once
// returned; a new selection always replaces, never patches, one.
type FlightOption struct {
	ID              string          `json:"id"`
	Carrier         string          `json:"carrier"`
	FlightNumber    string          `json:"flight_number"`
	Segments        []FlightSegment `json:"segments"`
	DurationMinutes int             `json:"duration_minutes"`
	Stops           int             `json:"stops"`
	Price           Money           `json:"price"`
	Cabin           string          `json:"cabin"`
	SeatsAvailable  int             `json:"seats_available"`
}

// FlightSearchParams is the request shape for the flight search boundary.
type FlightSearchParams struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
	Passengers    int    `json:"passengers"`
	Cabin         string `json:"cabin,omitempty"`
}

// RoundTrip reports whether a return date was supplied.
func (p FlightSearchParams) RoundTrip() bool {
	return p.ReturnDate != ""
}

// Validate checks structural invariants. Past departure dates are allowed;
// callers may retry dates that already went by.
func (p FlightSearchParams) Validate() error {
	if p.Origin == "" || p.Destination == "" {
		return fmt.Errorf("%w: origin and destination are required", ErrInvalidSearchParams)
	}
	if p.Origin == p.Destination {
		return fmt.Errorf("%w: origin and destination must differ", ErrInvalidSearchParams)
	}
	if p.Passengers < 1 {
		return fmt.Errorf("%w: at least one passenger is required", ErrInvalidSearchParams)
	}
	dep, err := time.Parse(DateLayout, p.DepartureDate)
	if err != nil {
		return fmt.Errorf("%w: departure date %q is not a valid date", ErrInvalidSearchParams, p.DepartureDate)
	}
	if p.RoundTrip() {
		ret, err := time.Parse(DateLayout, p.ReturnDate)
		if err != nil {
			return fmt.Errorf("%w: return date %q is not a valid date", ErrInvalidSearchParams, p.ReturnDate)
		}
		if ret.Before(dep) {
			return fmt.Errorf("%w: return date is before departure date", ErrInvalidSearchParams)
		}
	}
	return nil
}

// SearchMetadata describes a search response as a whole.
type SearchMetadata struct {
	Currency    string `json:"currency"`
	ResultCount int    `json:"result_count"`
}

// FlightSearchResult is the typed response of a flight search.
type FlightSearchResult struct {
	Flights  []FlightOption `json:"flights"`
	Metadata SearchMetadata `json:"metadata"`
}
