package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// FlightService is the stateless translation of flight search parameters
// into typed options through the flight search boundary. It never
// mutates shared state; callers apply the returned results.
type FlightService struct {
	client *Client
	logger *zerolog.Logger
}

func NewFlightService(client *Client, logger *zerolog.Logger) *FlightService {
	return &FlightService{client: client, logger: logger}
}

// Search validates the parameters and queries the boundary. Failures
// come back as typed *Error values: validation, network, or empty.
func (s *FlightService) Search(ctx context.Context, params models.FlightSearchParams) (*models.FlightSearchResult, error) {
	if err := params.Validate(); err != nil {
		return nil, &Error{Slot: SlotFlights, Kind: KindValidation, Err: err}
	}

	var result models.FlightSearchResult
	if err := s.client.doPost(ctx, "/api/flights/search", params, &result); err != nil {
		return nil, &Error{Slot: SlotFlights, Kind: KindNetwork, Err: err}
	}

	if len(result.Flights) == 0 {
		return &result, &Error{
			Slot: SlotFlights,
			Kind: KindEmpty,
			Err:  fmt.Errorf("%w for %s-%s on %s", ErrNoResults, params.Origin, params.Destination, params.DepartureDate),
		}
	}

	s.logger.Debug().
		Str("origin", params.Origin).
		Str("destination", params.Destination).
		Int("results", len(result.Flights)).
		Msg("flight search completed")
	return &result, nil
}
