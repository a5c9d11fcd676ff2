package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// HotelService queries the hotel search boundary. Same contract as
// FlightService: stateless, typed errors, no shared-state mutation.
type HotelService struct {
	client *Client
	logger *zerolog.Logger
}

func NewHotelService(client *Client, logger *zerolog.Logger) *HotelService {
	return &HotelService{client: client, logger: logger}
}

// Search validates the parameters and queries the boundary.
func (s *HotelService) Search(ctx context.Context, params models.HotelSearchParams) (*models.HotelSearchResult, error) {
	if err := params.Validate(); err != nil {
		return nil, &Error{Slot: SlotHotels, Kind: KindValidation, Err: err}
	}

	var result models.HotelSearchResult
	if err := s.client.doPost(ctx, "/api/hotels/search", params, &result); err != nil {
		return nil, &Error{Slot: SlotHotels, Kind: KindNetwork, Err: err}
	}

	if len(result.Hotels) == 0 {
		return &result, &Error{
			Slot: SlotHotels,
			Kind: KindEmpty,
			Err:  fmt.Errorf("%w in %s", ErrNoResults, params.Destination),
		}
	}

	s.logger.Debug().
		Str("destination", params.Destination).
		Int("results", len(result.Hotels)).
		Msg("hotel search completed")
	return &result, nil
}
