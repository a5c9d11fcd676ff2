package models

import (
	"fmt"
	"time"
)

// RoomType is one bookable room category of a hotel.
type RoomType struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Occupancy     int    `json:"occupancy"`
	Beds          string `json:"beds"`
	PricePerNight Money  `json:"price_per_night"`
	Cancellation  string `json:"cancellation"`
}

// HotelOption is a single hotel search result, immutable once returned.
type HotelOption struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Stars     int        `json:"stars"`
	RoomTypes []RoomType `json:"room_types"`
	Amenities []string   `json:"amenities"`
	Images    []string   `json:"images"`
}

// HasRoomType reports whether a room type identity belongs to this hotel.
func (h HotelOption) HasRoomType(roomTypeID string) bool {
	for _, rt := range h.RoomTypes {
		if rt.ID == roomTypeID {
			return true
		}
	}
	return false
}

// HotelFilters narrows hotel search results.
type HotelFilters struct {
	MinStars         int      `json:"min_stars,omitempty"`
	MaxPrice         float64  `json:"max_price,omitempty"`
	MinPrice         float64  `json:"min_price,omitempty"`
	Amenities        []string `json:"amenities,omitempty"`
	FreeCancellation bool     `json:"free_cancellation,omitempty"`
}

// HotelSearchParams is the request shape for the hotel search boundary.
type HotelSearchParams struct {
	Destination string        `json:"destination"`
	CheckIn     string        `json:"checkIn"`
	CheckOut    string        `json:"checkOut"`
	Guests      int           `json:"guests"`
	Rooms       int           `json:"rooms"`
	Filters     *HotelFilters `json:"filters,omitempty"`
}

// Validate checks structural invariants; check-out must be after check-in.
func (p HotelSearchParams) Validate() error {
	if p.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidSearchParams)
	}
	if p.Guests < 1 {
		return fmt.Errorf("%w: at least one guest is required", ErrInvalidSearchParams)
	}
	if p.Rooms < 1 {
		return fmt.Errorf("%w: at least one room is required", ErrInvalidSearchParams)
	}
	in, err := time.Parse(DateLayout, p.CheckIn)
	if err != nil {
		return fmt.Errorf("%w: check-in date %q is not a valid date", ErrInvalidSearchParams, p.CheckIn)
	}
	out, err := time.Parse(DateLayout, p.CheckOut)
	if err != nil {
		return fmt.Errorf("%w: check-out date %q is not a valid date", ErrInvalidSearchParams, p.CheckOut)
	}
	if !out.After(in) {
		return fmt.Errorf("%w: check-out must be after check-in", ErrInvalidSearchParams)
	}
	return nil
}

// Nights returns the stay length in nights, or 0 when dates are unusable.
func (p HotelSearchParams) Nights() int {
	in, err := time.Parse(DateLayout, p.CheckIn)
	if err != nil {
		return 0
	}
	out, err := time.Parse(DateLayout, p.CheckOut)
	if err != nil {
		return 0
	}
	n := int(out.Sub(in).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// HotelPagination describes result paging of the hotel boundary.
type HotelPagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// HotelSearchResult is the typed response of a hotel search.
type HotelSearchResult struct {
	Hotels     []HotelOption   `json:"hotels"`
	Pagination HotelPagination `json:"pagination"`
	Metadata   SearchMetadata  `json:"metadata"`
}
