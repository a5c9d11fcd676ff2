package workflow

import "github.com/jbirchohio/NestMapRepo-sub002/internal/models"

// SelectionStore holds the per-step selections of one session and
// enforces their invariants on every mutation:
//
//   - a return flight may be set only on a round-trip
//   - a room type must belong to the currently selected hotel
//   - selecting a different hotel atomically drops a stale room type
type SelectionStore struct {
	tripType string
	sel      models.Selection
}

func NewSelectionStore(tripType string) *SelectionStore {
	return &SelectionStore{tripType: tripType}
}

// SetTripType records the trip type. Switching to one-way drops any
// return flight already chosen, since one-way trips never carry one.
func (s *SelectionStore) SetTripType(tripType string) {
	s.tripType = tripType
	if tripType == models.TripOneWay {
		s.sel.ReturnFlight = nil
	}
}

// SelectOutbound replaces the outbound flight.
func (s *SelectionStore) SelectOutbound(f models.FlightOption) error {
	s.sel.OutboundFlight = &f
	return nil
}

// SelectReturn replaces the return flight. Rejected on one-way trips.
func (s *SelectionStore) SelectReturn(f models.FlightOption) error {
	if s.tripType == models.TripOneWay {
		return &InvalidSelectionError{
			Kind:   models.SelectReturnFlight,
			Reason: "one-way trips do not have a return flight",
		}
	}
	s.sel.ReturnFlight = &f
	return nil
}

// SelectHotel replaces the hotel. A room type chosen for a different
// hotel is cleared in the same mutation.
func (s *SelectionStore) SelectHotel(h models.HotelOption) error {
	if s.sel.RoomType != nil && !h.HasRoomType(s.sel.RoomType.ID) {
		s.sel.RoomType = nil
	}
	s.sel.Hotel = &h
	return nil
}

// SelectRoom replaces the room type. The room must belong to the
// currently selected hotel's room list.
func (s *SelectionStore) SelectRoom(rt models.RoomType) error {
	if s.sel.Hotel == nil {
		return &InvalidSelectionError{
			Kind:   models.SelectRoomType,
			Reason: "no hotel selected",
		}
	}
	if !s.sel.Hotel.HasRoomType(rt.ID) {
		return &InvalidSelectionError{
			Kind:   models.SelectRoomType,
			Reason: "room type does not belong to the selected hotel",
		}
	}
	s.sel.RoomType = &rt
	return nil
}

// Clear unsets one selection slot. Clearing the hotel also clears the
// room type, which cannot outlive its hotel.
func (s *SelectionStore) Clear(kind models.SelectionKind) {
	switch kind {
	case models.SelectOutboundFlight:
		s.sel.OutboundFlight = nil
	case models.SelectReturnFlight:
		s.sel.ReturnFlight = nil
	case models.SelectHotel:
		s.sel.Hotel = nil
		s.sel.RoomType = nil
	case models.SelectRoomType:
		s.sel.RoomType = nil
	}
}

// Selection returns the current selection.
func (s *SelectionStore) Selection() models.Selection {
	return s.sel
}

// Restore loads a persisted selection without invariant checks; the
// snapshot was valid when written.
func (s *SelectionStore) Restore(sel models.Selection) {
	s.sel = sel
}
