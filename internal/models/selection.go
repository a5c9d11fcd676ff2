package models

// SelectionKind names one slot of the per-step selection state.
type SelectionKind string

const (
	SelectOutboundFlight SelectionKind = "outbound_flight"
	SelectReturnFlight   SelectionKind = "return_flight"
	SelectHotel          SelectionKind = "hotel"
	SelectRoomType       SelectionKind = "room_type"
)

// Selection holds what the traveler has chosen so far. It is owned
// exclusively by one workflow session.
type Selection struct {
	OutboundFlight *FlightOption `json:"outbound_flight,omitempty"`
	ReturnFlight   *FlightOption `json:"return_flight,omitempty"`
	Hotel          *HotelOption  `json:"hotel,omitempty"`
	RoomType       *RoomType     `json:"room_type,omitempty"`
}
