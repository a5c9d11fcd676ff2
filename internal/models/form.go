package models

const (
	TripOneWay    = "one-way"
	TripRoundTrip = "round-trip"
)

// Traveler is one person on the booking.
type Traveler struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone,omitempty"`
}

// TripDetails is the trip metadata captured on the client-info step.
type TripDetails struct {
	Origin        string `json:"origin" validate:"required"`
	Destination   string `json:"destination" validate:"required"`
	DepartureDate string `json:"departure_date" validate:"required"`
	ReturnDate    string `json:"return_date,omitempty"`
	TripType      string `json:"trip_type" validate:"required,oneof=one-way round-trip"`
	Cabin         string `json:"cabin,omitempty"`
	Passengers    int    `json:"passengers" validate:"min=1"`
	CostCenter    string `json:"cost_center,omitempty"`
	BudgetCode    string `json:"budget_code,omitempty"`
}

// StayDetails is the hotel-stay portion of the form. Fields arrive from
// different steps, so updates must merge rather than replace.
type StayDetails struct {
	Destination     string `json:"destination,omitempty"`
	CheckIn         string `json:"check_in,omitempty"`
	CheckOut        string `json:"check_out,omitempty"`
	CheckInTime     string `json:"check_in_time,omitempty"`
	Address         string `json:"address,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
	Guests          int    `json:"guests,omitempty"`
	Rooms           int    `json:"rooms,omitempty"`
}

// BookingForm is the accumulated booking record assembled across steps.
// It is session-scoped and discarded on workflow exit; it reaches the
// outside world only through the booking-creation boundary.
type BookingForm struct {
	Trip                TripDetails `json:"trip"`
	PrimaryTraveler     Traveler    `json:"primary_traveler"`
	AdditionalTravelers []Traveler  `json:"additional_travelers,omitempty" validate:"omitempty,dive"`
	Stay                StayDetails `json:"stay"`
	Selection           Selection   `json:"selection"`
}

// Nights returns the stay length derived from the form's check-in and
// check-out dates, or 0 when they are absent or unparseable.
func (f BookingForm) Nights() int {
	return HotelSearchParams{CheckIn: f.Stay.CheckIn, CheckOut: f.Stay.CheckOut}.Nights()
}

// TripPatch carries partial trip-detail updates. Nil fields are left alone.
type TripPatch struct {
	Origin        *string `json:"origin,omitempty"`
	Destination   *string `json:"destination,omitempty"`
	DepartureDate *string `json:"departure_date,omitempty"`
	ReturnDate    *string `json:"return_date,omitempty"`
	TripType      *string `json:"trip_type,omitempty"`
	Cabin         *string `json:"cabin,omitempty"`
	Passengers    *int    `json:"passengers,omitempty"`
	CostCenter    *string `json:"cost_center,omitempty"`
	BudgetCode    *string `json:"budget_code,omitempty"`
}

// TravelerPatch carries partial traveler updates.
type TravelerPatch struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

// StayPatch carries partial stay updates.
type StayPatch struct {
	Destination     *string `json:"destination,omitempty"`
	CheckIn         *string `json:"check_in,omitempty"`
	CheckOut        *string `json:"check_out,omitempty"`
	CheckInTime     *string `json:"check_in_time,omitempty"`
	Address         *string `json:"address,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
	Guests          *int    `json:"guests,omitempty"`
	Rooms           *int    `json:"rooms,omitempty"`
}

// FormPatch is one step's partial update of the booking form. Nested
// objects merge field by field; AdditionalTravelers, when present, is
// replaced wholesale to avoid identity confusion between travelers.
type FormPatch struct {
	Trip                *TripPatch     `json:"trip,omitempty"`
	PrimaryTraveler     *TravelerPatch `json:"primary_traveler,omitempty"`
	AdditionalTravelers *[]Traveler    `json:"additional_travelers,omitempty"`
	Stay                *StayPatch     `json:"stay,omitempty"`
}
