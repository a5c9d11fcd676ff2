package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

func strp(s string) *string { return &s }

func validFormPatch() models.FormPatch {
	return models.FormPatch{
		Trip: &models.TripPatch{
			Origin:        strp("SFO"),
			Destination:   strp("JFK"),
			DepartureDate: strp("2026-09-10"),
			ReturnDate:    strp("2026-09-12"),
		},
		PrimaryTraveler: &models.TravelerPatch{
			FirstName:   strp("Dana"),
			LastName:    strp("Reyes"),
			DateOfBirth: strp("1990-04-02"),
			Email:       strp("dana@example.com"),
		},
	}
}

func TestAggregate_Defaults(t *testing.T) {
	a := NewAggregate()
	form := a.Form()

	assert.Equal(t, models.TripRoundTrip, form.Trip.TripType)
	assert.Equal(t, models.CabinEconomy, form.Trip.Cabin)
	assert.Equal(t, 1, form.Trip.Passengers)
}

func TestAggregate_PatchPreservesSiblingFields(t *testing.T) {
	a := NewAggregate()
	a.Patch(models.FormPatch{Stay: &models.StayPatch{
		Address: strp("12 Harbor St"),
		CheckIn: strp("2026-09-10"),
	}})

	// A later patch to one stay field must not wipe the others.
	a.Patch(models.FormPatch{Stay: &models.StayPatch{
		CheckInTime: strp("15:00"),
	}})

	stay := a.Form().Stay
	assert.Equal(t, "12 Harbor St", stay.Address)
	assert.Equal(t, "2026-09-10", stay.CheckIn)
	assert.Equal(t, "15:00", stay.CheckInTime)
}

func TestAggregate_PatchMergesAcrossSections(t *testing.T) {
	a := NewAggregate()
	a.Patch(models.FormPatch{Trip: &models.TripPatch{Origin: strp("SFO")}})
	a.Patch(models.FormPatch{PrimaryTraveler: &models.TravelerPatch{Email: strp("dana@example.com")}})

	form := a.Form()
	assert.Equal(t, "SFO", form.Trip.Origin)
	assert.Equal(t, "dana@example.com", form.PrimaryTraveler.Email)
}

func TestAggregate_AdditionalTravelersReplacedWholesale(t *testing.T) {
	a := NewAggregate()
	a.Patch(models.FormPatch{AdditionalTravelers: &[]models.Traveler{
		{FirstName: "A", LastName: "One", DateOfBirth: "1991-01-01", Email: "a@example.com"},
		{FirstName: "B", LastName: "Two", DateOfBirth: "1992-02-02", Email: "b@example.com"},
	}})

	a.Patch(models.FormPatch{AdditionalTravelers: &[]models.Traveler{
		{FirstName: "C", LastName: "Three", DateOfBirth: "1993-03-03", Email: "c@example.com"},
	}})

	got := a.Form().AdditionalTravelers
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].FirstName)
}

func TestAggregate_FormDetachesTravelerSlice(t *testing.T) {
	a := NewAggregate()
	a.Patch(models.FormPatch{AdditionalTravelers: &[]models.Traveler{
		{FirstName: "A", LastName: "One", DateOfBirth: "1991-01-01", Email: "a@example.com"},
	}})

	form := a.Form()
	form.AdditionalTravelers[0].FirstName = "mutated"
	assert.Equal(t, "A", a.Form().AdditionalTravelers[0].FirstName)
}

func TestAggregate_ValidateRequiredFields(t *testing.T) {
	a := NewAggregate()

	verr := a.Validate()
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "trip.origin")
	assert.Contains(t, verr.Fields, "trip.destination")
	assert.Contains(t, verr.Fields, "primary_traveler.email")
	assert.Equal(t, "required", verr.Fields["trip.origin"])
}

func TestAggregate_ValidateEmail(t *testing.T) {
	a := NewAggregate()
	p := validFormPatch()
	p.PrimaryTraveler.Email = strp("not-an-email")
	a.Patch(p)

	verr := a.Validate()
	require.NotNil(t, verr)
	assert.Equal(t, "must be a valid email address", verr.Fields["primary_traveler.email"])
}

func TestAggregate_ValidateTripType(t *testing.T) {
	a := NewAggregate()
	p := validFormPatch()
	p.Trip.TripType = strp("circular")
	a.Patch(p)

	verr := a.Validate()
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields["trip.trip_type"], "must be one of")
}

func TestAggregate_ValidateCrossFields(t *testing.T) {
	t.Run("ReturnDateRequiredForRoundTrip", func(t *testing.T) {
		a := NewAggregate()
		p := validFormPatch()
		p.Trip.ReturnDate = nil
		a.Patch(p)

		verr := a.Validate()
		require.NotNil(t, verr)
		assert.Equal(t, "required for a round-trip", verr.Fields["trip.return_date"])
	})

	t.Run("ReturnDateBeforeDeparture", func(t *testing.T) {
		a := NewAggregate()
		p := validFormPatch()
		p.Trip.ReturnDate = strp("2026-09-01")
		a.Patch(p)

		verr := a.Validate()
		require.NotNil(t, verr)
		assert.Equal(t, "must not be before the departure date", verr.Fields["trip.return_date"])
	})

	t.Run("OriginEqualsDestination", func(t *testing.T) {
		a := NewAggregate()
		p := validFormPatch()
		p.Trip.Destination = strp("SFO")
		a.Patch(p)

		verr := a.Validate()
		require.NotNil(t, verr)
		assert.Contains(t, verr.Fields, "trip.destination")
	})

	t.Run("OneWayNeedsNoReturnDate", func(t *testing.T) {
		a := NewAggregate()
		p := validFormPatch()
		p.Trip.TripType = strp(models.TripOneWay)
		p.Trip.ReturnDate = nil
		a.Patch(p)

		assert.Nil(t, a.Validate())
	})
}

func TestAggregate_ValidatePassesOnCompleteForm(t *testing.T) {
	a := NewAggregate()
	a.Patch(validFormPatch())
	assert.Nil(t, a.Validate())
}

func TestValidationError_FirstIsDeterministic(t *testing.T) {
	verr := &ValidationError{Fields: map[string]string{
		"trip.origin":            "required",
		"primary_traveler.email": "required",
		"trip.departure_date":    "required",
	}}
	for i := 0; i < 10; i++ {
		assert.Equal(t, "primary_traveler.email", verr.First())
	}
}
