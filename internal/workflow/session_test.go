package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

func sessionWithValidForm(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	s.Patch(validFormPatch())
	return s
}

func TestSession_StartsAtClientInfo(t *testing.T) {
	s := NewSession()
	assert.Equal(t, models.StepClientInfo, s.CurrentStep())
	assert.NotEmpty(t, s.ID())
}

func TestSession_AdvanceGatedByValidation(t *testing.T) {
	s := NewSession()

	step, err := s.Advance()
	require.Error(t, err)
	assert.Equal(t, models.StepClientInfo, step)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "trip.origin")

	// Completing the form unblocks the transition.
	s.Patch(validFormPatch())
	step, err = s.Advance()
	require.NoError(t, err)
	assert.Equal(t, models.StepFlights, step)
}

func TestSession_AdvanceIdempotentAtTerminal(t *testing.T) {
	s := sessionWithValidForm(t)
	for _, want := range []models.Step{models.StepFlights, models.StepHotels, models.StepConfirmation} {
		step, err := s.Advance()
		require.NoError(t, err)
		assert.Equal(t, want, step)
	}

	step, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, models.StepConfirmation, step)
	step, err = s.Advance()
	require.NoError(t, err)
	assert.Equal(t, models.StepConfirmation, step)
}

func TestSession_RetreatKeepsMergedData(t *testing.T) {
	s := sessionWithValidForm(t)
	_, err := s.Advance()
	require.NoError(t, err)

	out := testFlight("f-out", 300)
	require.NoError(t, s.SelectOutbound(out))

	assert.Equal(t, models.StepClientInfo, s.Retreat())
	assert.Equal(t, "SFO", s.Form().Trip.Origin)
	require.NotNil(t, s.Selection().OutboundFlight)
	assert.Equal(t, "f-out", s.Selection().OutboundFlight.ID)
}

func TestSession_ReturnSelectionRejectedOnOneWay(t *testing.T) {
	s := sessionWithValidForm(t)
	s.Patch(models.FormPatch{Trip: &models.TripPatch{
		TripType:   strp(models.TripOneWay),
		ReturnDate: strp(""),
	}})

	err := s.SelectReturn(testFlight("f-ret", 250))
	var serr *InvalidSelectionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, models.SelectReturnFlight, serr.Kind)
}

func TestSession_SwitchToOneWayDropsReturnAndReprices(t *testing.T) {
	s := sessionWithValidForm(t)
	require.NoError(t, s.SelectOutbound(testFlight("f-out", 300)))
	require.NoError(t, s.SelectReturn(testFlight("f-ret", 250)))
	assert.Equal(t, 550.0, s.Total().Amount)

	s.Patch(models.FormPatch{Trip: &models.TripPatch{TripType: strp(models.TripOneWay)}})

	assert.Nil(t, s.Selection().ReturnFlight)
	assert.Equal(t, 300.0, s.Total().Amount)
}

func TestSession_CurrencyMismatchRollsBack(t *testing.T) {
	s := sessionWithValidForm(t)
	require.NoError(t, s.SelectOutbound(testFlight("f-out", 300)))
	before := s.Total()

	eur := testFlight("f-ret", 250)
	eur.Price.Currency = "EUR"
	err := s.SelectReturn(eur)

	var serr *InvalidSelectionError
	require.ErrorAs(t, err, &serr)
	assert.Nil(t, s.Selection().ReturnFlight)
	assert.Equal(t, before, s.Total())
}

func TestSession_TotalReconciliation(t *testing.T) {
	s := sessionWithValidForm(t)
	s.Patch(models.FormPatch{Stay: &models.StayPatch{
		CheckIn:  strp("2026-09-10"),
		CheckOut: strp("2026-09-12"),
	}})

	require.NoError(t, s.SelectOutbound(testFlight("f-out", 300)))
	require.NoError(t, s.SelectReturn(testFlight("f-ret", 250)))
	require.NoError(t, s.SelectHotel(testHotel("h1", "r1")))
	require.NoError(t, s.SelectRoom(models.RoomType{
		ID:            "r1",
		PricePerNight: models.Money{Amount: 120, Currency: "USD"},
	}))

	// 300 + 250 + 120 x 2 nights
	assert.Equal(t, models.Money{Amount: 790, Currency: "USD"}, s.Total())

	s.Clear(models.SelectHotel)
	assert.Equal(t, 550.0, s.Total().Amount)
}

func TestSession_StayDatePatchRepricesRoom(t *testing.T) {
	s := sessionWithValidForm(t)
	s.Patch(models.FormPatch{Stay: &models.StayPatch{
		CheckIn:  strp("2026-09-10"),
		CheckOut: strp("2026-09-12"),
	}})

	require.NoError(t, s.SelectHotel(testHotel("h1", "r1")))
	require.NoError(t, s.SelectRoom(models.RoomType{
		ID:            "r1",
		PricePerNight: models.Money{Amount: 120, Currency: "USD"},
	}))
	assert.Equal(t, 240.0, s.Total().Amount)

	// Extending the stay by a night must reprice the room component
	// even though no selection changed.
	s.Patch(models.FormPatch{Stay: &models.StayPatch{
		CheckOut: strp("2026-09-13"),
	}})
	assert.Equal(t, 360.0, s.Total().Amount)

	// And shrinking it back reconciles downward too.
	s.Patch(models.FormPatch{Stay: &models.StayPatch{
		CheckOut: strp("2026-09-11"),
	}})
	assert.Equal(t, 120.0, s.Total().Amount)
}

func TestSession_SnapshotRoundTrip(t *testing.T) {
	s := sessionWithValidForm(t)
	_, err := s.Advance()
	require.NoError(t, err)
	require.NoError(t, s.SelectOutbound(testFlight("f-out", 300)))

	restored := RestoreSession(s.Snapshot())

	assert.Equal(t, s.ID(), restored.ID())
	assert.Equal(t, models.StepFlights, restored.CurrentStep())
	assert.Equal(t, s.Total(), restored.Total())
	assert.Equal(t, s.Form(), restored.Form())
	assert.True(t, restored.GoTo(models.StepClientInfo))
}
