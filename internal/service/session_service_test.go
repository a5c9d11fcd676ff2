package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/repository"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/worker"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/workflow"
)

type mockFlightSearcher struct{ mock.Mock }

func (m *mockFlightSearcher) Search(ctx context.Context, params models.FlightSearchParams) (*models.FlightSearchResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlightSearchResult), args.Error(1)
}

type mockHotelSearcher struct{ mock.Mock }

func (m *mockHotelSearcher) Search(ctx context.Context, params models.HotelSearchParams) (*models.HotelSearchResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HotelSearchResult), args.Error(1)
}

// fakeBookingCreator fails a configured number of times before handing
// out a booking ID, and counts every call.
type fakeBookingCreator struct {
	failures  int32
	calls     atomic.Int32
	bookingID string
}

func (f *fakeBookingCreator) CreateBooking(ctx context.Context, form models.BookingForm) (string, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return "", errors.New("boundary unavailable")
	}
	return f.bookingID, nil
}

type serviceFixture struct {
	svc      *SessionService
	repo     *repository.MemorySessionRepository
	flights  *mockFlightSearcher
	hotels   *mockHotelSearcher
	bookings *fakeBookingCreator
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &serviceFixture{
		repo:     repository.NewMemorySessionRepository(),
		flights:  &mockFlightSearcher{},
		hotels:   &mockHotelSearcher{},
		bookings: &fakeBookingCreator{bookingID: "bk-1"},
	}
	f.svc = NewSessionService(
		f.repo, f.flights, f.hotels, f.bookings, nil,
		worker.RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2},
		20*time.Millisecond, time.Second,
		&logger,
	)
	return f
}

func completeFormPatch() models.FormPatch {
	origin, dest := "SFO", "JFK"
	dep, ret := "2026-09-10", "2026-09-12"
	first, last, dob, email := "Dana", "Reyes", "1990-04-02", "dana@example.com"
	return models.FormPatch{
		Trip: &models.TripPatch{
			Origin:        &origin,
			Destination:   &dest,
			DepartureDate: &dep,
			ReturnDate:    &ret,
		},
		PrimaryTraveler: &models.TravelerPatch{
			FirstName:   &first,
			LastName:    &last,
			DateOfBirth: &dob,
			Email:       &email,
		},
		Stay: &models.StayPatch{
			CheckIn:  &dep,
			CheckOut: &ret,
		},
	}
}

// driveToConfirmation starts a session, fills the form, selects a
// round-trip with hotel and room, and advances to the terminal step.
func driveToConfirmation(t *testing.T, f *serviceFixture) string {
	t.Helper()
	ctx := context.Background()

	snap, err := f.svc.StartSession(ctx)
	require.NoError(t, err)
	id := snap.ID

	_, err = f.svc.Patch(ctx, id, completeFormPatch())
	require.NoError(t, err)

	_, err = f.svc.SelectOutbound(ctx, id, models.FlightOption{
		ID: "f-out", Price: models.Money{Amount: 300, Currency: "USD"},
	})
	require.NoError(t, err)
	_, err = f.svc.SelectReturn(ctx, id, models.FlightOption{
		ID: "f-ret", Price: models.Money{Amount: 250, Currency: "USD"},
	})
	require.NoError(t, err)

	hotel := models.HotelOption{ID: "h1", Name: "Harborview", RoomTypes: []models.RoomType{
		{ID: "r1", PricePerNight: models.Money{Amount: 120, Currency: "USD"}},
	}}
	_, err = f.svc.SelectHotel(ctx, id, hotel)
	require.NoError(t, err)
	_, err = f.svc.SelectRoom(ctx, id, hotel.RoomTypes[0])
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.svc.Advance(ctx, id)
		require.NoError(t, err)
	}

	snap, err = f.svc.Snapshot(ctx, id)
	require.NoError(t, err)
	require.Equal(t, models.StepConfirmation, snap.Step)
	return id
}

func TestSessionService_StartSession(t *testing.T) {
	f := newServiceFixture(t)

	snap, err := f.svc.StartSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, models.StepClientInfo, snap.Step)

	stored, err := f.repo.GetSession(context.Background(), snap.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, snap.ID, stored.ID)
}

func TestSessionService_UnknownSession(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Snapshot(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.Patch(context.Background(), "nope", models.FormPatch{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_RestoresFromRepository(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	sess := workflow.NewSession()
	sess.Patch(completeFormPatch())
	snap := sess.Snapshot()
	require.NoError(t, f.repo.SaveSession(ctx, &snap))

	got, err := f.svc.Snapshot(ctx, sess.ID())
	require.NoError(t, err)
	assert.Equal(t, "SFO", got.Form.Trip.Origin)
}

func TestSessionService_AdvanceValidationGate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, snap.ID)
	var verr *workflow.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.Patch(ctx, snap.ID, completeFormPatch())
	require.NoError(t, err)
	got, err := f.svc.Advance(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepFlights, got.Step)
}

func TestSessionService_InvalidSelectionSurfaced(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	oneWay := models.TripOneWay
	_, err = f.svc.Patch(ctx, snap.ID, models.FormPatch{Trip: &models.TripPatch{TripType: &oneWay}})
	require.NoError(t, err)

	_, err = f.svc.SelectReturn(ctx, snap.ID, models.FlightOption{
		ID: "f-ret", Price: models.Money{Amount: 250, Currency: "USD"},
	})
	var serr *workflow.InvalidSelectionError
	require.ErrorAs(t, err, &serr)
}

func TestSessionService_SearchFlightsDebouncedAndApplied(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.StartSession(ctx)
	require.NoError(t, err)
	id := snap.ID

	result := &models.FlightSearchResult{
		Flights:  []models.FlightOption{{ID: "f1"}},
		Metadata: models.SearchMetadata{Currency: "USD", ResultCount: 1},
	}
	f.flights.On("Search", mock.Anything, mock.MatchedBy(func(p models.FlightSearchParams) bool {
		return p.Origin == "SFO"
	})).Return(result, nil)

	// A burst of issues within the debounce window must collapse to one
	// boundary call carrying the final parameters.
	for _, origin := range []string{"S", "SF", "SFO"} {
		params := models.FlightSearchParams{
			Origin: origin, Destination: "JFK",
			DepartureDate: "2026-09-10", Passengers: 1,
		}
		require.NoError(t, f.svc.SearchFlights(ctx, id, params))
	}

	require.Eventually(t, func() bool {
		got, err := f.svc.FlightResults(ctx, id)
		return err == nil && got != nil
	}, 2*time.Second, 10*time.Millisecond)

	f.flights.AssertNumberOfCalls(t, "Search", 1)
	got, err := f.svc.FlightResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "f1", got.Flights[0].ID)
}

func TestSessionService_SearchErrorReadable(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	boom := errors.New("boundary unreachable")
	f.hotels.On("Search", mock.Anything, mock.Anything).Return(nil, boom)

	require.NoError(t, f.svc.SearchHotels(ctx, snap.ID, models.HotelSearchParams{
		Destination: "NYC", CheckIn: "2026-09-10", CheckOut: "2026-09-12", Guests: 1, Rooms: 1,
	}))

	require.Eventually(t, func() bool {
		_, err := f.svc.HotelResults(ctx, snap.ID)
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)

	_, err = f.svc.HotelResults(ctx, snap.ID)
	assert.ErrorIs(t, err, boom)
}

func TestSessionService_LeavingStepCancelsPendingSearch(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.StartSession(ctx)
	require.NoError(t, err)
	id := snap.ID

	_, err = f.svc.Patch(ctx, id, completeFormPatch())
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, id) // now on flights
	require.NoError(t, err)

	require.NoError(t, f.svc.SearchFlights(ctx, id, models.FlightSearchParams{
		Origin: "SFO", Destination: "JFK", DepartureDate: "2026-09-10", Passengers: 1,
	}))

	// Leave the flights step inside the debounce window; the pending
	// search must never reach the boundary.
	_, err = f.svc.Advance(ctx, id)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	f.flights.AssertNumberOfCalls(t, "Search", 0)
	got, err := f.svc.FlightResults(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionService_SubmitRequiresConfirmationStep(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, _, err = f.svc.Submit(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrNotOnConfirmation)
	assert.Equal(t, int32(0), f.bookings.calls.Load())
}

func TestSessionService_SubmitRetriesThenSucceeds(t *testing.T) {
	f := newServiceFixture(t)
	f.bookings.failures = 2
	ctx := context.Background()

	id := driveToConfirmation(t, f)

	bookingID, snap, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bk-1", bookingID)
	assert.Equal(t, models.Money{Amount: 790, Currency: "USD"}, snap.Total)
	assert.Equal(t, int32(3), f.bookings.calls.Load())

	// Success discards the session everywhere.
	_, err = f.svc.Snapshot(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	stored, err := f.repo.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSessionService_SubmitFailurePreservesSession(t *testing.T) {
	f := newServiceFixture(t)
	f.bookings.failures = 99
	ctx := context.Background()

	id := driveToConfirmation(t, f)

	_, _, err := f.svc.Submit(ctx, id)
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, 3, subErr.Attempts)

	// The session survives for a later resubmit.
	snap, err := f.svc.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StepConfirmation, snap.Step)
	assert.Equal(t, "SFO", snap.Form.Trip.Origin)
}

func TestSessionService_Discard(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.Discard(ctx, snap.ID))

	_, err = f.svc.Snapshot(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_ClearRecomputesTotal(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.StartSession(ctx)
	require.NoError(t, err)
	id := snap.ID

	_, err = f.svc.SelectOutbound(ctx, id, models.FlightOption{
		ID: "f-out", Price: models.Money{Amount: 300, Currency: "USD"},
	})
	require.NoError(t, err)
	snap, err = f.svc.SelectReturn(ctx, id, models.FlightOption{
		ID: "f-ret", Price: models.Money{Amount: 250, Currency: "USD"},
	})
	require.NoError(t, err)
	assert.Equal(t, 550.0, snap.Total.Amount)

	snap, err = f.svc.Clear(ctx, id, models.SelectReturnFlight)
	require.NoError(t, err)
	assert.Equal(t, 300.0, snap.Total.Amount)
}
