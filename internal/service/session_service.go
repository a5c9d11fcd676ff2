package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/domain"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/events"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/export"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/metrics"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/search"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/workflow"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/worker"
)

// SessionService drives booking workflow sessions: it owns the live
// session handles with their per-slot search controllers, persists
// snapshots through the session repository, and talks to the external
// boundaries.
type SessionService struct {
	repo     domain.SessionRepository
	flights  domain.FlightSearcher
	hotels   domain.HotelSearcher
	bookings domain.BookingCreator
	bus      domain.EventPublisher
	retry    worker.RetryPolicy
	debounce time.Duration
	timeout  time.Duration
	logger   *zerolog.Logger

	exportDir string

	mu      sync.Mutex
	handles map[string]*sessionHandle
}

// sessionHandle is the in-memory half of a session: the live workflow
// object, the two search slots, and the latest results per slot. All
// access goes through its mutex; search callbacks run on controller
// goroutines.
type sessionHandle struct {
	mu      sync.Mutex
	session *workflow.Session

	flightCtl *search.Controller
	hotelCtl  *search.Controller

	flightResults *models.FlightSearchResult
	flightErr     error
	hotelResults  *models.HotelSearchResult
	hotelErr      error
}

func NewSessionService(
	repo domain.SessionRepository,
	flights domain.FlightSearcher,
	hotels domain.HotelSearcher,
	bookings domain.BookingCreator,
	bus domain.EventPublisher,
	retry worker.RetryPolicy,
	debounce, timeout time.Duration,
	logger *zerolog.Logger,
) *SessionService {
	if debounce <= 0 {
		debounce = models.DefaultDebounce
	}
	if timeout <= 0 {
		timeout = models.DefaultSearchTimeout
	}
	return &SessionService{
		repo:     repo,
		flights:  flights,
		hotels:   hotels,
		bookings: bookings,
		bus:      bus,
		retry:    retry,
		debounce: debounce,
		timeout:  timeout,
		logger:   logger,
		handles:  make(map[string]*sessionHandle),
	}
}

// EnableItineraryExport makes successful submissions write an xlsx
// itinerary into dir.
func (s *SessionService) EnableItineraryExport(dir string) {
	s.exportDir = dir
}

// StartSession creates a fresh workflow session at the client-info step.
func (s *SessionService) StartSession(ctx context.Context) (models.SessionSnapshot, error) {
	sess := workflow.NewSession()
	h := s.newHandle(sess)

	s.mu.Lock()
	s.handles[sess.ID()] = h
	s.mu.Unlock()

	snap := sess.Snapshot()
	if err := s.repo.SaveSession(ctx, &snap); err != nil {
		return models.SessionSnapshot{}, err
	}

	s.publish(events.EventSessionStarted, events.WorkflowEventPayload{
		SessionID: sess.ID(),
		Step:      string(sess.CurrentStep()),
		At:        time.Now().UTC(),
	})
	s.logger.Info().Str("session_id", sess.ID()).Msg("booking session started")
	return snap, nil
}

func (s *SessionService) newHandle(sess *workflow.Session) *sessionHandle {
	return &sessionHandle{
		session:   sess,
		flightCtl: search.NewController(search.SlotFlights, s.debounce, s.timeout, s.logger),
		hotelCtl:  search.NewController(search.SlotHotels, s.debounce, s.timeout, s.logger),
	}
}

// handle returns the live handle, restoring the session from the
// repository when the process has no in-memory copy (e.g. after a
// restart behind the same store).
func (s *SessionService) handle(ctx context.Context, id string) (*sessionHandle, error) {
	s.mu.Lock()
	h, ok := s.handles[id]
	s.mu.Unlock()
	if ok {
		return h, nil
	}

	snap, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrSessionNotFound
	}

	h = s.newHandle(workflow.RestoreSession(*snap))
	s.mu.Lock()
	if existing, ok := s.handles[id]; ok {
		h = existing
	} else {
		s.handles[id] = h
	}
	s.mu.Unlock()
	return h, nil
}

func (s *SessionService) persist(ctx context.Context, h *sessionHandle) (models.SessionSnapshot, error) {
	snap := h.session.Snapshot()
	if err := s.repo.SaveSession(ctx, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

// Patch deep-merges a partial form update into the session's aggregate.
func (s *SessionService) Patch(ctx context.Context, id string, p models.FormPatch) (models.SessionSnapshot, error) {
	h, err := s.handle(ctx, id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.session.Patch(p)
	return s.persist(ctx, h)
}

// SelectOutbound applies an outbound flight choice.
func (s *SessionService) SelectOutbound(ctx context.Context, id string, f models.FlightOption) (models.SessionSnapshot, error) {
	return s.selectOption(ctx, id, string(models.SelectOutboundFlight), func(sess *workflow.Session) error {
		return sess.SelectOutbound(f)
	})
}

// SelectReturn applies a return flight choice.
func (s *SessionService) SelectReturn(ctx context.Context, id string, f models.FlightOption) (models.SessionSnapshot, error) {
	return s.selectOption(ctx, id, string(models.SelectReturnFlight), func(sess *workflow.Session) error {
		return sess.SelectReturn(f)
	})
}

// SelectHotel applies a hotel choice.
func (s *SessionService) SelectHotel(ctx context.Context, id string, hotel models.HotelOption) (models.SessionSnapshot, error) {
	return s.selectOption(ctx, id, string(models.SelectHotel), func(sess *workflow.Session) error {
		return sess.SelectHotel(hotel)
	})
}

// SelectRoom applies a room-type choice.
func (s *SessionService) SelectRoom(ctx context.Context, id string, rt models.RoomType) (models.SessionSnapshot, error) {
	return s.selectOption(ctx, id, string(models.SelectRoomType), func(sess *workflow.Session) error {
		return sess.SelectRoom(rt)
	})
}

func (s *SessionService) selectOption(ctx context.Context, id, kind string, apply func(*workflow.Session) error) (models.SessionSnapshot, error) {
	h, err := s.handle(ctx, id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := apply(h.session); err != nil {
		return models.SessionSnapshot{}, err
	}

	snap, err := s.persist(ctx, h)
	if err != nil {
		return snap, err
	}

	s.publish(events.EventSelectionChanged, events.WorkflowEventPayload{
		SessionID: id,
		Kind:      kind,
		Amount:    snap.Total.Amount,
		Currency:  snap.Total.Currency,
		At:        time.Now().UTC(),
	})
	return snap, nil
}

// Clear unsets one selection slot.
func (s *SessionService) Clear(ctx context.Context, id string, kind models.SelectionKind) (models.SessionSnapshot, error) {
	h, err := s.handle(ctx, id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.session.Clear(kind)
	return s.persist(ctx, h)
}

// SearchFlights issues a debounced, cancellable flight search. The call
// returns immediately; results land on the session's flight slot and are
// readable through FlightResults once applied. Superseded searches are
// dropped silently.
func (s *SessionService) SearchFlights(ctx context.Context, id string, params models.FlightSearchParams) error {
	h, err := s.handle(ctx, id)
	if err != nil {
		return err
	}

	// The search outlives the caller's request; only the controller's
	// own deadline bounds it.
	h.flightCtl.Issue(context.Background(),
		func(ctx context.Context) (any, error) {
			return s.flights.Search(ctx, params)
		},
		func(result any) {
			h.mu.Lock()
			h.flightResults = result.(*models.FlightSearchResult)
			h.flightErr = nil
			h.mu.Unlock()
			s.publish(events.EventSearchApplied, events.WorkflowEventPayload{
				SessionID: id,
				Slot:      search.SlotFlights,
				At:        time.Now().UTC(),
			})
		},
		func(err error) {
			h.mu.Lock()
			h.flightErr = err
			h.mu.Unlock()
		},
	)
	return nil
}

// SearchHotels issues a debounced, cancellable hotel search.
func (s *SessionService) SearchHotels(ctx context.Context, id string, params models.HotelSearchParams) error {
	h, err := s.handle(ctx, id)
	if err != nil {
		return err
	}

	h.hotelCtl.Issue(context.Background(),
		func(ctx context.Context) (any, error) {
			return s.hotels.Search(ctx, params)
		},
		func(result any) {
			h.mu.Lock()
			h.hotelResults = result.(*models.HotelSearchResult)
			h.hotelErr = nil
			h.mu.Unlock()
			s.publish(events.EventSearchApplied, events.WorkflowEventPayload{
				SessionID: id,
				Slot:      search.SlotHotels,
				At:        time.Now().UTC(),
			})
		},
		func(err error) {
			h.mu.Lock()
			h.hotelErr = err
			h.mu.Unlock()
		},
	)
	return nil
}

// FlightResults returns the latest applied flight results for the
// session, or the slot's last search error.
func (s *SessionService) FlightResults(ctx context.Context, id string) (*models.FlightSearchResult, error) {
	h, err := s.handle(ctx, id)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flightResults, h.flightErr
}

// HotelResults returns the latest applied hotel results for the session.
func (s *SessionService) HotelResults(ctx context.Context, id string) (*models.HotelSearchResult, error) {
	h, err := s.handle(ctx, id)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hotelResults, h.hotelErr
}

// Advance moves the session forward. Client-info requires a valid form.
// Leaving a step cancels its search slot so a late result cannot alter a
// later step's state.
func (s *SessionService) Advance(ctx context.Context, id string) (models.SessionSnapshot, error) {
	return s.transition(ctx, id, func(h *sessionHandle) (models.Step, error) {
		s.cancelSlotFor(h, h.session.CurrentStep())
		return h.session.Advance()
	})
}

// Retreat moves the session one step back, retaining merged data.
func (s *SessionService) Retreat(ctx context.Context, id string) (models.SessionSnapshot, error) {
	return s.transition(ctx, id, func(h *sessionHandle) (models.Step, error) {
		s.cancelSlotFor(h, h.session.CurrentStep())
		return h.session.Retreat(), nil
	})
}

// GoTo jumps back to a previously visited step.
func (s *SessionService) GoTo(ctx context.Context, id string, step models.Step) (models.SessionSnapshot, error) {
	return s.transition(ctx, id, func(h *sessionHandle) (models.Step, error) {
		current := h.session.CurrentStep()
		if !h.session.GoTo(step) {
			return current, nil
		}
		s.cancelSlotFor(h, current)
		return h.session.CurrentStep(), nil
	})
}

func (s *SessionService) transition(ctx context.Context, id string, move func(*sessionHandle) (models.Step, error)) (models.SessionSnapshot, error) {
	h, err := s.handle(ctx, id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	before := h.session.CurrentStep()
	step, err := move(h)
	if err != nil {
		return h.session.Snapshot(), err
	}

	snap, err := s.persist(ctx, h)
	if err != nil {
		return snap, err
	}

	if step != before {
		s.publish(events.EventStepChanged, events.WorkflowEventPayload{
			SessionID: id,
			Step:      string(step),
			At:        time.Now().UTC(),
		})
	}
	return snap, nil
}

// cancelSlotFor aborts the search slot owned by the step being left.
func (s *SessionService) cancelSlotFor(h *sessionHandle, step models.Step) {
	switch step {
	case models.StepFlights:
		h.flightCtl.CancelPending()
	case models.StepHotels:
		h.hotelCtl.CancelPending()
	}
}

// Snapshot returns a read-only copy of the session state.
func (s *SessionService) Snapshot(ctx context.Context, id string) (models.SessionSnapshot, error) {
	h, err := s.handle(ctx, id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session.Snapshot(), nil
}

// Submit sends the validated aggregate to the booking-creation boundary,
// retrying transient failures with backoff. On success the session is
// discarded; on failure it is preserved so the user can resubmit without
// re-entering anything.
func (s *SessionService) Submit(ctx context.Context, id string) (string, models.SessionSnapshot, error) {
	h, err := s.handle(ctx, id)
	if err != nil {
		return "", models.SessionSnapshot{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap := h.session.Snapshot()
	if h.session.CurrentStep() != models.StepConfirmation {
		return "", snap, ErrNotOnConfirmation
	}
	if verr := h.session.Validate(); verr != nil {
		return "", snap, verr
	}

	form := h.session.Form()
	var bookingID string
	attempts, err := s.retry.Do(ctx, func() error {
		var opErr error
		bookingID, opErr = s.bookings.CreateBooking(ctx, form)
		return opErr
	})

	if err != nil {
		metrics.IncSubmission(models.SubmissionFailed)
		s.publish(events.EventBookingSubmitted, events.WorkflowEventPayload{
			SessionID: id,
			Status:    models.SubmissionFailed,
			Amount:    snap.Total.Amount,
			Currency:  snap.Total.Currency,
			Attempts:  attempts,
			At:        time.Now().UTC(),
		})
		s.logger.Error().Err(err).Str("session_id", id).Int("attempts", attempts).Msg("booking submission failed")
		return "", snap, &SubmissionError{Attempts: attempts, Err: err}
	}

	metrics.IncSubmission(models.SubmissionSucceeded)
	s.publish(events.EventBookingSubmitted, events.WorkflowEventPayload{
		SessionID: id,
		BookingID: bookingID,
		Status:    models.SubmissionSucceeded,
		Amount:    snap.Total.Amount,
		Currency:  snap.Total.Currency,
		Attempts:  attempts,
		At:        time.Now().UTC(),
	})
	s.logger.Info().Str("session_id", id).Str("booking_id", bookingID).Msg("booking submitted")

	if s.exportDir != "" {
		go func(dir string, snap models.SessionSnapshot, bookingID string) {
			path, err := export.WriteItinerary(dir, snap, bookingID)
			if err != nil {
				s.logger.Error().Err(err).Str("booking_id", bookingID).Msg("itinerary export failed")
				return
			}
			s.logger.Info().Str("booking_id", bookingID).Str("path", path).Msg("itinerary exported")
		}(s.exportDir, snap, bookingID)
	}

	s.discard(ctx, id, h)
	return bookingID, snap, nil
}

// Discard abandons the session: pending searches are aborted and the
// aggregate is dropped without ever being persisted.
func (s *SessionService) Discard(ctx context.Context, id string) error {
	h, err := s.handle(ctx, id)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	s.discard(ctx, id, h)
	s.publish(events.EventSessionDiscarded, events.WorkflowEventPayload{
		SessionID: id,
		At:        time.Now().UTC(),
	})
	return nil
}

func (s *SessionService) discard(ctx context.Context, id string, h *sessionHandle) {
	h.flightCtl.CancelPending()
	h.hotelCtl.CancelPending()

	if err := s.repo.DeleteSession(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to delete session")
	}

	s.mu.Lock()
	delete(s.handles, id)
	s.mu.Unlock()
}

func (s *SessionService) publish(eventType string, payload events.WorkflowEventPayload) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("session_id", payload.SessionID).Msg("publish event error")
	}
}
