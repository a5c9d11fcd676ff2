package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// Session is one booking workflow instance: the sequencer, the selection
// state and the form aggregate, plus the derived total. It is a plain
// value object with pure transitions so the whole flow can be exercised
// without any transport or rendering harness.
//
// Sessions are not safe for concurrent use; the owning layer serializes
// access.
type Session struct {
	id        string
	sequencer *Sequencer
	selection *SelectionStore
	aggregate *Aggregate
	total     models.Money
	createdAt time.Time
	updatedAt time.Time
}

// NewSession starts a workflow at the client-info step.
func NewSession() *Session {
	agg := NewAggregate()
	now := time.Now().UTC()
	return &Session{
		id:        uuid.NewString(),
		sequencer: NewSequencer(),
		selection: NewSelectionStore(agg.Form().Trip.TripType),
		aggregate: agg,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreSession rebuilds a session from a persisted snapshot.
func RestoreSession(snap models.SessionSnapshot) *Session {
	s := NewSession()
	s.id = snap.ID
	s.sequencer.Restore(snap.Step, snap.Visited)
	s.aggregate.Restore(snap.Form)
	s.selection.Restore(snap.Form.Selection)
	s.selection.SetTripType(snap.Form.Trip.TripType)
	s.total = snap.Total
	s.createdAt = snap.CreatedAt
	s.updatedAt = snap.UpdatedAt
	return s
}

func (s *Session) ID() string { return s.id }

// CurrentStep returns the active workflow step.
func (s *Session) CurrentStep() models.Step { return s.sequencer.Current() }

// Progress returns workflow completion in percent.
func (s *Session) Progress() float64 { return s.sequencer.Progress() }

// Total returns the most recently reconciled trip total.
func (s *Session) Total() models.Money { return s.total }

// Form returns a read-only copy of the aggregate.
func (s *Session) Form() models.BookingForm { return s.aggregate.Form() }

// Selection returns the current selections.
func (s *Session) Selection() models.Selection { return s.selection.Selection() }

// Patch merges a partial form update. A trip-type change flows into the
// selection store so its invariants track the new trip shape, and the
// total is reconciled unconditionally: stay dates feed the nightly room
// component, so any patch can move it.
func (s *Session) Patch(p models.FormPatch) {
	s.aggregate.Patch(p)
	if p.Trip != nil && p.Trip.TripType != nil {
		s.selection.SetTripType(*p.Trip.TripType)
		s.aggregate.SetSelection(s.selection.Selection())
	}
	s.recompute()
	s.touch()
}

// SelectOutbound chooses the outbound flight.
func (s *Session) SelectOutbound(f models.FlightOption) error {
	return s.applySelection(models.SelectOutboundFlight, func() error {
		return s.selection.SelectOutbound(f)
	})
}

// SelectReturn chooses the return flight; one-way trips reject it.
func (s *Session) SelectReturn(f models.FlightOption) error {
	return s.applySelection(models.SelectReturnFlight, func() error {
		return s.selection.SelectReturn(f)
	})
}

// SelectHotel chooses the hotel, dropping a room type that belongs to a
// different hotel.
func (s *Session) SelectHotel(h models.HotelOption) error {
	return s.applySelection(models.SelectHotel, func() error {
		return s.selection.SelectHotel(h)
	})
}

// SelectRoom chooses a room type of the currently selected hotel.
func (s *Session) SelectRoom(rt models.RoomType) error {
	return s.applySelection(models.SelectRoomType, func() error {
		return s.selection.SelectRoom(rt)
	})
}

// applySelection commits a selection mutation and reconciles the total.
// A currency mismatch rolls the mutation back; the stale option never
// reaches the aggregate.
func (s *Session) applySelection(kind models.SelectionKind, mutate func() error) error {
	prev := s.selection.Selection()
	if err := mutate(); err != nil {
		return err
	}

	total, err := ComputeTotal(s.selection.Selection(), s.aggregate.Form().Nights())
	if err != nil {
		s.selection.Restore(prev)
		return &InvalidSelectionError{Kind: kind, Reason: err.Error()}
	}

	s.total = total
	s.aggregate.SetSelection(s.selection.Selection())
	s.touch()
	return nil
}

// Clear unsets one selection slot and reconciles the total.
func (s *Session) Clear(kind models.SelectionKind) {
	s.selection.Clear(kind)
	s.recompute()
	s.aggregate.SetSelection(s.selection.Selection())
	s.touch()
}

// recompute reconciles the total from the current selection and stay
// dates. Every component was currency-checked when it was selected, so
// the error is discarded.
func (s *Session) recompute() {
	s.total, _ = ComputeTotal(s.selection.Selection(), s.aggregate.Form().Nights())
}

// Advance moves to the next step. Leaving client-info requires the form
// to pass validation; later steps advance freely, and advancing at the
// terminal step is a no-op.
func (s *Session) Advance() (models.Step, error) {
	if s.sequencer.Current() == models.StepClientInfo {
		if verr := s.aggregate.Validate(); verr != nil {
			return s.sequencer.Current(), verr
		}
	}
	step := s.sequencer.Advance()
	s.touch()
	return step, nil
}

// Retreat moves one step back. Already-merged data is retained.
func (s *Session) Retreat() models.Step {
	step := s.sequencer.Retreat()
	s.touch()
	return step
}

// GoTo jumps directly back to a previously visited step.
func (s *Session) GoTo(step models.Step) bool {
	ok := s.sequencer.JumpBack(step)
	if ok {
		s.touch()
	}
	return ok
}

// Validate runs the full schema over the aggregate.
func (s *Session) Validate() *ValidationError {
	return s.aggregate.Validate()
}

// Snapshot captures persistable session state.
func (s *Session) Snapshot() models.SessionSnapshot {
	return models.SessionSnapshot{
		ID:        s.id,
		Step:      s.sequencer.Current(),
		Visited:   s.sequencer.Visited(),
		Form:      s.aggregate.Form(),
		Total:     s.total,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}
