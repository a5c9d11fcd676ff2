package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/metrics"
)

// FetchFunc performs the network search under the controller's context.
type FetchFunc func(ctx context.Context) (any, error)

// Controller serializes one search slot: at most one request is in
// flight, only the most recently issued request's result is ever
// applied, and a superseded request is aborted at the transport level
// through its context — and ignored even if the abort has no effect.
//
// Rapid repeated issues within the debounce window collapse into a
// single network call carrying the final parameters.
type Controller struct {
	slot     string
	debounce time.Duration
	timeout  time.Duration
	logger   *zerolog.Logger

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewController(slot string, debounce, timeout time.Duration, logger *zerolog.Logger) *Controller {
	return &Controller{
		slot:     slot,
		debounce: debounce,
		timeout:  timeout,
		logger:   logger,
	}
}

func (c *Controller) Slot() string { return c.slot }

// Issue schedules a search after the quiet period. A newer Issue
// supersedes both a still-pending timer and an in-flight request.
// apply runs only when the result still belongs to the newest request;
// onErr likewise — superseded and cancelled requests are dropped
// silently, never surfaced as errors.
func (c *Controller) Issue(ctx context.Context, fetch FetchFunc, apply func(any), onErr func(error)) {
	c.mu.Lock()
	c.seq++
	id := c.seq
	c.supersedeLocked()
	c.timer = time.AfterFunc(c.debounce, func() {
		c.run(ctx, id, fetch, apply, onErr)
	})
	c.mu.Unlock()
}

// CancelPending aborts whatever the slot is doing. Called on step exit
// so a late result cannot retroactively alter a later step's state.
func (c *Controller) CancelPending() {
	c.mu.Lock()
	c.seq++
	c.supersedeLocked()
	c.mu.Unlock()
}

func (c *Controller) supersedeLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		metrics.IncSearchSuperseded(c.slot)
	}
}

func (c *Controller) run(ctx context.Context, id uint64, fetch FetchFunc, apply func(any), onErr func(error)) {
	c.mu.Lock()
	if id != c.seq {
		c.mu.Unlock()
		return
	}
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	c.cancel = cancel
	c.mu.Unlock()

	metrics.IncSearchIssued(c.slot)
	result, err := fetch(rctx)
	cancel()

	c.mu.Lock()
	current := id == c.seq
	if current {
		c.cancel = nil
	}
	c.mu.Unlock()

	if !current {
		// A newer request owns the slot now; drop this result even
		// though the abort did not interrupt the transport.
		metrics.IncSearchSuperseded(c.slot)
		c.logger.Debug().Str("slot", c.slot).Uint64("request", id).Msg("stale search result dropped")
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Warn().Err(err).Str("slot", c.slot).Msg("search failed")
		if onErr != nil {
			onErr(err)
		}
		return
	}

	apply(result)
}
