package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/domain"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// FailoverSessionRepository serves from a primary store and falls back
// to a secondary when the primary errors, probing the primary again
// after a minute. lastCheck is touched from concurrent request
// goroutines and needs the mutex; isDown stays atomic for the fast path.
type FailoverSessionRepository struct {
	primary  domain.SessionRepository
	fallback domain.SessionRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) GetSession(ctx context.Context, id string) (*models.SessionSnapshot, error) {
	if !r.isDown.Load() {
		snap, err := r.primary.GetSession(ctx, id)
		if err == nil {
			return snap, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && r.shouldProbe() {
		snap, err := r.primary.GetSession(ctx, id)
		if err == nil {
			r.isDown.Store(false)
			return snap, nil
		}
		r.touchLastCheck()
	}

	return r.fallback.GetSession(ctx, id)
}

func (r *FailoverSessionRepository) SaveSession(ctx context.Context, snap *models.SessionSnapshot) error {
	if !r.isDown.Load() {
		err := r.primary.SaveSession(ctx, snap)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SaveSession(ctx, snap)
}

func (r *FailoverSessionRepository) DeleteSession(ctx context.Context, id string) error {
	if !r.isDown.Load() {
		err := r.primary.DeleteSession(ctx, id)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.DeleteSession(ctx, id)
}

func (r *FailoverSessionRepository) shouldProbe() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.lastCheck) > time.Minute
}

func (r *FailoverSessionRepository) touchLastCheck() {
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.touchLastCheck()
}
