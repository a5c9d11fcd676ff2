package repository

import (
	"context"
	"sync"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// MemorySessionRepository keeps session snapshots in process memory.
// Used standalone in tests and as the failover fallback in production.
type MemorySessionRepository struct {
	sessions sync.Map
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{}
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, id string) (*models.SessionSnapshot, error) {
	val, ok := r.sessions.Load(id)
	if !ok {
		return nil, nil
	}
	return val.(*models.SessionSnapshot), nil
}

func (r *MemorySessionRepository) SaveSession(ctx context.Context, snap *models.SessionSnapshot) error {
	r.sessions.Store(snap.ID, snap)
	return nil
}

func (r *MemorySessionRepository) DeleteSession(ctx context.Context, id string) error {
	r.sessions.Delete(id)
	return nil
}
