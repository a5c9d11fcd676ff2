package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

func newTestStore(t *testing.T) *AuditStore {
	t.Helper()
	store, err := NewAuditStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAuditStore_RecordAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.RecordSubmission(ctx, &models.SubmissionRecord{
		SessionID:   "s1",
		Status:      models.SubmissionFailed,
		Amount:      790,
		Currency:    "USD",
		Attempts:    3,
		SubmittedAt: now,
	}))
	require.NoError(t, store.RecordSubmission(ctx, &models.SubmissionRecord{
		SessionID:   "s1",
		BookingID:   "bk-1",
		Status:      models.SubmissionSucceeded,
		Amount:      790,
		Currency:    "USD",
		Attempts:    1,
		SubmittedAt: now.Add(time.Minute),
	}))

	records, err := store.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.SubmissionFailed, records[0].Status)
	assert.Empty(t, records[0].BookingID)
	assert.Equal(t, 3, records[0].Attempts)

	assert.Equal(t, models.SubmissionSucceeded, records[1].Status)
	assert.Equal(t, "bk-1", records[1].BookingID)
	assert.Equal(t, 790.0, records[1].Amount)
	assert.Equal(t, "USD", records[1].Currency)
}

func TestAuditStore_ListUnknownSession(t *testing.T) {
	store := newTestStore(t)

	records, err := store.ListBySession(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAuditStore_StampsSubmittedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordSubmission(ctx, &models.SubmissionRecord{
		SessionID: "s2",
		Status:    models.SubmissionSucceeded,
		Amount:    100,
		Currency:  "USD",
		Attempts:  1,
	}))

	records, err := store.ListBySession(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].SubmittedAt.IsZero())
}
