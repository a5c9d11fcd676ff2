package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// AuditStore records booking submission outcomes in sqlite. It stores
// the outcome row only — session id, booking id, total, status — never
// the aggregate itself.
type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(path string) (*AuditStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &AuditStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS booking_audit (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        booking_id TEXT,
        status TEXT NOT NULL,
        amount REAL NOT NULL,
        currency TEXT,
        attempts INTEGER NOT NULL DEFAULT 1,
        submitted_at DATETIME NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    )`
	if _, err := db.Exec(query); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_booking_audit_session ON booking_audit(session_id)`)
	return err
}

// RecordSubmission appends one submission outcome.
func (s *AuditStore) RecordSubmission(ctx context.Context, rec *models.SubmissionRecord) error {
	submittedAt := rec.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO booking_audit (session_id, booking_id, status, amount, currency, attempts, submitted_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.BookingID, rec.Status, rec.Amount, rec.Currency, rec.Attempts, submittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// ListBySession returns submission outcomes for one session, oldest first.
func (s *AuditStore) ListBySession(ctx context.Context, sessionID string) ([]*models.SubmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, booking_id, status, amount, currency, attempts, submitted_at
         FROM booking_audit WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.SubmissionRecord
	for rows.Next() {
		var rec models.SubmissionRecord
		var bookingID sql.NullString
		var currency sql.NullString
		if err := rows.Scan(&rec.SessionID, &bookingID, &rec.Status, &rec.Amount, &currency, &rec.Attempts, &rec.SubmittedAt); err != nil {
			return nil, err
		}
		rec.BookingID = bookingID.String
		rec.Currency = currency.String
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (s *AuditStore) Close() error {
	return s.db.Close()
}
