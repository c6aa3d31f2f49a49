// Package history persists a per-invocation log of assistant dispatches.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Cyclone1070/termai/internal/config"
)

// Record is one assistant invocation. Payload is truncated before storage;
// the log is for recall, not transcripts.
type Record struct {
	ID             int64
	Timestamp      time.Time
	Task           string
	Payload        string
	Provider       string
	FallbackReason string
	ElapsedMs      int64
	ExitCode       *int // only set for execute invocations
}

const maxStoredPayload = 500

// Store is a sqlite-backed invocation log.
type Store struct {
	db *sql.DB
}

// DefaultPath returns ~/.config/termai/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", config.ConfigDir, "history.db"), nil
}

// Open opens (creating if needed) the log at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	ddl := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS invocations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			task TEXT NOT NULL,
			payload TEXT NOT NULL,
			provider TEXT NOT NULL,
			fallback_reason TEXT,
			elapsed_ms INTEGER NOT NULL,
			exit_code INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_ts ON invocations(ts);`,
	}

	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add appends one record.
func (s *Store) Add(ctx context.Context, rec Record) error {
	payload := rec.Payload
	if len(payload) > maxStoredPayload {
		payload = payload[:maxStoredPayload]
	}

	var exitCode sql.NullInt64
	if rec.ExitCode != nil {
		exitCode = sql.NullInt64{Int64: int64(*rec.ExitCode), Valid: true}
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (ts, task, payload, provider, fallback_reason, elapsed_ms, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339),
		rec.Task,
		payload,
		rec.Provider,
		rec.FallbackReason,
		rec.ElapsedMs,
		exitCode,
	)
	return err
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, task, payload, provider, fallback_reason, elapsed_ms, exit_code
		FROM invocations
		ORDER BY id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec            Record
			ts             string
			fallbackReason sql.NullString
			exitCode       sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Task, &rec.Payload, &rec.Provider, &fallbackReason, &rec.ElapsedMs, &exitCode); err != nil {
			return nil, err
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339, ts)
		if fallbackReason.Valid {
			rec.FallbackReason = fallbackReason.String
		}
		if exitCode.Valid {
			code := int(exitCode.Int64)
			rec.ExitCode = &code
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
