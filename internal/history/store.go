package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"turntable/internal/config"
)

// Run statuses recorded in the ledger.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is one pipeline run in the ledger.
type Record struct {
	ID           int64
	Token        string
	Label        string
	BaseDir      string
	Mode         string
	Quality      string
	Width        int
	Height       int
	Status       string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
	Duration     time.Duration
}

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database under the configured
// log directory.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Begin inserts a new running record and fills in its ID, token, and start
// timestamp.
func (s *Store) Begin(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is required")
	}
	rec.Token = uuid.NewString()
	rec.Status = StatusRunning
	rec.StartedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            token, label, base_dir, mode, quality, width, height,
            status, error_message, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Token,
		rec.Label,
		rec.BaseDir,
		rec.Mode,
		rec.Quality,
		rec.Width,
		rec.Height,
		rec.Status,
		"",
		rec.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	return nil
}

// Finish marks a record as completed or failed and stores its duration.
func (s *Store) Finish(ctx context.Context, id int64, status, errorMessage string) error {
	switch status {
	case StatusCompleted, StatusFailed:
	default:
		return fmt.Errorf("invalid terminal status %q", status)
	}
	finished := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET
            status = ?,
            error_message = ?,
            finished_at = ?,
            duration_seconds = (julianday(?) - julianday(started_at)) * 86400
        WHERE id = ?`,
		status,
		strings.TrimSpace(errorMessage),
		finished.Format(time.RFC3339Nano),
		finished.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %d not found", id)
	}
	return nil
}

// Recent returns the most recent records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, token, label, base_dir, mode, quality, width, height,
                status, error_message, started_at, finished_at, duration_seconds
         FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec             Record
			startedAt       string
			finishedAt      sql.NullString
			durationSeconds sql.NullFloat64
		)
		if err := rows.Scan(
			&rec.ID, &rec.Token, &rec.Label, &rec.BaseDir, &rec.Mode,
			&rec.Quality, &rec.Width, &rec.Height, &rec.Status,
			&rec.ErrorMessage, &startedAt, &finishedAt, &durationSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
			rec.StartedAt = ts
		}
		if finishedAt.Valid && finishedAt.String != "" {
			if ts, parseErr := time.Parse(time.RFC3339Nano, finishedAt.String); parseErr == nil {
				rec.FinishedAt = ts
			}
		}
		if durationSeconds.Valid {
			rec.Duration = time.Duration(durationSeconds.Float64 * float64(time.Second))
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
