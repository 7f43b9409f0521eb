package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run statuses.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// Store is the history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the history database at path, creating its
// directory if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	// SQLite has a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// BeginRun opens a run and returns its id.
func (s *Store) BeginRun(ctx context.Context, workspace, command string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, workspace, command, started_at, status) VALUES (?, ?, ?, ?, ?)`,
		id, workspace, command, s.now().UnixMilli(), RunRunning)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// Event is one per-resource apply event.
type Event struct {
	Address  string
	Action   string
	Status   string
	Duration time.Duration
	Error    error
}

// Record appends an event to a run.
func (s *Store) Record(ctx context.Context, runID string, ev Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (run_id, address, action, status, duration_ms, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, ev.Address, ev.Action, ev.Status, ev.Duration.Milliseconds(), errorText(ev.Error), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record event for %s: %w", ev.Address, err)
	}
	return nil
}

// FinishRun closes a run with the resulting state serial and error, if any.
func (s *Store) FinishRun(ctx context.Context, runID string, serial int, runErr error) error {
	status := RunSucceeded
	if runErr != nil {
		status = RunFailed
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, serial = ?, error = ? WHERE id = ?`,
		s.now().UnixMilli(), status, serial, errorText(runErr), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

func errorText(err error) sql.NullString {
	if err == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: err.Error(), Valid: true}
}
