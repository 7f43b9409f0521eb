package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run is a recorded deployment run.
type Run struct {
	ID         string
	Workspace  string
	Command    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	Serial     *int
	Error      string
	Events     []EventRecord
}

// EventRecord is a stored Event.
type EventRecord struct {
	Address    string
	Action     string
	Status     string
	Duration   time.Duration
	Error      string
	RecordedAt time.Time
}

// Recent returns up to limit runs, newest first, with their events.
// A workspace of "" matches every workspace.
func (s *Store) Recent(ctx context.Context, workspace string, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace, command, started_at, finished_at, status, serial, error
		FROM runs
		WHERE ? = '' OR workspace = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, workspace, workspace, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []*Run
	for rows.Next() {
		var (
			run      Run
			started  int64
			finished sql.NullInt64
			serial   sql.NullInt64
			errText  sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Workspace, &run.Command, &started, &finished, &run.Status, &serial, &errText); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = time.UnixMilli(started)
		if finished.Valid {
			t := time.UnixMilli(finished.Int64)
			run.FinishedAt = &t
		}
		if serial.Valid {
			n := int(serial.Int64)
			run.Serial = &n
		}
		run.Error = errText.String
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	rows.Close()

	// Single connection: events are loaded after the runs cursor is closed.
	for _, run := range runs {
		events, err := s.events(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		run.Events = events
	}
	return runs, nil
}

func (s *Store) events(ctx context.Context, runID string) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, action, status, duration_ms, error, recorded_at
		FROM events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var (
			ev       EventRecord
			duration int64
			recorded int64
			errText  sql.NullString
		)
		if err := rows.Scan(&ev.Address, &ev.Action, &ev.Status, &duration, &errText, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Duration = time.Duration(duration) * time.Millisecond
		ev.Error = errText.String
		ev.RecordedAt = time.UnixMilli(recorded)
		events = append(events, ev)
	}
	return events, rows.Err()
}
