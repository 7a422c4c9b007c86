package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one reconstruction run as journaled
type Run struct {
	ID            string
	Mode          string
	Root          string
	WindowStartUS *int64
	WindowEndUS   *int64
	EventsSeen    int
	EventsApplied int
	EventsSkipped int
	Started       time.Time
	Finished      *time.Time
}

// RunEvent is one event outcome within a run
type RunEvent struct {
	ID         int64
	RunID      string
	Ordinal    int
	Action     string
	DevName    string
	DevNum     string
	SourceTSUS int64
	Outcome    string
	Detail     string
}

// BeginRun inserts a new run row and returns its generated id
func (d *DB) BeginRun(mode, root string, windowStartUS, windowEndUS *int64) (string, error) {
	id := uuid.NewString()
	_, err := d.conn.Exec(`
		INSERT INTO runs (id, mode, root, window_start_us, window_end_us)
		VALUES (?, ?, ?, ?, ?)
	`, id, mode, root, nullableInt64(windowStartUS), nullableInt64(windowEndUS))
	if err != nil {
		return "", fmt.Errorf("failed to begin run: %w", err)
	}
	return id, nil
}

// RecordEvent journals one event outcome
func (d *DB) RecordEvent(runID string, ordinal int, action, devname, devnum string, sourceTSUS int64, outcome, detail string) error {
	_, err := d.conn.Exec(`
		INSERT INTO run_events (run_id, ordinal, action, devname, devnum, source_ts_us, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, ordinal, action, devname, devnum, sourceTSUS, outcome, detail)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// FinishRun closes out a run with its final counters
func (d *DB) FinishRun(runID string, seen, applied, skipped int) error {
	_, err := d.conn.Exec(`
		UPDATE runs
		SET events_seen = ?, events_applied = ?, events_skipped = ?, finished = CURRENT_TIMESTAMP
		WHERE id = ?
	`, seen, applied, skipped, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs
func (d *DB) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.conn.Query(`
		SELECT id, mode, root, window_start_us, window_end_us,
		       events_seen, events_applied, events_skipped, started, finished
		FROM runs
		ORDER BY started DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var start, end sql.NullInt64
		var finished sql.NullTime

		err := rows.Scan(
			&run.ID, &run.Mode, &run.Root, &start, &end,
			&run.EventsSeen, &run.EventsApplied, &run.EventsSkipped,
			&run.Started, &finished,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if start.Valid {
			run.WindowStartUS = &start.Int64
		}
		if end.Valid {
			run.WindowEndUS = &end.Int64
		}
		if finished.Valid {
			run.Finished = &finished.Time
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// GetRunEvents returns the journaled events for one run in stream order
func (d *DB) GetRunEvents(runID string) ([]*RunEvent, error) {
	rows, err := d.conn.Query(`
		SELECT id, run_id, ordinal, action, devname, devnum, source_ts_us, outcome, detail
		FROM run_events
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run events: %w", err)
	}
	defer rows.Close()

	var events []*RunEvent
	for rows.Next() {
		var ev RunEvent
		var action, devname, devnum, detail sql.NullString

		err := rows.Scan(
			&ev.ID, &ev.RunID, &ev.Ordinal,
			&action, &devname, &devnum,
			&ev.SourceTSUS, &ev.Outcome, &detail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run event: %w", err)
		}

		ev.Action = action.String
		ev.DevName = devname.String
		ev.DevNum = devnum.String
		ev.Detail = detail.String

		events = append(events, &ev)
	}

	return events, rows.Err()
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
