package store

import (
	"context"
	"fmt"
	"time"
)

// DefaultHistoryLimit is how many runs RecentRuns returns for a limit of 0.
const DefaultHistoryLimit = 20

// Run is one executed script.
type Run struct {
	ID          string        `json:"run_id"`
	Source      string        `json:"source"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Expressions int           `json:"expressions"`
	Rows        int           `json:"rows"`
	Error       string        `json:"error,omitempty"`
}

// RecordRun inserts a run. Recording the same run id twice is a no-op.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_history
		(run_id, source, started_at, duration_ms, expressions, rows, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		run.ID,
		run.Source,
		run.StartedAt.UnixMilli(),
		run.Duration.Milliseconds(),
		run.Expressions,
		run.Rows,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first. Runs that started in
// the same millisecond are ordered by run id.
//
// Returns an empty slice (not nil) if no runs were recorded.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, source, started_at, duration_ms, expressions, rows, error
		FROM query_history
		ORDER BY started_at DESC, run_id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run        Run
			startedMs  int64
			durationMs int64
		)
		if err := rows.Scan(&run.ID, &run.Source, &startedMs, &durationMs, &run.Expressions, &run.Rows, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.UnixMilli(startedMs).UTC()
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return runs, nil
}
