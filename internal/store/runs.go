package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Run History
// =============================================================================

// Run records one completed sweep for the run history.
type Run struct {
	ID string `json:"id"`

	// SnapshotHash fingerprints the inputs the sweep evaluated. Two
	// runs with the same hash saw the same drives, files and prices.
	SnapshotHash uint64 `json:"snapshot_hash,string"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Drives          int `json:"drives"`
	Files           int `json:"files"`
	Recommendations int `json:"recommendations"`
	Failures        int `json:"failures"`
	AlertsRaised    int `json:"alerts_raised"`
}

// CreateRun records a completed sweep. A missing ID is generated. When
// the store is configured with a run history limit, the oldest rows
// beyond the limit are pruned in the same transaction.
func (s *Store) CreateRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return s.TransactionContext(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs
				(id, snapshot_hash, started_at, duration_ms,
				 drives, files, recommendations, failures, alerts_raised)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, strconv.FormatUint(run.SnapshotHash, 16),
			run.StartedAt, run.Duration.Milliseconds(),
			run.Drives, run.Files, run.Recommendations,
			run.Failures, run.AlertsRaised)
		if err != nil {
			return fmt.Errorf("create run: %w", err)
		}

		if s.config.RunHistoryLimit > 0 {
			_, err = tx.ExecContext(ctx, `
				DELETE FROM runs
				WHERE id NOT IN (
					SELECT id FROM runs
					ORDER BY started_at DESC, id
					LIMIT ?
				)`, s.config.RunHistoryLimit)
			if err != nil {
				return fmt.Errorf("prune runs: %w", err)
			}
		}
		return nil
	})
}

// ListRuns returns recorded runs, newest first. A limit of zero or less
// returns the full retained history.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	query := `
		SELECT id, snapshot_hash, started_at, duration_ms,
		       drives, files, recommendations, failures, alerts_raised
		FROM runs
		ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRun returns the most recent run.
// Returns nil if no runs have been recorded.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, snapshot_hash, started_at, duration_ms,
		       drives, files, recommendations, failures, alerts_raised
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT 1`)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last run: %w", err)
	}
	return run, nil
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		hash       string
		durationMS int64
	)
	err := row.Scan(&run.ID, &hash, &run.StartedAt, &durationMS,
		&run.Drives, &run.Files, &run.Recommendations,
		&run.Failures, &run.AlertsRaised)
	if err != nil {
		return nil, err
	}

	run.SnapshotHash, err = strconv.ParseUint(hash, 16, 64)
	if err != nil {
		return nil, fmt.Errorf("run %s: parse snapshot hash: %w", run.ID, err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
