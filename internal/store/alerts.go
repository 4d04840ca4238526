package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guardiandrive/guardiand/internal/model"
)

// =============================================================================
// Alert Persistence
// =============================================================================

// SaveAlerts writes the given alerts in a single transaction. Existing
// rows with the same ID are replaced, so acknowledgment and supersession
// updates flow through the same call.
func (s *Store) SaveAlerts(ctx context.Context, alerts []model.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return s.TransactionContext(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO alerts
				(id, drive_id, severity, condition_key, message,
				 recommended_action, acknowledged, superseded_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare alert insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range alerts {
			superseded := sql.NullString{String: a.SupersededBy, Valid: a.SupersededBy != ""}
			_, err := stmt.ExecContext(ctx,
				a.ID, a.DriveID, a.Severity.String(), a.ConditionKey,
				a.Message, a.RecommendedAction, a.Acknowledged,
				superseded, a.CreatedAt)
			if err != nil {
				return fmt.Errorf("save alert %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

// GetAlert retrieves an alert by ID.
// Returns nil if the alert doesn't exist.
func (s *Store) GetAlert(ctx context.Context, id string) (*model.Alert, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, drive_id, severity, condition_key, message,
		       recommended_action, acknowledged, superseded_by, created_at
		FROM alerts
		WHERE id = ?`, id)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return alert, nil
}

// ListAlerts returns all stored alerts, newest first.
func (s *Store) ListAlerts(ctx context.Context) ([]model.Alert, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, drive_id, severity, condition_key, message,
		       recommended_action, acknowledged, superseded_by, created_at
		FROM alerts
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

// MarkAcknowledged flags an alert as acknowledged.
// Returns ErrAlertNotFound if no alert has the given ID.
func (s *Store) MarkAcknowledged(ctx context.Context, id string) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET acknowledged = true WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("acknowledge alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("acknowledge alert: %w", err)
	}
	if affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// PruneAlerts removes resolved alerts (acknowledged or superseded)
// created before the cutoff. Active alerts are never pruned.
func (s *Store) PruneAlerts(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM alerts
		WHERE created_at < ?
		  AND (acknowledged = true OR superseded_by IS NOT NULL)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune alerts: %w", err)
	}
	return result.RowsAffected()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (*model.Alert, error) {
	var (
		alert      model.Alert
		severity   string
		superseded sql.NullString
	)
	err := row.Scan(&alert.ID, &alert.DriveID, &severity, &alert.ConditionKey,
		&alert.Message, &alert.RecommendedAction, &alert.Acknowledged,
		&superseded, &alert.CreatedAt)
	if err != nil {
		return nil, err
	}

	alert.Severity, err = model.ParseSeverity(severity)
	if err != nil {
		return nil, fmt.Errorf("alert %s: %w", alert.ID, err)
	}
	alert.SupersededBy = superseded.String
	return &alert, nil
}
