package store

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order on startup. Each statement must be
// idempotent (IF NOT EXISTS) so restarts are safe.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "create_alerts",
		sql: `CREATE TABLE IF NOT EXISTS alerts (
			id                 VARCHAR PRIMARY KEY,
			drive_id           VARCHAR NOT NULL,
			severity           VARCHAR NOT NULL,
			condition_key      VARCHAR NOT NULL,
			message            VARCHAR NOT NULL,
			recommended_action VARCHAR NOT NULL DEFAULT '',
			acknowledged       BOOLEAN NOT NULL DEFAULT false,
			superseded_by      VARCHAR,
			created_at         TIMESTAMP NOT NULL DEFAULT now()
		)`,
	},
	{
		name: "create_runs",
		sql: `CREATE TABLE IF NOT EXISTS runs (
			id              VARCHAR PRIMARY KEY,
			snapshot_hash   VARCHAR NOT NULL,
			started_at      TIMESTAMP NOT NULL DEFAULT now(),
			duration_ms     BIGINT NOT NULL DEFAULT 0,
			drives          INTEGER NOT NULL DEFAULT 0,
			files           INTEGER NOT NULL DEFAULT 0,
			recommendations INTEGER NOT NULL DEFAULT 0,
			failures        INTEGER NOT NULL DEFAULT 0,
			alerts_raised   INTEGER NOT NULL DEFAULT 0
		)`,
	},
}

// initSchema creates the tables the store needs.
func initSchema(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	return nil
}
