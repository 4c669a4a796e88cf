package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

func init() {
	Register(2, "add_status_column", Up_000002_add_status_column)
}

// Up_000002_add_status_column adds the status column to tables created before
// it existed and backfills it from the done flag. Tables that already have a
// status column are not touched, so their in_progress rows survive.
func Up_000002_add_status_column(ctx context.Context, tx *sql.Tx) error {
	exists, err := hasColumn(ctx, tx, "tasks", "status")
	if err != nil {
		return fmt.Errorf("inspect tasks table: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `ALTER TABLE tasks ADD COLUMN status TEXT NOT NULL DEFAULT 'todo'`); err != nil {
		return fmt.Errorf("add status column: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	UPDATE tasks
	SET status = CASE WHEN done = 1 THEN 'done' ELSE 'todo' END`); err != nil {
		return fmt.Errorf("backfill status: %w", err)
	}

	return nil
}
