package migrations

import (
	"context"
	"database/sql"
)

func init() {
	Register(4, "index_status", Up_000004_index_status)
}

// Up_000004_index_status indexes status for the grouped count query.
func Up_000004_index_status(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (status)`)
	return err
}
