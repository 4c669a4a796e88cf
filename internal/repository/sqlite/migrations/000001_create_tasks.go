package migrations

import (
	"context"
	"database/sql"
)

func init() {
	Register(1, "create_tasks", Up_000001_create_tasks)
}

// Up_000001_create_tasks creates the tasks table with the full current schema.
// Legacy tables are left as they are; later migrations bring them forward.
func Up_000001_create_tasks(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		done INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'todo',
		created_at TEXT NOT NULL
	)`)
	return err
}
