package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

func init() {
	Register(3, "sync_done_mirror", Up_000003_sync_done_mirror)
}

// Up_000003_sync_done_mirror repairs rows whose status is missing or unknown
// and then recomputes done from status wherever the two disagree.
func Up_000003_sync_done_mirror(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `
	UPDATE tasks
	SET status = CASE WHEN done = 1 THEN 'done' ELSE 'todo' END
	WHERE status IS NULL OR status NOT IN ('todo', 'in_progress', 'done')`); err != nil {
		return fmt.Errorf("repair status: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	UPDATE tasks
	SET done = CASE WHEN status = 'done' THEN 1 ELSE 0 END
	WHERE done IS NOT (CASE WHEN status = 'done' THEN 1 ELSE 0 END)`); err != nil {
		return fmt.Errorf("sync done: %w", err)
	}

	return nil
}
