package sqlite

import "database/sql"

// TaskRow is a row of the tasks table as stored. Status is nullable because
// rows written before the status column existed may not carry one.
type TaskRow struct {
	ID        int64
	Title     string
	Done      bool
	Status    sql.NullString
	CreatedAt string
}

// StatusCount is one group of the per-status count query.
type StatusCount struct {
	Status sql.NullString
	Done   bool
	Count  int64
}
