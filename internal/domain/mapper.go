package domain

import (
	"database/sql"

	"taskboard/internal/repository/sqlite"
)

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToDatabase converts a domain Task to a database row.
func (m *TaskMapper) ToDatabase(task Task) sqlite.TaskRow {
	return sqlite.TaskRow{
		ID:        task.ID,
		Title:     task.Title,
		Done:      task.Status == StatusDone,
		Status:    sql.NullString{String: string(task.Status), Valid: true},
		CreatedAt: sqlite.FormatTimeForDB(task.CreatedAt),
	}
}

// FromDatabase converts a database row to a domain Task. This is the single
// normalization point for stored data: the status is resolved against the
// legacy done flag, done is recomputed from it, and an unreadable timestamp
// becomes the zero time.
func (m *TaskMapper) FromDatabase(row sqlite.TaskRow) Task {
	task := Task{
		ID:    row.ID,
		Title: row.Title,
	}
	task.SetStatus(ResolveStatus(row.Status.String, row.Done))

	if createdAt, err := sqlite.ParseTimeFromDB(row.CreatedAt); err == nil {
		task.CreatedAt = createdAt.UTC()
	}

	return task
}

// FromDatabaseSlice converts database rows to domain Tasks.
func (m *TaskMapper) FromDatabaseSlice(rows []*sqlite.TaskRow) []*Task {
	tasks := make([]*Task, len(rows))
	for i, row := range rows {
		task := m.FromDatabase(*row)
		tasks[i] = &task
	}
	return tasks
}

// StatsMapper folds grouped status counts into Stats.
type StatsMapper struct{}

// FromDatabase builds Stats from the grouped count rows. Every row lands in
// exactly one bucket, so the buckets always sum to Total.
func (m *StatsMapper) FromDatabase(counts []*sqlite.StatusCount) Stats {
	var stats Stats
	for _, c := range counts {
		stats.Add(ResolveStatus(c.Status.String, c.Done), int(c.Count))
	}
	return stats
}

// Mapper provides access to all entity mappers.
type Mapper struct {
	Task  *TaskMapper
	Stats *StatsMapper
}

// NewMapper creates a new Mapper with all entity mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task:  NewTaskMapper(),
		Stats: &StatsMapper{},
	}
}
