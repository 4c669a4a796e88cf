package api

import (
	"context"

	"taskboard/internal/domain"
)

// Stats counts tasks per status. The buckets always add up to Total.
func (a *apiImpl) Stats(ctx context.Context) (domain.Stats, error) {
	counts, err := a.repo.CountTasksByStatus(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return a.mapper.Stats.FromDatabase(counts), nil
}

// Board loads the task list, newest first, together with its stats.
func (a *apiImpl) Board(ctx context.Context) (*domain.Board, error) {
	tasks, err := a.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := a.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Board{Tasks: tasks, Stats: stats}, nil
}
