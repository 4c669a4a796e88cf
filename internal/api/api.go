package api

import (
	"context"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/errors"
	"taskboard/internal/repository/sqlite"
	"taskboard/internal/validation"
)

// API defines the task operations behind the board.
type API interface {
	CreateTask(ctx context.Context, title string) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// ToggleTask moves todo and in_progress tasks to done and done tasks
	// back to todo.
	ToggleTask(ctx context.Context, id int64) (*domain.Task, error)

	// UpdateTaskStatus sets an explicit status. An unknown status is a
	// validation error and leaves the task untouched.
	UpdateTaskStatus(ctx context.Context, id int64, status string) (*domain.Task, error)

	// DeleteTask removes a task. Deleting a missing task is not an error.
	DeleteTask(ctx context.Context, id int64) error

	Stats(ctx context.Context) (domain.Stats, error)
	Board(ctx context.Context) (*domain.Board, error)
}

// Option configures an API instance.
type Option func(*apiImpl)

// WithClock sets the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(a *apiImpl) {
		a.now = now
	}
}

// WithTitleMaxLength overrides the longest accepted title.
func WithTitleMaxLength(n int) Option {
	return func(a *apiImpl) {
		a.taskValidator = validation.NewTaskValidatorWithMaxLength(n)
	}
}

type apiImpl struct {
	repo          sqlite.Repository
	mapper        *domain.Mapper
	taskValidator *validation.TaskValidator
	now           func() time.Time
}

// New creates a new API instance over repo.
func New(repo sqlite.Repository, opts ...Option) API {
	a := &apiImpl{
		repo:          repo,
		mapper:        domain.NewMapper(),
		taskValidator: validation.NewTaskValidator(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *apiImpl) CreateTask(ctx context.Context, title string) (*domain.Task, error) {
	cleaned, err := a.taskValidator.ValidateTitle(title)
	if err != nil {
		return nil, errors.NewValidationError("invalid task title", err)
	}

	task := domain.NewTask(cleaned, a.now())
	row := a.mapper.Task.ToDatabase(task)
	if err := a.repo.CreateTask(ctx, &row); err != nil {
		return nil, err
	}

	created := a.mapper.Task.FromDatabase(row)
	return &created, nil
}

func (a *apiImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	row, err := a.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	task := a.mapper.Task.FromDatabase(*row)
	return &task, nil
}

func (a *apiImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	rows, err := a.repo.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return a.mapper.Task.FromDatabaseSlice(rows), nil
}

func (a *apiImpl) ToggleTask(ctx context.Context, id int64) (*domain.Task, error) {
	// 1. Load and normalize the current state
	task, err := a.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. Flip it and persist status with its done mirror
	task.Toggle()
	if err := a.save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (a *apiImpl) UpdateTaskStatus(ctx context.Context, id int64, status string) (*domain.Task, error) {
	parsed, err := a.taskValidator.ValidateStatus(status)
	if err != nil {
		return nil, errors.NewValidationError("invalid task status", err)
	}

	task, err := a.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task.SetStatus(parsed)
	if err := a.save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (a *apiImpl) DeleteTask(ctx context.Context, id int64) error {
	err := a.repo.DeleteTask(ctx, id)
	if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return nil
	}
	return err
}

// save writes the status of task. Done is always derived from Status here so
// the two columns cannot drift.
func (a *apiImpl) save(ctx context.Context, task *domain.Task) error {
	return a.repo.UpdateTaskStatus(ctx, task.ID, string(task.Status), task.Status == domain.StatusDone)
}
