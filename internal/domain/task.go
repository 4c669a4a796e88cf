package domain

import "time"

// Status is the primary state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus returns the Status named by s, or false if s names none.
func ParseStatus(s string) (Status, bool) {
	status := Status(s)
	return status, status.Valid()
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Toggled returns the status a toggle moves to. Toggling only flips between
// todo and done; an in_progress task is completed.
func (s Status) Toggled() Status {
	if s == StatusDone {
		return StatusTodo
	}
	return StatusDone
}

// Label returns a human readable name.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// ResolveStatus picks the status for a stored row. A missing or unknown raw
// status falls back to the legacy done flag.
func ResolveStatus(raw string, done bool) Status {
	if status, ok := ParseStatus(raw); ok {
		return status
	}
	if done {
		return StatusDone
	}
	return StatusTodo
}

// Task represents a task in the domain model.
// Done mirrors Status and is kept only for older readers of the table.
type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTask creates a new todo Task with the given title.
func NewTask(title string, createdAt time.Time) Task {
	return Task{
		Title:     title,
		Status:    StatusTodo,
		Done:      false,
		CreatedAt: createdAt.UTC(),
	}
}

// SetStatus changes the status and recomputes the done mirror.
func (t *Task) SetStatus(status Status) {
	t.Status = status
	t.Done = status == StatusDone
}

// Toggle flips the task between todo and done.
func (t *Task) Toggle() {
	t.SetStatus(t.Status.Toggled())
}
