package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationError(t *testing.T) {
	cause := errors.New("title is required")
	err := NewValidationError("invalid task title", cause)

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "invalid task title", err.Message)
	assert.Equal(t, "VALIDATION_FAILED", err.Code)
	assert.Same(t, cause, err.Cause)
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("task", "42")

	assert.Equal(t, ErrorTypeNotFound, err.Type)
	assert.Equal(t, "task not found: 42", err.Message)
	assert.Equal(t, "NOT_FOUND", err.Code)

	assert.Equal(t, "task", err.Context["resource"])
	assert.Equal(t, "42", err.Context["identifier"])
}

func TestNewDatabaseError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewDatabaseError("insert task", cause)

	assert.Equal(t, ErrorTypeDatabase, err.Type)
	assert.Equal(t, "database operation failed: insert task", err.Message)
	assert.Equal(t, "DATABASE_ERROR", err.Code)

	assert.Equal(t, "insert task", err.Context["operation"])
}

func TestNewDatabaseError_DeadlineBecomesTimeout(t *testing.T) {
	cause := fmt.Errorf("query tasks: %w", context.DeadlineExceeded)
	err := NewDatabaseError("list tasks", cause)

	assert.Equal(t, ErrorTypeTimeout, err.Type)
	assert.Equal(t, "TIMEOUT", err.Code)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("task_id", "abc", "must be a positive integer")

	assert.Equal(t, ErrorTypeInvalidInput, err.Type)
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, "invalid input for task_id: must be a positive integer", err.Message)
	assert.Equal(t, "abc", err.Context["value"])
}

func TestNewMigrationError(t *testing.T) {
	cause := errors.New("duplicate column name: status")
	err := NewMigrationError(2, "add_status_column", cause)

	assert.Equal(t, ErrorTypeMigration, err.Type)
	assert.Equal(t, "MIGRATION_FAILED", err.Code)
	assert.Contains(t, err.Error(), "migration 2 (add_status_column) failed")
	assert.Contains(t, err.Error(), "duplicate column name")

	assert.Equal(t, 2, err.Context["version"])
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewNotFoundError("task", "7"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeNotFound, appErr.Type)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsErrorType(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewValidationError("bad title", nil))

	assert.True(t, IsErrorType(err, ErrorTypeValidation))
	assert.False(t, IsErrorType(err, ErrorTypeDatabase))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeValidation))
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", NewValidationError("title is required", nil), "title is required"},
		{"not found", NewNotFoundError("task", "1"), "task not found: 1"},
		{"invalid input", NewInvalidInputError("task_id", "x", "must be a positive integer"), "invalid input for task_id: must be a positive integer"},
		{"database", NewDatabaseError("select", errors.New("x")), "A database error occurred. Please try again."},
		{"migration", NewMigrationError(1, "create_tasks", errors.New("x")), "A database error occurred. Please try again."},
		{"timeout", NewTimeoutError("select", nil), "The operation timed out. Please try again."},
		{"plain", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetUserMessage(tt.err))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", GetErrorCode(NewNotFoundError("task", "1")))
	assert.Equal(t, "INVALID_INPUT", GetErrorCode(fmt.Errorf("wrap: %w", NewInvalidInputError("task_id", "x", "bad"))))
	assert.Equal(t, "UNKNOWN_ERROR", GetErrorCode(errors.New("plain")))
}

func TestShouldLogError(t *testing.T) {
	assert.False(t, ShouldLogError(NewValidationError("x", nil)))
	assert.False(t, ShouldLogError(NewNotFoundError("task", "1")))
	assert.False(t, ShouldLogError(NewInvalidInputError("status", "x", "bad")))
	assert.True(t, ShouldLogError(NewDatabaseError("select", errors.New("x"))))
	assert.True(t, ShouldLogError(NewMigrationError(1, "create_tasks", errors.New("x"))))
	assert.True(t, ShouldLogError(errors.New("plain")))
}
