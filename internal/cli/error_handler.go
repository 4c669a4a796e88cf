package cli

import (
	"fmt"

	"taskboard/internal/errors"
)

// ErrorHandler turns command errors into messages fit for a terminal
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle prefixes err with the failed operation. The result still wraps err.
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// IsMigrationError checks if an error is a migration failure
func (eh *ErrorHandler) IsMigrationError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeMigration)
}

// ExitCode maps an error to a process exit status. Migration failures get
// their own code so scripts can tell them apart.
func (eh *ErrorHandler) ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case eh.IsMigrationError(err):
		return 2
	default:
		return 1
	}
}
