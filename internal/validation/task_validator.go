package validation

import (
	"strings"

	"taskboard/internal/domain"
)

// TaskValidator validates the inputs of task operations.
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{validator: NewValidator()}
}

// NewTaskValidatorWithMaxLength creates a task validator with a custom title limit.
func NewTaskValidatorWithMaxLength(maxLength int) *TaskValidator {
	return &TaskValidator{validator: NewValidatorWithMaxLength(maxLength)}
}

// ValidateTitle trims the title and returns it, or a *ValidationError if it
// is blank or too long.
func (tv *TaskValidator) ValidateTitle(title string) (string, error) {
	validationError := NewValidationError()
	trimmed := strings.TrimSpace(title)

	if !tv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError("title")
		return "", validationError
	}

	if !tv.validator.IsValidTitleLength(trimmed) {
		validationError.AddMaxLengthError("title", trimmed, tv.validator.TitleMaxLength())
		return "", validationError
	}

	return trimmed, nil
}

// ValidateStatus returns the Status named by raw. Only exact lowercase names
// are accepted.
func (tv *TaskValidator) ValidateStatus(raw string) (domain.Status, error) {
	status, ok := domain.ParseStatus(raw)
	if !ok {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("status", raw, "must be one of todo, in_progress, done")
		return "", validationError
	}
	return status, nil
}

// ParseTaskID parses a task id taken from a URL path.
func (tv *TaskValidator) ParseTaskID(raw string) (int64, error) {
	id, ok := tv.validator.ParseID(raw)
	if !ok {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError("task_id", raw, "positive integer")
		return 0, validationError
	}
	return id, nil
}
