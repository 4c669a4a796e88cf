package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultTitleMaxLength is used when no positive limit is configured.
const DefaultTitleMaxLength = 255

// Validator provides common validation utilities
type Validator struct {
	titleMaxLength int
}

// NewValidator creates a validator with the default limits.
func NewValidator() *Validator {
	return NewValidatorWithMaxLength(DefaultTitleMaxLength)
}

// NewValidatorWithMaxLength creates a validator with a custom title limit.
func NewValidatorWithMaxLength(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultTitleMaxLength
	}
	return &Validator{titleMaxLength: maxLength}
}

// TitleMaxLength returns the longest title accepted, in characters.
func (v *Validator) TitleMaxLength() int {
	return v.titleMaxLength
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidTitleLength counts characters, not bytes.
func (v *Validator) IsValidTitleLength(title string) bool {
	return utf8.RuneCountInString(title) <= v.titleMaxLength
}

// IsValidTaskID checks if a task ID is valid (positive)
func (v *Validator) IsValidTaskID(id int64) bool {
	return id > 0
}

// ParseID parses a decimal id. ok is false for anything that is not a
// positive integer.
func (v *Validator) ParseID(raw string) (id int64, ok bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || !v.IsValidTaskID(id) {
		return 0, false
	}
	return id, true
}
