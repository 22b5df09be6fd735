package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while scoring or storing results.
var (
	// ErrThemeNotFound indicates that a referenced theme does not exist.
	ErrThemeNotFound = errors.New("theme not found")

	// ErrResultNotFound indicates that a requested result does not exist.
	ErrResultNotFound = errors.New("result not found")

	// ErrInvalidDimension indicates a dimension tag that does not resolve to
	// one of the four canonical letter pairs.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrEmptyValue indicates that a required value is empty or nil.
	ErrEmptyValue = errors.New("empty value")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// QuestionError reports a structural problem with a single question.
type QuestionError struct {
	// ThemeID is the theme the question belongs to.
	ThemeID string

	// Code is the question's code within the theme.
	Code string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for QuestionError.
func (e *QuestionError) Error() string {
	return fmt.Sprintf("question error: theme=%s, code=%s, err=%v", e.ThemeID, e.Code, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *QuestionError) Unwrap() error { return e.Err }

// NewQuestionError creates a new QuestionError with the given details.
func NewQuestionError(themeID, code string, err error) *QuestionError {
	return &QuestionError{
		ThemeID: themeID,
		Code:    code,
		Err:     err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
