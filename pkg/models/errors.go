package models

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel matched by every ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError reports invalid construction parameters or configuration.
// It is fatal and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
