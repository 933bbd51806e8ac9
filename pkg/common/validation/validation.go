// Package validation provides common validation utilities for the task-manager library.
package validation

import (
	"fmt"

	tmerrors "github.com/Shadow2ube/task-manager/pkg/common/errors"
)

// ValidationError describes a rejected configuration or argument value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %v %s", e.Module, e.Field, e.Value, e.Reason)
}

// Unwrap makes every ValidationError match ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return tmerrors.ErrInvalidConfiguration
}

// ValidatePositive validates that an integer value is positive (> 0).
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return &ValidationError{Module: module, Field: field, Value: value, Reason: "must be positive"}
	}
	return nil
}

// ValidateNonNegative validates that an integer value is non-negative (>= 0).
func ValidateNonNegative(module, field string, value int) error {
	if value < 0 {
		return &ValidationError{Module: module, Field: field, Value: value, Reason: "cannot be negative"}
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
func ValidateNotEmpty(module, field, value string) error {
	if value == "" {
		return &ValidationError{Module: module, Field: field, Value: value, Reason: "cannot be empty"}
	}
	return nil
}

// ValidateMaxLength validates that a string does not exceed max characters.
func ValidateMaxLength(module, field, value string, max int) error {
	if len(value) > max {
		return &ValidationError{
			Module: module, Field: field, Value: value,
			Reason: fmt.Sprintf("too long (max %d characters)", max),
		}
	}
	return nil
}
