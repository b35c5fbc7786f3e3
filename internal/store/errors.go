package store

import (
	"fmt"
	"strings"
)

// FieldError is one field-level validation failure, returned as a value,
// never panicked.
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

const (
	ErrRequired        = "required"
	ErrTypeMismatch    = "type_mismatch"
	ErrRefNotFound     = "ref_not_found"
	ErrEmneConflict    = "emne_conflict"
	ErrNotFound        = "not_found"
	ErrVersionConflict = "version_conflict"
)

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

// ValidationError aggregates the field errors of one rejected write.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps a *ValidationError if err carries one.
func AsValidation(err error) (*ValidationError, bool) {
	ve, ok := err.(*ValidationError)
	return ve, ok
}

// NotFoundError marks a lookup miss on a live record.
type NotFoundError struct {
	EntityType string
	ID         int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.EntityType, e.ID)
}

// VersionConflictError reports a failed optimistic-lock check.
type VersionConflictError struct {
	Expected int64
	Current  int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected %d, current %d", e.Expected, e.Current)
}
