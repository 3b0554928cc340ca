package collection

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes query errors.
type ErrorCode string

const (
	// ErrCodeFieldNotFound indicates a field selector names a field the
	// record accessor does not know.
	ErrCodeFieldNotFound ErrorCode = "FIELD_NOT_FOUND"

	// ErrCodeInvalidArgument indicates an invalid parameter, such as a
	// non-positive chunk size or an unknown sort direction.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error is returned by collection and query operations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Field is the offending field name, when there is one.
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewFieldNotFound creates an Error for an unknown field.
func NewFieldNotFound(field string) *Error {
	return &Error{
		Code:    ErrCodeFieldNotFound,
		Field:   field,
		Message: fmt.Sprintf("unknown field %q", field),
	}
}

// NewInvalidArgument creates an Error for an invalid parameter.
func NewInvalidArgument(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsFieldNotFound returns true if err is, or wraps, a FIELD_NOT_FOUND error.
func IsFieldNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeFieldNotFound
	}
	return false
}

// IsInvalidArgument returns true if err is, or wraps, an INVALID_ARGUMENT error.
func IsInvalidArgument(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeInvalidArgument
	}
	return false
}
