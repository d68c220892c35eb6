package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// event, tag or author does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is the umbrella for every field-level failure below.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// Field-level validation kinds. Each one also matches ErrValidation under errors.Is.
var (
	ErrEmptyField   = fmt.Errorf("%w: empty field", ErrValidation)
	ErrTooLong      = fmt.Errorf("%w: too long", ErrValidation)
	ErrBadFormat    = fmt.Errorf("%w: bad format", ErrValidation)
	ErrInvalidRange = fmt.Errorf("%w: invalid range", ErrValidation)
)

// FieldError names the field that failed validation.
// Unwrap returns the kind (ErrEmptyField, ErrTooLong, ...), so callers can
// branch with errors.Is and still report which field was at fault.
type FieldError struct {
	Field string
	Kind  error
}

func (e *FieldError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrEmptyField):
		return e.Field + " should not be empty"
	case errors.Is(e.Kind, ErrTooLong):
		return fmt.Sprintf("%s should be at most %d characters", e.Field, MaxFieldLength)
	case errors.Is(e.Kind, ErrBadFormat):
		return e.Field + " is not given in the correct format"
	case errors.Is(e.Kind, ErrInvalidRange):
		return e.Field + " should not be before start_time"
	case errors.Is(e.Kind, ErrNotFound):
		return e.Field + " does not exist"
	}
	return e.Field + ": " + e.Kind.Error()
}

func (e *FieldError) Unwrap() error { return e.Kind }

// fieldErr is shorthand for constructing a *FieldError.
func fieldErr(field string, kind error) error {
	return &FieldError{Field: field, Kind: kind}
}

// NewFieldError builds a *FieldError for checks performed outside this package
// (author existence, image decoding).
func NewFieldError(field string, kind error) error {
	return fieldErr(field, kind)
}
