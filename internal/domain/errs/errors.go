package errs

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrNotFound          = errors.New("not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyQuote        = errors.New("quote has no line items")
	ErrNoClaim           = errors.New("quote has no insurance claim")
	ErrConflict          = errors.New("concurrent modification")
	ErrValidation        = errors.New("validation failed")
	ErrImmutable         = errors.New("record is append-only")
)

// TransitionError carries the attempted (from, to) pair of a rejected status change.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ValidationError is a field-level input error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AccessDeniedError is a tenant-boundary or ownership violation. It never leaves the
// core as such: see Public.
type AccessDeniedError struct {
	Entity string
	ID     string
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied to %s %s: %s", e.Entity, e.ID, e.Reason)
}

// Is also matches ErrNotFound so callers that only know the public contract treat a
// violation exactly like a missing record.
func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied || target == ErrNotFound
}

// Invalid is a shorthand for a *ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Public maps an internal error to what a caller may see. Access violations become
// ErrNotFound so that cross-tenant records cannot be probed.
func Public(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAccessDenied) {
		return ErrNotFound
	}
	return err
}
