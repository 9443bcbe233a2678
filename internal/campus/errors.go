// Package campus implements the campus-events data core: the six entity
// types, the write operations that mutate them under the store's
// integrity constraints, and the read-only reporting engine. Failures are
// classified into three kinds so the HTTP layer can map them to status
// codes without inspecting driver errors.
package campus

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing, malformed, or out-of-range input
// field. It is raised before any store access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConstraintViolation reports a write the store rejected for breaking a
// uniqueness or referential-integrity rule.
type ConstraintViolation struct {
	Reason string
	Err    error
}

func (e *ConstraintViolation) Error() string { return e.Reason }

func (e *ConstraintViolation) Unwrap() error { return e.Err }

// NotFoundError reports an operation referencing a row that does not
// exist, such as attendance for an unregistered student.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConstraint reports whether err is a ConstraintViolation.
func IsConstraint(err error) bool {
	var cv *ConstraintViolation
	return errors.As(err, &cv)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
