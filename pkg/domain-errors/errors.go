// Package domainerrors defines the error taxonomy shared by services and the
// HTTP layer. Stores speak in sentinel errors; services wrap them into coded
// domain errors; the transport layer maps codes onto HTTP statuses.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for callers and the transport layer.
type Code string

const (
	// CodeBadRequest covers malformed requests (unparseable body, bad params).
	CodeBadRequest Code = "bad_request"
	// CodeValidation covers well-formed requests with invalid field values.
	CodeValidation Code = "validation_error"
	// CodeInvariantViolation marks constructor-level invariant failures.
	// Services usually convert these to CodeValidation before returning.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeNotFound is a normal negative lookup result, not a failure.
	CodeNotFound Code = "not_found"
	// CodeConflict marks uniqueness collisions (duplicate certificate ID).
	CodeConflict Code = "conflict"
	// CodeUnavailable means the backing store could not be reached. Distinct
	// from CodeNotFound so callers never conflate "doesn't exist" with
	// "couldn't check".
	CodeUnavailable Code = "unavailable"
	// CodeInternal is the catch-all for unexpected failures.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is / errors.As inspection.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for plain
// errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
