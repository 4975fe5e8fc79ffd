// Package domainerrors defines coded errors that cross module boundaries.
//
// Stores and infrastructure return sentinel errors (pkg/platform/sentinel);
// services translate those facts into coded domain errors carrying a message
// safe to surface. Handlers translate codes into HTTP statuses via
// pkg/http-errors and never inspect raw infrastructure errors.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for policy decisions (retry, surface,
// translate to HTTP status).
type Code string

const (
	// CodeBadRequest marks malformed input (unparseable body, bad ID).
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput marks a user-correctable validation failure; the
	// error carries the offending field names.
	CodeInvalidInput Code = "invalid_input"
	// CodeUnauthorized marks a missing or invalid session.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an authenticated identity with insufficient tier.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a state conflict (duplicate, wrong lifecycle state).
	CodeConflict Code = "conflict"
	// CodeInFlight marks a duplicate attempt while an equivalent operation
	// is still running. A caller error, not a retryable condition.
	CodeInFlight Code = "in_flight"
	// CodeUnavailable marks a transient infrastructure failure; callers may
	// retry. The core never retries on its own.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks an unexpected failure with no safe detail.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. Fields is populated only for
// CodeInvalidInput and names the draft/request fields that failed.
type Error struct {
	Code    Code
	Message string
	Fields  []string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New builds a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error while preserving
// the chain for errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// Invalid builds a validation error naming the fields that failed. The UI
// decides presentation; the core only reports which fields are invalid.
func Invalid(message string, fields ...string) *Error {
	return &Error{Code: CodeInvalidInput, Message: message, Fields: fields}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that never passed through this package.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf extracts the invalid field names from a validation error.
// Returns nil for any other error.
func FieldsOf(err error) []string {
	var de *Error
	if errors.As(err, &de) && de.Code == CodeInvalidInput {
		return de.Fields
	}
	return nil
}
