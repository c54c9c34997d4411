// Package errors provides coded domain errors for the bookmark engine.
//
// Usage:
//
//	// In the engine - return typed errors
//	if label.ID < 0 {
//	    return errors.InvalidIdentityf("label %d is reserved", label.ID)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    return nil, nil
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the engine.
const (
	CodeInvalidIdentity  Code = "INVALID_IDENTITY"
	CodeUnpersistedLabel Code = "UNPERSISTED_LABEL"
	CodeNotFound         Code = "NOT_FOUND"
	CodeStorageFailure   Code = "STORAGE_FAILURE"
	CodeValidation       Code = "VALIDATION"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code used when the error reaches the API.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidIdentity, CodeUnpersistedLabel:
		return http.StatusUnprocessableEntity
	case CodeValidation:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidIdentity  = &Error{Code: CodeInvalidIdentity, Message: "invalid identity"}
	ErrUnpersistedLabel = &Error{Code: CodeUnpersistedLabel, Message: "unpersisted label"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrStorageFailure   = &Error{Code: CodeStorageFailure, Message: "storage failure"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

// InvalidIdentityf creates an invalid identity error.
func InvalidIdentityf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidIdentity, Message: fmt.Sprintf(format, args...)}
}

// UnpersistedLabelf creates an unpersisted label error.
func UnpersistedLabelf(format string, args ...any) *Error {
	return &Error{Code: CodeUnpersistedLabel, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Storage wraps a repository failure. A nil err returns nil.
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: CodeStorageFailure, Message: op, cause: err}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
