// Package errors provides structured error types for the blueprint application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, gateway and library code
//   - Machine-readable error codes for programmatic handling
//   - User-facing messages that tell data problems apart from load failures
//
// # Error Codes
//
// The most important code is [ErrCodeGraphIntegrity]: the dependency
// structure returned by the repository or execution service contains a
// cycle, a dangling parent reference or duplicate identifiers. It is a
// data problem on the backend, never a transient failure, and callers
// must not retry it.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid notebook id: %s", id)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Data integrity errors
	ErrCodeGraphIntegrity Code = "GRAPH_INTEGRITY"
	ErrCodeStaleSelection Code = "STALE_SELECTION"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidID    Code = "INVALID_ID"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsGraphIntegrity reports whether err is a graph integrity failure.
func IsGraphIntegrity(err error) bool {
	return Is(err, ErrCodeGraphIntegrity)
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
//
// Graph integrity failures get a message that points at the backend data,
// so they cannot be mistaken for a network problem. For other *Error types
// the message is returned without the code prefix; any other error is
// returned as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Code == ErrCodeGraphIntegrity {
		return "invalid dependency data from the backend: " + e.Message
	}
	return e.Message
}
