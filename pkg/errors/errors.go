// Package errors provides coded error types shared by the tempomaze CLI and
// HTTP API.
//
// Library packages return plain sentinel errors wrapped with context. The
// outer surfaces translate them into an [Error] carrying a machine-readable
// [Code], so scripts and HTTP clients can branch on the failure class:
//   - INVALID_*: Malformed grids, problems, plans, tokens or formats
//   - FILE_NOT_FOUND: Missing input files
//   - INTERNAL_ERROR: Unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidToken, "agent name %q contains spaces", id)
//	if errors.Is(err, errors.ErrCodeInvalidToken) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidGrid, origErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidGrid    Code = "INVALID_GRID"
	ErrCodeInvalidProblem Code = "INVALID_PROBLEM"
	ErrCodeInvalidPlan    Code = "INVALID_PLAN"
	ErrCodeInvalidToken   Code = "INVALID_TOKEN"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// For *Error types, returns the message followed by the cause, without the
// code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the status the HTTP API responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidGrid, ErrCodeInvalidProblem,
		ErrCodeInvalidPlan, ErrCodeInvalidToken, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
