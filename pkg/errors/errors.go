// Package errors provides structured error types for fractalview.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so that the CLI, the HTTP server and tests can branch on the kind
// of failure without matching message text.
//
// # Error Codes
//
//   - INVALID_*: parameter or input validation failures
//   - *_NOT_FOUND: missing saved views
//   - DEGENERATE_FIT: regression over too few or constant samples
//   - CANCELLED: a pass or refinement was stopped through its context
//   - INTERNAL_ERROR: unexpected failures (I/O, encoding)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParams, "max iterations must be >= 1, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidParams) {
//	    // reject the update
//	}
//
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "write %s", path)
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code classifies an error.
type Code string

const (
	// ErrCodeInvalidParams rejects view parameters: iterations, chunk size,
	// zoom, power, strides and box sizes.
	ErrCodeInvalidParams Code = "INVALID_PARAMS"
	// ErrCodeInvalidInput rejects other user input such as view names,
	// output selectors and colour modes.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	// ErrCodeInvalidFormat marks text that does not parse: complex
	// numbers, hex colours, view files and request bodies.
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	ErrCodeViewNotFound  Code = "VIEW_NOT_FOUND"
	ErrCodeDegenerateFit Code = "DEGENERATE_FIT"
	ErrCodeCancelled     Code = "CANCELLED"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
)

// Error carries a Code, a message for the user, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Cancelled wraps a context error as ErrCodeCancelled. The cause is kept so
// that errors.Is(err, context.Canceled) still holds for callers.
func Cancelled(ctx context.Context, what string) *Error {
	cause := ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	return Wrap(ErrCodeCancelled, cause, "%s cancelled", what)
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the first *Error in err's chain
// without its code, or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
