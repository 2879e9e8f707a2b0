// Package clierr defines the error taxonomy surfaced by CLI commands.
// Components convert their failures into a categorized Error at their
// boundary; the command layer maps the category to a message, an optional
// remediation hint, and a process exit code.
package clierr

import (
	"context"
	"errors"
	"fmt"
)

// Category classifies an error for user-facing reporting.
type Category string

const (
	// CategoryConnectivity is a transient network failure that outlived its retries.
	CategoryConnectivity Category = "connectivity"
	// CategoryJobFailure means the server reported a job as FAILED.
	CategoryJobFailure Category = "job_failure"
	// CategoryAuthentication covers state mismatch, rejected codes and invalid tokens.
	CategoryAuthentication Category = "authentication"
	// CategoryEnvironment covers a busy login port or a browser that cannot be launched.
	CategoryEnvironment Category = "environment"
	// CategoryConfiguration covers unreadable credential files and unexpected response shapes.
	CategoryConfiguration Category = "configuration"
	// CategoryValidation means the user supplied bad input.
	CategoryValidation Category = "validation"
	// CategoryTimeout means a bounded wait expired before the operation finished.
	CategoryTimeout Category = "timeout"
	// CategoryInterrupted means the user aborted the command.
	CategoryInterrupted Category = "interrupted"
)

// Categorized is implemented by errors that know their own category.
type Categorized interface {
	Category() Category
}

// Hinted is implemented by errors that carry a remediation hint.
type Hinted interface {
	Hint() string
}

// Error is a categorized error with an optional remediation hint.
type Error struct {
	Kind        Category
	Err         error
	Remediation string
}

func (e *Error) Error() string { return e.Err.Error() }

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Category returns the error category.
func (e *Error) Category() Category { return e.Kind }

// Hint returns the remediation hint, if any.
func (e *Error) Hint() string { return e.Remediation }

// WithHint returns a copy of e carrying a remediation hint.
func (e *Error) WithHint(format string, args ...any) *Error {
	out := *e
	out.Remediation = fmt.Sprintf(format, args...)
	return &out
}

func newError(kind Category, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Connectivity creates a connectivity error.
func Connectivity(format string, args ...any) *Error {
	return newError(CategoryConnectivity, format, args...)
}

// JobFailure creates a job failure error.
func JobFailure(format string, args ...any) *Error {
	return newError(CategoryJobFailure, format, args...)
}

// Authentication creates an authentication error.
func Authentication(format string, args ...any) *Error {
	return newError(CategoryAuthentication, format, args...)
}

// Environment creates an environment error.
func Environment(format string, args ...any) *Error {
	return newError(CategoryEnvironment, format, args...)
}

// Configuration creates a configuration error.
func Configuration(format string, args ...any) *Error {
	return newError(CategoryConfiguration, format, args...)
}

// Validation creates a validation error.
func Validation(format string, args ...any) *Error {
	return newError(CategoryValidation, format, args...)
}

// Timeout creates a timeout error.
func Timeout(format string, args ...any) *Error {
	return newError(CategoryTimeout, format, args...)
}

// Interrupted creates an interrupted error.
func Interrupted(format string, args ...any) *Error {
	return newError(CategoryInterrupted, format, args...)
}

// CategoryOf walks the error chain and returns the first category found.
// Context cancellation is reported as interrupted; anything else without a
// category is reported as the empty Category.
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}
	var c Categorized
	if errors.As(err, &c) {
		return c.Category()
	}
	if errors.Is(err, context.Canceled) {
		return CategoryInterrupted
	}
	return ""
}

// HintOf returns the first non-empty remediation hint in the error chain.
func HintOf(err error) string {
	for err != nil {
		if h, ok := err.(Hinted); ok && h.Hint() != "" {
			return h.Hint()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// ExitCode maps an error to a process exit code: 0 for nil, 130 for an
// interrupt, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case CategoryOf(err) == CategoryInterrupted:
		return 130
	default:
		return 1
	}
}
