package utils

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures for the task boundary.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindUnsupportedFormat     Kind = "unsupported_format"
	KindMissingColumns        Kind = "missing_columns"
	KindParseError            Kind = "parse_error"
	KindDependencyUnavailable Kind = "dependency_unavailable"
)

// AppError wraps an operation, failure kind, human-facing message, and
// underlying error. The message alone crosses the task boundary; Op and the
// wrapped error are for logs.
type AppError struct {
	Op   string
	Kind Kind
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(op string, kind Kind, msg string, err error) error {
	return &AppError{Op: op, Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the failure kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
