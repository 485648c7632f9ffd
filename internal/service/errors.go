package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so callers can tell local problems from remote ones.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
	KindService    ErrorKind = "service"
)

var (
	ErrValidation = errors.New("validation error")
	ErrTransport  = errors.New("transport error")
	ErrService    = errors.New("service error")
)

// Error is the single error shape surfaced by the transport and the controllers built on it.
// Error() returns only the displayable message.
type Error struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "service error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match an *Error against the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrService:
		return e.Kind == KindService
	}
	return false
}

// Validation builds a local validation error. No network call has happened when one is returned.
func Validation(op, message string) *Error {
	return &Error{Op: op, Kind: KindValidation, Message: message}
}

// Message extracts the displayable text of err, falling back when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
