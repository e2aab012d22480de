package apierr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindAPI          Kind = "api"
	KindAuth         Kind = "auth"
	KindConfig       Kind = "config"
	KindInvalidInput Kind = "invalid-input"
	KindMissingField Kind = "missing-field"
)

func (k Kind) prefix() string {
	switch k {
	case KindAPI:
		return "API error"
	case KindAuth:
		return "Authentication error"
	case KindConfig:
		return "Configuration error"
	case KindInvalidInput:
		return "Invalid input"
	case KindMissingField:
		return "Missing required field"
	default:
		return "Unexpected error"
	}
}

// Error is the single error type surfaced by the client, auth and config
// packages. StatusCode is set when the error came from an HTTP response.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.prefix(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func API(format string, args ...any) *Error {
	return newf(KindAPI, format, args...)
}

func Auth(format string, args ...any) *Error {
	return newf(KindAuth, format, args...)
}

func Config(format string, args ...any) *Error {
	return newf(KindConfig, format, args...)
}

func InvalidInput(format string, args ...any) *Error {
	return newf(KindInvalidInput, format, args...)
}

func MissingField(field string) *Error {
	return &Error{Kind: KindMissingField, Message: field}
}

// WithStatus records the HTTP status code that produced the error.
func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

// Wrap attaches cause so errors.Is/As can reach it.
func (e *Error) Wrap(cause error) *Error {
	e.Err = cause
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsAPI(err error) bool { return KindOf(err) == KindAPI }

func IsAuth(err error) bool { return KindOf(err) == KindAuth }

func IsConfig(err error) bool { return KindOf(err) == KindConfig }

func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

func IsMissingField(err error) bool { return KindOf(err) == KindMissingField }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
