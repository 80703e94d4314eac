// Package apperr defines the client-side error taxonomy. Every failure a
// view can show inline is one of three kinds: an auth failure, a fetch
// failure (non-2xx or transport), or a local validation failure that never
// reached the network.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for presentation.
type Kind string

const (
	Auth       Kind = "auth"
	Fetch      Kind = "fetch"
	Validation Kind = "validation"
)

// Error is a typed error carrying the message shown inline in the UI.
// Message holds the backend-provided reason when one was present.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int // HTTP status for fetch/auth errors, 0 otherwise
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// CodeAlreadyExists marks the distinguished duplicate-registration case.
const CodeAlreadyExists = "REGISTER_USER_ALREADY_EXISTS"

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsAlreadyExists reports the duplicate-registration auth error.
func IsAlreadyExists(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeAlreadyExists
}

// Message returns the inline text for any error. Typed errors surface their
// message verbatim; anything else gets a generic failure line.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "something went wrong, please try again"
}
