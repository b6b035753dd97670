package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers and the HTTP edge can react without
// string-matching messages.
type Kind string

// Failure kinds surfaced by the scheduling and enrollment engine.
const (
	Validation    Kind = "validation"
	NotFound      Kind = "not_found"
	Authorization Kind = "authorization"
	Conflict      Kind = "conflict"
	Capacity      Kind = "capacity"
	State         Kind = "state"
	Policy        Kind = "policy"
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" when err carries no classification.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsKind reports whether err is classified with the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
