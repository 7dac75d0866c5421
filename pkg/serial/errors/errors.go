// Package errors defines the failure taxonomy shared by the tagged value,
// the metadata layer and every wire-format backend.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrTypeMismatch       = errors.New("serial: type mismatch")
	ErrUnknownType        = errors.New("serial: unknown type")
	ErrStructuralMismatch = errors.New("serial: structural mismatch")
	ErrMalformedInput     = errors.New("serial: malformed input")
	ErrOutOfRange         = errors.New("serial: out of range")
	ErrUnrepresentable    = errors.New("serial: value not representable in format")
	ErrDuplicateType      = errors.New("serial: type already registered")
	ErrRegistryFrozen     = errors.New("serial: registry frozen")
	ErrNoResult           = errors.New("serial: no result")
)

// Error annotates one of the sentinel errors above with the operation that
// detected it. errors.Is matches both Kind and the wrapped cause.
type Error struct {
	Kind   error
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New returns an *Error of the given kind with a formatted detail message.
func New(kind error, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind carrying cause.
func Wrap(kind error, op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...), Err: cause}
}
