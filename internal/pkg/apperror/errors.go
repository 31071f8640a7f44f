// Package apperror defines the typed failures returned by the domain services.
//
// Every service error carries a Kind that the transport layer maps to a status
// code, an Op naming the operation for logs, and a Message that is safe to show
// to the caller. Internal errors keep their cause for logging but never expose it.
package apperror

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// GenericMessage is shown for internal failures.
const GenericMessage = "An internal error occurred. Please try again later."

// Error is a structured application error.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and operation to an underlying error. Returns nil if err is nil.
func Wrap(err error, kind Kind, op, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// NotFound reports a missing resource.
func NotFound(op, resource string, id interface{}) error {
	return &Error{
		Kind:    KindNotFound,
		Op:      op,
		Message: fmt.Sprintf("%s not found with ID: %v", resource, id),
	}
}

func BadRequest(op, format string, args ...interface{}) error {
	return New(KindBadRequest, op, format, args...)
}

func Unauthorized(op, format string, args ...interface{}) error {
	return New(KindUnauthorized, op, format, args...)
}

func Conflict(op, format string, args ...interface{}) error {
	return New(KindConflict, op, format, args...)
}

// Internal wraps an unexpected failure.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindInternal, Op: op, Message: "internal error", Err: err}
}

// FromDB converts a gorm lookup error into NotFound or Internal. An error that is
// already typed passes through unchanged.
func FromDB(op string, err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(op, resource, id)
	}
	return Internal(op, err)
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns a caller-safe message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return GenericMessage
}

// Op returns the operation recorded on err, if any.
func Op(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
