package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotImplemented = errors.New("not implemented")
	ErrInternal       = errors.New("internal error")
	ErrCancelled      = errors.New("cancelled")
)

// Error carries a human-readable message alongside its kind. Cause, when
// set, is the underlying error and is matched by errors.Is as well.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Invalid returns an ErrInvalidInput error with a formatted message.
func Invalid(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotImplemented returns an ErrNotImplemented error with a formatted message.
func NotImplemented(format string, args ...any) error {
	return &Error{Kind: ErrNotImplemented, Message: fmt.Sprintf(format, args...)}
}

// Message returns the human-readable part of err. Internal errors are
// reduced to a generic message so that details stay in the logs.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == ErrInternal {
			return "an internal error occurred"
		}
		return e.Message
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotImplemented) || errors.Is(err, ErrCancelled) {
		return err.Error()
	}
	return "an internal error occurred"
}
