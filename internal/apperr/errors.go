// Package apperr carries the error kinds every manager operation fails with.
// The HTTP layer maps a Kind to a status code and never inspects messages.
package apperr

import (
	"errors"
	"fmt"

	"backend-friendbook/internal/store"
)

type Kind int

const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	Forbidden
	NotFound
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values of the same kind and message, so package-level
// sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func BadRequestf(format string, args ...any) *Error {
	return New(BadRequest, fmt.Sprintf(format, args...))
}

func Unauthorizedf(format string, args ...any) *Error {
	return New(Unauthorized, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) *Error {
	return New(Forbidden, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

// Internalf wraps an unexpected failure. The message is logged, never shown.
func Internalf(err error, format string, args ...any) *Error {
	return Wrap(Internal, fmt.Sprintf(format, args...), err)
}

// KindOf reports the kind of err; anything that is not an *Error is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal server error"
}

var (
	ErrSelfFollow         = New(BadRequest, "you can't follow yourself")
	ErrInvalidOTP         = New(Unauthorized, "invalid OTP")
	ErrInvalidCredentials = New(Unauthorized, "invalid user credentials")
)

// FromStore classifies a persistence failure. Malformed ids are the caller's
// fault; an *Error passes through; anything else becomes Internal.
func FromStore(err error, format string, args ...any) error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return err
	case errors.Is(err, store.ErrInvalidID):
		return New(BadRequest, store.ErrInvalidID.Error())
	}
	return Internalf(err, format, args...)
}
