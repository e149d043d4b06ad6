// Package apperror defines the typed failures returned by the application
// layer. Handlers convert them to HTTP responses in a single place
// (response.FromError); business code never builds status codes itself.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuth
)

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrValidation = &Error{Kind: KindValidation, Message: "validation error"}
	ErrConflict   = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
	ErrAuth       = &Error{Kind: KindAuth, Message: "unauthorized"}
	ErrInternal   = &Error{Kind: KindInternal, Message: "internal server error"}
)

// Error is a failure with a display-safe Message. Err holds the cause for
// logging and is never sent to clients.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can test errors.Is(err, apperror.ErrAuth).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Status maps the kind to its HTTP status class.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	default:
		return "internal"
	}
}

func Validation(msg string, details any) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

// Internal hides cause behind a generic message.
func Internal(msg string, cause error) *Error {
	if msg == "" {
		msg = "internal server error"
	}
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// As extracts an *Error from err. Anything that is not already typed is
// treated as internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("", err)
}
