package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code int

const (
	Internal Code = 1000 + iota
	StorageTransient
)

const (
	Unauthenticated Code = 2000 + iota
	Forbidden
)

const (
	Validation Code = 3000 + iota
	NotFound
	Conflict
)

// Error carries a stable code alongside the message so handlers can map
// failures to HTTP statuses without string matching.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain. Plain errors map to Internal;
// nil maps to 0.
func CodeOf(err error) Code {
	if err == nil {
		return 0
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return Internal
}

// Message returns the user-facing message of an error chain.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// HTTPStatus maps an error code to the status used by the HTTP handlers.
func HTTPStatus(code Code) int {
	switch code {
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case StorageTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
