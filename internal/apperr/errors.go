// Package apperr defines the error taxonomy returned by lifecycle operations.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a rejected operation.
type Kind string

const (
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindConflict          Kind = "CONFLICT"
	KindValidation        Kind = "VALIDATION_ERROR"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid transition"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "conflict"}
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation failed"}
)

// Error is a typed, non-fatal rejection of an operation.
type Error struct {
	Kind    Kind   `json:"code"`
	Op      string `json:"-"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// Is matches on Kind so wrapped and sentinel errors compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(op, format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, op, format, args...)
}

func NotFound(op, format string, args ...interface{}) *Error {
	return newError(KindNotFound, op, format, args...)
}

func InvalidTransition(op, format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, op, format, args...)
}

func Conflict(op, format string, args ...interface{}) *Error {
	return newError(KindConflict, op, format, args...)
}

func Validation(op, format string, args ...interface{}) *Error {
	return newError(KindValidation, op, format, args...)
}

// KindOf returns the Kind of err, or "" when err is not part of the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps an error onto a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
