// Package apperr carries a machine-readable kind alongside domain errors so
// handlers can map failures to status codes without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotOwner         Kind = "not_owner"
	KindInvalidWindow    Kind = "invalid_window"
	KindWindowInPast     Kind = "window_in_past"
	KindScheduleConflict Kind = "schedule_conflict"
	KindUnknownAnswer    Kind = "unknown_answer"
	KindUnsupportedType  Kind = "unsupported_question_type"
	KindSubmissionFailed Kind = "submission_failed"

	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return e.Msg + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the outermost kind in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CauseOf returns the innermost kind in the chain. For an unwrapped error
// it equals KindOf.
func CauseOf(err error) Kind {
	kind := KindInternal
	for err != nil {
		if e, ok := err.(*Error); ok {
			kind = e.Kind
		}
		err = errors.Unwrap(err)
	}
	return kind
}

// Has reports whether any error in the chain carries kind.
func Has(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotOwner, KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidWindow, KindWindowInPast, KindInvalidInput:
		return http.StatusBadRequest
	case KindScheduleConflict, KindConflict:
		return http.StatusConflict
	case KindUnknownAnswer, KindUnsupportedType, KindSubmissionFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
