package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInvalidJob      Code = "INVALID_JOB"
	CodeInternal        Code = "INTERNAL"
)

// AppError carries a client-facing message and the HTTP status it maps to.
type AppError struct {
	Code     Code
	Message  string
	Field    string
	HTTPCode int
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches on Code so that errors.Is(err, ErrNotFound) holds for any not-found.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Field == "" || t.Field == e.Field)
}

func New(code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode, Err: err}
}

var (
	ErrUnauthenticated = New(CodeUnauthenticated, "Unauthorized", http.StatusUnauthorized)
	ErrNotFound        = New(CodeNotFound, "Not found", http.StatusNotFound)
	ErrInvalidArgument = New(CodeInvalidArgument, "Invalid argument", http.StatusBadRequest)
	ErrConflict        = New(CodeConflict, "Already exists", http.StatusBadRequest)
	ErrInvalidJob      = New(CodeInvalidJob, "Invalid job", 0)
)

// InvalidArgument reports a validation failure on field.
func InvalidArgument(field, message string) *AppError {
	e := New(CodeInvalidArgument, message, http.StatusBadRequest)
	e.Field = field
	return e
}

func NotFound(what, message string) *AppError {
	e := New(CodeNotFound, message, http.StatusNotFound)
	e.Field = what
	return e
}

func InvalidJob(message string) *AppError {
	return New(CodeInvalidJob, message, 0)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "Internal server error", http.StatusInternalServerError)
}

// HTTPStatus returns the status and message to render for err. Unknown errors
// become 500 with a generic message.
func HTTPStatus(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode, appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}
