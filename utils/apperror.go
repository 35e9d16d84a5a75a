package utils

import (
	"fmt"
	"net/http"
)

// AppError is an operational error: an expected, user-facing failure that
// maps directly to an HTTP status. Anything that is not an AppError is
// treated as a programming or unknown error by the error boundary.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Status is "fail" for client errors and "error" for server errors, matching
// the response envelope.
func (e *AppError) Status() string {
	if e.Code >= 400 && e.Code < 500 {
		return "fail"
	}
	return "error"
}

// NewAppError builds an operational error with the given HTTP status code.
func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// WrapAppError attaches an underlying cause, kept out of production
// responses but shown in development.
func WrapAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func Internal(message string, err error) *AppError {
	return WrapAppError(http.StatusInternalServerError, message, err)
}
