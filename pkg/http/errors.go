package http

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in error envelopes. Validation codes are derived from
// the failing tag instead (ERR_REQUIRED, ERR_GT, ...).
const (
	CodeNotFound        = "ERR_NOT_FOUND"
	CodeInvalid         = "ERR_INVALID"
	CodeMalformed       = "ERR_MALFORMED"
	CodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
	CodeInternal        = "ERR_INTERNAL"
)

// AppError is an error with the HTTP status it should be answered with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(status int, code, format string, a ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, a...), Status: status}
}

// NotFoundError answers 404, e.g. for an unknown symbol.
func NotFoundError(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusNotFound, CodeNotFound, format, a...)
}

// TooManyRequestsError answers 429 to a rate limited client.
func TooManyRequestsError(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusTooManyRequests, CodeTooManyRequests, format, a...)
}

// InternalError answers 500 without exposing err to the client.
func InternalError(err error) *AppError {
	e := newAppError(http.StatusInternalServerError, CodeInternal, "Something went wrong")
	e.Err = err
	return e
}

// StatusOf returns the status carried by an *AppError in err's chain, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
