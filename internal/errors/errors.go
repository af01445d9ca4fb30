// Package errors carries application errors with a machine-readable code. The code survives
// wrapping and decides the HTTP status a handler answers with.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError
type Code string

const (
	CodeConfigInvalid   Code = "CONFIG_INVALID"
	CodeDatabaseError   Code = "DATABASE_ERROR"
	CodeValidationError Code = "VALIDATION_ERROR"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeInternalError   Code = "INTERNAL_ERROR"

	// CodeUnknown is reported for errors that carry no code
	CodeUnknown Code = "UNKNOWN"
)

// HTTPStatus maps the code onto a response status; unclassified codes are server errors
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidationError, CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// AppError is an error with a code and a message safe to show to a user
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap adds context to err. The code of the innermost AppError is carried over; anything else
// becomes an internal error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: codeOr(err, CodeInternalError), Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode reclassifies err, keeping its message and cause
func WithCode(code Code, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// GetCode returns the code of the outermost AppError in the chain
func GetCode(err error) Code {
	return codeOr(err, CodeUnknown)
}

func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}

// As lets callers unwrap with a single errors import
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func codeOr(err error, fallback Code) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}

func ConfigInvalid(message string) *AppError { return New(CodeConfigInvalid, message) }

func ValidationError(message string) *AppError { return New(CodeValidationError, message) }

func InvalidInput(message string) *AppError { return New(CodeInvalidInput, message) }

func NotFound(resource string) *AppError {
	return Newf(CodeNotFound, "%s not found", resource)
}
