// Package errors defines the application error type shared by services and handlers.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an AppError. Handlers map codes to HTTP statuses.
type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "not_found"
	ErrCodeConflict        ErrorCode = "conflict"
	ErrCodeValidation      ErrorCode = "validation"
	ErrCodeForeignKey      ErrorCode = "foreign_key"
	ErrCodeInternal        ErrorCode = "internal"
	ErrCodeTimeout         ErrorCode = "timeout"
	ErrCodeCanceled        ErrorCode = "canceled"
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeForbidden means the caller's role does not permit the action.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeForbiddenTarget means the role permits the action but not on this record,
	// e.g. deleting a super administrator.
	ErrCodeForbiddenTarget ErrorCode = "forbidden_target"
)

// AppError carries a code, a client-safe message and an optional cause and field.
type AppError struct {
	Code    ErrorCode
	Message string
	Field   string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func newError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NotFound returns a not_found error.
func NotFound(message string) *AppError { return newError(ErrCodeNotFound, message) }

// NotFoundf is NotFound with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return newError(ErrCodeNotFound, fmt.Sprintf(format, args...))
}

// Conflict returns a conflict error.
func Conflict(message string) *AppError { return newError(ErrCodeConflict, message) }

// Validation returns a validation error.
func Validation(message string) *AppError { return newError(ErrCodeValidation, message) }

// ValidationField returns a validation error naming the offending field.
func ValidationField(field, message string) *AppError {
	e := newError(ErrCodeValidation, message)
	e.Field = field
	return e
}

// ForeignKey returns a foreign_key error.
func ForeignKey(message string) *AppError { return newError(ErrCodeForeignKey, message) }

// Unauthenticated returns an unauthenticated error.
func Unauthenticated(message string) *AppError { return newError(ErrCodeUnauthenticated, message) }

// Forbidden returns a forbidden error.
func Forbidden(message string) *AppError { return newError(ErrCodeForbidden, message) }

// ForbiddenTarget returns a forbidden_target error.
func ForbiddenTarget(message string) *AppError { return newError(ErrCodeForbiddenTarget, message) }

// Wrap attaches code and message to err. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool        { return CodeOf(err) == ErrCodeNotFound }
func IsConflict(err error) bool        { return CodeOf(err) == ErrCodeConflict }
func IsValidation(err error) bool      { return CodeOf(err) == ErrCodeValidation }
func IsForeignKey(err error) bool      { return CodeOf(err) == ErrCodeForeignKey }
func IsUnauthenticated(err error) bool { return CodeOf(err) == ErrCodeUnauthenticated }

// IsForbidden reports both forbidden and forbidden_target errors.
func IsForbidden(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeForbidden || code == ErrCodeForbiddenTarget
}
