package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode classifies an AppError for callers and the HTTP layer.
type ErrorCode string

const (
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrInvalidDate   ErrorCode = "INVALID_DATE"
	ErrValidation    ErrorCode = "VALIDATION"
	ErrSlotConflict  ErrorCode = "SLOT_CONFLICT"
	ErrTimeout       ErrorCode = "TIMEOUT"
	ErrIndeterminate ErrorCode = "INDETERMINATE"
	ErrStorage       ErrorCode = "STORAGE"
	ErrUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrBadRequest    ErrorCode = "BAD_REQUEST"
	ErrInternal      ErrorCode = "INTERNAL"
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents an application error
type AppError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidDate, ErrValidation, ErrBadRequest:
		return http.StatusBadRequest
	case ErrSlotConflict:
		return http.StatusConflict
	case ErrTimeout:
		return http.StatusGatewayTimeout
	case ErrIndeterminate:
		return http.StatusAccepted
	case ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func InvalidDate(value string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidDate,
		Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value),
		Err:     err,
	}
}

func Validation(fields []FieldError) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: "request validation failed",
		Fields:  fields,
	}
}

func SlotConflict(err error) *AppError {
	return &AppError{
		Code:    ErrSlotConflict,
		Message: "slot is no longer available",
		Err:     err,
	}
}

func Timeout(operation string, err error) *AppError {
	return &AppError{
		Code:    ErrTimeout,
		Message: fmt.Sprintf("%s timed out", operation),
		Err:     err,
	}
}

func Indeterminate(operation string, err error) *AppError {
	return &AppError{
		Code:    ErrIndeterminate,
		Message: fmt.Sprintf("%s outcome unknown, check booking status before retrying", operation),
		Err:     err,
	}
}

func Storage(err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: "storage failure",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Is reports whether err is an AppError carrying the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As extracts an AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
