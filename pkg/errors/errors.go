// Package errors classifies failures of backend calls and session storage so
// pages can pick a status code and a message to show the admin.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an AppError
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	// Talking to the backend
	ErrCodeNetwork     ErrorCode = "NETWORK_ERROR"
	ErrCodeBackend     ErrorCode = "BACKEND_ERROR"
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
	ErrCodeDecode      ErrorCode = "DECODE_ERROR"

	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
)

// statusFor is the status a page answers with for each code
var statusFor = map[ErrorCode]int{
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeUnsupported:  http.StatusNotImplemented,
	ErrCodeNetwork:      http.StatusBadGateway,
	ErrCodeBackend:      http.StatusBadGateway,
	ErrCodeDecode:       http.StatusBadGateway,
}

// codeFor maps backend statuses that carry their own meaning
var codeFor = map[int]ErrorCode{
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusUnprocessableEntity: ErrCodeValidation,
	http.StatusNotImplemented:      ErrCodeUnsupported,
}

// AppError is a classified failure. Message is safe to show to the admin;
// Err is the cause and only goes to logs.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Err        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails sets extra context for logs
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func statusOf(code ErrorCode) int {
	if status, ok := statusFor[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusOf(code)}
}

func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap classifies err under code
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Err = err
	return appErr
}

func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// FromStatus builds the error for a non-2xx backend response. message is the
// backend's own text and may be empty. The backend's status is kept as is.
func FromStatus(status int, message string) *AppError {
	code, ok := codeFor[status]
	switch {
	case ok:
	case status >= 400 && status < 500:
		code = ErrCodeBadRequest
	default:
		code = ErrCodeBackend
	}
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", status)
	}
	appErr := New(code, message)
	appErr.StatusCode = status
	return appErr
}

// IsAppError finds the AppError in err's chain
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	if appErr, ok := IsAppError(err); ok {
		return appErr.StatusCode
	}
	return 0
}

// UserMessage returns the text to show for err: the backend's message when
// there is one, else fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if appErr, ok := IsAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
