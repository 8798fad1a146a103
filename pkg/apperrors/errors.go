package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the error shape every service-layer failure is surfaced as.
// Validation and uniqueness violations are raised synchronously at write
// time; callers decide user-visible messaging from Code and Details.
type AppError struct {
	Code     ErrorCode `json:"code"`
	Domain   string    `json:"domain"` // which entity or subsystem raised it
	Message  string    `json:"message"`
	Details  any       `json:"details,omitempty"`
	Err      error     `json:"-"`
	HTTPCode int       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s (%v)", e.Domain, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Domain, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap attaches an AppError classification to an underlying error.
func Wrap(err error, code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// --- factories for the common cases ---

// Validation raises a VALIDATION_FAILED error (out-of-range score, future
// release year, malformed email, unknown role).
func Validation(domain, message string) *AppError {
	return New(CodeValidationFailed, domain, message, http.StatusBadRequest)
}

// Uniqueness raises an ALREADY_EXISTS error (duplicate username, email,
// slug, or (author, title) review pair).
func Uniqueness(domain, message string) *AppError {
	return New(CodeAlreadyExists, domain, message, http.StatusConflict)
}

// NotFound classifies a missing-record lookup.
func NotFound(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

// Internal wraps a storage-engine or other unexpected failure. Propagated,
// never suppressed.
func Internal(err error) *AppError {
	return Wrap(err, CodeInternalError, "system", "internal server error", http.StatusInternalServerError)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, "auth", message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, "auth", message, http.StatusForbidden)
}
