package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for the cart store.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrUsage        = errors.New("cart store used outside an active scope")
	ErrStorageRead  = errors.New("storage read failed")
	ErrStorageWrite = errors.New("storage write failed")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Usage creates an error for a caller that reached the cart interface
// without an initialized store. It is a wiring bug, so it maps to 500.
func Usage(message string) *AppError {
	return &AppError{
		Code:    "USAGE_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     ErrUsage,
	}
}

// StorageRead creates an error for a persisted value that could not be read
// or decoded.
func StorageRead(key string, cause error) *AppError {
	return &AppError{
		Code:    "STORAGE_READ_FAILED",
		Message: fmt.Sprintf("read %q from storage", key),
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrStorageRead, cause),
	}
}

// StorageWrite creates a 503 error for a mutation whose persistence step failed.
func StorageWrite(key string, cause error) *AppError {
	return &AppError{
		Code:    "STORAGE_WRITE_FAILED",
		Message: fmt.Sprintf("write %q to storage", key),
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrStorageWrite, cause),
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorageRead), errors.Is(err, ErrStorageWrite):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
