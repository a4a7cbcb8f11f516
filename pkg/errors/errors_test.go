package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidInput, ErrInternal, ErrUsage, ErrStorageRead, ErrStorageWrite,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("disk full")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "disk full")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "USAGE_ERROR", Message: "no store"}
	assert.Equal(t, "USAGE_ERROR: no store", appErr.Error())
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	appErr := &AppError{Code: "TEST", Message: "test"}
	assert.Nil(t, appErr.Unwrap())
}

// --- Constructor functions ---

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("id is required")
	require.NotNil(t, err)
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, "id is required", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUsage(t *testing.T) {
	err := Usage("cart must be used within a store scope")
	require.NotNil(t, err)
	assert.Equal(t, "USAGE_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestStorageWrite_WrapsSentinelAndCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := StorageWrite("@GoMarketplace:products", cause)
	require.NotNil(t, err)
	assert.Equal(t, "STORAGE_WRITE_FAILED", err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Contains(t, err.Message, "@GoMarketplace:products")
	assert.True(t, errors.Is(err, ErrStorageWrite))
	assert.True(t, errors.Is(err, cause))
}

func TestStorageRead_WrapsSentinelAndCause(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := StorageRead("k", cause)
	assert.True(t, errors.Is(err, ErrStorageRead))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrStorageWrite))
}

func TestInternal(t *testing.T) {
	inner := fmt.Errorf("segfault")
	err := Internal(inner)
	require.NotNil(t, err)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "segfault")
}

// --- Wrap ---

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrUsage, "increment")
	assert.Contains(t, wrapped.Error(), "increment")
	assert.True(t, errors.Is(wrapped, ErrUsage))
}

// --- HTTPStatus ---

func TestHTTPStatus_AppError(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(StorageWrite("k", fmt.Errorf("x"))))
}

func TestHTTPStatus_SentinelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrStorageRead, http.StatusServiceUnavailable},
		{ErrStorageWrite, http.StatusServiceUnavailable},
		{ErrUsage, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrStorageWrite)
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(wrapped))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}
