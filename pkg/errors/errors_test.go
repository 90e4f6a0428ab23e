package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized,
		ErrForbidden, ErrInternal, ErrServiceUnavail, ErrRateLimited,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "Product not found"}
	assert.Equal(t, "NOT_FOUND: Product not found", appErr.Error())
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	appErr := &AppError{Code: "TEST", Message: "test"}
	assert.Nil(t, appErr.Unwrap())
}

func TestNotFound(t *testing.T) {
	err := NotFound("Product")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "Product not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("get product: %w", err)))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("product", "slug", "red-shirt")
	require.NotNil(t, err)
	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Contains(t, err.Message, "red-shirt")
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("slug is required")
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, "slug is required", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUnauthorizedAndForbidden(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("no token").Status)
	assert.True(t, errors.Is(Unauthorized("x"), ErrUnauthorized))
	assert.Equal(t, http.StatusForbidden, Forbidden("admins only").Status)
	assert.True(t, errors.Is(Forbidden("x"), ErrForbidden))
}

func TestRateLimited(t *testing.T) {
	err := RateLimited()
	assert.Equal(t, "RATE_LIMITED", err.Code)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
}

func TestInternal_HidesCause(t *testing.T) {
	err := Internal(fmt.Errorf("pq: relation does not exist"))
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, InternalMessage, err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.NotContains(t, err.Message, "relation")
	assert.Contains(t, err.Error(), "relation")
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "get product")
	assert.Contains(t, wrapped.Error(), "get product")
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"app error", NotFound("Product"), http.StatusNotFound},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"already exists", ErrAlreadyExists, http.StatusConflict},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("outer: %w", ErrNotFound), http.StatusNotFound},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
