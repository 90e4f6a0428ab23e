package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"key": "value"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"key":"value"}`, rec.Body.String())
}

func TestWriteList_NilBecomesEmptyArray(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteList[string](rec, nil, 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(TotalCountHeader))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestWriteError_NotFoundAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/missing", nil)

	WriteError(rec, req, fmt.Errorf("get product: %w", apperrors.NotFound("Product")), logger.Discard())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Product not found", body.Error)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestWriteError_Sentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{apperrors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{apperrors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			WriteError(rec, req, tt.err, logger.Discard())

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeBody(t, rec).Code)
		})
	}
}

func TestWriteError_UnknownErrorIsGenericAndLogged(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter("test", "info", &buf)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/x", nil)
	WriteError(rec, req, fmt.Errorf("dial tcp 10.0.0.1:5432: connection refused"), l)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Internal server error", body.Error)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestWriteError_InternalAppErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter("test", "info", &buf)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	WriteError(rec, req, apperrors.Internal(fmt.Errorf("scan failed")), l)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "scan failed")
}

func TestWriteError_PrefersRequestScopedLogger(t *testing.T) {
	var scoped, fallback bytes.Buffer
	ctx := logger.NewContext(context.Background(), logger.NewWithWriter("scoped", "info", &scoped))
	ctx = logger.WithCorrelationID(ctx, "corr-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	WriteError(rec, req, fmt.Errorf("boom"), slog.New(slog.NewJSONHandler(&fallback, nil)))

	assert.Contains(t, scoped.String(), "boom")
	assert.Empty(t, fallback.String())
	assert.Equal(t, "corr-1", decodeBody(t, rec).RequestID)
}

type payload struct {
	Email string `json:"email" validate:"required,email"`
}

func TestWriteValidationError_Fields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	WriteValidationError(rec, req, validator.Validate(payload{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "is required", body.Fields["email"])
}

func TestWriteValidationError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	WriteValidationError(rec, req, fmt.Errorf("bad shape"))

	body := decodeBody(t, rec)
	assert.Equal(t, "INVALID_INPUT", body.Code)
	assert.Equal(t, "bad shape", body.Error)
}

func TestDecodeJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))

	var dst payload
	require.True(t, DecodeJSON(rec, req, &dst))
	assert.Equal(t, "a@b.co", dst.Email)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.False(t, DecodeJSON(rec, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
