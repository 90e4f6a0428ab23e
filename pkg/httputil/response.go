package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// TotalCountHeader carries the unpaginated row count on list responses.
const TotalCountHeader = "X-Total-Count"

// ErrorBody is the JSON body written for every failed request. Error holds
// the human-readable message; clients display it verbatim.
type ErrorBody struct {
	Error     string            `json:"error"`
	Code      string            `json:"code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteList writes a JSON array and the total count header. A nil slice is
// written as [] rather than null.
func WriteList[T any](w http.ResponseWriter, items []T, total int) {
	if items == nil {
		items = []T{}
	}
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	WriteJSON(w, http.StatusOK, items)
}

// WriteErrorMessage writes an error body with an explicit status, code and message.
func WriteErrorMessage(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{
		Error:     message,
		Code:      code,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	})
}

// WriteError writes a standardized error response based on the error type.
// Anything that is not a classified AppError or sentinel becomes a 500 with a
// generic message; the cause is logged through the request-scoped logger
// (falling back to the given logger when no middleware stored one).
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := apperrors.InternalMessage

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		status, code, message = appErr.Status, appErr.Code, appErr.Message
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", "Resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		status, code, message = http.StatusConflict, "ALREADY_EXISTS", "Resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		status, code, message = http.StatusBadRequest, "INVALID_INPUT", err.Error()
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		// Never leak the cause of an unclassified failure.
		message = apperrors.InternalMessage
	}

	WriteErrorMessage(w, r, status, code, message)
}

// WriteValidationError writes a standardized validation error response with
// field-level messages when err comes from the validator package.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{
			Error:     "Request validation failed",
			Code:      "VALIDATION_ERROR",
			Fields:    valErr.Fields(),
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		})
		return
	}

	WriteErrorMessage(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error())
}

// DecodeJSON decodes a size-limited request body into dst. It writes a 400
// and returns false on failure, signaling the caller to return early.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteErrorMessage(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}
	return true
}
