package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// errorBody mirrors httputil.ErrorBody.
type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// returns an *apperrors.AppError carrying the server's message verbatim,
// so callers can show it to a user. Unstructured bodies fall back to the
// HTTP status text.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read error body (status %d): %w", resp.StatusCode, err)
	}

	var body errorBody
	if json.Unmarshal(raw, &body) != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
		if body.Error == "" || len(body.Error) > 200 {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	if body.Code == "" {
		body.Code = codeForStatus(resp.StatusCode)
	}

	return &apperrors.AppError{
		Code:    body.Code,
		Message: body.Error,
		Status:  resp.StatusCode,
		Err:     sentinelForStatus(resp.StatusCode),
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_INPUT"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "ALREADY_EXISTS"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	}
	if status >= 500 {
		return "INTERNAL_ERROR"
	}
	return fmt.Sprintf("HTTP_%d", status)
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusConflict:
		return apperrors.ErrAlreadyExists
	case http.StatusTooManyRequests:
		return apperrors.ErrRateLimited
	case http.StatusServiceUnavailable:
		return apperrors.ErrServiceUnavail
	}
	if status >= 500 {
		return apperrors.ErrInternal
	}
	return nil
}
