package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/schema"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// FormHandler checks client payloads against the named form schemas.
type FormHandler struct {
	logger *slog.Logger
}

// NewFormHandler creates a new form validation handler.
func NewFormHandler(logger *slog.Logger) *FormHandler {
	return &FormHandler{logger: logger}
}

// Validate handles POST /api/forms/{form}/validate. A valid payload yields
// 204; rule violations yield 400 VALIDATION_ERROR with per-field messages.
func (h *FormHandler) Validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	err := schema.Check(chi.URLParam(r, "form"), r.Body)
	var valErr *validator.ValidationError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &valErr):
		httputil.WriteValidationError(w, r, err)
	default:
		httputil.WriteError(w, r, err, h.logger)
	}
}

// ListForms handles GET /api/forms.
func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	names := schema.Names()
	httputil.WriteList(w, names, len(names))
}
