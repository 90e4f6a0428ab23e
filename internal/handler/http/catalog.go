package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
)

// CatalogHandler serves the public, read-only product catalog.
type CatalogHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.ProductService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// GetProductBySlug handles GET /api/products/{slug}.
func (h *CatalogHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /api/products with an optional ?category= slug
// or id.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var category *string
	if r.URL.Query().Has("category") {
		v := r.URL.Query().Get("category")
		category = &v
	}
	h.list(w, r, category)
}

// ListCategoryProducts handles GET /api/categories/{category}/products.
func (h *CatalogHandler) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	h.list(w, r, &category)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request, category *string) {
	products, err := h.service.ListProductsByCategory(r.Context(), category)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteList(w, products, len(products))
}
