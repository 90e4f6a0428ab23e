package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

// ProductHandler handles admin HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new admin product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
// Prices accept a JSON string or number.
type CreateProductRequest struct {
	Name            string           `json:"name" validate:"required,max=200"`
	Description     string           `json:"description" validate:"max=5000"`
	BasePrice       *decimal.Decimal `json:"basePrice" validate:"required"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice"`
	CategoryIDs     []string         `json:"categoryIds" validate:"omitempty,dive,uuid"`
}

// UpdateProductRequest is the JSON request body for updating a product.
// Absent fields are left unchanged; clearDiscount removes the discount.
type UpdateProductRequest struct {
	Name            *string          `json:"name" validate:"omitempty,max=200"`
	Slug            *string          `json:"slug" validate:"omitempty,max=200"`
	Description     *string          `json:"description" validate:"omitempty,max=5000"`
	BasePrice       *decimal.Decimal `json:"basePrice"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice"`
	ClearDiscount   bool             `json:"clearDiscount"`
	CategoryIDs     *[]string        `json:"categoryIds" validate:"omitempty,dive,uuid"`
}

// --- Handlers ---

// ListProducts handles GET /api/admin/products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	filter := domain.ProductFilter{Limit: page.PerPage, Offset: page.Offset()}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteList(w, products, total)
}

// GetProduct handles GET /api/admin/products/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/admin/products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), service.CreateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		BasePrice:       *req.BasePrice,
		DiscountedPrice: req.DiscountedPrice,
		CategoryIDs:     req.CategoryIDs,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/admin/products/{id}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), service.UpdateProductInput{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		BasePrice:       req.BasePrice,
		DiscountedPrice: req.DiscountedPrice,
		ClearDiscount:   req.ClearDiscount,
		CategoryIDs:     req.CategoryIDs,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/admin/products/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
