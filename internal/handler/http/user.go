package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/schema"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

// UserHandler handles admin HTTP requests for customer endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new admin user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateUserRequest is the sign-up form plus an optional role.
type CreateUserRequest struct {
	schema.SignUp
	Role string `json:"role" validate:"omitempty,oneof=customer admin"`
}

// ListUsers handles GET /api/admin/users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	users, total, err := h.service.ListUsers(r.Context(), domain.UserFilter{Limit: page.PerPage, Offset: page.Offset()})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteList(w, users, total)
}

// GetUser handles GET /api/admin/users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /api/admin/users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

// AddAddress handles POST /api/admin/users/{id}/addresses.
func (h *UserHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req schema.Address
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	address, err := h.service.AddAddress(r.Context(), chi.URLParam(r, "id"), service.AddressInput{
		FullName:   req.FullName,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, address)
}
