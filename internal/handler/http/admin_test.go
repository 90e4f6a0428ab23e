package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const testUserID = "3f1c2b4a-5d6e-4f70-8a91-b2c3d4e5f607"

func TestAdmin_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/admin/products", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
}

func TestAdmin_RejectsCustomerRole(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/admin/products", "", s.token(t, domain.RoleCustomer))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdmin_ListProductsPaginates(t *testing.T) {
	s := newTestServer(t)
	category := "shirts"
	s.products.On("List", mock.Anything, domain.ProductFilter{Category: &category, Limit: 10, Offset: 10}).
		Return([]domain.Product{*sampleProduct()}, 11, nil)

	rec := s.do(t, http.MethodGet, "/api/admin/products?page=2&per_page=10&category=shirts", "", s.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "11", rec.Header().Get("X-Total-Count"))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestAdmin_GetProduct(t *testing.T) {
	s := newTestServer(t)
	s.products.On("GetByID", mock.Anything, testProductID).Return(sampleProduct(), nil)

	rec := s.do(t, http.MethodGet, "/api/admin/products/"+testProductID, "", s.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, testProductID, body.ID)
}

func TestAdmin_CreateProduct(t *testing.T) {
	s := newTestServer(t)
	s.products.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Slug == "wool-scarf" && p.BasePrice.String() == "25" && len(p.Categories) == 1
	})).Return(nil)
	s.products.On("GetByID", mock.Anything, mock.Anything).Return(nil, apperrors.NotFound("Product"))

	body := `{"name":"Wool Scarf","basePrice":"25.00","categoryIds":["0f5d2c1a-7e3b-4a9c-8d6e-1b2a3c4d5e6f"]}`
	rec := s.do(t, http.MethodPost, "/api/admin/products", body, s.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "wool-scarf", created.Slug)
	assert.NotEmpty(t, created.ID)
}

func TestAdmin_CreateProductValidation(t *testing.T) {
	s := newTestServer(t)

	body := `{"name":"","categoryIds":["not-a-uuid"]}`
	rec := s.do(t, http.MethodPost, "/api/admin/products", body, s.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", errBody.Code)
	assert.Equal(t, "is required", errBody.Fields["name"])
	assert.Equal(t, "is required", errBody.Fields["basePrice"])
}

func TestAdmin_CreateProductDiscountAboveBase(t *testing.T) {
	s := newTestServer(t)

	body := `{"name":"Wool Scarf","basePrice":"25.00","discountedPrice":"30.00"}`
	rec := s.do(t, http.MethodPost, "/api/admin/products", body, s.token(t, domain.RoleAdmin))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}

func TestAdmin_CreateProductPriceOutOfColumnRange(t *testing.T) {
	for _, price := range []string{`"19.999"`, `"10000000000"`} {
		t.Run(price, func(t *testing.T) {
			s := newTestServer(t)

			body := `{"name":"Wool Scarf","basePrice":` + price + `}`
			rec := s.do(t, http.MethodPost, "/api/admin/products", body, s.token(t, domain.RoleAdmin))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
			s.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAdmin_UpdateProductClearsDiscount(t *testing.T) {
	s := newTestServer(t)
	s.products.On("GetByID", mock.Anything, testProductID).Return(sampleProduct(), nil)
	s.products.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.DiscountedPrice == nil && p.Name == "Linen Shirt II"
	})).Return(nil)

	body := `{"name":"Linen Shirt II","clearDiscount":true}`
	rec := s.do(t, http.MethodPut, "/api/admin/products/"+testProductID, body, s.token(t, domain.RoleAdmin))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_DeleteProduct(t *testing.T) {
	s := newTestServer(t)
	s.products.On("GetByID", mock.Anything, testProductID).Return(sampleProduct(), nil)
	s.products.On("Delete", mock.Anything, testProductID).Return(nil)

	rec := s.do(t, http.MethodDelete, "/api/admin/products/"+testProductID, "", s.token(t, domain.RoleAdmin))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdmin_DeleteMissingProduct(t *testing.T) {
	s := newTestServer(t)
	s.products.On("GetByID", mock.Anything, testProductID).Return(nil, apperrors.NotFound("Product"))

	rec := s.do(t, http.MethodDelete, "/api/admin/products/"+testProductID, "", s.token(t, domain.RoleAdmin))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeError(t, rec).Error)
}

func TestAdmin_ListUsers(t *testing.T) {
	s := newTestServer(t)
	users := []domain.User{{ID: testUserID, Email: "ada@example.com", Name: "Ada", Role: domain.RoleCustomer, PasswordHash: "secret-hash"}}
	s.users.On("List", mock.Anything, domain.UserFilter{Limit: 20, Offset: 0}).Return(users, 1, nil)

	rec := s.do(t, http.MethodGet, "/api/admin/users", "", s.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestAdmin_CreateUser(t *testing.T) {
	s := newTestServer(t)
	s.users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "ada@example.com" && u.Role == domain.RoleAdmin && u.PasswordHash != "longenough"
	})).Return(nil)

	body := `{"name":"Ada","email":"Ada@Example.com","password":"longenough","confirmPassword":"longenough","role":"admin"}`
	rec := s.do(t, http.MethodPost, "/api/admin/users", body, s.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.NotContains(t, rec.Body.String(), "longenough")
}

func TestAdmin_CreateUserRejectsUnknownRole(t *testing.T) {
	s := newTestServer(t)

	body := `{"name":"Ada","email":"ada@example.com","password":"longenough","confirmPassword":"longenough","role":"owner"}`
	rec := s.do(t, http.MethodPost, "/api/admin/users", body, s.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "role")
}

func TestAdmin_CreateUserDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.users.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("User", "email", "ada@example.com"))

	body := `{"name":"Ada","email":"ada@example.com","password":"longenough","confirmPassword":"longenough"}`
	rec := s.do(t, http.MethodPost, "/api/admin/users", body, s.token(t, domain.RoleAdmin))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdmin_AddAddress(t *testing.T) {
	s := newTestServer(t)
	s.users.On("AddAddress", mock.Anything, mock.MatchedBy(func(a *domain.Address) bool {
		return a.UserID == testUserID && a.Country == "DE"
	})).Return(nil)

	body := `{"fullName":"Ada Lovelace","line1":"Hauptstr. 1","city":"Berlin","postalCode":"10115","country":"DE"}`
	rec := s.do(t, http.MethodPost, "/api/admin/users/"+testUserID+"/addresses", body, s.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusCreated, rec.Code)
	var address domain.Address
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&address))
	assert.Equal(t, testUserID, address.UserID)
}

func TestAdmin_AddAddressInvalidCountry(t *testing.T) {
	s := newTestServer(t)

	body := `{"fullName":"Ada Lovelace","line1":"Hauptstr. 1","city":"Berlin","postalCode":"10115","country":"Germany"}`
	rec := s.do(t, http.MethodPost, "/api/admin/users/"+testUserID+"/addresses", body, s.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "must be a two-letter country code", decodeError(t, rec).Fields["country"])
}
