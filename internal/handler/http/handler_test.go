package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) ListByCategory(ctx context.Context, category *string) ([]domain.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) AddAddress(ctx context.Context, address *domain.Address) error {
	return m.Called(ctx, address).Error(0)
}

// =============================================================================
// Test helpers
// =============================================================================

const testProductID = "5b0e7f3c-8a51-4c6e-9d0f-2a7c1e4b9f10"

type testServer struct {
	handler  http.Handler
	products *mockProductRepo
	users    *mockUserRepo
	jwt      *auth.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	l := logger.Discard()
	products := &mockProductRepo{}
	users := &mockUserRepo{}
	jwt := auth.NewJWTManager("test-secret", "storefront-test", time.Hour)

	h := NewRouter(RouterDeps{
		Products:          service.NewProductService(products, event.NoopProducer{}, l),
		Users:             service.NewUserService(users, l),
		Health:            health.NewHandler(),
		TokenValidator:    jwt.Validator(),
		CORS:              middleware.DefaultCORSConfig(),
		PublicCacheMaxAge: time.Minute,
		ServiceName:       "storefront-test",
		Logger:            l,
	})

	t.Cleanup(func() {
		products.AssertExpectations(t)
		users.AssertExpectations(t)
	})
	return &testServer{handler: h, products: products, users: users, jwt: jwt}
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := s.jwt.GenerateAccessToken("7d4f4c52-0a40-4f0e-8d8d-6e0f6f4cb001", "ops@example.com", role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func sampleProduct() *domain.Product {
	discounted := decimal.RequireFromString("39.90")
	p := &domain.Product{
		ID:              testProductID,
		Slug:            "linen-shirt",
		Name:            "Linen Shirt",
		Description:     "Breathable summer shirt",
		BasePrice:       decimal.RequireFromString("49.90"),
		DiscountedPrice: &discounted,
		Variants: []domain.Variant{{
			ID:        "0c8f1d2e-6b7a-4d3c-9e1f-5a4b3c2d1e0f",
			ProductID: testProductID,
			SKU:       "LS-M",
			Name:      "M",
			Inventory: &domain.Inventory{Stock: 3},
		}},
		Categories: []domain.Category{{ID: "c1", Name: "Shirts", Slug: "shirts"}},
	}
	p.EnsureCollections()
	return p
}

func isNilCategory(c *string) bool { return c == nil }

func categoryEquals(want string) any {
	return mock.MatchedBy(func(c *string) bool { return c != nil && *c == want })
}
