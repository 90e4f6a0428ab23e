package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// RouterDeps collects everything NewRouter mounts. Optional fields may be
// left nil.
type RouterDeps struct {
	Products       *service.ProductService
	Users          *service.UserService
	Health         *health.Handler
	HTTPMetrics    *middleware.HTTPMetrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	TokenValidator middleware.TokenValidator
	CORS           middleware.CORSConfig

	// PublicCacheMaxAge sets Cache-Control on catalog reads; zero disables it.
	PublicCacheMaxAge time.Duration
	ServiceName       string
	Logger            *slog.Logger
}

// NewRouter creates a chi router with the catalog, form and admin routes.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(deps.ServiceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	catalog := NewCatalogHandler(deps.Products, logger)
	forms := NewFormHandler(logger)
	products := NewProductHandler(deps.Products, logger)
	users := NewUserHandler(deps.Users, logger)

	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}

		r.Group(func(r chi.Router) {
			if deps.PublicCacheMaxAge > 0 {
				r.Use(middleware.CacheControl(deps.PublicCacheMaxAge))
			}
			r.Get("/products", catalog.ListProducts)
			r.Get("/products/{slug}", catalog.GetProductBySlug)
			r.Get("/categories/{category}/products", catalog.ListCategoryProducts)
		})

		r.Get("/forms", forms.ListForms)
		r.Post("/forms/{form}/validate", forms.Validate)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(deps.TokenValidator))
			r.Use(middleware.RequireRole("admin"))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", products.ListProducts)
				r.Post("/", products.CreateProduct)
				r.Get("/{id}", products.GetProduct)
				r.Put("/{id}", products.UpdateProduct)
				r.Delete("/{id}", products.DeleteProduct)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", users.ListUsers)
				r.Post("/", users.CreateUser)
				r.Get("/{id}", users.GetUser)
				r.Post("/{id}/addresses", users.AddAddress)
			})
		})
	})

	return r
}
