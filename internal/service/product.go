package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/slug"
)

// maxSlugAttempts bounds the numeric suffixes tried when a generated slug
// collides with an existing product.
const maxSlugAttempts = 5

// ProductEvents publishes product domain events.
type ProductEvents interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductUpdated(ctx context.Context, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, product *domain.Product) error
}

// ProductService implements the catalog read path and admin product writes.
type ProductService struct {
	repo   repository.ProductRepository
	events ProductEvents
	logger *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, events ProductEvents, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name            string
	Description     string
	BasePrice       decimal.Decimal
	DiscountedPrice *decimal.Decimal
	CategoryIDs     []string
}

// UpdateProductInput holds the parameters for a partial product update. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	Name            *string
	Slug            *string
	Description     *string
	BasePrice       *decimal.Decimal
	DiscountedPrice *decimal.Decimal
	ClearDiscount   bool
	CategoryIDs     *[]string
}

// GetProductBySlug returns the product with the given slug and its full
// relation fan-out.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, apperrors.InvalidInput("slug is required")
	}
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// ListProductsByCategory returns every product when category is nil or
// empty, otherwise the products in the category whose slug or id matches.
// The result is never nil.
func (s *ProductService) ListProductsByCategory(ctx context.Context, category *string) ([]domain.Product, error) {
	if category != nil && strings.TrimSpace(*category) == "" {
		category = nil
	}
	products, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// ListProducts returns one page of products for the admin listing.
func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, total, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// CreateProduct creates a product with a slug derived from its name. A
// colliding slug is retried with a numeric suffix.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if err := validatePrices(input.BasePrice, input.DiscountedPrice); err != nil {
		return nil, err
	}
	base := slug.Generate(name)
	if base == "" {
		return nil, apperrors.InvalidInput("product name must contain letters or digits")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:              uuid.New().String(),
		Name:            name,
		Description:     input.Description,
		BasePrice:       input.BasePrice,
		DiscountedPrice: input.DiscountedPrice,
		Categories:      categoryRefs(input.CategoryIDs),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var err error
	for n := 1; n <= maxSlugAttempts; n++ {
		product.Slug = slug.WithSuffix(base, n)
		err = s.repo.Create(ctx, product)
		if !errors.Is(err, apperrors.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	created := s.reload(ctx, product)
	if err := s.events.PublishProductCreated(ctx, created); err != nil {
		s.logPublishError(ctx, "product.created", created.ID, err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", created.ID),
		slog.String("slug", created.Slug),
	)
	return created, nil
}

// UpdateProduct applies a partial update to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		product.Name = name
	}
	if input.Slug != nil {
		if !slug.Valid(*input.Slug) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid slug %q", *input.Slug))
		}
		product.Slug = *input.Slug
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.BasePrice != nil {
		product.BasePrice = *input.BasePrice
	}
	switch {
	case input.ClearDiscount:
		product.DiscountedPrice = nil
	case input.DiscountedPrice != nil:
		product.DiscountedPrice = input.DiscountedPrice
	}
	if input.CategoryIDs != nil {
		product.Categories = categoryRefs(*input.CategoryIDs)
	}
	if err := validatePrices(product.BasePrice, product.DiscountedPrice); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	updated := s.reload(ctx, product)
	if err := s.events.PublishProductUpdated(ctx, updated); err != nil {
		s.logPublishError(ctx, "product.updated", updated.ID, err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", updated.ID),
		slog.String("slug", updated.Slug),
	)
	return updated, nil
}

// DeleteProduct removes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.events.PublishProductDeleted(ctx, product); err != nil {
		s.logPublishError(ctx, "product.deleted", id, err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
		slog.String("slug", product.Slug),
	)
	return nil
}

// reload fetches the stored product so responses and events carry the
// related category names. The written value is returned if the read fails.
func (s *ProductService) reload(ctx context.Context, written *domain.Product) *domain.Product {
	stored, err := s.repo.GetByID(ctx, written.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "reload product after write",
			slog.String("product_id", written.ID),
			slog.String("error", err.Error()),
		)
		written.EnsureCollections()
		return written
	}
	return stored
}

func (s *ProductService) logPublishError(ctx context.Context, eventType, productID string, err error) {
	// Publishing is best effort; the write already succeeded.
	s.logger.ErrorContext(ctx, "failed to publish "+eventType+" event",
		slog.String("product_id", productID),
		slog.String("error", err.Error()),
	)
}

// maxPrice is the first value that no longer fits NUMERIC(12, 2).
var maxPrice = decimal.New(1, 10)

func validatePrices(base decimal.Decimal, discounted *decimal.Decimal) error {
	if err := validatePrice("base price", base); err != nil {
		return err
	}
	if discounted == nil {
		return nil
	}
	if err := validatePrice("discounted price", *discounted); err != nil {
		return err
	}
	if discounted.GreaterThan(base) {
		return apperrors.InvalidInput("discounted price must not exceed base price")
	}
	return nil
}

func validatePrice(field string, d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return apperrors.InvalidInput(field + " must not be negative")
	case !d.Equal(d.Round(2)):
		return apperrors.InvalidInput(field + " must have at most 2 decimal places")
	case d.GreaterThanOrEqual(maxPrice):
		return apperrors.InvalidInput(field + " must be less than " + maxPrice.String())
	}
	return nil
}

func categoryRefs(ids []string) []domain.Category {
	seen := make(map[string]bool, len(ids))
	refs := make([]domain.Category, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, domain.Category{ID: id})
	}
	return refs
}
