package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// ProductRepository defines the interface for product persistence operations.
// Every product returned carries its full relation fan-out.
type ProductRepository interface {
	// GetBySlug retrieves a product by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// ListByCategory returns every product, or only those attached to a
	// category whose slug or id equals category, newest first.
	ListByCategory(ctx context.Context, category *string) ([]domain.Product, error)

	// List returns one page of products matching filter and the total count.
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)

	// Create inserts a product and its category links.
	Create(ctx context.Context, product *domain.Product) error

	// Update rewrites a product's columns and category links.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product and, by cascade, its relations.
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for customer persistence operations.
type UserRepository interface {
	// List returns one page of users with their addresses and the total count.
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error)

	// GetByID retrieves a user and their addresses.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// Create inserts a user. A duplicate email yields an AlreadyExists error.
	Create(ctx context.Context, user *domain.User) error

	// AddAddress stores a new address for an existing user.
	AddAddress(ctx context.Context, address *domain.Address) error
}
