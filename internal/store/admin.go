package store

import (
	"context"

	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/domain"
)

// ProductAPI is the slice of the admin client the product store needs.
type ProductAPI interface {
	ListProducts(ctx context.Context, opts client.ListOptions) (client.Page[domain.RawProduct], error)
	GetProduct(ctx context.Context, id string) (*domain.RawProduct, error)
}

// UserAPI is the slice of the admin client the user store needs.
type UserAPI interface {
	ListUsers(ctx context.Context, opts client.ListOptions) (client.Page[domain.User], error)
}

// ProductStore holds the admin product list and the product detail view.
// Products are normalized for display on arrival.
type ProductStore struct {
	*Store[domain.DisplayProduct]
	Detail *Store[domain.DisplayProduct]

	api  ProductAPI
	opts client.ListOptions
}

// NewProductStore creates a product store reading through api.
func NewProductStore(api ProductAPI, opts client.ListOptions) *ProductStore {
	return &ProductStore{
		Store:  New[domain.DisplayProduct]("Failed to fetch products"),
		Detail: New[domain.DisplayProduct]("Failed to fetch product"),
		api:    api,
		opts:   opts,
	}
}

// FetchProducts loads the configured page of products into the list state.
func (s *ProductStore) FetchProducts(ctx context.Context) {
	s.Fetch(ctx, func(ctx context.Context) ([]domain.DisplayProduct, error) {
		page, err := s.api.ListProducts(ctx, s.opts)
		if err != nil {
			return nil, err
		}
		out := make([]domain.DisplayProduct, 0, len(page.Items))
		for _, raw := range page.Items {
			out = append(out, domain.NormalizeProduct(raw))
		}
		return out, nil
	})
}

// FetchProduct loads one product into the detail state, which holds at
// most one item.
func (s *ProductStore) FetchProduct(ctx context.Context, id string) {
	s.Detail.Fetch(ctx, func(ctx context.Context) ([]domain.DisplayProduct, error) {
		raw, err := s.api.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return []domain.DisplayProduct{domain.NormalizeProduct(*raw)}, nil
	})
}

// UserStore holds the admin customer list.
type UserStore struct {
	*Store[domain.User]

	api  UserAPI
	opts client.ListOptions
}

// NewUserStore creates a user store reading through api.
func NewUserStore(api UserAPI, opts client.ListOptions) *UserStore {
	return &UserStore{
		Store: New[domain.User]("Failed to fetch users"),
		api:   api,
		opts:  opts,
	}
}

// FetchUsers loads the configured page of users.
func (s *UserStore) FetchUsers(ctx context.Context) {
	s.Fetch(ctx, func(ctx context.Context) ([]domain.User, error) {
		page, err := s.api.ListUsers(ctx, s.opts)
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	})
}
