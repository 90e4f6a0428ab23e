// Package client is the admin API client used by storectl and the client
// state stores.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// Config holds the admin API location and credentials.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// ListOptions selects one page of a listing. Zero values use server defaults.
type ListOptions struct {
	Page     int
	PerPage  int
	Category string
}

// Page is one page of a listing plus the server's total count.
type Page[T any] struct {
	Items []T
	Total int
}

// Client calls the storefront HTTP API. Failed calls are never retried; an
// open circuit breaker fails fast while the backend is down.
type Client struct {
	baseURL string
	token   string
	doer    httpclient.Doer
}

// New creates a client over doer.
func New(baseURL, token string, doer httpclient.Doer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		doer:    doer,
	}
}

// NewDefault builds the production transport: a pooled HTTP client with
// retries disabled behind a circuit breaker. metrics may be nil.
func NewDefault(cfg Config, metrics *httpclient.BreakerMetrics, logger *slog.Logger) *Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.MaxRetries = 0
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("storefront-api"),
		metrics,
		logger,
	)
	return New(cfg.BaseURL, cfg.Token, breaker)
}

// ListProducts fetches one page of products from the admin API.
func (c *Client) ListProducts(ctx context.Context, opts ListOptions) (Page[domain.RawProduct], error) {
	var items []domain.RawProduct
	total, err := c.get(ctx, "/api/admin/products", opts.query(), true, &items)
	if err != nil {
		return Page[domain.RawProduct]{}, fmt.Errorf("list products: %w", err)
	}
	return Page[domain.RawProduct]{Items: items, Total: total}, nil
}

// GetProduct fetches a single product by id from the admin API.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.RawProduct, error) {
	var p domain.RawProduct
	if _, err := c.get(ctx, "/api/admin/products/"+url.PathEscape(id), nil, true, &p); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

// ProductBySlug fetches a product from the public catalog.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (*domain.RawProduct, error) {
	var p domain.RawProduct
	if _, err := c.get(ctx, "/api/products/"+url.PathEscape(slug), nil, false, &p); err != nil {
		return nil, fmt.Errorf("get product %s: %w", slug, err)
	}
	return &p, nil
}

// ListUsers fetches one page of customers from the admin API.
func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (Page[domain.User], error) {
	var items []domain.User
	total, err := c.get(ctx, "/api/admin/users", opts.query(), true, &items)
	if err != nil {
		return Page[domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return Page[domain.User]{Items: items, Total: total}, nil
}

// get decodes a 2xx JSON body into dst and returns the X-Total-Count
// header, or zero when absent.
func (c *Client) get(ctx context.Context, path string, query url.Values, admin bool, dst any) (int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if admin {
		if c.token == "" {
			return 0, apperrors.Unauthorized("no API token configured")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.doer.Do(ctx, req)
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		return 0, apperrors.ServiceUnavailable("storefront API is unavailable, try again shortly")
	}
	if err != nil {
		return 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, httpclient.ParseResponseError(resp)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	total, _ := strconv.Atoi(resp.Header.Get("X-Total-Count"))
	return total, nil
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	return q
}
