package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

const slugKeyPrefix = "product:slug:"

// SlugKey returns the cache key of the product with the given slug.
func SlugKey(slug string) string { return slugKeyPrefix + slug }

// ProductCache is a read-through Redis cache in front of a product
// repository. Only GetBySlug is cached; writes invalidate the affected slugs.
// Redis failures are logged and never fail a request.
type ProductCache struct {
	repository.ProductRepository

	client  redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	lookups *prometheus.CounterVec
}

// NewProductCache wraps next with a Redis cache. reg may be nil.
func NewProductCache(next repository.ProductRepository, client redis.Cmdable, ttl time.Duration, reg prometheus.Registerer, logger *slog.Logger) (*ProductCache, error) {
	c := &ProductCache{
		ProductRepository: next,
		client:            client,
		ttl:               ttl,
		logger:            logger,
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_product_cache_lookups_total",
			Help: "Product slug cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}
	if reg != nil {
		if err := reg.Register(c.lookups); err != nil {
			return nil, fmt.Errorf("register cache metrics: %w", err)
		}
	}
	return c, nil
}

// GetBySlug serves the product from Redis when present, otherwise loads it
// from the wrapped repository and caches it. Misses are not cached.
func (c *ProductCache) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	key := SlugKey(slug)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.Product
		uerr := json.Unmarshal(data, &p)
		if uerr == nil {
			c.lookups.WithLabelValues("hit").Inc()
			return &p, nil
		}
		c.warn(ctx, "discarding undecodable cache entry", key, uerr)
		c.lookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		c.lookups.WithLabelValues("miss").Inc()
	default:
		c.warn(ctx, "redis get failed", key, err)
		c.lookups.WithLabelValues("error").Inc()
	}

	p, err := c.ProductRepository.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err != nil {
		c.warn(ctx, "marshal product for cache", key, err)
	} else if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.warn(ctx, "redis set failed", key, err)
	}
	return p, nil
}

// Update writes through and drops both the previous and the new slug. The
// keys are dropped before and after the write so a read-through racing the
// write cannot leave the old product cached.
func (c *ProductCache) Update(ctx context.Context, p *domain.Product) error {
	slugs := []string{p.Slug}
	if prev, err := c.ProductRepository.GetByID(ctx, p.ID); err == nil && prev.Slug != p.Slug {
		slugs = append(slugs, prev.Slug)
	}

	c.invalidate(ctx, slugs...)
	if err := c.ProductRepository.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, slugs...)
	return nil
}

// Delete removes the product and its cache entry.
func (c *ProductCache) Delete(ctx context.Context, id string) error {
	prev, err := c.ProductRepository.GetByID(ctx, id)
	if err != nil && !apperrors.IsNotFound(err) {
		return err
	}

	if err := c.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	if prev != nil {
		c.invalidate(ctx, prev.Slug)
	}
	return nil
}

func (c *ProductCache) invalidate(ctx context.Context, slugs ...string) {
	keys := make([]string, len(slugs))
	for i, s := range slugs {
		keys[i] = SlugKey(s)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.warn(ctx, "redis invalidate failed", fmt.Sprint(keys), err)
	}
}

func (c *ProductCache) warn(ctx context.Context, msg, key string, err error) {
	attrs := []any{slog.String("key", key)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.WithContext(ctx, c.logger).WarnContext(ctx, msg, attrs...)
}
