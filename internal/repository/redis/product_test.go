package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// fakeRepo counts calls and serves products from a map keyed by slug.
type fakeRepo struct {
	bySlug   map[string]*domain.Product
	calls    map[string]int
	failErr  error
	onUpdate func()
}

func newFakeRepo(products ...*domain.Product) *fakeRepo {
	r := &fakeRepo{bySlug: map[string]*domain.Product{}, calls: map[string]int{}}
	for _, p := range products {
		r.bySlug[p.Slug] = p
	}
	return r
}

func (r *fakeRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.calls["GetBySlug"]++
	if r.failErr != nil {
		return nil, r.failErr
	}
	p, ok := r.bySlug[slug]
	if !ok {
		return nil, apperrors.NotFound("Product")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.calls["GetByID"]++
	for _, p := range r.bySlug {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("Product")
}

func (r *fakeRepo) ListByCategory(context.Context, *string) ([]domain.Product, error) {
	r.calls["ListByCategory"]++
	return []domain.Product{}, nil
}

func (r *fakeRepo) List(context.Context, domain.ProductFilter) ([]domain.Product, int, error) {
	r.calls["List"]++
	return []domain.Product{}, 0, nil
}

func (r *fakeRepo) Create(_ context.Context, p *domain.Product) error {
	r.calls["Create"]++
	r.bySlug[p.Slug] = p
	return nil
}

func (r *fakeRepo) Update(_ context.Context, p *domain.Product) error {
	r.calls["Update"]++
	if r.onUpdate != nil {
		r.onUpdate()
	}
	for slug, existing := range r.bySlug {
		if existing.ID == p.ID {
			delete(r.bySlug, slug)
		}
	}
	r.bySlug[p.Slug] = p
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.calls["Delete"]++
	for slug, existing := range r.bySlug {
		if existing.ID == id {
			delete(r.bySlug, slug)
			return nil
		}
	}
	return apperrors.NotFound("Product")
}

func tee() *domain.Product {
	p := &domain.Product{
		ID:        "prod-1",
		Slug:      "basic-tee",
		Name:      "Basic Tee",
		BasePrice: decimal.RequireFromString("19.99"),
		CreatedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	p.EnsureCollections()
	return p
}

func setupCache(t *testing.T, repo *fakeRepo) (*ProductCache, *miniredis.Miniredis, *prometheus.Registry) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	reg := prometheus.NewRegistry()
	cache, err := NewProductCache(repo, client, 5*time.Minute, reg, logger.Discard())
	require.NoError(t, err)
	return cache, mr, reg
}

func TestProductCache_MissThenHit(t *testing.T) {
	repo := newFakeRepo(tee())
	cache, mr, _ := setupCache(t, repo)
	ctx := context.Background()

	first, err := cache.GetBySlug(ctx, "basic-tee")
	require.NoError(t, err)
	assert.True(t, mr.Exists(SlugKey("basic-tee")))
	assert.Equal(t, 5*time.Minute, mr.TTL(SlugKey("basic-tee")))

	second, err := cache.GetBySlug(ctx, "basic-tee")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls["GetBySlug"])
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, first.BasePrice.Equal(second.BasePrice))
	assert.Equal(t, 1.0, testutil.ToFloat64(cache.lookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cache.lookups.WithLabelValues("miss")))
}

func TestProductCache_NotFoundIsNotCached(t *testing.T) {
	repo := newFakeRepo()
	cache, mr, _ := setupCache(t, repo)

	_, err := cache.GetBySlug(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, mr.Exists(SlugKey("missing")))

	_, _ = cache.GetBySlug(context.Background(), "missing")
	assert.Equal(t, 2, repo.calls["GetBySlug"])
}

func TestProductCache_RepositoryErrorPropagates(t *testing.T) {
	repo := newFakeRepo(tee())
	repo.failErr = errors.New("db down")
	cache, _, _ := setupCache(t, repo)

	_, err := cache.GetBySlug(context.Background(), "basic-tee")
	assert.EqualError(t, err, "db down")
}

func TestProductCache_RedisDownFallsThrough(t *testing.T) {
	repo := newFakeRepo(tee())
	cache, mr, _ := setupCache(t, repo)
	mr.Close()

	p, err := cache.GetBySlug(context.Background(), "basic-tee")
	require.NoError(t, err)
	assert.Equal(t, "Basic Tee", p.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(cache.lookups.WithLabelValues("error")))
}

func TestProductCache_CorruptEntryIsReplaced(t *testing.T) {
	repo := newFakeRepo(tee())
	cache, mr, _ := setupCache(t, repo)
	require.NoError(t, mr.Set(SlugKey("basic-tee"), "{not json"))

	p, err := cache.GetBySlug(context.Background(), "basic-tee")
	require.NoError(t, err)
	assert.Equal(t, "Basic Tee", p.Name)

	raw, err := mr.Get(SlugKey("basic-tee"))
	require.NoError(t, err)
	var cached domain.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "prod-1", cached.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(cache.lookups.WithLabelValues("error")))
}

func TestProductCache_UpdateInvalidatesOldAndNewSlug(t *testing.T) {
	repo := newFakeRepo(tee())
	cache, mr, _ := setupCache(t, repo)
	ctx := context.Background()

	_, err := cache.GetBySlug(ctx, "basic-tee")
	require.NoError(t, err)
	require.NoError(t, mr.Set(SlugKey("classic-tee"), "stale"))

	renamed := tee()
	renamed.Slug = "classic-tee"
	require.NoError(t, cache.Update(ctx, renamed))

	assert.False(t, mr.Exists(SlugKey("basic-tee")))
	assert.False(t, mr.Exists(SlugKey("classic-tee")))
}

func TestProductCache_UpdateDropsEntryCachedDuringWrite(t *testing.T) {
	repo := newFakeRepo(tee())
	cache, mr, _ := setupCache(t, repo)
	ctx := context.Background()

	// A read lands while the write is in flight and caches the old row.
	repo.onUpdate = func() {
		_, err := cache.GetBySlug(ctx, "basic-tee")
		require.NoError(t, err)
		require.True(t, mr.Exists(SlugKey("basic-tee")))
	}

	updated := tee()
	updated.Name = "Basic Tee v2"
	require.NoError(t, cache.Update(ctx, updated))
	assert.False(t, mr.Exists(SlugKey("basic-tee")))

	p, err := cache.GetBySlug(ctx, "basic-tee")
	require.NoError(t, err)
	assert.Equal(t, "Basic Tee v2", p.Name)
}

func TestProductCache_Delete(t *testing.T) {
	repo := newFakeRepo(tee())
	cache, mr, _ := setupCache(t, repo)
	ctx := context.Background()

	_, err := cache.GetBySlug(ctx, "basic-tee")
	require.NoError(t, err)

	require.NoError(t, cache.Delete(ctx, "prod-1"))
	assert.False(t, mr.Exists(SlugKey("basic-tee")))

	assert.True(t, apperrors.IsNotFound(cache.Delete(ctx, "prod-1")))
}

func TestProductCache_PassThrough(t *testing.T) {
	repo := newFakeRepo(tee())
	cache, _, _ := setupCache(t, repo)

	_, err := cache.ListByCategory(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls["ListByCategory"])
}

func TestNewProductCache_DuplicateRegistration(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	reg := prometheus.NewRegistry()
	_, err := NewProductCache(newFakeRepo(), client, time.Minute, reg, logger.Discard())
	require.NoError(t, err)
	_, err = NewProductCache(newFakeRepo(), client, time.Minute, reg, logger.Discard())
	assert.Error(t, err)
}
