// Command seed populates the storefront database with a demo catalog, an
// admin account and prints an admin bearer token for storectl.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/slug"
)

const (
	adminEmail    = "admin@storefront.test"
	adminPassword = "SecurePass123"
	tokenTTL      = 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.NewWithOptions("seed", logger.Options{Level: cfg.LogLevel, Format: "text"}, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	categoryIDs, err := seedCategoryRows(ctx, pool)
	if err != nil {
		return err
	}
	log.Info("categories seeded", slog.Int("count", len(categoryIDs)))

	products := service.NewProductService(postgres.NewProductRepository(pool), event.NoopProducer{}, log)
	created := 0
	for _, def := range seedProducts {
		if _, err := products.GetProductBySlug(ctx, slug.Generate(def.name)); err == nil {
			log.Info("product already seeded", slog.String("name", def.name))
			continue
		}
		p, err := products.CreateProduct(ctx, productInput(def, categoryIDs))
		if err != nil {
			log.Warn("create product", slog.String("name", def.name), slog.String("error", err.Error()))
			continue
		}
		if err := seedRelations(ctx, pool, p, def); err != nil {
			return fmt.Errorf("seed relations for %s: %w", p.Slug, err)
		}
		created++
		log.Info("product seeded", slog.String("slug", p.Slug), slog.String("id", p.ID))
	}

	admin, err := ensureAdmin(ctx, pool, log)
	if err != nil {
		return err
	}

	jwt := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, tokenTTL)
	token, err := jwt.GenerateAccessToken(admin.ID, admin.Email, admin.Role)
	if err != nil {
		return fmt.Errorf("generate admin token: %w", err)
	}

	log.Info("seed complete", slog.Int("products", created), slog.String("admin", admin.Email))
	fmt.Printf("export STORECTL_TOKEN=%s\n", token)
	return nil
}

func productInput(def productDef, categoryIDs map[string]string) service.CreateProductInput {
	base, discount := def.prices()
	input := service.CreateProductInput{
		Name:            def.name,
		Description:     def.description,
		BasePrice:       base,
		DiscountedPrice: discount,
	}
	if id, ok := categoryIDs[def.categorySlug]; ok {
		input.CategoryIDs = []string{id}
	}
	return input
}

func seedCategoryRows(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	ids := make(map[string]string, len(seedCategories))
	for _, c := range seedCategories {
		var id string
		err := pool.QueryRow(ctx,
			`INSERT INTO categories (id, name, slug)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id::text`,
			uuid.New().String(), c.name, c.slug,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("seed category %s: %w", c.slug, err)
		}
		ids[c.slug] = id
	}
	return ids, nil
}

// seedRelations writes variants, attributes, stock and images for a freshly
// created product in one batch. There are no admin endpoints for these.
func seedRelations(ctx context.Context, pool *pgxpool.Pool, p *domain.Product, def productDef) error {
	batch := &pgx.Batch{}
	total := 0

	for _, v := range variantsFor(p.Slug, def.categorySlug) {
		variantID := uuid.New().String()
		batch.Queue(`INSERT INTO variants (id, product_id, sku, name) VALUES ($1, $2, $3, $4)`,
			variantID, p.ID, v.sku, v.name)
		for name, value := range v.attributes {
			batch.Queue(`INSERT INTO variant_attributes (id, variant_id, name, value) VALUES ($1, $2, $3, $4)`,
				uuid.New().String(), variantID, name, value)
		}
		batch.Queue(`INSERT INTO inventories (id, product_id, variant_id, stock) VALUES ($1, $2, $3, $4)`,
			uuid.New().String(), p.ID, variantID, v.stock)
		total += v.stock
	}
	batch.Queue(`INSERT INTO inventories (id, product_id, stock) VALUES ($1, $2, $3)`,
		uuid.New().String(), p.ID, total)

	for i := range 3 {
		batch.Queue(`INSERT INTO images (id, product_id, url, alt_text, sort_order, is_cover)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), p.ID,
			fmt.Sprintf("https://picsum.photos/seed/%s-%d/800/800", p.Slug, i+1),
			fmt.Sprintf("%s - Image %d", p.Name, i+1),
			i, i == 0,
		)
	}

	return pool.SendBatch(ctx, batch).Close()
}

// ensureAdmin creates the demo admin account, or loads it when a previous
// run already created it.
func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) (*domain.User, error) {
	users := service.NewUserService(postgres.NewUserRepository(pool), log)
	admin, err := users.CreateUser(ctx, service.CreateUserInput{
		Name:     "Store Admin",
		Email:    adminEmail,
		Password: adminPassword,
		Role:     domain.RoleAdmin,
	})
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, apperrors.ErrAlreadyExists) {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	admin = &domain.User{Email: adminEmail, Role: domain.RoleAdmin}
	if err := pool.QueryRow(ctx, `SELECT id::text, name FROM users WHERE email = $1`, adminEmail).
		Scan(&admin.ID, &admin.Name); err != nil {
		return nil, fmt.Errorf("load existing admin: %w", err)
	}
	return admin, nil
}
