package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/postgres"
	rediscache "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

// ServiceName labels logs, metrics and spans emitted by the server.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.Init(ctx, cfg.Tracing(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if cfg.AutoMigrate {
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := database.RegisterPoolMetrics(registry, pool, ServiceName); err != nil {
		pool.Close()
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		tracerShutdown: tracerShutdown,
	}

	productRepo, err := a.productRepository(ctx, registry)
	if err != nil {
		pool.Close()
		return nil, err
	}
	userRepo := postgres.NewUserRepository(pool)

	// Kafka is optional; without brokers events are dropped.
	var events service.ProductEvents = event.NoopProducer{}
	if brokers := BrokerList(cfg.KafkaBrokers); len(brokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(brokers), logger)
		events = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", brokers))
	} else {
		logger.Info("no kafka brokers configured; product events disabled")
	}

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)
	productService := service.NewProductService(productRepo, events, logger)
	userService := service.NewUserService(userRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if a.rdb != nil {
		healthHandler.RegisterOptional("redis", func(ctx context.Context) error {
			return a.rdb.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
	}

	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitTTL, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		Products:          productService,
		Users:             userService,
		Health:            healthHandler,
		HTTPMetrics:       middleware.NewHTTPMetrics(registry, ServiceName),
		MetricsHandler:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		RateLimiter:       a.limiter,
		TokenValidator:    jwtManager.Validator(),
		CORS:              cors,
		PublicCacheMaxAge: cfg.PublicCacheMaxAge,
		ServiceName:       ServiceName,
		Logger:            logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// productRepository returns the Postgres product store, wrapped in the Redis
// read-through cache when caching is enabled and Redis answers.
func (a *App) productRepository(ctx context.Context, reg prometheus.Registerer) (repository.ProductRepository, error) {
	var repo repository.ProductRepository = postgres.NewProductRepository(a.pool)
	if !a.cfg.CacheEnabled {
		return repo, nil
	}

	rdb, err := database.NewRedisClient(ctx, a.cfg.Redis())
	if err != nil {
		a.logger.Warn("redis unavailable; product cache disabled",
			slog.String("addr", a.cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		return repo, nil
	}

	cache, err := rediscache.NewProductCache(repo, rdb, a.cfg.CacheTTL, reg, a.logger)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("create product cache: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("product cache enabled",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Duration("ttl", a.cfg.CacheTTL),
	)
	return cache, nil
}

// BrokerList drops blank entries, so KAFKA_BROKERS="" disables Kafka.
func BrokerList(brokers []string) []string {
	out := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go a.limiter.Run(done)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown drains HTTP requests, then flushes spans and closes Kafka, Redis
// and PostgreSQL in that order.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.HTTPShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
