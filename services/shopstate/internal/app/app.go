package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maysa/storefront/pkg/database"
	"github.com/maysa/storefront/pkg/health"
	"github.com/maysa/storefront/pkg/httpclient"
	pkgkafka "github.com/maysa/storefront/pkg/kafka"
	"github.com/maysa/storefront/pkg/tracing"
	"github.com/maysa/storefront/services/shopstate/internal/catalog"
	"github.com/maysa/storefront/services/shopstate/internal/config"
	"github.com/maysa/storefront/services/shopstate/internal/event"
	handler "github.com/maysa/storefront/services/shopstate/internal/handler/http"
	"github.com/maysa/storefront/services/shopstate/internal/repository"
	"github.com/maysa/storefront/services/shopstate/internal/repository/memory"
	pgrepo "github.com/maysa/storefront/services/shopstate/internal/repository/postgres"
	redisrepo "github.com/maysa/storefront/services/shopstate/internal/repository/redis"
	"github.com/maysa/storefront/services/shopstate/internal/service"
)

// ServiceName tags logs, traces and the catalog breaker.
const ServiceName = "shopstate-service"

type closer struct {
	name  string
	close func(ctx context.Context) error
}

// App wires together all dependencies and runs the shopstate service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	closers    []closer
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	healthHandler := health.NewHandler()

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.closers = append(a.closers, closer{name: "tracer", close: shutdownTracer})

	slots, err := a.newSlotStore(ctx)
	if err != nil {
		a.closeAll(context.Background())
		return nil, err
	}
	healthHandler.Register("slots", slots.Ping)

	// Catalog client behind retries and a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.CatalogTimeout()
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
	)
	catalogClient := catalog.NewClient(breaker, cfg.CatalogBaseURL, logger)

	var notifier service.Notifier
	if cfg.EventsEnabled {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.closers = append(a.closers, closer{name: "kafka producer", close: func(context.Context) error { return producer.Close() }})
		healthHandler.RegisterOptional("kafka", producer.Ping)
		notifier = event.NewNotifier(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	shopService := service.NewShopService(slots, catalogClient, notifier, logger, service.Options{
		RecentlyViewedLimit: cfg.RecentlyViewedLimit,
		ShareOrigin:         cfg.ShareOrigin,
	})

	router := handler.NewRouter(shopService, healthHandler, logger, handler.RouterConfig{
		RequestTimeout: 30 * time.Second,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// newSlotStore connects the configured storage backend.
func (a *App) newSlotStore(ctx context.Context) (repository.SlotStore, error) {
	cfg := a.cfg
	switch cfg.StorageBackend {
	case config.BackendRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Host = cfg.RedisHost
		redisCfg.Port = cfg.RedisPort
		redisCfg.Password = cfg.RedisPassword
		redisCfg.DB = cfg.RedisDB

		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, closer{name: "redis", close: func(context.Context) error { return rdb.Close() }})
		a.logger.Info("connected to Redis",
			slog.String("addr", redisCfg.Addr()),
			slog.Int("db", cfg.RedisDB),
			slog.Duration("slot_ttl", cfg.SlotTTL()),
		)
		return redisrepo.NewSlotStore(rdb, cfg.RedisPrefix, cfg.SlotTTL()), nil

	case config.BackendPostgres:
		pgCfg := database.DefaultPostgresConfig()
		pgCfg.Host = cfg.PostgresHost
		pgCfg.Port = cfg.PostgresPort
		pgCfg.User = cfg.PostgresUser
		pgCfg.Password = cfg.PostgresPassword
		pgCfg.DBName = cfg.PostgresDB
		pgCfg.SSLMode = cfg.PostgresSSLMode

		pool, err := database.NewPostgresPool(ctx, pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, closer{name: "postgres", close: func(context.Context) error { pool.Close(); return nil }})

		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, ServiceName); err != nil {
			a.logger.Warn("postgres pool metrics not registered", slog.String("error", err.Error()))
		}
		if err := database.RunMigrations(ctx, pool, pgrepo.Migrations(), a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if cfg.SlotTTLHours > 0 {
			a.logger.Warn("SLOT_TTL_HOURS is ignored by the postgres backend")
		}
		return pgrepo.NewSlotStore(pool), nil

	case config.BackendMemory:
		a.logger.Warn("using in-memory slot storage; state is lost on restart")
		return memory.NewSlotStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// Handler returns the HTTP handler of the service.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("storage", a.cfg.StorageBackend),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeAll(context.Background())
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeAll(shutdownCtx)

	a.logger.Info("application shutdown complete")
	return nil
}

// closeAll releases resources in reverse order of acquisition.
func (a *App) closeAll(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(ctx); err != nil {
			a.logger.Error(c.name+" close error", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}
