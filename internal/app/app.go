package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tgiffonirs/gomarketplace/internal/cart"
	"github.com/tgiffonirs/gomarketplace/internal/config"
	"github.com/tgiffonirs/gomarketplace/internal/event"
	handler "github.com/tgiffonirs/gomarketplace/internal/handler/http"
	"github.com/tgiffonirs/gomarketplace/internal/storage"
	"github.com/tgiffonirs/gomarketplace/internal/storage/memory"
	pgstorage "github.com/tgiffonirs/gomarketplace/internal/storage/postgres"
	"github.com/tgiffonirs/gomarketplace/internal/storage/postgres/migrations"
	redisstorage "github.com/tgiffonirs/gomarketplace/internal/storage/redis"
	"github.com/tgiffonirs/gomarketplace/pkg/database"
	"github.com/tgiffonirs/gomarketplace/pkg/health"
	pkgkafka "github.com/tgiffonirs/gomarketplace/pkg/kafka"
	"github.com/tgiffonirs/gomarketplace/pkg/middleware"
	"github.com/tgiffonirs/gomarketplace/pkg/tracing"
)

const serviceName = "cart-service"

// App wires together all dependencies and runs the cart server.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *cart.Store
	producer   *pkgkafka.Producer
	relay      *event.Relay
	httpServer *http.Server

	closeStorage   func()
	shutdownTracer func(context.Context) error
	relayDone      sync.WaitGroup
}

// NewApp creates a new application instance, initializing all dependencies.
// The cart is restored before NewApp returns.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tcfg := tracing.DefaultConfig(serviceName)
	tcfg.Environment = cfg.Environment
	tcfg.Enabled = cfg.OTELEnabled
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	shutdownTracer, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	backend, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracer(context.Background())
		return nil, err
	}
	traced := storage.NewTraced(backend, cfg.StorageDriver, logger, cfg.SlowThreshold)

	store, err := cart.Open(ctx, traced, cfg.StorageKey, logger, cart.WithWriteTimeout(cfg.WriteTimeout))
	if err != nil {
		closeStorage()
		_ = shutdownTracer(context.Background())
		return nil, fmt.Errorf("open cart store: %w", err)
	}

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("cart_storage", store.Ping)

	a := &App{
		cfg:            cfg,
		logger:         logger,
		store:          store,
		closeStorage:   closeStorage,
		shutdownTracer: shutdownTracer,
	}

	if cfg.RelayEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.relay = event.NewRelay(store, event.NewProducer(a.producer, logger), logger)
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("cart update relay enabled", slog.Any("brokers", cfg.KafkaBrokers))
	}

	router := handler.NewRouter(store, healthHandler, logger, handler.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		RateLimit: middleware.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// openStorage connects the configured backend. The returned func releases
// its connections.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Info("using in-memory cart storage")
		return memory.New(), func() {}, nil

	case config.DriverRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				logger.Error("redis close error", slog.String("error", err.Error()))
			}
		}
		return redisstorage.NewStorage(rdb, cfg.RedisPrefix, cfg.RedisTTL), closeFn, nil

	case config.DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, database.DefaultPostgresConfig(cfg.PostgresDSN), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "cart"); err != nil {
			logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		return pgstorage.NewStorage(pool), pool.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// Handler returns the HTTP handler the server serves.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	if a.relay != nil {
		a.relayDone.Add(1)
		go func() {
			defer a.relayDone.Done()
			a.relay.Run(ctx)
		}()
	}

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

// Shutdown gracefully stops all components. The store is closed after the
// HTTP server drains, which also ends the relay subscription.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.store.Close(); err != nil {
		a.logger.Error("cart store close error", slog.String("error", err.Error()))
	}
	a.relayDone.Wait()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	a.closeStorage()

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
