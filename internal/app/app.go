// Package app wires the service dependencies and runs the processes: the
// HTTP upload server and the notification worker.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utafrali/FileIngestGo/internal/config"
	"github.com/utafrali/FileIngestGo/internal/gateway"
	handler "github.com/utafrali/FileIngestGo/internal/handler/http"
	queuekafka "github.com/utafrali/FileIngestGo/internal/queue/kafka"
	"github.com/utafrali/FileIngestGo/internal/service"
	"github.com/utafrali/FileIngestGo/internal/storage"
	storagemem "github.com/utafrali/FileIngestGo/internal/storage/memory"
	storagepg "github.com/utafrali/FileIngestGo/internal/storage/postgres"
	"github.com/utafrali/FileIngestGo/migrations"
	"github.com/utafrali/FileIngestGo/pkg/database"
	"github.com/utafrali/FileIngestGo/pkg/health"
	"github.com/utafrali/FileIngestGo/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

// App runs the HTTP upload server.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	broker          *queuekafka.Broker
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp initializes every dependency of the upload server.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracingShutdown, err := initTracing(ctx, cfg, "fileingest-server")
	if err != nil {
		return nil, err
	}

	var (
		pool    *pgxpool.Pool
		backend storage.Backend
	)
	switch cfg.StorageDriver {
	case "memory":
		backend = storagemem.New()
		logger.Warn("using in-memory blob storage, data will not survive restarts")
	default:
		pool, err = newPostgresPool(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
		database.RegisterPoolMetrics(pool, "fileingest")

		backend = storagepg.New(pool)
	}

	broker := queuekafka.New(queuekafka.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.UploadTopic,
	}, logger)
	logger.Info("kafka producer initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.UploadTopic),
	)

	// Build the dependency graph.
	blobGateway := gateway.NewBlob(backend, logger)
	queueGateway := gateway.NewQueue(broker, logger)
	metrics := service.NewMetrics(prometheus.DefaultRegisterer)
	orchestrator := service.NewOrchestrator(blobGateway, queueGateway, service.Config{
		KeyPrefix:    cfg.KeyPrefix,
		MaxBatchSize: cfg.MaxBatchSize,
	}, logger, metrics)

	healthHandler := health.NewHandler()
	if pool != nil {
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}
	healthHandler.Register("kafka", broker.Ping)

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName: "fileingest",
		Logger:      logger,
		Files:       handler.NewFileHandler(orchestrator, logger),
		Health:      healthHandler,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		broker:          broker,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
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

	if err := a.broker.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func newPostgresPool(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	return pool, nil
}

func initTracing(ctx context.Context, cfg *config.Config, serviceName string) (func(context.Context) error, error) {
	traceCfg := tracing.DefaultConfig(serviceName)
	traceCfg.Environment = cfg.Environment
	traceCfg.OTLPEndpoint = cfg.OTLPEndpoint
	traceCfg.SampleRate = cfg.TraceSampleRate
	traceCfg.Enabled = cfg.TracingEnabled

	shutdown, err := tracing.InitTracer(ctx, traceCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	return shutdown, nil
}
