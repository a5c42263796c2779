package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/FileIngestGo/internal/config"
	"github.com/utafrali/FileIngestGo/internal/gateway"
	queuekafka "github.com/utafrali/FileIngestGo/internal/queue/kafka"
	storagepg "github.com/utafrali/FileIngestGo/internal/storage/postgres"
	"github.com/utafrali/FileIngestGo/internal/worker"
	"github.com/utafrali/FileIngestGo/pkg/database"
)

// processedMessageTTL bounds how long the worker remembers handled message
// IDs.
const processedMessageTTL = 24 * time.Hour

// Worker runs the notification consumer.
type Worker struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	redisClient     *redis.Client
	consumer        *worker.Consumer
	deadLetter      *queuekafka.Broker
	tracingShutdown func(context.Context) error
}

// NewWorker initializes every dependency of the notification worker.
func NewWorker(cfg *config.Config, logger *slog.Logger) (*Worker, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracingShutdown, err := initTracing(ctx, cfg, "fileingest-worker")
	if err != nil {
		return nil, err
	}

	pool, err := newPostgresPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPass
	redisCfg.DB = cfg.RedisDB

	redisClient, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))

	deadLetter := queuekafka.New(queuekafka.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.DeadLetterTopic,
	}, logger)

	blobGateway := gateway.NewBlob(storagepg.New(pool), logger)
	seen := worker.NewRedisIdempotencyStore(redisClient, processedMessageTTL)
	processor := worker.NewProcessor(blobGateway, seen, logger)

	consumer := worker.NewConsumer(worker.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.UploadTopic,
		GroupID: cfg.ConsumerGroup,
	}, processor, worker.BrokerDeadLetterer{Broker: deadLetter}, logger)

	return &Worker{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		redisClient:     redisClient,
		consumer:        consumer,
		deadLetter:      deadLetter,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run consumes notifications until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("starting notification consumer",
		slog.String("topic", w.cfg.UploadTopic),
		slog.String("group", w.cfg.ConsumerGroup),
	)

	err := w.consumer.Run(ctx)

	w.Shutdown()
	return err
}

// Shutdown stops all worker components.
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down worker...")

	if err := w.consumer.Close(); err != nil {
		w.logger.Error("consumer close error", slog.String("error", err.Error()))
	}
	if err := w.deadLetter.Close(); err != nil {
		w.logger.Error("dead-letter producer close error", slog.String("error", err.Error()))
	}
	if err := w.redisClient.Close(); err != nil {
		w.logger.Error("redis close error", slog.String("error", err.Error()))
	}
	w.pool.Close()

	if w.tracingShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := w.tracingShutdown(shutdownCtx); err != nil {
			w.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	w.logger.Info("worker shutdown complete")
}
