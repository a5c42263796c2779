// Package config loads the service configuration from the environment.
package config

import (
	"fmt"

	pkgconfig "github.com/utafrali/FileIngestGo/pkg/config"
)

// Config holds all configuration for the file ingest service and worker.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Upload pipeline
	KeyPrefix    string `env:"UPLOAD_KEY_PREFIX" envDefault:"photos"`
	MaxBatchSize int    `env:"UPLOAD_MAX_BATCH_SIZE" envDefault:"10"`

	// Blob backend: "postgres" or "memory" (local development only).
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"fileingest"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"fileingest_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"fileingest_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers    []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	UploadTopic     string   `env:"KAFKA_UPLOAD_TOPIC" envDefault:"file.uploaded"`
	DeadLetterTopic string   `env:"KAFKA_DEAD_LETTER_TOPIC" envDefault:"file.uploaded.dlq"`
	ConsumerGroup   string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"fileingest-worker"`

	// Redis (worker deduplication)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load fileingest config: %w", err)
	}
	return cfg, nil
}
