// Package kafka implements the notification queue broker on Kafka. Broker
// errors are translated into provider errors for the error mapper.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/utafrali/FileIngestGo/internal/errmap"
	"github.com/utafrali/FileIngestGo/internal/queue"
)

// messageIDHeader carries the broker-assigned message ID so consumers can
// deduplicate deliveries.
const messageIDHeader = "message-id"

// Broker publishes messages to one Kafka topic.
type Broker struct {
	writer  *kafkago.Writer
	brokers []string
	logger  *slog.Logger
}

// Config holds the producer settings.
type Config struct {
	Brokers []string
	Topic   string
}

func New(cfg Config, logger *slog.Logger) *Broker {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Broker{
		writer:  writer,
		brokers: cfg.Brokers,
		logger:  logger.With(slog.String("component", "kafka_broker"), slog.String("topic", cfg.Topic)),
	}
}

// Send publishes one message and returns the delivery receipt. The message
// ID is assigned here and carried in a header.
func (b *Broker) Send(ctx context.Context, key string, payload []byte) (*queue.Receipt, error) {
	messageID := uuid.NewString()

	err := b.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: messageIDHeader, Value: []byte(messageID)},
		},
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "kafka write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, translateKafkaError(err)
	}

	return &queue.Receipt{MessageID: messageID, InsertedAt: time.Now().UTC()}, nil
}

// Close flushes and closes the underlying writer.
func (b *Broker) Close() error {
	return b.writer.Close()
}

// Ping dials the first reachable broker, for readiness checks.
func (b *Broker) Ping(ctx context.Context) error {
	var lastErr error
	for _, addr := range b.brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka broker reachable: %w", lastErr)
}

// translateKafkaError turns a kafka-go error into a provider error with an
// HTTP-like status the mapper understands.
func translateKafkaError(err error) *errmap.ProviderError {
	perr := &errmap.ProviderError{
		Status:  500,
		Message: "writing kafka message",
		Err:     err,
	}

	var kerr kafkago.Error
	if errors.As(err, &kerr) {
		switch kerr {
		case kafkago.UnknownTopicOrPartition, kafkago.InvalidTopic:
			perr.Status = 404
			perr.Code = "QueueNotFound"
		case kafkago.TopicAuthorizationFailed, kafkago.GroupAuthorizationFailed, kafkago.ClusterAuthorizationFailed:
			perr.Status = 403
		case kafkago.SASLAuthenticationFailed:
			perr.Status = 401
		case kafkago.ThrottlingQuotaExceeded:
			perr.Status = 429
		default:
			if kerr.Temporary() {
				perr.Status = 503
			}
		}
		return perr
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		perr.Status = 503
	}

	return perr
}
