package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/utafrali/FileIngestGo/internal/queue"
)

// Handler processes one fetched message. A returned error triggers retries
// and eventually the dead-letter topic.
type Handler interface {
	Handle(ctx context.Context, messageID string, payload []byte) error
}

// DeadLetterer receives messages that exhausted their retries.
type DeadLetterer interface {
	Send(ctx context.Context, key string, payload []byte) error
}

// ConsumerConfig holds the consumer loop settings.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	MaxAttempts int
	RetryDelay  time.Duration
}

// Consumer runs the fetch/process/commit loop over one topic. Messages are
// committed only after processing or dead-lettering, so a crash never
// drops a message.
type Consumer struct {
	reader     *kafkago.Reader
	handler    Handler
	deadLetter DeadLetterer
	cfg        ConsumerConfig
	logger     *slog.Logger
}

func NewConsumer(cfg ConsumerConfig, handler Handler, deadLetter DeadLetterer, logger *slog.Logger) *Consumer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10 << 20,
		CommitInterval: 0, // explicit commits only
	})

	return &Consumer{
		reader:     reader,
		handler:    handler,
		deadLetter: deadLetter,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "notification_consumer"), slog.String("topic", cfg.Topic)),
	}
}

// Run consumes until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.ErrorContext(ctx, "commit failed",
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()))
		}
	}
}

// process runs the handler with retries and dead-letters the message when
// every attempt fails.
func (c *Consumer) process(ctx context.Context, msg kafkago.Message) {
	messageID := headerValue(msg, "message-id")

	var err error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		err = c.handler.Handle(ctx, messageID, msg.Value)
		if err == nil {
			return
		}

		c.logger.WarnContext(ctx, "processing attempt failed",
			slog.String("message_id", messageID),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt < c.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.RetryDelay):
			}
		}
	}

	if c.deadLetter == nil {
		c.logger.ErrorContext(ctx, "dropping message after exhausted retries",
			slog.String("message_id", messageID),
			slog.String("error", err.Error()))
		return
	}

	if dlqErr := c.deadLetter.Send(ctx, string(msg.Key), msg.Value); dlqErr != nil {
		c.logger.ErrorContext(ctx, "dead-lettering failed",
			slog.String("message_id", messageID),
			slog.String("error", dlqErr.Error()))
		return
	}

	c.logger.ErrorContext(ctx, "message dead-lettered after exhausted retries",
		slog.String("message_id", messageID),
		slog.String("error", err.Error()))
}

// Close shuts down the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// BrokerDeadLetterer adapts a queue broker into the dead-letter surface,
// discarding the receipt.
type BrokerDeadLetterer struct {
	Broker queue.Broker
}

func (b BrokerDeadLetterer) Send(ctx context.Context, key string, payload []byte) error {
	_, err := b.Broker.Send(ctx, key, payload)
	return err
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
