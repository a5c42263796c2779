// Package queue defines the notification queue capability the upload
// pipeline publishes to. Brokers produce errmap.ProviderError values for
// failures so the gateway can map them onto domain error codes.
package queue

import (
	"context"
	"time"
)

// Receipt is the broker's acknowledgment for one delivered message.
type Receipt struct {
	MessageID  string
	InsertedAt time.Time
}

// Broker is the queue contract. Send publishes one message keyed for
// partitioning and returns the broker's receipt.
type Broker interface {
	Send(ctx context.Context, key string, payload []byte) (*Receipt, error)
}
