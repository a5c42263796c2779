// Package memory implements an in-memory queue broker, used in tests and
// local development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/utafrali/FileIngestGo/internal/errmap"
	"github.com/utafrali/FileIngestGo/internal/queue"
)

// Message is one recorded delivery.
type Message struct {
	Key     string
	Payload []byte
}

// Broker records every sent message.
type Broker struct {
	mu       sync.Mutex
	messages []Message

	// FailWith, when set, is returned by every Send. Tests use it to
	// simulate broker outages.
	FailWith *errmap.ProviderError
}

func New() *Broker {
	return &Broker{}
}

func (b *Broker) Send(ctx context.Context, key string, payload []byte) (*queue.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.messages = append(b.messages, Message{Key: key, Payload: append([]byte(nil), payload...)})

	return &queue.Receipt{
		MessageID:  fmt.Sprintf("msg-%d", len(b.messages)),
		InsertedAt: time.Now().UTC(),
	}, nil
}

// Messages returns a copy of every recorded message in send order.
func (b *Broker) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.messages...)
}
