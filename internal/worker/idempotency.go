package worker

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers which messages have been processed so
// redelivered messages are skipped.
type IdempotencyStore interface {
	// MarkIfNew records the message ID and reports whether it was unseen.
	MarkIfNew(ctx context.Context, messageID string) (bool, error)
}

// RedisIdempotencyStore backs the seen-set with Redis so deduplication
// survives worker restarts and is shared across instances.
type RedisIdempotencyStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client: client,
		prefix: "fileingest:processed:",
		ttl:    ttl,
	}
}

func (s *RedisIdempotencyStore) MarkIfNew(ctx context.Context, messageID string) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+messageID, 1, s.ttl).Result()
}

// MemoryIdempotencyStore is the in-process store used in tests and local
// development.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{seen: make(map[string]struct{})}
}

func (s *MemoryIdempotencyStore) MarkIfNew(ctx context.Context, messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[messageID]; ok {
		return false, nil
	}
	s.seen[messageID] = struct{}{}
	return true, nil
}
