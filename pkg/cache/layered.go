package cache

import (
	"context"
	"time"
)

// LayeredStore implements a two-level cache (L1: memory, L2: Redis).
// A replica that rebuilt the snapshot recently saves its peers the FRED round trip.
type LayeredStore struct {
	mem   *MemoryStore
	redis *RedisStore
}

// NewLayeredStore creates a layered cache with memory in front of Redis.
func NewLayeredStore(redis *RedisStore, opts ...MemoryOption) *LayeredStore {
	return &LayeredStore{
		mem:   NewMemoryStore(opts...),
		redis: redis,
	}
}

func (lc *LayeredStore) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	// Write-through: Redis first, then memory
	if err := lc.redis.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = lc.mem.SetBytes(ctx, key, value, ttl)
	return nil
}

func (lc *LayeredStore) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	// L1: try memory first
	if b, ok, err := lc.mem.GetBytes(ctx, key); err == nil && ok {
		return b, true, nil
	}

	// L2: try Redis
	b, ok, err := lc.redis.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	// Promote to memory for next time. The L1 copy may outlive the L2 TTL by
	// its own expiry; Invalidate clears both, so explicit refresh stays correct.
	_ = lc.mem.SetBytes(ctx, key, b, 0)
	return b, true, nil
}

func (lc *LayeredStore) Invalidate(ctx context.Context, keys ...string) error {
	_ = lc.mem.Invalidate(ctx, keys...)
	return lc.redis.Invalidate(ctx, keys...)
}

// Close closes both cache layers.
func (lc *LayeredStore) Close() error {
	_ = lc.mem.Close()
	return lc.redis.Close()
}
