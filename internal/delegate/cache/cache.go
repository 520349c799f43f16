// Package cache provides the Redis-backed statistics cache.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// statsTTL keeps statistics fresh within a minute while absorbing
// dashboard refresh storms.
const statsTTL = 60 * time.Second

// StatsCache stores statistics documents in Redis with a short TTL. Every
// failure degrades to a miss and the caller recomputes from the store, so
// Redis being down slows statistics, never breaks them.
type StatsCache struct {
	client *redis.Client
	logger *slog.Logger
}

func New(client *redis.Client, logger *slog.Logger) *StatsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCache{client: client, logger: logger}
}

func (c *StatsCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.DebugContext(ctx, "statistics cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (c *StatsCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, statsTTL).Err(); err != nil {
		c.logger.DebugContext(ctx, "statistics cache write failed", "key", key, "error", err)
	}
}
