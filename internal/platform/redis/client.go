// Package redis wraps the go-redis client behind the project's config.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"summit/internal/platform/config"
)

// Client is the shared Redis connection used by the statistics cache and
// the asynq job queue's health checks.
type Client struct {
	*redis.Client
}

// New dials Redis from the provided configuration. A blank URL means Redis
// is not configured; New returns nil and callers fall back to uncached
// reads.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health pings the connection; /readyz consults it when Redis is configured.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
