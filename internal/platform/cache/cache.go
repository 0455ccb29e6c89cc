// Package cache provides a Redis client wrapper plus the visitor counter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis/Dragonfly client.
type Cache struct {
	Client *redis.Client
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New creates a new cache client.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &Cache{Client: client}, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

const visitorKey = "lophoc:visitors"

// IncrementVisitors bumps the site visitor counter atomically and returns
// the new total. The one-shot-per-browser-session rule stays on the client;
// the server-side increment itself is race-free.
func (c *Cache) IncrementVisitors(ctx context.Context) (int64, error) {
	n, err := c.Client.Incr(ctx, visitorKey).Result()
	if err != nil {
		return 0, fmt.Errorf("increment visitors: %w", err)
	}
	return n, nil
}

// Visitors returns the current visitor count without incrementing. A key
// that was never incremented reads as zero.
func (c *Cache) Visitors(ctx context.Context) (int64, error) {
	n, err := c.Client.Get(ctx, visitorKey).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("read visitors: %w", err)
	}
	return n, nil
}
