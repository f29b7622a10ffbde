// internal/cache/redis.go

// Package cache provides a tiny Redis client wrapper for caching prediction outcomes
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
)

// Cache wraps a Redis client for outcome storage
type Cache struct {
	client *redis.Client
}

// New creates a new Cache instance connected to the specified Redis address
// If addr is empty, defaults to localhost:6379
func New(ctx context.Context, addr string) (*Cache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Cache{client: client}, nil
}

// OutcomeKey derives the cache key for a prediction. fingerprint identifies
// the predictor settings; identical pixels, task text, backend and
// fingerprint always map to the same key.
func OutcomeKey(backend, fingerprint string, img *imaging.NormalizedImage, task string) string {
	return fmt.Sprintf("outcome:%s:%s:%016x:%016x:%d",
		backend, fingerprint, xxhash.Sum64(img.Pix), xxhash.Sum64String(task), img.Size)
}

// SetOutcome stores an outcome with the specified TTL
func (c *Cache) SetOutcome(ctx context.Context, key string, success bool, ttl time.Duration) error {
	if c.client == nil {
		return fmt.Errorf("cache client is nil")
	}

	value := "0"
	if success {
		value = "1"
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set outcome %s: %w", key, err)
	}
	return nil
}

// GetOutcome retrieves a cached outcome; found is false on a miss.
func (c *Cache) GetOutcome(ctx context.Context, key string) (success, found bool, err error) {
	if c.client == nil {
		return false, false, fmt.Errorf("cache client is nil")
	}

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to get outcome %s: %w", key, err)
	}

	switch data {
	case "1":
		return true, true, nil
	case "0":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("corrupt cached outcome %s: %q", key, data)
	}
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
