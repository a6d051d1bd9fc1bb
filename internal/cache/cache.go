package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gorgio/shortlink-be/internal/models"
)

const (
	urlTTL   = 24 * time.Hour
	statsTTL = 5 * time.Minute
)

// Cache is a thin wrapper around an optional Redis client. A nil Cache (or
// a Cache built from a nil client) is valid and turns every operation into
// a no-op, so the service runs without Redis at reduced speed.
type Cache struct {
	rdb *redis.Client
}

// New connects to Redis at addr. An empty addr returns a disabled cache.
func New(ctx context.Context, addr string) (*Cache, error) {
	if addr == "" {
		return &Cache{}, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{rdb: rdb}, nil
}

// Enabled reports whether a Redis backend is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// GetURL returns the cached destination of a code, if present.
func (c *Cache) GetURL(ctx context.Context, code string) (string, bool) {
	if !c.Enabled() {
		return "", false
	}
	val, err := c.rdb.Get(ctx, "url:"+code).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// SetURL caches a code -> destination mapping.
func (c *Cache) SetURL(ctx context.Context, code, originalURL string) {
	if !c.Enabled() {
		return
	}
	_ = c.rdb.Set(ctx, "url:"+code, originalURL, urlTTL).Err()
}

// GetStats returns the cached aggregate for a code, if present.
func (c *Cache) GetStats(ctx context.Context, code string) (*models.Stats, bool) {
	if !c.Enabled() {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, "stats:"+code).Bytes()
	if err != nil {
		return nil, false
	}
	var stats models.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// SetStats caches a computed aggregate. The click log stays the source of
// truth; InvalidateStats keeps this entry from serving stale counts.
func (c *Cache) SetStats(ctx context.Context, code string, stats *models.Stats) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, "stats:"+code, raw, statsTTL).Err()
}

// InvalidateStats drops the cached aggregate after a new click is recorded.
func (c *Cache) InvalidateStats(ctx context.Context, code string) {
	if !c.Enabled() {
		return
	}
	_ = c.rdb.Del(ctx, "stats:"+code).Err()
}

// IncrRate bumps the per-window request counter of key and returns the
// count. The window expiry is set on the first hit.
func (c *Cache) IncrRate(ctx context.Context, key string, window time.Duration) (int64, error) {
	if !c.Enabled() {
		return 0, redis.Nil
	}
	count, err := c.rdb.Incr(ctx, "rate:"+key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		c.rdb.Expire(ctx, "rate:"+key, window)
	}
	return count, nil
}
