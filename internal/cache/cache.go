// Package cache is a small redis read-through cache for the latest APR per
// pool, the one value dashboards poll constantly.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to redis. The cache is optional: callers hold a nil *Cache
// when redis is not configured and every lookup simply misses.
func New(redisURL, password string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{rdb: rdb, ttl: defaultTTL}, nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// CurrentAPR returns the cached APR for a pool, if present.
func (c *Cache) CurrentAPR(ctx context.Context, poolID string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	val, err := c.rdb.Get(ctx, aprKey(poolID)).Result()
	if err != nil {
		return 0, false
	}
	apr, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return apr, true
}

// SetCurrentAPR stores a pool's APR with the cache TTL. Failures are
// swallowed: the store remains the source of truth.
func (c *Cache) SetCurrentAPR(ctx context.Context, poolID string, apr float64) {
	if c == nil {
		return
	}
	c.rdb.Set(ctx, aprKey(poolID), strconv.FormatFloat(apr, 'f', -1, 64), c.ttl)
}

func aprKey(poolID string) string { return "apr:" + poolID }
