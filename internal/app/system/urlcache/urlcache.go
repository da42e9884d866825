// Package urlcache remembers presigned URLs so repeated reads of the same
// object do not re-sign on every request.
package urlcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache stores short-lived string values.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// Memory is an in-process Cache.
type Memory struct {
	c *cache.Cache
}

// NewMemory creates a cache that purges expired entries every cleanup.
func NewMemory(cleanup time.Duration) *Memory {
	return &Memory{c: cache.New(cache.NoExpiration, cleanup)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

// Redis is a Cache shared between instances. Failures are treated as misses.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis wraps an existing client. Keys are stored under prefix.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

// Ping checks the server; used by the health endpoint.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) {
	_ = r.rdb.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Connect parses url, applies pool settings and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis url is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
