package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// keyPrefix namespaces doclink entries so Clear never touches foreign keys.
const keyPrefix = "doclink:"

// Redis is a cache backed by a redis server, for deployments that run more
// than one API instance against the same database.
type Redis struct {
	client *redis.Client

	hits   atomic.Uint64
	misses atomic.Uint64
	added  atomic.Uint64
}

var _ Cache = (*Redis)(nil)

// NewRedis creates a redis cache from a connection URL
// (redis://[user:pass@]host:port/db).
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// NewRedisWithClient wraps an existing client, used by tests.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get retrieves a value from cache. Backend errors read as misses.
func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	res := r.client.Get(ctx, keyPrefix+key)
	if res.Err() != nil {
		// redis.Nil means not found; an unreachable backend reads the same.
		r.misses.Add(1)
		return "", false
	}
	r.hits.Add(1)
	return res.Val(), true
}

// Set stores a value in cache with TTL.
func (r *Redis) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	r.added.Add(1)
	return nil
}

// Delete removes a value from cache.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes all doclink entries from cache.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Metrics returns cache statistics. Evictions happen server-side and are
// not visible here.
func (r *Redis) Metrics() Metrics {
	return Metrics{
		Hits:      r.hits.Load(),
		Misses:    r.misses.Load(),
		KeysAdded: r.added.Load(),
	}
}
