package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Redis-backed cache with JSON-serialized values. Keys are
// namespaced by a fixed prefix so multiple logical caches can share one
// database.
type Redis struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	logger     *slog.Logger
}

// NewRedis creates a Redis-backed cache from a redis:// URL.
// The connection is not probed here; see NewBackend.
func NewRedis(url, prefix string, defaultTTL time.Duration, logger *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{
		client:     redis.NewClient(opts),
		prefix:     prefix,
		defaultTTL: defaultTTL,
		logger:     logger,
	}, nil
}

// Ping verifies connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) prefixed(key string) string {
	return r.prefix + key
}

func (r *Redis) Get(ctx context.Context, key string) (any, bool) {
	raw, err := r.client.Get(ctx, r.prefixed(key)).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("cache get failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		// Corrupt payloads are treated as misses and removed.
		r.logger.Warn("cache corrupt value, deleting", slog.String("key", key))
		r.client.Del(ctx, r.prefixed(key))
		return nil, false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	payload, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("cache set: unserializable value", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := r.client.Set(ctx, r.prefixed(key), payload, ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefixed(key)).Err(); err != nil {
		r.logger.Warn("cache delete failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Clear deletes all keys under this cache's prefix. Use with caution on a
// shared database.
func (r *Redis) Clear(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			r.client.Del(ctx, keys...)
			keys = keys[:0]
		}
	}
	if len(keys) > 0 {
		r.client.Del(ctx, keys...)
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("cache clear scan failed", slog.String("error", err.Error()))
	}
}

// Size counts keys under this cache's prefix. Approximate on large databases.
func (r *Redis) Size(ctx context.Context) int {
	count := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("cache size scan failed", slog.String("error", err.Error()))
	}
	return count
}
