// Package cache provides the expiring key/value store used for memoizing
// capability results and for session transcripts.
//
// Two backends implement the same Store interface: an in-process TTL map
// and a Redis-backed store with JSON-serialized values. NewBackend probes
// Redis once at startup and falls back to the in-process implementation
// when it is unreachable.
package cache

import (
	"context"
	"time"
)

// Store is the expiring cache contract shared by both backends.
type Store interface {
	// Get returns the live value for key, or ok=false when the key is
	// missing or its entry has expired.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores value under key with the given TTL. A ttl <= 0 uses the
	// backend's default TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration)

	// Delete removes a key.
	Delete(ctx context.Context, key string)

	// Clear removes every entry belonging to this logical cache.
	Clear(ctx context.Context)

	// Size reports the number of live entries. Approximate for the Redis
	// backend (prefix scan) and for the memory backend (expired entries
	// are only reaped on Get).
	Size(ctx context.Context) int
}
