package cache

import (
	"context"
	"log/slog"
	"time"
)

// Options configures backend selection for one logical cache.
type Options struct {
	// RedisURL is probed first; empty disables the Redis attempt.
	RedisURL string
	// Prefix namespaces this cache's keys in a shared Redis database.
	Prefix     string
	DefaultTTL time.Duration
	// MaxSize caps the in-process fallback store.
	MaxSize int
	// ProbeTimeout bounds the startup connectivity check.
	ProbeTimeout time.Duration
	Logger       *slog.Logger
}

// NewBackend selects a cache backend once at startup: it constructs a Redis
// store and probes connectivity, falling back silently to the in-process
// implementation on any failure. The decision is made here, at the call
// site, and the result is an interface value callers pass around; there is
// no process-wide singleton to reset.
func NewBackend(ctx context.Context, opts Options) Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	probeTimeout := opts.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}

	if opts.RedisURL != "" {
		store, err := NewRedis(opts.RedisURL, opts.Prefix, opts.DefaultTTL, logger)
		if err == nil {
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			if err = store.Ping(probeCtx); err == nil {
				logger.Info("cache: using Redis",
					slog.String("prefix", opts.Prefix),
					slog.String("url", opts.RedisURL),
				)
				return store
			}
		}
		logger.Info("cache: Redis unavailable, using in-process store",
			slog.String("prefix", opts.Prefix),
			slog.String("error", err.Error()),
		)
	}

	return NewMemory(opts.DefaultTTL, opts.MaxSize)
}
