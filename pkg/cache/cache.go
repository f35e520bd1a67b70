// Package cache stores rendered artifacts (SVG drawings, scene payloads)
// keyed by a hash of their inputs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the HTTP server and [NullCache] when caching is disabled. Keys are
// produced by a [Keyer] so the CLI and the server can share one namespace
// or be isolated with [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long artifacts stay cached when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry. A zero ttl never expires.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
