// Package cache stores computed layouts and rendered artifacts.
//
// A layout pass is deterministic: the same diagram document routed with the
// same sizes always yields the same connectors. The pipeline therefore keys
// results by a hash of their inputs and skips the work on a hit.
//
// # Backends
//
//   - [FileCache]: entries under a local directory, msgpack encoded (CLI default)
//   - [RedisCache]: a shared Redis instance, for the HTTP server and CI runners
//   - [NullCache]: stores nothing, used for --no-cache and in tests
//
// # Keys
//
// A [Keyer] derives keys from input hashes and the options that influence the
// result. [ScopedKeyer] prefixes every key, so several tenants or diagram
// sets can share one backend.
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cache entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with ok == false and a nil error. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache never stores anything; every Get is a miss.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
