// Package cache memoizes expensive analysis results behind a pluggable
// TTL store with in-process and Redis backends.
package cache

import (
	"context"
	"time"
)

// Store is the minimal TTL cache abstraction. Values are opaque bytes;
// a read past expiry is equivalent to absence.
type Store interface {
	// Get returns the value for key, with ok=false for absent or expired
	// entries.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set overwrites the entry wholesale with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the entry immediately.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every entry whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// Name identifies the active backend.
	Name() string
}
