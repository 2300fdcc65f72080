// Package counter provides the atomic counter store backing admission
// control, with in-process and Redis backends.
package counter

import (
	"context"
	"time"
)

// Store is a minimal atomic counter abstraction. All mutation goes
// through Incr/Decr so callers never race on read-modify-write.
//
// Backend errors must surface distinctly rather than as silent zeros;
// admission applies its fail-open policy based on them.
type Store interface {
	// Incr atomically increments key and returns the new value. Missing
	// keys start at zero.
	Incr(ctx context.Context, key string) (int64, error)
	// Decr atomically decrements key and returns the new value.
	Decr(ctx context.Context, key string) (int64, error)
	// Get returns the current value, with ok=false for absent keys.
	Get(ctx context.Context, key string) (int64, bool, error)
	// Delete removes the key outright.
	Delete(ctx context.Context, key string) error
	// Expire sets the key's time-to-live.
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// Name identifies the active backend.
	Name() string
}
