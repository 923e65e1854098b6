package model

import (
	"context"
	"time"
)

// KeyValueStore is an expiring key-value store. It is the only shared mutable
// state for ephemeral records (OTPs, refresh records, blacklist entries);
// all cross-request coordination relies on its single-key atomicity.
type KeyValueStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns ErrNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	// GetDelete atomically reads and removes the key. Returns ErrNotFound
	// when absent.
	GetDelete(ctx context.Context, key string) (string, error)
	// CompareDelete atomically removes the key only when its value equals
	// the expected one, reporting whether it did. A mismatch leaves the key
	// untouched. This is the single-use consumption primitive.
	CompareDelete(ctx context.Context, key, expected string) (bool, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// IncrementWithTTL atomically increments a counter, attaching the TTL on
	// first increment, and returns the new value.
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
