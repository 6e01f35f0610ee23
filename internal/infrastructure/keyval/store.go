package keyval

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrKeyNotFound is returned by Get when the key is absent or expired.
	ErrKeyNotFound = errors.New("key not found")
	// ErrUnavailable wraps transport-level failures so callers can apply
	// their own fail-open or fail-closed policy.
	ErrUnavailable = errors.New("key-value store unavailable")
)

// Store is the ephemeral TTL-backed key-value abstraction used for OTP codes,
// password-reset tokens and rate-limit counters. Increment is atomic;
// concurrent requests racing on the same key are serialized by the backend,
// not by this process.
type Store interface {
	// Increment atomically increments the integer at key and returns the
	// post-increment count. A missing key counts from zero.
	Increment(ctx context.Context, key string) (int64, error)

	// Expire sets the remaining lifetime of key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining lifetime of key. Zero means the key is
	// absent or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Get returns the string value at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the given lifetime.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
