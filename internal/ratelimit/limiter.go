package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/glucotrack/api/internal/infrastructure/keyval"
)

// Result describes the outcome of one rate-limit check.
type Result struct {
	Allowed    bool
	Count      int   // post-increment request count inside the current window
	ResetAfter int   // seconds until the window expires
	Limit      int   // the limit that was applied
	ResetAt    int64 // epoch seconds when the window expires
}

// Remaining is the number of requests left in the current window.
func (r Result) Remaining() int {
	if left := r.Limit - r.Count; left > 0 {
		return left
	}
	return 0
}

// Limiter is a fixed-window counting gate on an ephemeral key-value store.
// Windows are discrete: the first request in a window sets its expiry, and
// the count and expiry vanish together when the TTL elapses.
type Limiter struct {
	store keyval.Store
}

func New(store keyval.Store) *Limiter {
	return &Limiter{store: store}
}

// Allow counts one request against key and reports whether it fits within
// limit requests per windowSeconds.
//
// When the backing store is unreachable the gate fails open: the request is
// allowed with a zero count. Availability is deliberately preferred over
// strict enforcement here; the OTP and reset stores make the opposite choice.
func (l *Limiter) Allow(ctx context.Context, key string, limit, windowSeconds int) Result {
	window := time.Duration(windowSeconds) * time.Second

	count, err := l.store.Increment(ctx, key)
	if err != nil {
		slog.Warn("rate limiter failing open", "key", key, "err", err)
		return l.failOpen(limit, window)
	}

	// First request in a fresh window establishes the window boundary.
	if count == 1 {
		if err := l.store.Expire(ctx, key, window); err != nil {
			slog.Warn("rate limiter failing open", "key", key, "err", err)
			return l.failOpen(limit, window)
		}
	}

	reset := window
	if ttl, err := l.store.TTL(ctx, key); err == nil && ttl > 0 {
		reset = ttl
	}

	resetSecs := int(reset / time.Second)
	return Result{
		Allowed:    count <= int64(limit),
		Count:      int(count),
		ResetAfter: resetSecs,
		Limit:      limit,
		ResetAt:    time.Now().Unix() + int64(resetSecs),
	}
}

func (l *Limiter) failOpen(limit int, window time.Duration) Result {
	secs := int(window / time.Second)
	return Result{
		Allowed:    true,
		Count:      0,
		ResetAfter: secs,
		Limit:      limit,
		ResetAt:    time.Now().Unix() + int64(secs),
	}
}
