package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucotrack/api/internal/infrastructure/keyval"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(keyval.NewRedisStore(client)), mr
}

func TestAllow_UpToLimit(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res := l.Allow(ctx, "login:a@x.com", 5, 300)
		assert.True(t, res.Allowed, "request %d should pass", i)
		assert.Equal(t, i, res.Count)
		assert.Equal(t, 5-i, res.Remaining())
	}
}

func TestAllow_BlocksOverLimit(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		l.Allow(ctx, "login:a@x.com", 5, 300)
	}
	res := l.Allow(ctx, "login:a@x.com", 5, 300)
	assert.False(t, res.Allowed)
	assert.Equal(t, 6, res.Count)
	assert.Equal(t, 0, res.Remaining())
	assert.Positive(t, res.ResetAfter)
}

func TestAllow_WindowResets(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		l.Allow(ctx, "k", 5, 300)
	}
	assert.False(t, l.Allow(ctx, "k", 5, 300).Allowed)

	mr.FastForward(301 * time.Second)

	res := l.Allow(ctx, "k", 5, 300)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Count)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		l.Allow(ctx, "login:a@x.com", 5, 300)
	}
	assert.False(t, l.Allow(ctx, "login:a@x.com", 5, 300).Allowed)
	assert.True(t, l.Allow(ctx, "login:b@x.com", 5, 300).Allowed)
}

func TestAllow_ReportsWindowTTL(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()

	l.Allow(ctx, "k", 5, 300)
	mr.FastForward(100 * time.Second)

	res := l.Allow(ctx, "k", 5, 300)
	assert.Equal(t, 200, res.ResetAfter)
}

func TestAllow_FailsOpenWhenStoreDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := New(keyval.NewRedisStore(client))
	mr.Close()

	res := l.Allow(context.Background(), "k", 5, 300)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Count)
}
