package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhub/internal/ratelimit/models"
)

type limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
	Reset(ctx context.Context, key string) error
}

// exerciseWindow drives a limiter whose clock the caller advances through now.
func exerciseWindow(t *testing.T, l limiter, now *time.Time) {
	t.Helper()
	ctx := context.Background()
	start := *now

	for i := range 3 {
		res, err := l.Allow(ctx, "client", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 2-i, res.Remaining)
		*now = now.Add(10 * time.Second)
	}

	res, err := l.Allow(ctx, "client", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 3, res.Limit)
	assert.True(t, res.ResetAt.Equal(start.Add(time.Minute)))
	assert.Equal(t, 30, res.RetryAfter)

	other, err := l.Allow(ctx, "other-client", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys have separate windows")

	*now = start.Add(61 * time.Second)
	res, err = l.Allow(ctx, "client", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "the oldest request left the window")

	require.NoError(t, l.Reset(ctx, "client"))
	res, err = l.Allow(ctx, "client", 3, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)
}

func TestInMemory(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewInMemory()
	s.clock = func() time.Time { return now }
	exerciseWindow(t, s, &now)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewRedis(client)
	s.clock = func() time.Time { return now }
	exerciseWindow(t, s, &now)
}
