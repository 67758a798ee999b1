package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windoze95/cookiify-api/internal/ratelimit"
	"github.com/windoze95/cookiify-api/internal/testutil"
)

func exhaust(t *testing.T, l ratelimit.Limiter, key string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		d, err := l.Allow(context.Background(), key)
		require.NoError(t, err)
		require.Truef(t, d.Allowed, "request %d should be allowed", i)
		require.Equal(t, n-i, d.Remaining)
	}
}

func TestFixedWindow_Boundary(t *testing.T) {
	for _, rule := range []ratelimit.Rule{ratelimit.SearchRule, ratelimit.SuggestionRule} {
		t.Run(rule.Name, func(t *testing.T) {
			clock := testutil.NewFakeClock()
			l := ratelimit.NewFixedWindow(rule, clock.Now)

			exhaust(t, l, "10.0.0.1", rule.Limit)

			d, err := l.Allow(context.Background(), "10.0.0.1")
			require.NoError(t, err)
			assert.False(t, d.Allowed, "request %d should be rejected", rule.Limit+1)
			assert.Equal(t, 0, d.Remaining)
			assert.Equal(t, clock.Now().Add(rule.Window), d.ResetAt)

			clock.Advance(rule.Window)
			d, err = l.Allow(context.Background(), "10.0.0.1")
			require.NoError(t, err)
			assert.True(t, d.Allowed, "first request of a new window should be allowed")
			assert.Equal(t, rule.Limit-1, d.Remaining)
		})
	}
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	l := ratelimit.NewFixedWindow(ratelimit.Rule{Name: "t", Limit: 1, Window: time.Minute}, nil)
	ctx := context.Background()

	d, _ := l.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "a")
	assert.False(t, d.Allowed)
	d, _ = l.Allow(ctx, "b")
	assert.True(t, d.Allowed)
}

func TestFixedWindow_WindowStartsOnFirstRequest(t *testing.T) {
	clock := testutil.NewFakeClock()
	l := ratelimit.NewFixedWindow(ratelimit.Rule{Name: "t", Limit: 2, Window: 10 * time.Minute}, clock.Now)
	ctx := context.Background()

	l.Allow(ctx, "ip")
	clock.Advance(9 * time.Minute)
	l.Allow(ctx, "ip")
	d, _ := l.Allow(ctx, "ip")
	assert.False(t, d.Allowed)

	clock.Advance(time.Minute)
	d, _ = l.Allow(ctx, "ip")
	assert.True(t, d.Allowed)
}

func TestFixedWindow_Sweep(t *testing.T) {
	clock := testutil.NewFakeClock()
	l := ratelimit.NewFixedWindow(ratelimit.Rule{Name: "t", Limit: 5, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	l.Allow(ctx, "old")
	clock.Advance(30 * time.Second)
	l.Allow(ctx, "new")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, l.Sweep())
}

func TestDecision_RetryAfter(t *testing.T) {
	now := time.Now()
	d := ratelimit.Decision{ResetAt: now.Add(90 * time.Second)}
	assert.Equal(t, 90*time.Second, d.RetryAfter(now))
	assert.Equal(t, time.Duration(0), d.RetryAfter(now.Add(time.Hour)))
}

func TestRedisWindow_Boundary(t *testing.T) {
	client := testutil.StartRedis(t)
	rule := ratelimit.Rule{Name: "search", Limit: 3, Window: 2 * time.Second}
	l := ratelimit.NewRedisWindow(client, "test:rl:", rule, nil)

	exhaust(t, l, "10.0.0.2", rule.Limit)

	d, err := l.Allow(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.WithinDuration(t, time.Now().Add(rule.Window), d.ResetAt, rule.Window)

	ttl, err := client.PTTL(context.Background(), "test:rl:search:10.0.0.2").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, rule.Window, "later hits must not extend the window")

	time.Sleep(rule.Window + 200*time.Millisecond)
	d, err = l.Allow(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
