package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow is a Limiter shared across processes. The counter key expires
// one Window after the first request that created it.
type RedisWindow struct {
	client redis.UniversalClient
	prefix string
	rule   Rule
	now    func() time.Time
}

// NewRedisWindow creates a Redis-backed limiter. Keys are stored as
// prefix + rule name + ":" + key.
func NewRedisWindow(client redis.UniversalClient, prefix string, rule Rule, now func() time.Time) *RedisWindow {
	if now == nil {
		now = time.Now
	}
	return &RedisWindow{client: client, prefix: prefix, rule: rule, now: now}
}

func (l *RedisWindow) Rule() Rule {
	return l.rule
}

func (l *RedisWindow) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := l.prefix + l.rule.Name + ":" + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.rule.Window)
	pttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", l.rule.Name, err)
	}

	ttl := pttl.Val()
	if ttl < 0 {
		ttl = l.rule.Window
	}
	count := int(incr.Val())
	remaining := l.rule.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= l.rule.Limit,
		Limit:     l.rule.Limit,
		Remaining: remaining,
		ResetAt:   l.now().Add(ttl),
	}, nil
}
