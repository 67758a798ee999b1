package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterInfo holds a client's token bucket and the last time it was seen.
type limiterInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipThrottle is a per-IP token bucket table.
type ipThrottle struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func (t *ipThrottle) allow(ip string, now time.Time) bool {
	actual, _ := t.limiters.LoadOrStore(ip, &limiterInfo{
		limiter:  rate.NewLimiter(t.rps, t.burst),
		lastSeen: now,
	})
	info := actual.(*limiterInfo)
	info.lastSeen = now
	return info.limiter.AllowN(now, 1)
}

// sweep forgets clients idle for longer than expiration.
func (t *ipThrottle) sweep(now time.Time, expiration time.Duration) {
	t.limiters.Range(func(key, value interface{}) bool {
		if now.Sub(value.(*limiterInfo).lastSeen) > expiration {
			t.limiters.Delete(key)
		}
		return true
	})
}

// ThrottleByIP is a coarse token-bucket throttle in front of every route,
// independent of the per-endpoint upstream budgets. Idle clients are
// forgotten every cleanupInterval until ctx is done.
func ThrottleByIP(ctx context.Context, rps float64, burst int, cleanupInterval, expiration time.Duration) gin.HandlerFunc {
	t := &ipThrottle{rps: rate.Limit(rps), burst: burst}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				t.sweep(now, expiration)
			}
		}
	}()

	return func(c *gin.Context) {
		if !t.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", "1")
			abort(c, http.StatusTooManyRequests, "rate_limited", "Too many requests")
			return
		}
		c.Next()
	}
}
