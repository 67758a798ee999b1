// Package ratelimit implements per-client fixed-window request budgets.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Rule is a budget of Limit requests per Window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Budgets for the upstream-calling endpoints. Each gets its own limiter.
var (
	SearchRule           = Rule{Name: "search", Limit: 20, Window: 15 * time.Minute}
	SearchDetailRule     = Rule{Name: "search_detail", Limit: 20, Window: 15 * time.Minute}
	SuggestionRule       = Rule{Name: "suggestions", Limit: 10, Window: 15 * time.Minute}
	SuggestionDetailRule = Rule{Name: "suggestion_detail", Limit: 10, Window: 15 * time.Minute}
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long the caller should wait before the window resets.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if wait := d.ResetAt.Sub(now); wait > 0 {
		return wait
	}
	return 0
}

// Limiter counts one request for key and reports whether it fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Rule() Rule
}

type window struct {
	count int
	start time.Time
}

// FixedWindow is an in-memory Limiter. A key's window starts on its first
// request and resets once Window has elapsed.
type FixedWindow struct {
	rule Rule
	now  func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// NewFixedWindow creates an in-memory limiter. A nil now uses time.Now.
func NewFixedWindow(rule Rule, now func() time.Time) *FixedWindow {
	if now == nil {
		now = time.Now
	}
	return &FixedWindow{rule: rule, now: now, windows: make(map[string]*window)}
}

func (l *FixedWindow) Rule() Rule {
	return l.rule
}

func (l *FixedWindow) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.rule.Window {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++
	return l.decide(w.count, w.start.Add(l.rule.Window)), nil
}

// Sweep drops windows that have expired. It returns how many were removed.
func (l *FixedWindow) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.rule.Window {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

func (l *FixedWindow) decide(count int, resetAt time.Time) Decision {
	remaining := l.rule.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= l.rule.Limit,
		Limit:     l.rule.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
