// Package ratelimit implements fixed-window request counting keyed by client.
package ratelimit

import (
	"context"
	"math"
	"time"
)

// Store counts hits per key inside a fixed window.
type Store interface {
	// Hit records one request for key. When no window is open, or the open one has
	// elapsed, a new window [now, now+window) starts with count 1.
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (count int, resetAt time.Time, err error)
}

// Sweeper is implemented by stores that must drop elapsed windows themselves.
type Sweeper interface {
	Sweep(now time.Time) int
}

type Decision struct {
	Allowed    bool
	Count      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds until the window resets; set only when rejected
}

// Limiter allows at most Max hits per Window for each key. Prefix keeps counters
// of differently configured limiters apart for the same client.
type Limiter struct {
	Max    int
	Window time.Duration
	Prefix string
	Store  Store
	Now    func() time.Time
}

func New(store Store, prefix string, max int, window time.Duration) *Limiter {
	return &Limiter{Max: max, Window: window, Prefix: prefix, Store: store, Now: time.Now}
}

func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	count, resetAt, err := l.Store.Hit(ctx, l.Prefix+key, l.Window, now)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{Count: count, ResetAt: resetAt, Remaining: max(0, l.Max-count)}
	if count <= l.Max {
		d.Allowed = true
		return d, nil
	}
	d.RetryAfter = max(1, int(math.Ceil(resetAt.Sub(now).Seconds())))
	return d, nil
}
