package ratelimit

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFixedWindowBoundary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := New(NewMemoryStore(), "", 5, 15*time.Minute)
	l.Now = func() time.Time { return now }

	for i := 1; i <= 5; i++ {
		d, err := l.Allow(ctx, "1.2.3.4")
		if err != nil || !d.Allowed {
			t.Fatalf("request %d rejected: %+v %v", i, d, err)
		}
	}
	d, _ := l.Allow(ctx, "1.2.3.4")
	if d.Allowed {
		t.Fatalf("6th request allowed")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > 900 {
		t.Fatalf("retryAfter = %d", d.RetryAfter)
	}

	now = now.Add(15 * time.Minute)
	d, _ = l.Allow(ctx, "1.2.3.4")
	if !d.Allowed || d.Count != 1 {
		t.Fatalf("window did not reset: %+v", d)
	}
}

func TestRetryAfterCountsDown(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := New(NewMemoryStore(), "", 1, time.Minute)
	l.Now = func() time.Time { return now }

	_, _ = l.Allow(ctx, "k")
	now = now.Add(45*time.Second + 100*time.Millisecond)
	d, _ := l.Allow(ctx, "k")
	if d.Allowed || d.RetryAfter != 15 {
		t.Fatalf("expected retryAfter 15, got %+v", d)
	}
}

func TestPrefixesKeepCountersApart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	general := New(store, "", 1, time.Minute)
	auth := New(store, "auth:", 1, time.Minute)

	if d, _ := general.Allow(ctx, "ip"); !d.Allowed {
		t.Fatalf("general rejected")
	}
	if d, _ := auth.Allow(ctx, "ip"); !d.Allowed {
		t.Fatalf("auth counter collided with general")
	}
	if d, _ := auth.Allow(ctx, "ip"); d.Allowed {
		t.Fatalf("auth second hit allowed")
	}
}

func TestSweepRemovesElapsedWindows(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryStore()
	_, _, _ = s.Hit(ctx, "old", time.Minute, now.Add(-2*time.Minute))
	_, _, _ = s.Hit(ctx, "fresh", time.Minute, now)

	if n := s.Sweep(now); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestStartSweeperRejectsBadSpec(t *testing.T) {
	if _, err := StartSweeper("not a spec", NewMemoryStore(), zap.NewNop()); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
	c, err := StartSweeper("@hourly", NewMemoryStore(), zap.NewNop())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	<-c.Stop().Done()
}
