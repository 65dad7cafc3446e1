package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Interval(t *testing.T) {
	l := New("test", 300, 60*time.Second)
	if l.Interval() != 200*time.Millisecond {
		t.Errorf("expected 200ms, got %v", l.Interval())
	}
}

func TestLimiter_FirstSlotImmediate(t *testing.T) {
	l := New("test", 1, time.Hour)

	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("first slot should be immediate, took %v", elapsed)
	}
}

// grantGaps performs n waits and returns the spacing between consecutive grants.
func grantGaps(t *testing.T, l *Limiter, n int) []time.Duration {
	t.Helper()
	ctx := context.Background()

	var (
		gaps []time.Duration
		prev time.Time
	)
	for i := 0; i < n; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
		grant := l.LastGrant()
		if !prev.IsZero() {
			gaps = append(gaps, grant.Sub(prev))
		}
		prev = grant
	}
	return gaps
}

func TestLimiter_ConsecutiveSlotsSpaced(t *testing.T) {
	cases := []struct {
		maxRequests int
		window      time.Duration
	}{
		{10, time.Second},           // 100ms
		{7, 100 * time.Millisecond}, // 14.285714ms, not a multiple of the timer tick
		{3, 200 * time.Millisecond}, // 66.67ms
	}
	for _, tc := range cases {
		l := New("test", tc.maxRequests, tc.window)
		for i, gap := range grantGaps(t, l, 8) {
			if gap < l.Interval() {
				t.Errorf("New(%d, %v): slot %d granted %v after the previous one, want >= %v",
					tc.maxRequests, tc.window, i+1, gap, l.Interval())
			}
		}
	}
}

func TestLimiter_SpacingSurvivesSlowCaller(t *testing.T) {
	l := New("test", 20, time.Second) // 50ms
	ctx := context.Background()

	// A caller holding each slot for part of the interval must not shorten the next gap.
	var prev time.Time
	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
		grant := l.LastGrant()
		if !prev.IsZero() && grant.Sub(prev) < l.Interval() {
			t.Errorf("slot %d granted %v after the previous one, want >= %v", i, grant.Sub(prev), l.Interval())
		}
		prev = grant
		time.Sleep(time.Duration(i*7) * time.Millisecond)
	}
}

func TestLimiter_IdleDoesNotAccumulateBurst(t *testing.T) {
	l := New("test", 20, time.Second) // 50ms
	ctx := context.Background()

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	// After idling, one slot is available immediately but the next must still wait.
	gaps := grantGaps(t, l, 2)
	if len(gaps) != 1 || gaps[0] < l.Interval() {
		t.Errorf("expected spacing after idle, got %v", gaps)
	}
}

func TestLimiter_ContextCancelled(t *testing.T) {
	l := New("test", 1, time.Hour)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("expected error when context expires before slot")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := New("test", 0, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("disabled limiter should not wait, took %v", elapsed)
	}
}
