package gdrive

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestGovernorEnforcesMinimumInterval(t *testing.T) {
	interval := 50 * time.Millisecond

	slept := []time.Duration{}

	g := NewGovernor(interval)
	g.sleep = func(d time.Duration) {
		slept = append(slept, d)
	}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := g.Acquire(context.Background()); err != nil {
			t.Fatalf("Unexpected error returned from Acquire (%v)", err)
		}
	}

	// first acquisition is immediate, the next two each wait a full interval
	if elapsed := time.Since(start); elapsed < 2*interval {
		t.Errorf("3 acquisitions completed in %v - expected at least %v", elapsed, 2*interval)
	}

	if len(slept) != 3 {
		t.Fatalf("Expected 3 jitter sleeps, got %v", len(slept))
	}

	for _, d := range slept {
		if d < 0 || d >= 400*time.Millisecond {
			t.Errorf("Jitter %v outside the 0..400ms bound", d)
		}
	}
}

func TestNewGovernorDefaultInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		g := NewGovernor(interval)

		if limit := g.limiter.Limit(); limit != rate.Every(DefaultThrottle) {
			t.Errorf("Incorrect limit for interval %v - expected %v, got %v", interval, rate.Every(DefaultThrottle), limit)
		}
	}
}

func TestNewGovernorInterval(t *testing.T) {
	g := NewGovernor(5 * time.Second)

	if limit := g.limiter.Limit(); limit != rate.Every(5*time.Second) {
		t.Errorf("Incorrect limit - expected %v, got %v", rate.Every(5*time.Second), limit)
	}

	if g.limiter.Burst() != 1 {
		t.Errorf("Incorrect burst - expected 1, got %v", g.limiter.Burst())
	}

	if g.jitter != 400*time.Millisecond {
		t.Errorf("Incorrect jitter bound - expected 400ms, got %v", g.jitter)
	}
}

func TestGovernorAcquireWithCancelledContext(t *testing.T) {
	g := NewGovernor(time.Minute)
	g.sleep = func(time.Duration) {}

	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("Unexpected error returned from Acquire (%v)", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := g.Acquire(ctx); err == nil {
		t.Errorf("Expected error for cancelled context, got %v", err)
	}
}
