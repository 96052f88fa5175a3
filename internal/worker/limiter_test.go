package worker

import (
	"context"
	"testing"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "graph"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// A different target holds its own bucket
	if err := limiter.Wait(ctx, "store"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "graph"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst of 1 is consumed; Allow must fail without blocking.
	if limiter.Allow("graph") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// Another target is unaffected
	if !limiter.Allow("store") {
		t.Errorf("expected allow for other target")
	}
}

func TestLimiter_SetTargetRate(t *testing.T) {
	limiter := NewLimiter(10, 10) // fast default

	limiter.SetTargetRate("slow", 0.1, 1)

	if !limiter.Allow("slow") {
		t.Errorf("first request should pass")
	}

	if limiter.Allow("slow") {
		t.Errorf("second request should fail")
	}

	// Other targets still fast
	if !limiter.Allow("fast") {
		t.Errorf("other target should pass")
	}
}
