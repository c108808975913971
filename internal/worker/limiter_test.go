package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, 0)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://www.g2.com/products/slack/reviews"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// A different platform domain has its own bucket.
	if err := limiter.Wait(ctx, "https://www.trustpilot.com/review/slack.com"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	err := limiter.WaitWithDelay(ctx, "https://www.g2.com", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", elapsed)
	}
}

func TestLimiter_WaitWithDelay_Cancelled(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.WaitWithDelay(ctx, "https://www.g2.com", time.Second)
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestLimiter_SetDomainRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetDomainRate("www.capterra.com", 100, 10)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(ctx, "https://www.capterra.com/software-search"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}

	// 5 requests at 100 rps with burst 10 should clear nearly instantly;
	// the 1 rps default would have taken seconds.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("domain override not applied, waits took %v", elapsed)
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	limiter := NewLimiter(10, 1)
	if err := limiter.Wait(context.Background(), "://not a url"); err == nil {
		t.Error("expected error for unparseable URL")
	}
}
