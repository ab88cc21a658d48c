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

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.WaitURL(ctx, "https://static.example.com/horoscopes/2025-01-15_en.txt"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Provider keys are independent of hosts
	if err := limiter.Wait(ctx, "llm"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	err := limiter.WaitWithDelay(ctx, "static.example.com", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	duration := time.Since(start)
	if duration < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", duration)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.WaitURL(ctx, "https://static.example.com/a.txt"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Same host shares the bucket
	if limiter.Allow("static.example.com") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("other.example.com") {
		t.Errorf("expected allow for other host")
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)

	limiter.SetRate("llm", 0.1, 1)

	if !limiter.Allow("llm") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("llm") {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("static.example.com") {
		t.Errorf("other key should pass")
	}
}

func TestLimiter_ZeroRateIsUnlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !limiter.Allow("llm") {
			t.Fatalf("request %d throttled with zero rate", i)
		}
	}
}

func TestLimiter_CancelledWait(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	limiter.Allow("llm")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Wait(ctx, "llm"); err == nil {
		t.Error("expected error from cancelled wait")
	}
}

func TestHostKey(t *testing.T) {
	host, err := hostKey("https://static.example.com/foo")
	if err != nil {
		t.Fatalf("hostKey failed: %v", err)
	}
	if host != "static.example.com" {
		t.Errorf("expected static.example.com, got %s", host)
	}

	_, err = hostKey("::invalid")
	if err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
