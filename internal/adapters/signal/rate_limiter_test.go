package signal

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("first two signals rejected")
	}
	if rl.Allow("a") {
		t.Fatalf("third signal in window allowed")
	}
	if !rl.Allow("b") {
		t.Fatalf("limit leaked across sessions")
	}

	now = now.Add(1100 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatalf("signal rejected after window slid")
	}
}

func TestRateLimiterForget(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	if rl.Allow("a") {
		t.Fatalf("limit not enforced")
	}
	rl.Forget("a")
	if !rl.Allow("a") {
		t.Fatalf("Forget kept history")
	}
}
