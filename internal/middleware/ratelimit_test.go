package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    5,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	for i := 0; i < 5; i++ {
		if !rl.Allow("test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_BlocksAfterMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    3,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	for i := 0; i < 3; i++ {
		rl.Allow("test-ip")
	}

	if rl.Allow("test-ip") {
		t.Fatal("4th request should be blocked")
	}
}

func TestRateLimiter_DifferentKeysIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	rl.Allow("ip-a")
	rl.Allow("ip-a")

	// ip-a is exhausted
	if rl.Allow("ip-a") {
		t.Fatal("ip-a should be blocked")
	}

	// ip-b should still be allowed
	if !rl.Allow("ip-b") {
		t.Fatal("ip-b should be allowed (independent key)")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: 50 * time.Millisecond,
		KeyFn:  KeyByIP,
	})

	rl.Allow("test")
	rl.Allow("test")

	if rl.Allow("test") {
		t.Fatal("should be blocked within window")
	}

	// Wait for window to expire
	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("test") {
		t.Fatal("should be allowed after window reset")
	}
}

func TestRateLimiter_DiscussionCreateConfig(t *testing.T) {
	rl := NewDiscussionCreateRateLimiter()
	for i := 0; i < 20; i++ {
		if !rl.Allow("ip:10.0.0.1") {
			t.Fatalf("discussion create %d should be allowed (max 20)", i+1)
		}
	}
	if rl.Allow("ip:10.0.0.1") {
		t.Fatal("21st discussion create should be blocked")
	}
}

func TestRateLimiter_WSUpgradeConfig(t *testing.T) {
	rl := NewWSUpgradeRateLimiter()
	for i := 0; i < 30; i++ {
		if !rl.Allow("ip:10.0.0.1") {
			t.Fatalf("upgrade %d should be allowed (max 30)", i+1)
		}
	}
	if rl.Allow("ip:10.0.0.1") {
		t.Fatal("31st upgrade should be blocked")
	}
}
