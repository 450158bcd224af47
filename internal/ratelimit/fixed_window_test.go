package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowAllowsWithinLimit(t *testing.T) {
	srv := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(srv.Addr(), "", "test:rl", 3, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}

	for i := 0; i < 3; i++ {
		if !limiter.Allow("1.2.3.4") {
			t.Fatalf("request %d within limit was denied", i+1)
		}
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatalf("request over limit was allowed")
	}
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	srv := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(srv.Addr(), "", "test:rl", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}

	if !limiter.Allow("1.2.3.4") {
		t.Fatalf("first key denied")
	}
	if !limiter.Allow("5.6.7.8") {
		t.Fatalf("second key must have its own quota")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatalf("first key over limit was allowed")
	}
}

func TestFixedWindowFailsClosedWhenRedisDown(t *testing.T) {
	srv := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(srv.Addr(), "", "test:rl", 10, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	srv.Close()

	if limiter.Allow("1.2.3.4") {
		t.Fatalf("limiter must deny when redis is unreachable")
	}
}

func TestFixedWindowRejectsBadConfig(t *testing.T) {
	if _, err := NewRedisFixedWindowLimiter("localhost:6379", "", "", 0, time.Minute); err == nil {
		t.Fatalf("zero limit must be rejected")
	}
	if _, err := NewRedisFixedWindowLimiter("", "", "", 5, time.Minute); err == nil {
		t.Fatalf("empty addr must be rejected")
	}
}
