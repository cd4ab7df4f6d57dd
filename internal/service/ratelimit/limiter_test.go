package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstPerKey(t *testing.T) {
	l := New(1, 3)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("request beyond burst should be rejected")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("token should refill after one second")
	}
}

func TestLimiterSweep(t *testing.T) {
	l := New(10, 1)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(time.Minute)
	l.Allow("b")

	if n := l.Sweep(30 * time.Second); n != 1 {
		t.Fatalf("swept %d", n)
	}
	if l.Len() != 1 {
		t.Fatalf("len %d", l.Len())
	}
}

func TestNewClampsBurst(t *testing.T) {
	l := New(1, 0)
	if !l.Allow("x") {
		t.Fatalf("zero burst should be clamped to one")
	}
}
