package cache

import (
	"context"
	"testing"
	"time"
)

func TestTTLCacheBytes(t *testing.T) {
	c := NewTTLCache()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if _, ok, err := c.GetBytes(ctx, "stats:1"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.SetBytes(ctx, "stats:1", []byte(`{"total_stocks":3}`), 5*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, ok, err := c.GetBytes(ctx, "stats:1")
	if !ok || err != nil || string(b) != `{"total_stocks":3}` {
		t.Fatalf("get: %s %v %v", b, ok, err)
	}

	now = now.Add(6 * time.Second)
	if _, ok, _ := c.GetBytes(ctx, "stats:1"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestTTLCacheNonBytesValueIsMiss(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", 42, 0)
	if _, ok, _ := c.GetBytes(context.Background(), "k"); ok {
		t.Fatalf("non-byte value returned as bytes")
	}
	if v, ok := c.Get("k"); !ok || v.(int) != 42 {
		t.Fatalf("get %v %v", v, ok)
	}
}

func TestTTLCachePurge(t *testing.T) {
	c := NewTTLCache()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set("short", []byte("a"), time.Second)
	c.Set("forever", []byte("b"), 0)
	now = now.Add(time.Minute)
	if n := c.Purge(); n != 1 {
		t.Fatalf("purged %d", n)
	}
	if _, ok := c.Get("forever"); !ok {
		t.Fatalf("entry without ttl was purged")
	}
}
