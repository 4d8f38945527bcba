package cache

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](2, time.Minute)

	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	_ = c.Set(ctx, "a", 1)
	_ = c.Set(ctx, "b", 2)
	if v, ok, err := c.Get(ctx, "a"); !ok || v != 1 || err != nil {
		t.Fatalf("Get(a) = %v, %v, %v", v, ok, err)
	}

	// a is now most recently used, so adding c evicts b
	_ = c.Set(ctx, "c", 3)
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 2 {
		t.Fatalf("Stats() = %d/%d, want 1/2", hits, misses)
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "a", "x")
	_ = c.Set(ctx, "b", "y")
	now = now.Add(2 * time.Minute)
	_ = c.Set(ctx, "c", "z")

	if removed := c.CleanExpired(); removed != 2 {
		t.Fatalf("CleanExpired() = %d, want 2", removed)
	}
	if _, ok, _ := c.Get(ctx, "c"); !ok {
		t.Fatalf("fresh entry must survive cleanup")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "c"); ok {
		t.Fatalf("expired entry must miss on Get")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry must be removed on Get")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](10, time.Minute)
	_ = c.Set(ctx, "a", 1)
	_ = c.Set(ctx, "b", 2)
	_ = c.Delete(ctx, "a", "b", "missing")
	if c.Size() != 0 {
		t.Fatalf("Size() = %d after delete", c.Size())
	}
}

func TestManagerStop(t *testing.T) {
	m := NewManager(slog.Default())
	m.Register(NewLRUCache[int](1, time.Millisecond))
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
	m.Stop()

	idle := NewManager(nil)
	idle.Stop()
}
