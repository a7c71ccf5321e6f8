package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemory_SetAndGet(t *testing.T) {
	c := NewMemory(100)
	ctx := context.Background()

	if err := c.Set(ctx, "key1", "value1", time.Minute); err != nil {
		t.Fatalf("failed to set value: %v", err)
	}

	value, found := c.Get(ctx, "key1")
	if !found {
		t.Error("expected to find key1")
	}
	if value != "value1" {
		t.Errorf("expected value1, got %v", value)
	}

	_, found = c.Get(ctx, "nonexistent")
	if found {
		t.Error("expected not to find nonexistent key")
	}
}

func TestMemory_TTLExpiration(t *testing.T) {
	c := NewMemory(100)
	ctx := context.Background()

	if err := c.Set(ctx, "key1", "value1", 50*time.Millisecond); err != nil {
		t.Fatalf("failed to set value: %v", err)
	}

	_, found := c.Get(ctx, "key1")
	if !found {
		t.Error("expected to find key1 before expiration")
	}

	time.Sleep(100 * time.Millisecond)

	_, found = c.Get(ctx, "key1")
	if found {
		t.Error("expected not to find key1 after expiration")
	}
}

func TestMemory_LRUEviction(t *testing.T) {
	c := NewMemory(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key%d", i)
		if err := c.Set(ctx, key, "v", time.Minute); err != nil {
			t.Fatalf("failed to set value: %v", err)
		}
	}

	if c.Len() != 3 {
		t.Errorf("expected 3 items after eviction, got %d", c.Len())
	}

	// Oldest entries were evicted
	if _, found := c.Get(ctx, "key0"); found {
		t.Error("expected key0 to be evicted")
	}
	if _, found := c.Get(ctx, "key1"); found {
		t.Error("expected key1 to be evicted")
	}

	// Most recent entries remain
	if _, found := c.Get(ctx, "key4"); !found {
		t.Error("expected to find most recent item key4")
	}
}

func TestMemory_GetRefreshesRecency(t *testing.T) {
	c := NewMemory(2)
	ctx := context.Background()

	c.Set(ctx, "a", "1", time.Minute)
	c.Set(ctx, "b", "2", time.Minute)

	// Touch "a" so "b" becomes the eviction candidate
	c.Get(ctx, "a")
	c.Set(ctx, "c", "3", time.Minute)

	if _, found := c.Get(ctx, "a"); !found {
		t.Error("expected recently used 'a' to survive eviction")
	}
	if _, found := c.Get(ctx, "b"); found {
		t.Error("expected least recently used 'b' to be evicted")
	}
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemory(100)
	ctx := context.Background()

	c.Set(ctx, "key1", "value1", time.Minute)
	if _, found := c.Get(ctx, "key1"); !found {
		t.Error("expected to find key1")
	}

	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	if _, found := c.Get(ctx, "key1"); found {
		t.Error("expected not to find key1 after deletion")
	}

	if err := c.Delete(ctx, "nonexistent"); err != nil {
		t.Fatalf("delete of non-existent key should not error: %v", err)
	}
}

func TestMemory_Clear(t *testing.T) {
	c := NewMemory(100)
	ctx := context.Background()

	c.Set(ctx, "key1", "value1", time.Minute)
	c.Set(ctx, "key2", "value2", time.Minute)
	c.Set(ctx, "key3", "value3", time.Minute)

	if c.Len() != 3 {
		t.Errorf("expected 3 items, got %d", c.Len())
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}

	if c.Len() != 0 {
		t.Errorf("expected 0 items after clear, got %d", c.Len())
	}
}

func TestMemory_Metrics(t *testing.T) {
	c := NewMemory(100)
	ctx := context.Background()

	metrics := c.Metrics()
	if metrics.Hits != 0 || metrics.Misses != 0 {
		t.Errorf("expected 0 hits and misses initially, got %d hits and %d misses", metrics.Hits, metrics.Misses)
	}

	c.Set(ctx, "key1", "value1", time.Minute)

	c.Get(ctx, "key1")
	metrics = c.Metrics()
	if metrics.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", metrics.Hits)
	}

	c.Get(ctx, "nonexistent")
	metrics = c.Metrics()
	if metrics.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", metrics.Misses)
	}

	expectedHitRate := 0.5 // 1 hit, 1 miss
	if metrics.HitRate() != expectedHitRate {
		t.Errorf("expected hit rate %f, got %f", expectedHitRate, metrics.HitRate())
	}
}

func TestMetrics_HitRate_Empty(t *testing.T) {
	var m Metrics
	if m.HitRate() != 0.0 {
		t.Errorf("expected 0.0 hit rate with no lookups, got %f", m.HitRate())
	}
}

func TestMemory_UpdateExisting(t *testing.T) {
	c := NewMemory(100)
	ctx := context.Background()

	c.Set(ctx, "key1", "value1", time.Minute)
	c.Set(ctx, "key1", "value2", time.Minute)

	value, found := c.Get(ctx, "key1")
	if !found {
		t.Error("expected to find key1")
	}
	if value != "value2" {
		t.Errorf("expected value2, got %v", value)
	}

	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory(100)
	ctx := context.Background()
	done := make(chan bool)

	// Concurrent writers
	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d", id)
				c.Set(ctx, key, "v", time.Minute)
			}
			done <- true
		}(i)
	}

	// Concurrent readers
	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d", id)
				c.Get(ctx, key)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 20; i++ {
		<-done
	}
}
