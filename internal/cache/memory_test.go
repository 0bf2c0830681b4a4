package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// TestMemoryPutGet tests basic storage and retrieval.
func TestMemoryPutGet(t *testing.T) {
	c := NewMemory(1024)

	if err := c.Put("key1", []byte("value1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("Get returned not found")
	}
	if string(got) != "value1" {
		t.Errorf("Get = %q, want value1", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get found a missing key")
	}
}

// TestMemoryUpdateExisting tests overwriting a key and size accounting.
func TestMemoryUpdateExisting(t *testing.T) {
	c := NewMemory(1024)

	c.Put("key", []byte("short"))
	c.Put("key", []byte("a much longer value"))

	got, _ := c.Get("key")
	if string(got) != "a much longer value" {
		t.Errorf("Get = %q", got)
	}
	if c.Size() != int64(len("a much longer value")) {
		t.Errorf("Size = %d, want %d", c.Size(), len("a much longer value"))
	}
}

// TestMemoryLRUEviction tests that the least recently used entry goes first.
func TestMemoryLRUEviction(t *testing.T) {
	c := NewMemory(30)

	c.Put("a", make([]byte, 10))
	c.Put("b", make([]byte, 10))
	c.Put("c", make([]byte, 10))

	// Touch "a" so "b" becomes the oldest.
	c.Get("a")

	c.Put("d", make([]byte, 10))

	if c.Contains("b") {
		t.Error("least recently used entry not evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if !c.Contains(key) {
			t.Errorf("entry %q unexpectedly evicted", key)
		}
	}
}

// TestMemoryItemTooLarge tests rejection of items over capacity.
func TestMemoryItemTooLarge(t *testing.T) {
	c := NewMemory(10)

	if err := c.Put("big", make([]byte, 11)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put error = %v, want ErrItemTooLarge", err)
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d after rejected Put", c.Size())
	}
}

// TestMemoryDeleteClear tests removal.
func TestMemoryDeleteClear(t *testing.T) {
	c := NewMemory(1024)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	c.Delete("a")
	if c.Contains("a") {
		t.Error("deleted key still present")
	}
	c.Delete("a") // no-op

	c.Clear()
	if c.Size() != 0 || c.Contains("b") {
		t.Error("Clear left entries behind")
	}
}

// TestMemoryStats tests hit and eviction accounting.
func TestMemoryStats(t *testing.T) {
	c := NewMemory(20)

	c.Put("a", make([]byte, 10))
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	c.Put("b", make([]byte, 10))
	c.Put("c", make([]byte, 10)) // evicts the oldest

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
	if stats.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", stats.ItemCount)
	}
	if stats.HitRate < 0.6 || stats.HitRate > 0.7 {
		t.Errorf("HitRate = %f, want 2/3", stats.HitRate)
	}
}

// TestMemoryPrune tests age-based pruning.
func TestMemoryPrune(t *testing.T) {
	c := NewMemory(1024)

	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("key%d", i), []byte("v"))
	}

	// Nothing is older than an hour.
	if pruned := c.Prune(time.Hour); pruned != 0 {
		t.Errorf("Prune(1h) = %d, want 0", pruned)
	}

	// Everything is older than zero.
	if pruned := c.Prune(0); pruned != 5 {
		t.Errorf("Prune(0) = %d, want 5", pruned)
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d after full prune", c.Size())
	}
}
