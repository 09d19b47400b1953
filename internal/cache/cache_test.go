package cache

import (
	"testing"
	"time"
)

func TestLRUCacheSetAndGet(t *testing.T) {
	c := NewLRUCache(WithCapacity(10))
	if err := c.Set("a", "value-a", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("expected a hit for key \"a\"")
	}
	if got != "value-a" {
		t.Errorf("Get(a) = %v, want value-a", got)
	}
}

func TestLRUCacheMissIncrementsStats(t *testing.T) {
	c := NewLRUCache(WithCapacity(10))
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected a miss for an unset key")
	}
	if c.Stats().Misses != 1 {
		t.Errorf("Misses = %d, want 1", c.Stats().Misses)
	}
}

func TestLRUCacheEvictsOldestOverCapacity(t *testing.T) {
	c := NewLRUCache(WithCapacity(2))
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	c.Set("c", "3", 0) // evicts "a", the least recently used

	if _, ok := c.Get("a"); ok {
		t.Error("expected \"a\" to have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected \"b\" to still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected \"c\" to still be cached")
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestLRUCacheGetRefreshesRecency(t *testing.T) {
	c := NewLRUCache(WithCapacity(2))
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	c.Get("a")              // "a" is now most-recently used
	c.Set("c", "3", 0)      // evicts "b" instead of "a"

	if _, ok := c.Get("b"); ok {
		t.Error("expected \"b\" to have been evicted, not \"a\"")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected \"a\" to survive eviction after a recent Get")
	}
}

func TestLRUCacheExpiresByTTL(t *testing.T) {
	c := NewLRUCache(WithCapacity(10))
	if err := c.Set("a", "1", time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expected \"a\" to have expired")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache(WithCapacity(10))
	c.Set("a", "1", 0)
	if err := c.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected \"a\" to be gone after Delete")
	}
}

func TestLRUCacheClear(t *testing.T) {
	c := NewLRUCache(WithCapacity(10))
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c.Stats().EntryCount != 0 {
		t.Errorf("EntryCount after Clear = %d, want 0", c.Stats().EntryCount)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected cache to be empty after Clear")
	}
}

func TestLRUCacheOnEvictCallback(t *testing.T) {
	var evictedKeys []string
	c := NewLRUCache(WithCapacity(1), WithOnEvict(func(key string, value interface{}) {
		evictedKeys = append(evictedKeys, key)
	}))
	c.Set("a", "1", 0)
	c.Set("b", "2", 0) // evicts "a"
	if len(evictedKeys) != 1 || evictedKeys[0] != "a" {
		t.Errorf("evictedKeys = %v, want [a]", evictedKeys)
	}
}

func TestUnitKeyIsDeterministicAndContentAddressed(t *testing.T) {
	k1 := UnitKey("same source")
	k2 := UnitKey("same source")
	k3 := UnitKey("different source")
	if k1 != k2 {
		t.Errorf("UnitKey not deterministic: %q != %q", k1, k2)
	}
	if k1 == k3 {
		t.Error("expected different sources to produce different keys")
	}
}
