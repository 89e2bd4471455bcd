package risk

import (
	"fmt"
	"testing"
	"time"
)

func TestCache_PutGet(t *testing.T) {
	c := NewCache(10)
	d := Decision{TierLow, 10, "ok"}

	c.Put("k1", d, time.Minute)
	got, ok := c.Get("k1", time.Minute)
	if !ok || got != d {
		t.Fatalf("expected hit with %+v, got %+v ok=%v", d, got, ok)
	}

	if _, ok := c.Get("k2", time.Minute); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCache_ZeroTTLDisables(t *testing.T) {
	c := NewCache(10)

	c.Put("k", Decision{TierLow, 1, ""}, 0)
	if c.Len() != 0 {
		t.Error("put with ttl 0 must store nothing")
	}

	c.Put("k", Decision{TierLow, 1, ""}, time.Minute)
	if _, ok := c.Get("k", 0); ok {
		t.Error("get with ttl 0 must always miss")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(10)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put("k", Decision{TierHigh, 90, ""}, 30*time.Second)

	now = now.Add(29 * time.Second)
	if _, ok := c.Get("k", 30*time.Second); !ok {
		t.Error("entry should still be live at 29s")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k", 30*time.Second); ok {
		t.Error("entry should have expired at 31s")
	}
	if c.Len() != 0 {
		t.Error("expired entry should be removed on read")
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := NewCache(3)
	ttl := time.Minute

	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), Decision{TierLow, i, ""}, ttl)
	}
	// Touch k0 so k1 becomes the eviction candidate.
	c.Get("k0", ttl)

	c.Put("k3", Decision{TierLow, 3, ""}, ttl)

	if _, ok := c.Get("k1", ttl); ok {
		t.Error("k1 should have been evicted as least recently used")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if _, ok := c.Get(k, ttl); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
}

func TestCache_UpdateExistingKey(t *testing.T) {
	c := NewCache(2)
	ttl := time.Minute

	c.Put("k", Decision{TierLow, 1, ""}, ttl)
	c.Put("k", Decision{TierHigh, 99, ""}, ttl)

	got, ok := c.Get("k", ttl)
	if !ok || got.Score != 99 {
		t.Errorf("expected updated entry, got %+v ok=%v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected single entry, got %d", c.Len())
	}
}
