package risk

import (
	"container/list"
	"sync"
	"time"
)

// DefaultCacheCapacity bounds the decision cache. Entries beyond it evict in
// least-recently-used order even before their TTL runs out.
const DefaultCacheCapacity = 4096

type cacheEntry struct {
	key       string
	decision  Decision
	expiresAt time.Time
}

// Cache maps request fingerprints to decisions with per-entry expiry and a
// bounded LRU. A ttl of 0 disables it entirely: Get always misses and Put
// stores nothing.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached decision for key, if present and unexpired.
func (c *Cache) Get(key string, ttl time.Duration) (Decision, bool) {
	if ttl <= 0 {
		return Decision{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return Decision{}, false
	}
	ent := el.Value.(*cacheEntry)
	if c.now().After(ent.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return Decision{}, false
	}
	c.order.MoveToFront(el)
	return ent.decision, true
}

// Put stores a decision under key for ttl, evicting the least recently used
// entry when the cache is full.
func (c *Cache) Put(key string, d Decision, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*cacheEntry)
		ent.decision = d
		ent.expiresAt = c.now().Add(ttl)
		c.order.MoveToFront(el)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}

	ent := &cacheEntry{key: key, decision: d, expiresAt: c.now().Add(ttl)}
	c.entries[key] = c.order.PushFront(ent)
}

// Len reports the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
