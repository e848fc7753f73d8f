package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	expiration time.Time
}

// MemoryCache is a size-bounded TTL cache. A janitor goroutine removes
// expired entries until Close is called.
type MemoryCache[V any] struct {
	data       map[string]entry[V]
	mutex      sync.RWMutex
	ttl        time.Duration
	maxSize    int
	cleanupInt time.Duration
	stopChan   chan struct{}
	closeOnce  sync.Once
	now        func() time.Time
}

func NewMemoryCache[V any](ttl time.Duration, maxSize int) *MemoryCache[V] {
	if maxSize < 1 {
		maxSize = 1
	}
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}

	c := &MemoryCache[V]{
		data:       make(map[string]entry[V]),
		ttl:        ttl,
		maxSize:    maxSize,
		cleanupInt: cleanup,
		stopChan:   make(chan struct{}),
		now:        time.Now,
	}

	go c.cleanupExpiredEntries()

	return c
}

func (c *MemoryCache[V]) Set(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; !exists && len(c.data) >= c.maxSize {
		c.evictOldestEntry()
	}

	c.data[key] = entry[V]{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mutex.RLock()
	e, exists := c.data[key]
	c.mutex.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}
	if c.now().After(e.expiration) {
		c.Delete(key)
		return zero, false
	}
	return e.value, true
}

func (c *MemoryCache[V]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
}

func (c *MemoryCache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]entry[V])
}

func (c *MemoryCache[V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.data)
}

// evictOldestEntry must be called with the write lock held
func (c *MemoryCache[V]) evictOldestEntry() {
	var oldestKey string
	var oldestTime time.Time

	for key, e := range c.data {
		if oldestKey == "" || e.expiration.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.expiration
		}
	}

	if oldestKey != "" {
		delete(c.data, oldestKey)
	}
}

func (c *MemoryCache[V]) cleanupExpiredEntries() {
	ticker := time.NewTicker(c.cleanupInt)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpiredEntries()
		case <-c.stopChan:
			return
		}
	}
}

func (c *MemoryCache[V]) removeExpiredEntries() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.data {
		if now.After(e.expiration) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Stats reports the cache occupancy
type Stats struct {
	Entries int
	Expired int
	MaxSize int
	TTL     time.Duration
}

func (c *MemoryCache[V]) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	expired := 0
	now := c.now()
	for _, e := range c.data {
		if now.After(e.expiration) {
			expired++
		}
	}

	return Stats{Entries: len(c.data), Expired: expired, MaxSize: c.maxSize, TTL: c.ttl}
}

// Close stops the janitor and empties the cache. It is safe to call twice.
func (c *MemoryCache[V]) Close() {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.Clear()
	})
}
