package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/use-agent/filmreview/models"
	"github.com/use-agent/filmreview/scraper"
)

// entry holds a cached result with its creation timestamp.
type entry struct {
	result    *models.ExtractionResult
	createdAt time.Time
}

// Cache is a simple in-memory cache for successful extractions.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	done       chan struct{}
	closeOnce  sync.Once
}

// New creates a Cache holding at most maxEntries results for ttl each.
// A background goroutine evicts expired entries until Close is called.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// Key identifies a film the way the review site does: by slug and year.
// Titles differing only in case, accents or punctuation share a key.
func Key(title string, year int) string {
	return fmt.Sprintf("%s|%d", scraper.NormalizeTitle(title), year)
}

// Get returns a copy of the cached result if it is younger than the TTL.
func (c *Cache) Get(key string) (*models.ExtractionResult, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.createdAt) > c.ttl {
		return nil, false
	}

	cp := *e.result
	return &cp, true
}

// Set stores a successful result. Failures are never cached. If the cache
// is at capacity, a random entry is evicted to make room.
func (c *Cache) Set(key string, result *models.ExtractionResult) {
	if result == nil || !result.Success || c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	cp := *result
	c.store[key] = &entry{
		result:    &cp,
		createdAt: c.now(),
	}
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// cleanupLoop evicts expired entries every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}
