package tracker

import (
	"strings"
	"sync"
	"time"

	"github.com/hunterjsb/octanecore/internal/accounts"
)

// Cache provides a short-lived in-memory cache of stats snapshots.
// It is safe for concurrent use. A nil *Cache is valid and caches nothing.
type Cache struct {
	mu sync.RWMutex

	ttl       time.Duration
	snapshots map[string]cachedItem[*Snapshot] // key: platform/username

	// janitor
	janitorStop chan struct{}
}

// cachedItem wraps a cached value with an expiration time.
type cachedItem[T any] struct {
	value     T
	expiresAt time.Time
}

// NewCache creates a cache whose entries live for ttl.
// It returns nil when ttl <= 0 so callers can pass the result straight to WithCache.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return nil
	}
	return &Cache{
		ttl:       ttl,
		snapshots: make(map[string]cachedItem[*Snapshot]),
	}
}

func cacheKey(platform accounts.Platform, username string) string {
	return string(platform) + "/" + strings.ToLower(username)
}

// Set caches a snapshot for platform/username.
func (c *Cache) Set(platform accounts.Platform, username string, snap *Snapshot) {
	if c == nil || snap == nil || username == "" {
		return
	}
	exp := time.Now().Add(c.ttl)

	// Copy so later edits by the caller don't leak into the cache
	copied := *snap

	c.mu.Lock()
	c.snapshots[cacheKey(platform, username)] = cachedItem[*Snapshot]{value: &copied, expiresAt: exp}
	c.mu.Unlock()
}

// Get returns a cached snapshot, if present and not expired.
func (c *Cache) Get(platform accounts.Platform, username string) (*Snapshot, bool) {
	if c == nil || username == "" {
		return nil, false
	}
	key := cacheKey(platform, username)

	c.mu.RLock()
	item, ok := c.snapshots[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Now().After(item.expiresAt) {
		// Expired - evict eagerly
		c.mu.Lock()
		delete(c.snapshots, key)
		c.mu.Unlock()
		return nil, false
	}

	out := *item.value
	return &out, true
}

// PurgeExpired removes expired entries.
// This can be called manually or via the janitor.
func (c *Cache) PurgeExpired() {
	if c == nil {
		return
	}
	now := time.Now()

	c.mu.Lock()
	for k, v := range c.snapshots {
		if now.After(v.expiresAt) {
			delete(c.snapshots, k)
		}
	}
	c.mu.Unlock()
}

// StartJanitor starts a background goroutine that periodically purges expired entries.
// It returns a function that stops the janitor.
// If interval <= 0, the cache TTL is used.
func (c *Cache) StartJanitor(interval time.Duration) func() {
	if c == nil {
		return func() {}
	}
	if interval <= 0 {
		interval = c.ttl
	}

	c.mu.Lock()
	// If already running, stop the previous one
	if c.janitorStop != nil {
		close(c.janitorStop)
	}
	stop := make(chan struct{})
	c.janitorStop = stop
	c.mu.Unlock()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.PurgeExpired()
			case <-stop:
				return
			}
		}
	}()

	return func() {
		c.mu.Lock()
		if c.janitorStop == stop {
			close(c.janitorStop)
			c.janitorStop = nil
		}
		c.mu.Unlock()
	}
}

// Len returns the number of non-expired entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.PurgeExpired()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}
