// Package cache provides the process-wide TTL cache service injected into
// the state machine. No ambient state: callers hold an explicit handle with
// an init/clear lifecycle.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// TTL is a read-mostly expiring key/value cache.
type TTL struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry

	stop chan struct{}
	once sync.Once
}

// NewTTL creates a cache whose entries expire after ttl. A background
// janitor sweeps expired entries; call Close to stop it.
func NewTTL(ttl time.Duration) *TTL {
	c := &TTL{
		ttl:     ttl,
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *TTL) janitor() {
	interval := c.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Set stores value under key with the cache's TTL.
func (c *TTL) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Get returns the live value under key.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Delete removes key.
func (c *TTL) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *TTL) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including not-yet-swept
// expired ones.
func (c *TTL) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the janitor.
func (c *TTL) Close() {
	c.once.Do(func() { close(c.stop) })
}
