// Package cache provides an in-memory cache of agent replies.
package cache

import (
	"container/list"
	"encoding/hex"
	"maps"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/lgbarn/chess-trainer-go/internal/agent"
)

// Key identifies a request by content.
type Key string

// KeyFor hashes the agent ID and prompt with BLAKE3. A zero byte separates
// the two so ("ab", "c") and ("a", "bc") differ.
func KeyFor(req agent.Request) Key {
	buf := make([]byte, 0, len(req.AgentID)+1+len(req.Prompt))
	buf = append(buf, req.AgentID...)
	buf = append(buf, 0)
	buf = append(buf, req.Prompt...)
	sum := blake3.Sum256(buf)
	return Key(hex.EncodeToString(sum[:]))
}

type entry struct {
	key     Key
	doc     agent.Document
	expires time.Time
}

// Cache stores documents by key with a capacity bound and optional TTL.
// When full, the oldest entry is evicted. It is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	order    *list.List // front is oldest
	items    map[Key]*list.Element
	hits     int
	misses   int
	now      func() time.Time
}

// New creates a cache. capacity of 0 means unlimited; ttl of 0 means
// entries never expire.
func New(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[Key]*list.Element),
		now:      time.Now,
	}
}

// Get returns a copy of the document stored under key.
func (c *Cache) Get(key Key) (agent.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	e := el.Value.(*entry)
	if c.expired(e) {
		c.removeElement(el)
		c.misses++
		return nil, false
	}
	c.hits++
	return maps.Clone(e.doc), true
}

// Put stores doc under key, replacing any previous value.
func (c *Cache) Put(key Key, doc agent.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	e := &entry{key: key, doc: maps.Clone(doc)}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.items[key] = c.order.PushBack(e)

	for c.capacity > 0 && c.order.Len() > c.capacity {
		c.removeElement(c.order.Front())
	}
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if c.expired(el.Value.(*entry)) {
			c.removeElement(el)
			removed++
		}
		el = next
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// IsFull returns true once the capacity is reached.
// Always false for unlimited capacity.
func (c *Cache) IsFull() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.capacity > 0 && c.order.Len() >= c.capacity
}

func (c *Cache) expired(e *entry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
