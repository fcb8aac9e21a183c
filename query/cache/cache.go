// Package cache provides the bounded LRU table backing memoized queries.
package cache

import (
	"sync"
)

// Stats represents cache statistics
type Stats struct {
	Hits      int64
	Misses    int64
	Size      int
	MaxSize   int
	Evictions int64
	HitRate   float64
}

// LRU is a least-recently-used table. A MaxSize of zero or less means the
// table is unbounded.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	data    map[K]*cacheNode[K, V]
	maxSize int
	head    *cacheNode[K, V]
	tail    *cacheNode[K, V]
	stats   Stats
}

// cacheNode represents a node in the doubly-linked list for LRU
type cacheNode[K comparable, V any] struct {
	key   K
	value V
	prev  *cacheNode[K, V]
	next  *cacheNode[K, V]
}

// NewLRU creates a new LRU table
func NewLRU[K comparable, V any](maxSize int) *LRU[K, V] {
	return &LRU[K, V]{
		data:    make(map[K]*cacheNode[K, V]),
		maxSize: maxSize,
		stats:   Stats{MaxSize: maxSize},
	}
}

// Get retrieves a value and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.data[key]
	if !ok {
		c.stats.Misses++
		c.updateHitRate()
		var zero V
		return zero, false
	}

	c.moveToFront(node)
	c.stats.Hits++
	c.updateHitRate()
	return node.value, true
}

// Peek retrieves a value without touching statistics or recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.data[key]; ok {
		return node.value, true
	}
	var zero V
	return zero, false
}

// Set stores a value
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, exists := c.data[key]; exists {
		node.value = value
		c.moveToFront(node)
		return
	}

	if c.maxSize > 0 && len(c.data) >= c.maxSize {
		c.evictLRU()
		c.stats.Evictions++
	}

	node := &cacheNode[K, V]{key: key, value: value}
	c.addToFront(node)
	c.data[key] = node
	c.stats.Size = len(c.data)
}

// Invalidate removes a specific key
func (c *LRU[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.data[key]; ok {
		c.removeNode(node)
		c.stats.Size = len(c.data)
	}
}

// Clear removes all entries. Statistics survive a clear.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[K]*cacheNode[K, V])
	c.head = nil
	c.tail = nil
	c.stats.Size = 0
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// GetStats returns cache statistics
func (c *LRU[K, V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = len(c.data)
	return stats
}

// addToFront adds a node to the front of the list
func (c *LRU[K, V]) addToFront(node *cacheNode[K, V]) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

// moveToFront moves a node to the front of the list
func (c *LRU[K, V]) moveToFront(node *cacheNode[K, V]) {
	if node == c.head {
		return
	}
	c.unlink(node)
	c.addToFront(node)
}

func (c *LRU[K, V]) unlink(node *cacheNode[K, V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
}

// removeNode removes a node from the list and the index
func (c *LRU[K, V]) removeNode(node *cacheNode[K, V]) {
	c.unlink(node)
	delete(c.data, node.key)
}

// evictLRU evicts the least recently used node
func (c *LRU[K, V]) evictLRU() {
	if c.tail == nil {
		return
	}
	c.removeNode(c.tail)
}

// updateHitRate updates the hit rate statistic
func (c *LRU[K, V]) updateHitRate() {
	total := c.stats.Hits + c.stats.Misses
	if total > 0 {
		c.stats.HitRate = float64(c.stats.Hits) / float64(total) * 100
	}
}
