// Package context provides the session-scoped state object for StudioShell.
// This file implements the recency cache: a bounded, deduplicated,
// most-recently-used-ordered collection of work items seen this session.
package context

import (
	"sync"
	"time"

	"studioshell/pkg/studiotypes"
)

// RecencyCache holds work items in most-recently-used order, deduplicated by
// (bucket, id). It is session-scoped only: nothing here survives a restart.
type RecencyCache struct {
	maxSize int
	cache   map[string]*recencyNode
	head    *recencyNode
	tail    *recencyNode
	mutex   sync.RWMutex
}

// recencyNode is a node in the doubly-linked list backing the MRU ordering.
type recencyNode struct {
	key   string
	entry studiotypes.RecentWorkEntry
	prev  *recencyNode
	next  *recencyNode
}

// NewRecencyCache creates a recency cache bounded at maxSize entries.
func NewRecencyCache(maxSize int) *RecencyCache {
	if maxSize <= 0 {
		maxSize = DefaultRecentWorksCap
	}

	// Sentinel nodes for head and tail
	head := &recencyNode{}
	tail := &recencyNode{}
	head.next = tail
	tail.prev = head

	return &RecencyCache{
		maxSize: maxSize,
		cache:   make(map[string]*recencyNode),
		head:    head,
		tail:    tail,
	}
}

// Promote inserts or refreshes the entry for item and moves it to the front.
// An existing entry with the same (bucket, id) is replaced wholesale, so the
// cache always reflects the latest label and timestamps.
func (c *RecencyCache) Promote(item studiotypes.WorkItem, lastUsed time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := item.Key()
	entry := studiotypes.RecentWorkEntry{WorkItem: item, LastUsed: lastUsed}

	if node, exists := c.cache[key]; exists {
		node.entry = entry
		c.moveToHead(node)
		return
	}

	node := &recencyNode{key: key, entry: entry}
	c.cache[key] = node
	c.addToHead(node)

	if len(c.cache) > c.maxSize {
		c.evictOldest()
	}
}

// Get returns the cached entry for key, if present.
func (c *RecencyCache) Get(key string) (studiotypes.RecentWorkEntry, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	node, exists := c.cache[key]
	if !exists {
		return studiotypes.RecentWorkEntry{}, false
	}
	return node.entry, true
}

// Entries returns all cached entries in most-recently-used order.
func (c *RecencyCache) Entries() []studiotypes.RecentWorkEntry {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entries := make([]studiotypes.RecentWorkEntry, 0, len(c.cache))
	for node := c.head.next; node != c.tail; node = node.next {
		entries = append(entries, node.entry)
	}
	return entries
}

// Len returns the current number of cached entries.
func (c *RecencyCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// Cap returns the maximum number of entries the cache retains.
func (c *RecencyCache) Cap() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.maxSize
}

// Resize changes the cache bound, evicting least-recently-used entries if the
// new bound is smaller than the current population.
func (c *RecencyCache) Resize(maxSize int) {
	if maxSize <= 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxSize = maxSize
	for len(c.cache) > c.maxSize {
		c.evictOldest()
	}
}

// Clear removes all entries.
func (c *RecencyCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]*recencyNode)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// moveToHead moves a node to the head of the list. Must be called with mutex locked.
func (c *RecencyCache) moveToHead(node *recencyNode) {
	c.removeNode(node)
	c.addToHead(node)
}

// addToHead adds a node right after the head sentinel. Must be called with mutex locked.
func (c *RecencyCache) addToHead(node *recencyNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

// removeNode unlinks a node. Must be called with mutex locked.
func (c *RecencyCache) removeNode(node *recencyNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

// evictOldest removes the least-recently-used entry. Must be called with mutex locked.
func (c *RecencyCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeNode(oldest)
	delete(c.cache, oldest.key)
}
