package cache

import "sync"

// LRU is a bounded map that evicts its least recently used entry when a
// new entry would exceed the capacity.
//
// LRU is safe for concurrent use. The eviction callback runs with the
// cache locked and must not call back into it.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*lruNode[K, V]
	order    lruList[K, V]
	capacity int
	onEvict  func(K, V)
	stats    Stats
}

// Stats contains cache statistics.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// New creates a cache holding at most capacity entries. A capacity of 0
// means unlimited. onEvict may be nil.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *LRU[K, V] {
	return &LRU[K, V]{
		entries:  make(map[K]*lruNode[K, V]),
		capacity: max(capacity, 0),
		onEvict:  onEvict,
	}
}

// Get returns the value for key and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key)
}

func (c *LRU[K, V]) get(key K) (V, bool) {
	node, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.order.moveToFront(node)
	return node.value, true
}

// GetOrCreate returns the cached value for key or stores the result of
// create. create runs under the cache lock; on error nothing is stored.
func (c *LRU[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return v, err
	}
	c.add(key, v)
	return v, nil
}

// Add stores value under key, replacing and evicting any previous value.
func (c *LRU[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if node, ok := c.entries[key]; ok {
		c.order.unlink(node)
		delete(c.entries, key)
		c.evicted(node)
	}
	c.add(key, value)
}

func (c *LRU[K, V]) add(key K, value V) {
	if c.capacity > 0 && c.order.len >= c.capacity {
		if node := c.order.popBack(); node != nil {
			delete(c.entries, node.key)
			c.evicted(node)
		}
	}
	c.entries[key] = c.order.pushFront(key, value)
}

func (c *LRU[K, V]) evicted(node *lruNode[K, V]) {
	c.stats.Evictions++
	if c.onEvict != nil {
		c.onEvict(node.key, node.value)
	}
}

// Purge removes every entry, passing each to fn (or to the eviction
// callback when fn is nil). Purged entries are not counted as evictions.
func (c *LRU[K, V]) Purge(fn func(K, V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn == nil {
		fn = c.onEvict
	}
	for node := c.order.popBack(); node != nil; node = c.order.popBack() {
		if fn != nil {
			fn(node.key, node.value)
		}
	}
	clear(c.entries)
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.len
}

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.stats
	st.Len = c.order.len
	st.Capacity = c.capacity
	return st
}
