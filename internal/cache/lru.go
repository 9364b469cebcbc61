package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a size-bounded cache whose entries expire after a period of
// inactivity. Reads refresh an entry's expiry.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	onEvict func(key string, data T)
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// Options configures an LRUCache. MaxSize and TTL must be positive.
type Options[T any] struct {
	MaxSize int
	TTL     time.Duration
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
	// OnEvict is called, outside the lock, for entries dropped by capacity
	// or expiry. Explicit Delete does not call it.
	OnEvict func(key string, data T)
}

// NewLRUCache creates a new LRU cache with sliding TTL
func NewLRUCache[T any](opts Options[T]) *LRUCache[T] {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &LRUCache[T]{
		maxSize: opts.MaxSize,
		ttl:     opts.TTL,
		now:     now,
		onEvict: opts.OnEvict,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get retrieves a value and extends its lifetime.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	data, ok, evicted := c.getLocked(key)
	c.mu.Unlock()
	c.notify(evicted)
	return data, ok
}

func (c *LRUCache[T]) getLocked(key string) (T, bool, []*cacheItem[T]) {
	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false, nil
	}
	item := elem.Value.(*cacheItem[T])
	now := c.now()
	if now.After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false, []*cacheItem[T]{item}
	}
	item.expiresAt = now.Add(c.ttl)
	c.lru.MoveToFront(elem)
	return item.data, true, nil
}

// GetOrCreate returns the value for key, creating it with create when the
// key is absent or expired. The second result reports whether it was created.
func (c *LRUCache[T]) GetOrCreate(key string, create func() T) (T, bool) {
	c.mu.Lock()
	data, ok, evicted := c.getLocked(key)
	if !ok {
		data = create()
		evicted = append(evicted, c.setLocked(key, data)...)
	}
	c.mu.Unlock()
	c.notify(evicted)
	return data, !ok
}

// Set stores a value in the cache
func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	evicted := c.setLocked(key, data)
	c.mu.Unlock()
	c.notify(evicted)
}

func (c *LRUCache[T]) setLocked(key string, data T) []*cacheItem[T] {
	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.lru.PushFront(item)

	var evicted []*cacheItem[T]
	for c.maxSize > 0 && c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		evicted = append(evicted, oldest.Value.(*cacheItem[T]))
		c.removeElement(oldest)
	}
	return evicted
}

// Delete removes a key from the cache
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

func (c *LRUCache[T]) notify(evicted []*cacheItem[T]) {
	if c.onEvict == nil {
		return
	}
	for _, item := range evicted {
		c.onEvict(item.key, item.data)
	}
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	now := c.now()
	var evicted []*cacheItem[T]
	// Least recently used entries sit at the back and expire first.
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		item := elem.Value.(*cacheItem[T])
		if now.After(item.expiresAt) {
			evicted = append(evicted, item)
			c.removeElement(elem)
		}
		elem = prev
	}
	c.mu.Unlock()

	c.notify(evicted)
	return len(evicted)
}

// Size returns the current number of items in the cache
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
