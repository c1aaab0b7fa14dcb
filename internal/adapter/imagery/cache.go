package imagery

import (
	"context"
	"sync"
)

// CachedCatalog wraps a Catalog with an in-memory LRU cache. Composite
// metadata is immutable once published, so cached entries never expire.
type CachedCatalog struct {
	inner Catalog
	cache *lruCache
}

// NewCachedCatalog creates a cache decorator around a catalog.
func NewCachedCatalog(inner Catalog, maxEntries int) *CachedCatalog {
	return &CachedCatalog{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedCatalog) Composite(ctx context.Context, year, month int) (Composite, error) {
	key := CompositeName(year, month)
	if comp, ok := c.cache.get(key); ok {
		return comp, nil
	}
	comp, err := c.inner.Composite(ctx, year, month)
	if err != nil {
		return comp, err
	}
	// Only cache named results so transient empty responses can be retried.
	if comp.Name != "" {
		c.cache.put(key, comp)
	}
	return comp, nil
}

// lruCache is a simple thread-safe LRU cache for composite metadata.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value Composite
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (Composite, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Composite{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value Composite) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
