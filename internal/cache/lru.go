// internal/cache/lru.go
//
// Bounded LRU of rendered pages, shared by every request goroutine.
//
// Context
// -------
// The view manager stores finished HTML plus its entity tag under an explicit
// key (for example "pages::about") so later requests skip render and minify.
// Entries are Go strings, which are immutable, so a response that already
// holds an entry keeps serving it even after the key is evicted.
//
// Recency
// -------
// Promotion happens on write by default: Insert moves the key to the front,
// Get leaves the order alone.  Build with WithReadPromotion when reads
// should count as use.  Either way a single mutex guards the map and the
// list, and nothing slow ever runs while it is held.
//
// Notes
// -----
//   - Capacity 0 disables the cache.  Insert is a no-op and lookups miss.
//   - Oxford commas, two spaces after periods.
package cache

import (
	"container/list"
	"sync"

	"github.com/yanizio/stencil/internal/etag"
	"github.com/yanizio/stencil/internal/metrics"
)

// Entry is one cached render.
type Entry struct {
	HTML string
	ETag etag.EntityTag
}

// LRU is a fixed-capacity least-recently-used cache keyed by string.
type LRU struct {
	mu          sync.Mutex
	cap         int
	promoteRead bool
	ll          *list.List
	dict        map[string]*list.Element
}

type pair struct {
	key string
	val Entry
}

// Option tweaks an LRU at construction.
type Option func(*LRU)

// WithReadPromotion makes Get move a hit to the front.
func WithReadPromotion() Option {
	return func(c *LRU) { c.promoteRead = true }
}

// New returns an LRU with the given capacity.  Negative values are treated
// as 0, which disables caching.
func New(capacity int, opts ...Option) *LRU {
	if capacity < 0 {
		capacity = 0
	}
	c := &LRU{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[string]*list.Element, capacity),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the entry for key.
func (c *LRU) Get(key string) (Entry, bool) {
	if c.cap == 0 {
		metrics.CacheMissesTotal.Inc()
		return Entry{}, false
	}

	c.mu.Lock()
	ele, hit := c.dict[key]
	if hit && c.promoteRead {
		c.ll.MoveToFront(ele)
	}
	var val Entry
	if hit {
		val = ele.Value.(pair).val
	}
	c.mu.Unlock()

	if hit {
		metrics.CacheHitsTotal.Inc()
	} else {
		metrics.CacheMissesTotal.Inc()
	}
	return val, hit
}

// Contains reports whether key is cached without touching recency.
func (c *LRU) Contains(key string) bool {
	if c.cap == 0 {
		return false
	}
	c.mu.Lock()
	_, hit := c.dict[key]
	c.mu.Unlock()
	return hit
}

// Insert adds or replaces key and marks it most recently used.  When a new
// key arrives at capacity, the least recently used key is evicted first.
// The previous value for key, if any, is returned.
func (c *LRU) Insert(key string, val Entry) (prev Entry, replaced bool) {
	if c.cap == 0 {
		return Entry{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	metrics.CacheInsertsTotal.Inc()

	if ele, hit := c.dict[key]; hit {
		prev = ele.Value.(pair).val
		ele.Value = pair{key, val}
		c.ll.MoveToFront(ele)
		return prev, true
	}

	if c.ll.Len() >= c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(pair).key)
		metrics.CacheEvictTotal.Inc()
		metrics.CacheEntries.Dec()
	}

	c.dict[key] = c.ll.PushFront(pair{key, val})
	metrics.CacheEntries.Inc()
	return Entry{}, false
}

// Clear drops every entry.
func (c *LRU) Clear() {
	c.mu.Lock()
	n := c.ll.Len()
	c.ll.Init()
	c.dict = make(map[string]*list.Element, c.cap)
	c.mu.Unlock()

	metrics.CacheEntries.Sub(float64(n))
}

// Len reports current size.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Cap reports the fixed capacity.
func (c *LRU) Cap() int { return c.cap }

// Keys lists keys from most to least recently used.
func (c *LRU) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, c.ll.Len())
	for e := c.ll.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(pair).key)
	}
	return out
}
