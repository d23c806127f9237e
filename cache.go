package formula

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes Parse keyed on the exact formula text. Parse errors are
// remembered as well as programs. A Cache is safe for concurrent use, and
// the zero value is an unbounded cache ready to use.
//
// Programs returned from a Cache are shared between callers and must not be
// modified.
type Cache struct {
	// recent holds the entries of a bounded cache. It is nil if the cache is
	// unbounded, in which case all holds them.
	recent *lru.Cache

	mu  sync.Mutex
	all map[string]*cacheEntry

	group singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// CacheStats counts cache activity.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

type cacheEntry struct {
	src  string
	prog Program
	err  error
}

// NewCache creates a cache holding at most max formulas, evicting the least
// recently used. If max is zero or negative, the cache is unbounded.
func NewCache(max int) *Cache {
	c := &Cache{}
	if max > 0 {
		// lru.NewWithEvict only fails for a size that is not positive.
		c.recent, _ = lru.NewWithEvict(max, func(key, value interface{}) {
			c.evictions.Add(1)
		})
	}
	return c
}

// Compile returns the program for src, parsing it if it is not cached.
// Concurrent compiles of the same text parse it once.
func (c *Cache) Compile(src string) (Program, error) {
	if e := c.lookup(src); e != nil {
		c.hits.Add(1)
		return e.prog, e.err
	}
	c.misses.Add(1)
	v, _, _ := c.group.Do(src, func() (any, error) {
		if e := c.lookup(src); e != nil {
			return e, nil
		}
		p, err := Parse(src)
		e := &cacheEntry{src: src, prog: p, err: err}
		c.store(e)
		return e, nil
	})
	e := v.(*cacheEntry)
	return e.prog, e.err
}

// Eval compiles src using the cache and evaluates it.
func (c *Cache) Eval(src string, b Bindings) (float64, error) {
	p, err := c.Compile(src)
	if err != nil {
		return 0, err
	}
	return Evaluate(p, b)
}

// Len returns the number of cached formulas.
func (c *Cache) Len() int {
	if c.recent != nil {
		return c.recent.Len()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.all)
}

// Stats returns the cache's counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *Cache) lookup(src string) *cacheEntry {
	if c.recent != nil {
		v, ok := c.recent.Get(src)
		if !ok {
			return nil
		}
		return v.(*cacheEntry)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.all[src]
}

func (c *Cache) store(e *cacheEntry) {
	if c.recent != nil {
		c.recent.Add(e.src, e)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.all == nil {
		c.all = make(map[string]*cacheEntry)
	}
	c.all[e.src] = e
}
