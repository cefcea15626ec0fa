package naming

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"gridmap/grid"
	"math"
	"sync"
)

// lruNameCache is a simple LRU (least recently used) cache of region names. It has an internal locking mechanism and
// can be used in concurrent goroutines. Recency is measured with a counter that advances on every read and write.
type lruNameCache struct {
	names      map[grid.CellIndex]string
	lastAccess map[grid.CellIndex]uint64
	clock      uint64
	mutex      *sync.Mutex
	maxSize    int // Maximum number of entries this cache should hold
}

func newLruCache(maxSize int) *lruNameCache {
	return &lruNameCache{
		names:      map[grid.CellIndex]string{},
		lastAccess: map[grid.CellIndex]uint64{},
		mutex:      &sync.Mutex{},
		maxSize:    maxSize,
	}
}

func (c *lruNameCache) get(cell grid.CellIndex) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	name, ok := c.names[cell]
	if ok {
		c.touch(cell)
	}
	return name, ok
}

// insert adds or replaces the name of the given cell. If the cache is full, the entry that hasn't been used longest
// will be evicted from the cache.
func (c *lruNameCache) insert(cell grid.CellIndex, name string) {
	if c.maxSize <= 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.names[cell]; !ok && len(c.names) >= c.maxSize {
		longestUnusedCell := c.getMinEntry()
		delete(c.names, longestUnusedCell)
		delete(c.lastAccess, longestUnusedCell)
	}

	c.names[cell] = name
	c.touch(cell)
}

func (c *lruNameCache) size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.names)
}

// touch marks the cell as most recently used. This function does NOT use locking.
func (c *lruNameCache) touch(cell grid.CellIndex) {
	c.clock++
	c.lastAccess[cell] = c.clock
}

// getMinEntry returns the entry that hasn't been used longest. This function does NOT use locking.
func (c *lruNameCache) getMinEntry() grid.CellIndex {
	minTimestamp := uint64(math.MaxUint64)
	var minCell grid.CellIndex

	for cell, timestamp := range c.lastAccess {
		if timestamp < minTimestamp {
			minTimestamp = timestamp
			minCell = cell
		}
	}

	return minCell
}

// CachingResolver answers from an in-memory LRU cache and an optional persistent store before asking the wrapped
// resolver. Only found names are cached, a cell without region is asked for again next time.
type CachingResolver struct {
	next   Resolver
	memory *lruNameCache
	store  *SqliteStore
}

// NewCachingResolver wraps the given resolver. The store may be nil.
func NewCachingResolver(next Resolver, cacheSize int, store *SqliteStore) *CachingResolver {
	return &CachingResolver{
		next:   next,
		memory: newLruCache(cacheSize),
		store:  store,
	}
}

func (r *CachingResolver) Resolve(ctx context.Context, cell grid.CellIndex) (string, error) {
	if name, ok := r.memory.get(cell); ok {
		sigolo.Tracef("Region name of cell %v found in memory cache", cell)
		return name, nil
	}

	if r.store != nil {
		name, ok, err := r.store.Get(ctx, cell)
		if err != nil {
			sigolo.Warnf("Unable to read cell %v from name store: %+v", cell, err)
		} else if ok {
			sigolo.Tracef("Region name of cell %v found in name store", cell)
			r.memory.insert(cell, name)
			return name, nil
		}
	}

	name, err := r.next.Resolve(ctx, cell)
	if err != nil {
		return "", err
	}

	r.memory.insert(cell, name)
	if r.store != nil {
		err = r.store.Put(ctx, cell, name)
		if err != nil {
			sigolo.Warnf("Unable to write cell %v to name store: %+v", cell, err)
		}
	}

	return name, nil
}
