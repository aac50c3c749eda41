package dataset

import (
	"sync"
	"sync/atomic"

	"github.com/KaramelBytes/dashkit/internal/table"
)

// Cache memoizes loaded tables by source. It is append-only: entries are
// never evicted or replaced. Cached tables are shared and must be treated
// as read-only, which table.Table guarantees.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*table.Table
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]*table.Table{}}
}

// CacheStats are diagnostic counters.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

func (c *Cache) get(key string) (*table.Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.entries[key]
	return t, ok
}

// GetOrLoad returns the cached table for key, calling load on a miss. When
// two callers race on the same key the first stored table wins. Failed loads
// are not cached.
func (c *Cache) GetOrLoad(key string, load func() (*table.Table, error)) (t *table.Table, hit bool, err error) {
	if t, ok := c.get(key); ok {
		c.hits.Add(1)
		return t, true, nil
	}
	c.misses.Add(1)
	t, err = load()
	if err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.entries[key]; ok {
		return prev, false, nil
	}
	c.entries[key] = t
	return t, false, nil
}

// Stats reports the entry count and hit/miss counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return CacheStats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load()}
}

var (
	sharedOnce sync.Once
	shared     *Cache
)

// SharedCache returns the process-wide cache.
func SharedCache() *Cache {
	sharedOnce.Do(func() { shared = NewCache() })
	return shared
}
