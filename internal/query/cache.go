// Package query caches read results so list pages and detail views render
// instantly while fresh, and re-fetch once stale. Mutations invalidate by
// entity prefix; the next read goes back to the server.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultStaleAfter is how long a cached read stays fresh.
const DefaultStaleAfter = 5 * time.Minute

// Cache is a keyed read cache with time-based staleness. Safe for concurrent
// use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	staleAfter time.Duration
	now        func() time.Time
}

type entry struct {
	value    any
	storedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleAfter overrides the freshness window.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Cache) { c.staleAfter = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache returns an empty cache with the default freshness window.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]entry),
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListKey identifies one page of a filtered list. The filter key comes from
// record.ListParams.CacheKey so equal filters share an entry per page.
func ListKey(entity, filterKey string, page int) string {
	return fmt.Sprintf("%s:list:%s:page=%d", entity, filterKey, page)
}

// DetailKey identifies a single record.
func DetailKey(entity, id string) string {
	return entity + ":detail:" + id
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.staleAfter {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

// Remove drops one entry, e.g. a deleted record's detail view.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateEntity drops every cached read for one entity, list pages and
// detail views alike. Called after a successful mutation.
func (c *Cache) InvalidateEntity(entity string) {
	prefix := entity + ":"
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Through returns the cached value for key when fresh, otherwise calls fetch
// and caches the result. Fetch errors are returned uncached so the next read
// tries again.
func Through[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if cached, ok := c.get(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
		// A type clash means two callers share a key; drop it and re-fetch.
		c.Remove(key)
	}
	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.put(key, value)
	return value, nil
}
