package spacetraveling

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/eringen/spacetraveling/blog"
)

// PageCache holds regenerated page props per key with a TTL. Concurrent
// regenerations of one key share a single load. When a regeneration fails
// the last good value keeps being served. Not-found results are never
// cached and evict the key.
type PageCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[T]
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time

	// OnStale, when set, is told about failed regenerations that were
	// answered with the previous value.
	OnStale func(key string, err error)
}

type cacheEntry[T any] struct {
	value   T
	fetched time.Time
}

// NewPageCache creates a PageCache whose entries go stale after ttl.
func NewPageCache[T any](ttl time.Duration) *PageCache[T] {
	return &PageCache[T]{
		entries: make(map[string]cacheEntry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *PageCache[T]) lookup(key string) (cacheEntry[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *PageCache[T]) fresh(e cacheEntry[T]) bool {
	return c.now().Sub(e.fetched) < c.ttl
}

// Get returns the value for key, calling load when it is missing or stale.
func (c *PageCache[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	e, ok := c.lookup(key)
	if ok && c.fresh(e) {
		return e.value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if e, ok := c.lookup(key); ok && c.fresh(e) {
			return e.value, nil
		}
		// shared loads ignore the first caller's cancellation
		value, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry[T]{value: value, fetched: c.now()}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			c.Invalidate(key)
			var zero T
			return zero, err
		}
		if ok {
			if c.OnStale != nil {
				c.OnStale(key, err)
			}
			return e.value, nil
		}
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the given keys, or every key when none are given.
func (c *PageCache[T]) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.entries = make(map[string]cacheEntry[T])
		return
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
}

// Len returns the number of cached keys.
func (c *PageCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
