// Package query caches API reads. Identical in-flight reads share one
// request, entries go stale after a fixed time, and mutations invalidate
// by key prefix.
package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/amply-impact/amply/internal/metrics"
)

// DefaultStaleTime matches the dashboard's default query freshness.
const DefaultStaleTime = time.Minute

// Key identifies a cached read, e.g. {"organization", "donations", "page=1"}.
type Key []string

// String joins the key segments.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether prefix matches the leading segments of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key       Key
	value     any
	fetchedAt time.Time
}

// Cache is safe for concurrent use. The zero value is not usable; use NewCache.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]entry
	epoch     uint64
	staleTime time.Duration
	group     singleflight.Group
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewCache creates a cache. A zero staleTime disables reuse but keeps dedupe.
func NewCache(staleTime time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		entries:   make(map[string]entry),
		staleTime: staleTime,
		metrics:   m,
		now:       time.Now,
	}
}

// Fetch returns the cached value for key if fresh, otherwise calls fn.
// Concurrent Fetches of the same key share a single fn call. The shared
// call ignores the cancellation of whichever caller started it; each
// caller stops waiting when its own ctx is done, and the gateway timeout
// bounds the call itself. A nil cache always calls fn.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}

	id := key.String()
	resource := resourceLabel(key)

	c.mu.Lock()
	if e, ok := c.entries[id]; ok && c.now().Sub(e.fetchedAt) < c.staleTime {
		c.mu.Unlock()
		if v, ok := e.value.(T); ok {
			if c.metrics != nil {
				c.metrics.QueryCacheHits.WithLabelValues(resource).Inc()
			}
			return v, nil
		}
	} else {
		c.mu.Unlock()
	}
	if c.metrics != nil {
		c.metrics.QueryCacheMisses.WithLabelValues(resource).Inc()
	}

	ch := c.group.DoChan(id, func() (any, error) {
		c.mu.Lock()
		epoch := c.epoch
		c.mu.Unlock()

		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// An invalidation while fn ran means v may predate the mutation.
		if c.epoch == epoch {
			c.entries[id] = entry{key: append(Key(nil), key...), value: v, fetchedAt: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, nil
		}
		return v, nil
	}
}

// Invalidate drops every entry whose key starts with one of prefixes.
func (c *Cache) Invalidate(prefixes ...Key) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	for id, e := range c.entries {
		for _, p := range prefixes {
			if e.key.HasPrefix(p) {
				delete(c.entries, id)
				break
			}
		}
	}
	for _, p := range prefixes {
		c.group.Forget(p.String())
		if c.metrics != nil {
			c.metrics.QueryInvalidations.WithLabelValues(resourceLabel(p)).Inc()
		}
	}
}

// Clear drops everything, e.g. on logout.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.epoch++
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func resourceLabel(k Key) string {
	switch len(k) {
	case 0:
		return ""
	case 1:
		return k[0]
	default:
		return k[0] + "/" + k[1]
	}
}
