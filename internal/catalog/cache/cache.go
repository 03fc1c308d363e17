// Package cache memoizes asynchronous lookups by key with a fixed TTL and entry cap.
//
// Concurrent misses for one key are coalesced into a single factory call. A value
// is written to the cache before the in-flight call is released, so callers that
// arrive after completion hit the stored entry instead of starting a new call.
// Failed factory calls are never stored.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"catalog-search/internal/common/metrics"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 200
)

// Factory produces the value for a key on a miss.
type Factory[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	key        string
	value      T
	insertedAt time.Time
}

// Cache is a TTL-bounded, size-bounded memoizer. The zero value is not usable; use New.
type Cache[T any] struct {
	name       string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // oldest at front

	group singleflight.Group
}

type Option func(*options)

type options struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates a cache. The name labels its metrics and must be unique per instance.
func New[T any](name string, opts ...Option) *Cache[T] {
	o := options{ttl: DefaultTTL, maxEntries: DefaultMaxEntries, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		name:       name,
		ttl:        o.ttl,
		maxEntries: o.maxEntries,
		now:        o.now,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// GetOrCreate returns the cached value for key or runs factory once for all
// concurrent callers of that key. The factory runs with a context detached from
// the caller's cancellation since other waiters may still need its result;
// a cancelled caller stops waiting and gets ctx.Err().
func (c *Cache[T]) GetOrCreate(ctx context.Context, key string, factory Factory[T]) (T, error) {
	if v, ok := c.lookup(key); ok {
		metrics.CacheLookups.WithLabelValues(c.name, "hit").Inc()
		return v, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Another flight may have stored the key between lookup and DoChan.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := factory(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			metrics.CacheLookups.WithLabelValues(c.name, "error").Inc()
			return zero, res.Err
		}
		if res.Shared {
			metrics.CacheLookups.WithLabelValues(c.name, "shared").Inc()
		} else {
			metrics.CacheLookups.WithLabelValues(c.name, "miss").Inc()
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache %s: unexpected value type %T for key %q", c.name, res.Val, key)
		}
		return v, nil
	}
}

// Len reports the number of stored entries, expired ones included until touched.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every stored entry. In-flight calls still complete and store.
func (c *Cache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

func (c *Cache[T]) lookup(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

func (c *Cache[T]) store(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}
	c.entries[key] = c.order.PushBack(&entry[T]{key: key, value: v, insertedAt: c.now()})

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry[T]).key)
	}
}
