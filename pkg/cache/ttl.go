package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a thread-safe map whose entries expire after a fixed duration.
// An expired entry is indistinguishable from an absent one: Get reports
// a miss and removes it. There is no size bound; callers cache small,
// bounded key spaces (one entry per signed-in identity).
type TTL[K comparable, V any] struct {
	ttl   time.Duration
	mu    sync.Mutex
	items map[K]entry[V]
	now   func() time.Time
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// Option configures a TTL cache.
type Option[K comparable, V any] func(*TTL[K, V])

// WithCleanupInterval starts a background sweeper that drops expired
// entries every interval. Without it, expired entries are evicted
// lazily on Get.
func WithCleanupInterval[K comparable, V any](interval time.Duration) Option[K, V] {
	return func(c *TTL[K, V]) {
		go c.sweep(interval)
	}
}

// WithClock overrides the time source. Test hook.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *TTL[K, V]) {
		c.now = now
	}
}

// NewTTL creates a cache whose entries live for the given duration.
// Panics on a non-positive TTL to surface misconfiguration at startup.
func NewTTL[K comparable, V any](ttl time.Duration, opts ...Option[K, V]) *TTL[K, V] {
	if ttl <= 0 {
		panic("cache: TTL must be positive")
	}
	c := &TTL[K, V]{
		ttl:   ttl,
		items: make(map[K]entry[V]),
		now:   time.Now,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value when present and younger than the TTL.
// An entry at or past the TTL is removed and reported as a miss.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores the value with the current timestamp, unconditionally
// overwriting any prior entry for the key.
func (c *TTL[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, storedAt: c.now()}
}

// Delete removes the entry for the key, if any.
func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes every entry.
func (c *TTL[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]entry[V])
}

// Len reports the number of stored entries, including any that have
// expired but not yet been evicted.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close stops the background sweeper, when one was started.
func (c *TTL[K, V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *TTL[K, V]) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *TTL[K, V]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.items {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.items, key)
		}
	}
}
