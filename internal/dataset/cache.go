package dataset

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of tables kept when no size is configured.
const DefaultCacheSize = 16

// CacheConfig configures a Cache.
type CacheConfig struct {
	// Size bounds the number of cached tables (LRU eviction).
	Size int
	// TTL expires entries after the given duration. Zero keeps them until
	// they are invalidated.
	TTL    time.Duration
	Logger *slog.Logger
}

// Cache holds loaded tables keyed by absolute file path.
//
// Entries are only dropped by Invalidate, Purge, LRU eviction or TTL. Concurrent
// misses for one path share a single load. A load that races with Invalidate
// is returned to its callers but not stored.
type Cache struct {
	store  gcache.Cache
	group  singleflight.Group
	logger *slog.Logger

	mu     sync.Mutex
	epochs map[string]uint64
}

// NewCache creates an empty cache.
func NewCache(cfg CacheConfig) *Cache {
	size := cfg.Size
	if size <= 0 {
		size = DefaultCacheSize
	}
	builder := gcache.New(size).LRU()
	if cfg.TTL > 0 {
		builder = builder.Expiration(cfg.TTL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Cache{
		store:  builder.Build(),
		logger: logger,
		epochs: make(map[string]uint64),
	}
}

// Key returns the cache key for a path.
func Key(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Invalidate drops the entry for path and reports whether one was present.
func (c *Cache) Invalidate(path string) bool {
	key := Key(path)
	c.mu.Lock()
	c.epochs[key]++
	c.mu.Unlock()

	removed := c.store.Remove(key)
	c.logger.Debug("cache invalidated", "path", key, "removed", removed)
	return removed
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	for key := range c.epochs {
		c.epochs[key]++
	}
	c.mu.Unlock()

	c.store.Purge()
	c.logger.Debug("cache purged")
}

// Has reports whether a live entry exists for path.
func (c *Cache) Has(path string) bool {
	return c.store.Has(Key(path))
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.store.Len(true)
}

func (c *Cache) epoch(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epochs[key]
}

// cached returns the table stored for path, calling load on a miss.
func cached[T any](c *Cache, path string, load func() (T, error)) (T, error) {
	var zero T
	key := Key(path)

	if v, err := c.store.Get(key); err == nil {
		if t, ok := v.(T); ok {
			return t, nil
		}
		return zero, fmt.Errorf("%w: %s: cached entry has type %T", ErrLoad, key, v)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have stored the table since our miss.
		if v, err := c.store.Get(key); err == nil {
			return v, nil
		}
		before := c.epoch(key)
		start := time.Now()
		t, err := load()
		if err != nil {
			return nil, err
		}
		if c.epoch(key) == before {
			if err := c.store.Set(key, t); err != nil {
				c.logger.Warn("cache set failed", "path", key, "error", err)
			}
		}
		c.logger.Debug("table loaded", "path", key, "duration", time.Since(start))
		return t, nil
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s: cached entry has type %T", ErrLoad, key, v)
	}
	return t, nil
}
