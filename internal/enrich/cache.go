package enrich

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes loaded datasets for the life of the process. Each key is
// computed at most once at a time; concurrent callers for the same key share
// one load. Failed loads are not stored.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Dataset
	closed  bool
	group   singleflight.Group
	loads   int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Dataset)}
}

// CacheKey identifies a dataset by its sources and every option that
// changes the loaded result.
func CacheKey(src Sources, opts LoadOptions) string {
	c := opts.Columns
	normalized := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%d|%t|%t|%g|%s|%d|%q",
		src.Attributes, src.Geometries,
		c.ID, c.Name, c.Value, c.Category, c.Quality, c.GeometryID, c.KeyPad,
		opts.DeriveCategory, opts.Lenient, opts.SimplifyTolerance,
		opts.Sheet, opts.SkipRows, opts.Delimiter,
	)
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// Get returns the dataset stored under key, running load on a miss.
// A closed cache runs load on every call without storing the result.
func (c *Cache) Get(ctx context.Context, key string, load func(context.Context) (*Dataset, error)) (*Dataset, error) {
	c.mu.RLock()
	ds, ok := c.entries[key]
	closed := c.closed
	c.mu.RUnlock()
	if ok {
		return ds, nil
	}
	if closed {
		return load(ctx)
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		ds, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return ds, nil
		}

		// Waiters share this load, so one caller's cancellation must not fail the rest.
		ds, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.loads++
		if !c.closed {
			c.entries[key] = ds
		}
		c.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		zap.L().Debug("enrich: shared dataset load", zap.String("key", key[:min(12, len(key))]))
	}
	return v.(*Dataset), nil
}

// Len returns the number of stored datasets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Loads returns how many loads completed successfully through this cache.
func (c *Cache) Loads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}

// Close drops every stored dataset. Later Gets load without caching.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = make(map[string]*Dataset)
}

type cacheContextKey struct{}

// WithCache returns a context carrying c.
func WithCache(ctx context.Context, c *Cache) context.Context {
	return context.WithValue(ctx, cacheContextKey{}, c)
}

// CacheFromContext returns the cache carried by ctx, or nil.
func CacheFromContext(ctx context.Context) *Cache {
	c, _ := ctx.Value(cacheContextKey{}).(*Cache)
	return c
}

// Load runs LoadAndNormalize through the cache carried by ctx, if any.
func Load(ctx context.Context, src Sources, opts LoadOptions) (*Dataset, error) {
	load := func(ctx context.Context) (*Dataset, error) {
		return LoadAndNormalize(ctx, src, opts)
	}
	c := CacheFromContext(ctx)
	if c == nil {
		return load(ctx)
	}
	return c.Get(ctx, CacheKey(src, opts), load)
}
