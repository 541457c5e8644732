package geo

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a resolved postcode stays usable. Postcode
// geometry changes rarely; a month is a safe staleness bound.
const DefaultCacheTTL = 30 * 24 * time.Hour

// Cache stores resolved postcodes keyed by normalized postcode.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool)
	Set(ctx context.Context, key string, result *Result)
}

type memoryEntry struct {
	result   *Result
	storedAt time.Time
}

// MemoryCache is the in-process cache used when redis is not configured.
// Expired entries are detected lazily on Get and overwritten by the next
// Set; there is no background sweep.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*Result, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.result, true
}

func (c *MemoryCache) Set(_ context.Context, key string, result *Result) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{result: result, storedAt: c.now()}
	c.mu.Unlock()
}

// CachingGeocoder wraps an upstream geocoder with a cache. Negative results
// are cached too, so unknown postcodes do not hammer the upstream.
type CachingGeocoder struct {
	upstream Geocoder
	cache    Cache
}

func NewCachingGeocoder(upstream Geocoder, cache Cache) *CachingGeocoder {
	return &CachingGeocoder{upstream: upstream, cache: cache}
}

func (g *CachingGeocoder) Resolve(ctx context.Context, postcode string) (*Result, error) {
	key := NormalizePostcode(postcode)
	if key == "" {
		return nil, nil
	}

	if result, ok := g.cache.Get(ctx, key); ok {
		return result, nil
	}

	result, err := g.upstream.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	g.cache.Set(ctx, key, result)
	return result, nil
}
