package sector

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedClassifier memoizes results of an underlying Resolver, keyed by the
// raw record fields.
type CachedClassifier struct {
	inner Resolver
	cache *gocache.Cache
}

// NewCached wraps inner with an in-memory cache. A zero ttl keeps entries
// until Flush.
func NewCached(inner Resolver, ttl time.Duration) *CachedClassifier {
	cleanup := 2 * ttl
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	return &CachedClassifier{
		inner: inner,
		cache: gocache.New(ttl, cleanup),
	}
}

// Classify returns the cached result for r, computing it on a miss.
func (c *CachedClassifier) Classify(r Record) Result {
	key := r.ExplicitSector + "\x00" + r.AddressStreet
	if v, found := c.cache.Get(key); found {
		return v.(Result)
	}
	res := c.inner.Classify(r)
	c.cache.SetDefault(key, res)
	return res
}

// Len returns the number of cached entries, expired ones included.
func (c *CachedClassifier) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached result.
func (c *CachedClassifier) Flush() {
	c.cache.Flush()
}
