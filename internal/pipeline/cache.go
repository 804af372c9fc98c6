package pipeline

import (
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/zeebo/blake3"
)

type cacheKey struct {
	sum      [32]byte
	headings bool
	gen      uint64
}

// Cache is a bounded, expiring store of processing results keyed by a hash
// of the input text and the calculator generation that produced them. A nil
// *Cache is valid and never hits.
type Cache struct {
	lru      *expirable.LRU[cacheKey, *Result]
	capacity int
	hits     atomic.Int64
	misses   atomic.Int64
}

// CacheStats is a point-in-time view of cache usage.
type CacheStats struct {
	Enabled  bool  `json:"enabled"`
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

// NewCache returns a cache holding up to size results for ttl each. A size
// of zero or less disables caching and returns nil.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		return nil
	}
	return &Cache{
		lru:      expirable.NewLRU[cacheKey, *Result](size, nil, ttl),
		capacity: size,
	}
}

func keyFor(text string, headings bool, gen uint64) cacheKey {
	return cacheKey{sum: blake3.Sum256([]byte(text)), headings: headings, gen: gen}
}

// Get returns the result cached for text at generation gen, if present.
func (c *Cache) Get(text string, headings bool, gen uint64) (*Result, bool) {
	if c == nil {
		return nil, false
	}
	res, ok := c.lru.Get(keyFor(text, headings, gen))
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return res, ok
}

// Put stores res for text at generation gen.
func (c *Cache) Put(text string, headings bool, gen uint64, res *Result) {
	if c == nil {
		return
	}
	c.lru.Add(keyFor(text, headings, gen), res)
}

// Purge drops every entry. Counters are kept.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

// Stats returns current usage.
func (c *Cache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{
		Enabled:  true,
		Size:     c.lru.Len(),
		Capacity: c.capacity,
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
	}
}

// ContentHash returns the hex BLAKE3 digest of data.
func ContentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
