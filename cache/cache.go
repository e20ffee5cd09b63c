// Package cache implements the short-lived response cache: a TTL-bounded
// map from (url, field set) to extraction results. Entries expire on read;
// there is no other eviction, the store is deliberately unbounded.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DecLeMec/price-scraper/extract"
)

// entry holds a cached result with its creation timestamp. Entries are
// never mutated after creation, only replaced wholesale.
type entry struct {
	result    *extract.Result
	createdAt time.Time
}

// Cache is an in-memory TTL cache for extraction results.
// It is safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	store map[string]*entry
	ttl   time.Duration

	// now is the clock, swappable in tests.
	now func() time.Time
}

// New creates a Cache whose entries are served for ttl after creation.
func New(ttl time.Duration) *Cache {
	return &Cache{
		store: make(map[string]*entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Key generates a cache key from the target URL and the requested fields.
// The URL is normalized and the fields are sorted before hashing, so field
// order in the request never affects the key.
func Key(rawURL string, fields []string) string {
	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(normalizeURL(rawURL)))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(h.Sum(nil))
}

// normalizeURL canonicalizes scheme and host casing so trivially different
// spellings of one URL share a key. Unparseable input keys on the raw
// string.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Get retrieves a cached result if it exists and is younger than the TTL.
// An expired entry is deleted on the way out.
func (c *Cache) Get(key string) (*extract.Result, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().Sub(e.createdAt) < c.ttl {
		return e.result, true
	}

	c.mu.Lock()
	// Recheck: the entry may have been replaced since the read lock.
	if cur, ok := c.store[key]; ok && cur == e {
		delete(c.store, key)
	}
	c.mu.Unlock()
	return nil, false
}

// Set stores a result, overwriting any prior entry for the key.
func (c *Cache) Set(key string, res *extract.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &entry{
		result:    res,
		createdAt: c.now(),
	}
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
