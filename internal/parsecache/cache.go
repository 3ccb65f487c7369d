// Package parsecache implements the bounded parse cache described in
// §4.7 "parse cache": repeated parses of the same source text (the
// common case for `use`d modules pulled in from multiple importers)
// are served from cache instead of re-run, with a capacity bound and
// random eviction rather than strict LRU bookkeeping, since the spec
// only requires bounding memory, not optimal hit rate under eviction.
package parsecache

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Entry is whatever a cached parse produced; callers store *tomo.BlockNode
// or a parse error here, typed as any to keep this package independent
// of the AST package.
type Entry struct {
	Value any
	Err   error
}

// Cache is a fixed-capacity, concurrency-safe parse result cache keyed
// by a hash of the source text. Capacity defaults to 100 entries
// (§4.7); once full, a random existing entry is evicted to make room,
// matching the spec's explicitly-chosen "random eviction on overflow"
// policy over LRU.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[uint64]Entry
	keys     []uint64
}

func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache{capacity: capacity, entries: make(map[uint64]Entry, capacity)}
}

// Key hashes source text (and an optional discriminator like the
// file path, to avoid collisions between identical snippets parsed in
// different contexts) via xxhash, distinct from the SipHash used for
// Table/Text content hashing since this key never needs to resist
// hash-flooding, only to distribute well.
func Key(filename, source string) uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte(filename))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(source))
	return h.Sum64()
}

func (c *Cache) Get(key uint64) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) Put(key uint64, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if len(c.keys) >= c.capacity {
			victim := c.keys[randIndex(len(c.keys))]
			delete(c.entries, victim)
			c.removeKey(victim)
		}
		c.keys = append(c.keys, key)
	}
	c.entries[key] = e
}

func (c *Cache) removeKey(k uint64) {
	for i, existing := range c.keys {
		if existing == k {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			return
		}
	}
}

func randIndex(n int) int {
	if n <= 1 {
		return 0
	}
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return int(binary.BigEndian.Uint64(buf[:]) % uint64(n))
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
