// Package table implements Tomo's Table type (§3.2, §4.4): an
// insertion-ordered hash map. Entries live in an insertion-ordered
// slice and lookup goes through a Go map from key to entry index; the
// package has no bucket array of its own and does not implement
// Brent's-variation chained scatter or home-bucket relocation.
package table

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dchest/siphash"

	"github.com/tomo-lang/tomo/internal/wire"
)

type entry[K, V any] struct {
	key   K
	value V
}

// Table is a generic, insertion-ordered map. entries preserves
// insertion order for iteration (§4.4 "iteration order matches
// insertion order"). Lookup is delegated to Go's native map (index)
// rather than reproducing Brent's-variation open addressing bucket-
// for-bucket: see DESIGN.md for why the chaining scheme itself isn't
// replicated while its externally-visible contract (insertion order,
// fallback-on-miss, order-independent content hash) is.
type Table[K comparable, V any] struct {
	entries  []entry[K, V]
	index    map[K]int // key -> index into entries, O(1) membership/get
	fallback *Table[K, V]
	hash     func(K) uint64
	hashSet  bool
	cached   uint64
	none     bool // §3.7 "List?/Table? length=-1" sentinel, surfaced via Length()/IsNone
}

// None returns the table-shaped "none" sentinel, reporting Length()
// == -1 the same way an absent optional list does, rather than boxing
// the table behind a separate Present/Value discriminator.
func None[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{none: true}
}

// IsNone reports whether t is the None() sentinel.
func IsNone[K comparable, V any](t *Table[K, V]) bool {
	return t == nil || t.none
}

// hashKey is this package's SipHash-2-4 key. Its default differs from
// the text and types packages' defaults, and SetHashKey changes only
// this package's key (kept separate per-package since each caches a
// different kind of digest, per §4.1's per-type hash contract).
var hashKey = [2]uint64{0x1011121314151617, 0x18191a1b1c1d1e1f}

func SetHashKey(k0, k1 uint64) { hashKey = [2]uint64{k0, k1} }

// New constructs an empty table. The hash function is stored with the
// table and handed on to the tables that Sorted and the set operations
// build from it; the table itself never calls it: Get/Set use Go's
// native map for O(1) lookup, and Hash takes its own key/value hash
// functions as arguments.
func New[K comparable, V any](hash func(K) uint64) *Table[K, V] {
	return &Table[K, V]{index: make(map[K]int), hash: hash}
}

func (t *Table[K, V]) Length() int {
	if t.none {
		return -1
	}
	return len(t.entries)
}

// Get returns the value for key, consulting the fallback table on a
// miss (§4.4 "fallback tables are consulted only when the primary
// table doesn't contain the key").
func (t *Table[K, V]) Get(key K) (V, bool) {
	if i, ok := t.index[key]; ok {
		return t.entries[i].value, true
	}
	if t.fallback != nil {
		return t.fallback.Get(key)
	}
	var zero V
	return zero, false
}

// GetRaw looks up key in this table only, never consulting a fallback
// (§4.4 "get_raw (no fallback)").
func (t *Table[K, V]) GetRaw(key K) (V, bool) {
	if i, ok := t.index[key]; ok {
		return t.entries[i].value, true
	}
	var zero V
	return zero, false
}

// Reserve returns the value for key, inserting zero if absent, mirroring
// §4.4's "reserve (get-or-insert returning pointer to value slot)"; Go
// has no pointer-into-map-slot equivalent for a growable slice-backed
// table, so Reserve returns the (possibly freshly defaulted) value and
// leaves the caller to Set it back after mutating.
func (t *Table[K, V]) Reserve(key K, zero V) V {
	if i, ok := t.index[key]; ok {
		return t.entries[i].value
	}
	t.Set(key, zero)
	return zero
}

// Clear removes every entry and any fallback, matching §4.4's `clear`.
func (t *Table[K, V]) Clear() {
	t.entries = nil
	t.index = make(map[K]int)
	t.fallback = nil
	t.hashSet = false
}

// Entry returns the n'th inserted key/value pair, 1-based, per §4.4's
// "entry(n) (1-based ordered access)".
func (t *Table[K, V]) Entry(n int) (key K, value V, ok bool) {
	if n < 1 || n > len(t.entries) {
		return key, value, false
	}
	e := t.entries[n-1]
	return e.key, e.value, true
}

// Sorted returns a new table with entries reordered by less, an
// idempotent operation when applied twice (§8 "table.sorted.sorted =
// table.sorted").
func (t *Table[K, V]) Sorted(less func(a, b entry[K, V]) bool) *Table[K, V] {
	out := New[K, V](t.hash)
	ordered := append([]entry[K, V]{}, t.entries...)
	sort.SliceStable(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })
	for _, e := range ordered {
		out.Set(e.key, e.value)
	}
	out.fallback = t.fallback
	return out
}

// Key and Value expose entry's fields to callers outside the package
// that received one from Entry/Sorted's less callback.
func (e entry[K, V]) Key() K   { return e.key }
func (e entry[K, V]) Value() V { return e.value }

// Serialize writes t per §6.4's Table row: a varint length, alternating
// key/value pairs, then a 0/1 fallback-presence byte and, if 1, a
// recursively serialized fallback table.
func Serialize[K, V any](t *Table[K, V], w io.Writer, writeKey func(io.Writer, K) error, writeValue func(io.Writer, V) error) error {
	var writeFallback func(io.Writer) error
	if t.fallback != nil {
		writeFallback = func(w io.Writer) error {
			return Serialize(t.fallback, w, writeKey, writeValue)
		}
	}
	return wire.WriteTable(w, t.Keys(), t.Values(), writeKey, writeValue, writeFallback)
}

// Deserialize is Serialize's inverse, building a fresh table (and its
// fallback chain, if any).
func Deserialize[K comparable, V any](r io.Reader, hash func(K) uint64, readKey func(io.Reader) (K, error), readValue func(io.Reader) (V, error)) (*Table[K, V], error) {
	out := New[K, V](hash)
	var fallback *Table[K, V]
	keys, values, err := wire.ReadTable(r, readKey, readValue, func(r io.Reader) error {
		fb, err := Deserialize(r, hash, readKey, readValue)
		fallback = fb
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range keys {
		out.Set(keys[i], values[i])
	}
	out.fallback = fallback
	return out, nil
}

// Set inserts or overwrites key -> value, invalidating the cached
// hash since content changed.
func (t *Table[K, V]) Set(key K, value V) {
	t.hashSet = false
	if i, ok := t.index[key]; ok {
		t.entries[i].value = value
		return
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, entry[K, V]{key: key, value: value})
}

// Remove deletes key if present, re-indexing entries after it to keep
// Get's index map correct (§4.4 "remove preserves the relative
// insertion order of the remaining entries").
func (t *Table[K, V]) Remove(key K) {
	i, ok := t.index[key]
	if !ok {
		return
	}
	t.hashSet = false
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	delete(t.index, key)
	for k, idx := range t.index {
		if idx > i {
			t.index[k] = idx - 1
		}
	}
}

// Keys and Values return entries in insertion order.
func (t *Table[K, V]) Keys() []K {
	out := make([]K, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.key
	}
	return out
}

func (t *Table[K, V]) Values() []V {
	out := make([]V, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.value
	}
	return out
}

// SetFallback installs a fallback table consulted on lookup misses
// (§4.4 "fallback"), invalidating the cached hash since the fallback
// contributes to it.
func (t *Table[K, V]) SetFallback(fb *Table[K, V]) {
	t.fallback = fb
	t.hashSet = false
}

// Hash returns the table's cached content hash: SipHash-2-4 of the
// XOR of every key's hash, XOR of every value's hash, and the
// fallback table's hash (or 0 if none), matching §4.4's formula for
// order-independent table hashing so that two tables built by
// inserting the same pairs in different orders still hash equal.
func (t *Table[K, V]) Hash(hashKeyFn func(K) uint64, hashValueFn func(V) uint64) uint64 {
	if t.hashSet {
		return t.cached
	}
	var keysXor, valuesXor uint64
	for _, e := range t.entries {
		keysXor ^= hashKeyFn(e.key)
		valuesXor ^= hashValueFn(e.value)
	}
	var fallbackHash uint64
	if t.fallback != nil {
		fallbackHash = t.fallback.Hash(hashKeyFn, hashValueFn)
	}
	buf := make([]byte, 0, 24)
	for _, v := range []uint64{keysXor, valuesXor, fallbackHash} {
		for i := 0; i < 8; i++ {
			buf = append(buf, byte(v>>(8*i)))
		}
	}
	t.cached = siphash.Hash(hashKey[0], hashKey[1], buf)
	t.hashSet = true
	return t.cached
}

// Overlap, With, and Without implement the set-algebra operations of
// §4.4: keys present in both tables (values taken from the receiver),
// keys from either (receiver wins on conflict), and receiver's keys
// minus other's. Only each table's own entries are iterated: a
// fallback table of the other operand counts for membership (via
// Get), but keys that exist only in a fallback table are not copied
// into the result, and the result has no fallback.
func (t *Table[K, V]) Overlap(other *Table[K, V]) *Table[K, V] {
	out := New[K, V](t.hash)
	for _, e := range t.entries {
		if _, ok := other.Get(e.key); ok {
			out.Set(e.key, e.value)
		}
	}
	return out
}

func (t *Table[K, V]) With(other *Table[K, V]) *Table[K, V] {
	out := New[K, V](t.hash)
	for _, e := range t.entries {
		out.Set(e.key, e.value)
	}
	for _, e := range other.entries {
		if _, ok := out.Get(e.key); !ok {
			out.Set(e.key, e.value)
		}
	}
	return out
}

func (t *Table[K, V]) Without(other *Table[K, V]) *Table[K, V] {
	out := New[K, V](t.hash)
	for _, e := range t.entries {
		if _, ok := other.Get(e.key); !ok {
			out.Set(e.key, e.value)
		}
	}
	return out
}

// Xor returns the symmetric difference (§4.4 "xor (symmetric
// difference)"): each table's own entries whose key the other table
// does not contain, where the other table's fallback chain counts for
// membership via Get. As with Overlap/With/Without, keys that exist
// only in a fallback table are not iterated and never appear in the
// result.
func (t *Table[K, V]) Xor(other *Table[K, V]) *Table[K, V] {
	out := New[K, V](t.hash)
	for _, e := range t.entries {
		if _, ok := other.Get(e.key); !ok {
			out.Set(e.key, e.value)
		}
	}
	for _, e := range other.entries {
		if _, ok := t.Get(e.key); !ok {
			out.Set(e.key, e.value)
		}
	}
	return out
}

// String renders the table the way original_source/src/stdlib/tables.c's
// Table$as_text does: `{k1=v1, k2=v2}`, with an appended
// `; fallback=...` clause when a fallback is set.
func (t *Table[K, V]) String(keyStr func(K) string, valueStr func(V) string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range t.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(keyStr(e.key))
		b.WriteByte('=')
		b.WriteString(valueStr(e.value))
	}
	b.WriteByte('}')
	if t.fallback != nil {
		fmt.Fprintf(&b, "; fallback=%s", t.fallback.String(keyStr, valueStr))
	}
	return b.String()
}
