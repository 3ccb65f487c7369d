package table

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-lang/tomo/internal/wire"
)

func identityHash(s string) uint64 {
	var h uint64
	for _, b := range []byte(s) {
		h = h*31 + uint64(b)
	}
	return h
}

func TestGetSetRemove(t *testing.T) {
	tbl := New[string, int](identityHash)
	tbl.Set("a", 1)
	tbl.Set("b", 2)

	v, ok := tbl.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	tbl.Remove("a")
	_, ok = tbl.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Length())
}

func TestInsertionOrderPreserved(t *testing.T) {
	tbl := New[string, int](identityHash)
	tbl.Set("z", 1)
	tbl.Set("a", 2)
	tbl.Set("m", 3)
	assert.Equal(t, []string{"z", "a", "m"}, tbl.Keys())
}

func TestFallbackConsultedOnlyOnMiss(t *testing.T) {
	fallback := New[string, int](identityHash)
	fallback.Set("x", 99)

	tbl := New[string, int](identityHash)
	tbl.Set("x", 1)
	tbl.SetFallback(fallback)

	v, ok := tbl.Get("x")
	require.True(t, ok)
	assert.Equal(t, 1, v, "primary table's own value should win over the fallback")

	v, ok = tbl.Get("y")
	require.False(t, ok)
	_ = v

	fallback.Set("y", 5)
	v, ok = tbl.Get("y")
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestHashIsOrderIndependent(t *testing.T) {
	hashStr := func(s string) uint64 { return identityHash(s) }
	hashInt := func(i int) uint64 { return uint64(i) }

	a := New[string, int](identityHash)
	a.Set("x", 1)
	a.Set("y", 2)

	b := New[string, int](identityHash)
	b.Set("y", 2)
	b.Set("x", 1)

	assert.Equal(t, a.Hash(hashStr, hashInt), b.Hash(hashStr, hashInt))
}

func TestSetAlgebra(t *testing.T) {
	a := New[string, int](identityHash)
	a.Set("x", 1)
	a.Set("y", 2)

	b := New[string, int](identityHash)
	b.Set("y", 20)
	b.Set("z", 3)

	overlap := a.Overlap(b)
	assert.Equal(t, []string{"y"}, overlap.Keys())

	with := a.With(b)
	assert.ElementsMatch(t, []string{"x", "y", "z"}, with.Keys())
	v, _ := with.Get("y")
	assert.Equal(t, 2, v, "With should prefer the receiver's value on key conflict")

	without := a.Without(b)
	assert.Equal(t, []string{"x"}, without.Keys())

	xor := a.Xor(b)
	assert.ElementsMatch(t, []string{"x", "z"}, xor.Keys())
}

func TestGetRawIgnoresFallback(t *testing.T) {
	fallback := New[string, int](identityHash)
	fallback.Set("y", 5)

	tbl := New[string, int](identityHash)
	tbl.SetFallback(fallback)

	_, ok := tbl.GetRaw("y")
	assert.False(t, ok, "GetRaw must not consult the fallback table")

	v, ok := tbl.Get("y")
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestReserve(t *testing.T) {
	tbl := New[string, int](identityHash)
	v := tbl.Reserve("a", 0)
	assert.Equal(t, 0, v)
	assert.Equal(t, 1, tbl.Length())

	tbl.Set("a", 7)
	assert.Equal(t, 7, tbl.Reserve("a", 0), "Reserve on a present key returns the existing value")
}

func TestClear(t *testing.T) {
	tbl := New[string, int](identityHash)
	tbl.Set("a", 1)
	tbl.SetFallback(New[string, int](identityHash))
	tbl.Clear()
	assert.Equal(t, 0, tbl.Length())
	_, ok := tbl.Get("a")
	assert.False(t, ok)
}

func TestEntryIsOneBased(t *testing.T) {
	tbl := New[string, int](identityHash)
	tbl.Set("first", 1)
	tbl.Set("second", 2)

	k, v, ok := tbl.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "first", k)
	assert.Equal(t, 1, v)

	_, _, ok = tbl.Entry(0)
	assert.False(t, ok)
	_, _, ok = tbl.Entry(3)
	assert.False(t, ok)
}

func TestSortedIsIdempotent(t *testing.T) {
	tbl := New[string, int](identityHash)
	tbl.Set("z", 1)
	tbl.Set("a", 2)
	byKey := func(a, b entry[string, int]) bool { return a.Key() < b.Key() }

	once := tbl.Sorted(byKey)
	twice := once.Sorted(byKey)
	assert.Equal(t, once.Keys(), twice.Keys())
	assert.Equal(t, []string{"a", "z"}, once.Keys())
}

func TestSerializeRoundTrip(t *testing.T) {
	tbl := New[string, int](identityHash)
	tbl.Set("a", 1)
	tbl.Set("b", 2)

	var buf bytes.Buffer
	writeKey := func(w io.Writer, k string) error { return wire.WriteBytes(w, []byte(k)) }
	readKey := func(r io.Reader) (string, error) {
		b, err := wire.ReadBytes(r)
		return string(b), err
	}
	writeValue := func(w io.Writer, v int) error { return wire.WriteZigzag(w, int64(v)) }
	readValue := func(r io.Reader) (int, error) {
		v, err := wire.ReadZigzag(r)
		return int(v), err
	}

	require.NoError(t, Serialize(tbl, &buf, writeKey, writeValue))
	got, err := Deserialize[string, int](&buf, identityHash, readKey, readValue)
	require.NoError(t, err)
	assert.Equal(t, tbl.Keys(), got.Keys())
	v, ok := got.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestSerializeRoundTripWithFallback(t *testing.T) {
	fallback := New[string, int](identityHash)
	fallback.Set("x", 99)

	tbl := New[string, int](identityHash)
	tbl.Set("a", 1)
	tbl.SetFallback(fallback)

	var buf bytes.Buffer
	writeKey := func(w io.Writer, k string) error { return wire.WriteBytes(w, []byte(k)) }
	readKey := func(r io.Reader) (string, error) {
		b, err := wire.ReadBytes(r)
		return string(b), err
	}
	writeValue := func(w io.Writer, v int) error { return wire.WriteZigzag(w, int64(v)) }
	readValue := func(r io.Reader) (int, error) {
		v, err := wire.ReadZigzag(r)
		return int(v), err
	}

	require.NoError(t, Serialize(tbl, &buf, writeKey, writeValue))
	got, err := Deserialize[string, int](&buf, identityHash, readKey, readValue)
	require.NoError(t, err)

	v, ok := got.Get("x")
	require.True(t, ok, "fallback should round-trip")
	assert.Equal(t, 99, v)
}

func TestNoneIsDistinctFromEmpty(t *testing.T) {
	none := None[string, int]()
	empty := New[string, int](identityHash)

	assert.True(t, IsNone(none))
	assert.False(t, IsNone(empty))
	assert.True(t, IsNone[string, int](nil))
	assert.Equal(t, -1, none.Length())
	assert.Equal(t, 0, empty.Length())
}
