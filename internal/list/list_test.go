package list

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-lang/tomo/internal/wire"
)

func TestCopyOnWriteClone(t *testing.T) {
	t.Run("mutating a clone does not affect the original", func(t *testing.T) {
		original := New(1, 2, 3)
		clone := original.Clone()
		clone.Insert(4)

		assert.Equal(t, 3, original.Length())
		assert.Equal(t, 4, clone.Length())
		assert.Equal(t, 3, original.At(2))
	})
}

func TestInsertAtAndRemoveAt(t *testing.T) {
	l := New(1, 2, 4)
	l.InsertAt(2, 3)
	require.Equal(t, 4, l.Length())
	assert.Equal(t, []int{1, 2, 3, 4}, l.toSlice())

	l.RemoveAt(0)
	assert.Equal(t, []int{2, 3, 4}, l.toSlice())
}

func TestSliceAndByShareBackingArray(t *testing.T) {
	l := New(1, 2, 3, 4, 5, 6)
	mid := l.Slice(1, 4)
	assert.Equal(t, []int{2, 3, 4}, mid.toSlice())

	evens := l.By(2)
	assert.Equal(t, []int{1, 3, 5}, evens.toSlice())
}

func TestReversed(t *testing.T) {
	l := New(1, 2, 3)
	r := l.Reversed()
	assert.Equal(t, []int{3, 2, 1}, r.toSlice())
}

func TestSort(t *testing.T) {
	l := New(3, 1, 2)
	l.Sort(func(a, b int) bool { return a < b })
	assert.Equal(t, []int{1, 2, 3}, l.toSlice())
}

func TestHeapPushPop(t *testing.T) {
	less := func(a, b int) bool { return a < b }
	h := New[int]()
	for _, v := range []int{5, 1, 3, 2, 4} {
		HeapPush(h, v, less)
	}
	var popped []int
	for h.Length() > 0 {
		v, _ := HeapPop(h, less)
		popped = append(popped, v)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, popped)
}

func TestBinarySearch(t *testing.T) {
	l := New(1, 3, 5, 7, 9)
	cmp := func(a, b int) int { return a - b }

	idx, found := BinarySearch(l, 5, cmp)
	assert.True(t, found)
	assert.Equal(t, 2, idx)

	idx, found = BinarySearch(l, 4, cmp)
	assert.False(t, found)
	assert.Equal(t, 2, idx)
}

func TestCompareAndEqual(t *testing.T) {
	cmp := func(a, b int) int { return a - b }
	eq := func(a, b int) bool { return a == b }

	a := New(1, 2, 3)
	b := New(1, 2, 3)
	c := New(1, 2)

	assert.Equal(t, 0, Compare(a, b, cmp))
	assert.True(t, Equal(a, b, eq))
	assert.Equal(t, 1, Compare(a, c, cmp))
	assert.False(t, Equal(a, c, eq))
}

func TestSerializeRoundTrip(t *testing.T) {
	l := New(1, -2, 3, 400)
	var buf bytes.Buffer
	writeItem := func(w io.Writer, v int) error { return wire.WriteZigzag(w, int64(v)) }
	readItem := func(r io.Reader) (int, error) {
		v, err := wire.ReadZigzag(r)
		return int(v), err
	}
	require.NoError(t, Serialize(l, &buf, writeItem))

	got, err := Deserialize(&buf, readItem)
	require.NoError(t, err)
	assert.True(t, Equal(l, got, func(a, b int) bool { return a == b }))
}

func TestSerializeRoundTripOfSlicedView(t *testing.T) {
	l := New(1, 2, 3, 4, 5)
	view := l.Slice(1, 4)
	var buf bytes.Buffer
	writeItem := func(w io.Writer, v int) error { return wire.WriteZigzag(w, int64(v)) }
	readItem := func(r io.Reader) (int, error) {
		v, err := wire.ReadZigzag(r)
		return int(v), err
	}
	require.NoError(t, Serialize(view, &buf, writeItem))

	got, err := Deserialize(&buf, readItem)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, got.toSlice())
}

func TestNoneIsDistinctFromEmpty(t *testing.T) {
	none := None[int]()
	empty := New[int]()

	assert.True(t, IsNone(none))
	assert.False(t, IsNone(empty))
	assert.True(t, IsNone[int](nil), "a nil pointer is treated the same as the none sentinel")
	assert.Equal(t, -1, none.Length())
	assert.Equal(t, 0, empty.Length())
}
