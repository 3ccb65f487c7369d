// Package list implements Tomo's copy-on-write List (§3.2, §4.3): a
// value type backed by a shared data slice, a length, a stride, and a
// refcount on that shared slice so that copying a List is O(1) until
// one of the copies actually mutates.
package list

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"sort"

	"github.com/tomo-lang/tomo/internal/wire"
)

// List[T] is a value-typed, copy-on-write vector. The zero value is
// an empty list.
type List[T any] struct {
	data   *[]T
	offset int
	length int
	stride int // 1 normally; >1 when this List is a strided view (e.g. every-other-element slice); negative for a Reversed view
	shared *int32
}

// New builds a List owning its own backing array.
func New[T any](items ...T) *List[T] {
	data := make([]T, len(items))
	copy(data, items)
	refs := int32(1)
	return &List[T]{data: &data, length: len(items), stride: 1, shared: &refs}
}

func (l *List[T]) Length() int {
	if l == nil {
		return 0
	}
	return l.length
}

// None returns the list-shaped "none" sentinel (§3.7: "List?/Table?
// length=-1"), distinguishing an absent optional list from an empty
// one without a separate discriminator wrapper.
func None[T any]() *List[T] {
	return &List[T]{length: -1}
}

// IsNone reports whether l is the None() sentinel.
func IsNone[T any](l *List[T]) bool {
	return l == nil || l.length < 0
}

func (l *List[T]) At(i int) T {
	return (*l.data)[l.offset+i*l.stride]
}

// ensureUnique copies the backing array if it's shared with another
// List, the copy-on-write trigger point (§4.3 "mutation forces a
// private copy when data_refcount > 1"). A view that does not cover
// its backing array contiguously from the start (a Slice, By or
// Reversed view) is compacted into a private copy the same way, and
// the zero value gets an empty backing array of its own.
func (l *List[T]) ensureUnique() {
	if l.data == nil {
		data := []T{}
		refs := int32(1)
		l.data, l.offset, l.length, l.stride, l.shared = &data, 0, 0, 1, &refs
		return
	}
	if (l.shared != nil && *l.shared > 1) || l.offset != 0 || l.stride != 1 || l.length != len(*l.data) {
		newData := make([]T, l.length)
		for i := 0; i < l.length; i++ {
			newData[i] = l.At(i)
		}
		if l.shared != nil {
			*l.shared--
		}
		refs := int32(1)
		l.data = &newData
		l.offset = 0
		l.stride = 1
		l.shared = &refs
	}
}

// Clone returns an O(1) copy that shares the backing array until
// either copy mutates.
func (l *List[T]) Clone() *List[T] {
	if l == nil {
		return New[T]()
	}
	if l.shared != nil {
		*l.shared++
	}
	cp := *l
	return &cp
}

// Insert appends value at the end, matching List.insert's default
// append-at-tail behavior (§4.3).
func (l *List[T]) Insert(value T) *List[T] {
	l.ensureUnique()
	d := append(*l.data, value)
	l.data = &d
	l.length++
	return l
}

// InsertAt inserts value before index i (0-based; i == Length()
// appends).
func (l *List[T]) InsertAt(i int, value T) *List[T] {
	l.ensureUnique()
	d := *l.data
	d = append(d, value)
	copy(d[i+1:], d[i:len(d)-1])
	d[i] = value
	l.data = &d
	l.length++
	return l
}

// InsertAll appends every element of other.
func (l *List[T]) InsertAll(other *List[T]) *List[T] {
	l.ensureUnique()
	for i := 0; i < other.Length(); i++ {
		l.Insert(other.At(i))
	}
	return l
}

// RemoveAt deletes the element at index i.
func (l *List[T]) RemoveAt(i int) *List[T] {
	l.ensureUnique()
	d := *l.data
	copy(d[i:], d[i+1:])
	d = d[:len(d)-1]
	l.data = &d
	l.length--
	return l
}

// Slice returns a view sharing the backing array, [start,end).
func (l *List[T]) Slice(start, end int) *List[T] {
	if l.shared != nil {
		*l.shared++
	}
	return &List[T]{
		data: l.data, offset: l.offset + start*l.stride,
		length: end - start, stride: l.stride, shared: l.shared,
	}
}

// By returns a view with the given stride, e.g. By(2) for every
// other element (§4.3 "by").
func (l *List[T]) By(stride int) *List[T] {
	if l.shared != nil {
		*l.shared++
	}
	return &List[T]{
		data: l.data, offset: l.offset, length: (l.length + stride - 1) / stride,
		stride: l.stride * stride, shared: l.shared,
	}
}

// Reversed returns a view iterating back to front.
func (l *List[T]) Reversed() *List[T] {
	if l.shared != nil {
		*l.shared++
	}
	lastOffset := l.offset + (l.length-1)*l.stride
	return &List[T]{
		data: l.data, offset: lastOffset, length: l.length,
		stride: -l.stride, shared: l.shared,
	}
}

func (l *List[T]) toSlice() []T {
	out := make([]T, l.length)
	for i := range out {
		out[i] = l.At(i)
	}
	return out
}

// Sort sorts in place (after ensuring a private copy) using less.
func (l *List[T]) Sort(less func(a, b T) bool) *List[T] {
	l.ensureUnique()
	vals := l.toSlice()
	sort.SliceStable(vals, func(i, j int) bool { return less(vals[i], vals[j]) })
	d := vals
	l.data, l.offset, l.stride = &d, 0, 1
	return l
}

// Shuffle performs a cryptographically random Fisher-Yates shuffle in
// place, matching §5's "List.shuffle uses the secure RNG, not a
// deterministic PRNG" resource-model note.
func (l *List[T]) Shuffle() *List[T] {
	l.ensureUnique()
	vals := l.toSlice()
	for i := len(vals) - 1; i > 0; i-- {
		j := secureIntn(i + 1)
		vals[i], vals[j] = vals[j], vals[i]
	}
	d := vals
	l.data, l.offset, l.stride = &d, 0, 1
	return l
}

func secureIntn(n int) int {
	if n <= 1 {
		return 0
	}
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return int(binary.BigEndian.Uint64(buf[:]) % uint64(n))
}

// Sample draws n elements using the alias method for O(1)-per-draw
// weighted sampling (§4.3 "sample"), falling back to uniform weights
// when weights is nil.
func Sample[T any](l *List[T], n int, weights []float64) []T {
	if len(weights) == 0 {
		weights = make([]float64, l.Length())
		for i := range weights {
			weights[i] = 1
		}
	}
	alias := buildAliasTable(weights)
	out := make([]T, n)
	for i := range out {
		out[i] = l.At(alias.draw())
	}
	return out
}

// aliasTable is Vose's alias method construction, used for O(1)
// weighted draws instead of a linear or binary-search scan per draw.
type aliasTable struct {
	prob  []float64
	alias []int
}

func buildAliasTable(weights []float64) *aliasTable {
	n := len(weights)
	total := 0.0
	for _, w := range weights {
		total += w
	}
	scaled := make([]float64, n)
	for i, w := range weights {
		scaled[i] = w * float64(n) / total
	}
	small, large := []int{}, []int{}
	for i, p := range scaled {
		if p < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}
	prob := make([]float64, n)
	alias := make([]int, n)
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]
		prob[s] = scaled[s]
		alias[s] = l
		scaled[l] = scaled[l] + scaled[s] - 1
		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	for _, l := range large {
		prob[l] = 1
	}
	for _, s := range small {
		prob[s] = 1
	}
	return &aliasTable{prob: prob, alias: alias}
}

func (a *aliasTable) draw() int {
	i := secureIntn(len(a.prob))
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	r := float64(binary.BigEndian.Uint64(buf[:])%1_000_000) / 1_000_000
	if r < a.prob[i] {
		return i
	}
	return a.alias[i]
}

// HeapPush/HeapPop/Heapify implement a binary heap over the list's
// own backing storage using less for ordering (§4.3 "heap_push",
// "heap_pop", "heapify").
func HeapPush[T any](l *List[T], value T, less func(a, b T) bool) *List[T] {
	l.Insert(value)
	i := l.length - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !less(l.At(i), l.At(parent)) {
			break
		}
		l.swap(i, parent)
		i = parent
	}
	return l
}

func HeapPop[T any](l *List[T], less func(a, b T) bool) (T, *List[T]) {
	var zero T
	if l.length == 0 {
		return zero, l
	}
	top := l.At(0)
	last := l.length - 1
	l.swap(0, last)
	l.RemoveAt(last)
	i := 0
	for {
		left, right, smallest := 2*i+1, 2*i+2, i
		if left < l.length && less(l.At(left), l.At(smallest)) {
			smallest = left
		}
		if right < l.length && less(l.At(right), l.At(smallest)) {
			smallest = right
		}
		if smallest == i {
			break
		}
		l.swap(i, smallest)
		i = smallest
	}
	return top, l
}

func Heapify[T any](l *List[T], less func(a, b T) bool) *List[T] {
	l.ensureUnique()
	for i := l.length/2 - 1; i >= 0; i-- {
		siftDown(l, i, less)
	}
	return l
}

func siftDown[T any](l *List[T], i int, less func(a, b T) bool) {
	for {
		left, right, smallest := 2*i+1, 2*i+2, i
		if left < l.length && less(l.At(left), l.At(smallest)) {
			smallest = left
		}
		if right < l.length && less(l.At(right), l.At(smallest)) {
			smallest = right
		}
		if smallest == i {
			return
		}
		l.swap(i, smallest)
		i = smallest
	}
}

func (l *List[T]) swap(i, j int) {
	d := *l.data
	a, b := l.offset+i*l.stride, l.offset+j*l.stride
	d[a], d[b] = d[b], d[a]
}

// BinarySearch returns the index of value, or the index it would be
// inserted at with found=false, assuming l is already sorted per cmp
// (§4.3 "binary_search").
func BinarySearch[T any](l *List[T], value T, cmp func(a, b T) int) (index int, found bool) {
	lo, hi := 0, l.Length()
	for lo < hi {
		mid := (lo + hi) / 2
		c := cmp(l.At(mid), value)
		switch {
		case c == 0:
			return mid, true
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}

// Compare gives lexicographic three-way ordering using cmp
// element-wise, shorter-is-less on a common prefix (§4.3 "compare").
func Compare[T any](a, b *List[T], cmp func(x, y T) int) int {
	n := a.Length()
	if b.Length() < n {
		n = b.Length()
	}
	for i := 0; i < n; i++ {
		if c := cmp(a.At(i), b.At(i)); c != 0 {
			return c
		}
	}
	switch {
	case a.Length() < b.Length():
		return -1
	case a.Length() > b.Length():
		return 1
	default:
		return 0
	}
}

func Equal[T any](a, b *List[T], eq func(x, y T) bool) bool {
	if a.Length() != b.Length() {
		return false
	}
	for i := 0; i < a.Length(); i++ {
		if !eq(a.At(i), b.At(i)) {
			return false
		}
	}
	return true
}

// Serialize writes l per §6.4's List row: a varint length followed by
// each element via writeItem.
func Serialize[T any](l *List[T], w io.Writer, writeItem func(io.Writer, T) error) error {
	return wire.WriteList(w, l.toSlice(), writeItem)
}

// Deserialize is Serialize's inverse, building a fresh owning List.
func Deserialize[T any](r io.Reader, readItem func(io.Reader) (T, error)) (*List[T], error) {
	items, err := wire.ReadList(r, readItem)
	if err != nil {
		return nil, err
	}
	return New(items...), nil
}
