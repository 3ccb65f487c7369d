package value

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-lang/tomo/internal/types"
)

type point struct {
	X, Y int
	Name string
	Lit  bool
}

func pointFields() []Field {
	return []Field{
		{Name: "X", Get: func(i any) any { return i.(*point).X }, Set: func(i, v any) { i.(*point).X = v.(int) }},
		{Name: "Y", Get: func(i any) any { return i.(*point).Y }, Set: func(i, v any) { i.(*point).Y = v.(int) }},
		{Name: "Name", Get: func(i any) any { return i.(*point).Name }, Set: func(i, v any) { i.(*point).Name = v.(string) }},
		{Name: "Lit", Get: func(i any) any { return i.(*point).Lit }, IsBool: true, Set: func(i, v any) { i.(*point).Lit = v.(bool) }},
	}
}

func TestStructCompareAndAsText(t *testing.T) {
	d := StructDescriptor("Point", pointFields(), func() any { return &point{} }, &types.Descriptor{})

	a := &point{X: 1, Y: 2, Name: "a"}
	b := &point{X: 1, Y: 2, Name: "a"}
	c := &point{X: 1, Y: 3, Name: "a"}

	assert.Equal(t, 0, types.GenericCompare(d, a, b))
	assert.True(t, types.GenericEqual(d, a, b))
	assert.NotEqual(t, 0, types.GenericCompare(d, a, c))
	assert.Equal(t, "Point(X=1, Y=2, Name=a, Lit=false)", types.GenericAsText(d, a, false))
}

func TestStructSerializeRoundTrip(t *testing.T) {
	d := StructDescriptor("Point", pointFields(), func() any { return &point{} }, &types.Descriptor{})

	p := &point{X: 7, Y: -3, Name: "origin-ish", Lit: true}
	var buf bytes.Buffer
	require.NoError(t, types.Serialize(d, &buf, p))

	got, err := types.Deserialize(d, &buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

type circle struct{ Radius int }

func TestEnumCompareOrdersByTagThenPayload(t *testing.T) {
	tags := []EnumTag{
		{Name: "Point", Value: 0},
		{Name: "Circle", Value: 1, Fields: []Field{
			{Name: "Radius", Get: func(i any) any { return i.(*circle).Radius },
				Set: func(i, v any) { i.(*circle).Radius = v.(int) }},
		}, NewPayload: func() any { return &circle{} }},
	}
	d := EnumDescriptor("Shape", tags, &types.Descriptor{})

	point := EnumValue{Tag: 0}
	small := EnumValue{Tag: 1, Payload: &circle{Radius: 1}}
	big := EnumValue{Tag: 1, Payload: &circle{Radius: 5}}

	assert.True(t, types.GenericCompare(d, point, small) < 0, "lower tag value sorts first")
	assert.True(t, types.GenericCompare(d, small, big) < 0, "same tag falls back to payload compare")
	assert.Equal(t, "Point", types.GenericAsText(d, point, false))
	assert.Equal(t, "Circle(Radius=5)", types.GenericAsText(d, big, false))
}

func TestEnumSerializeRoundTrip(t *testing.T) {
	tags := []EnumTag{
		{Name: "Point", Value: 0},
		{Name: "Circle", Value: 1, Fields: []Field{
			{Name: "Radius", Get: func(i any) any { return i.(*circle).Radius },
				Set: func(i, v any) { i.(*circle).Radius = v.(int) }},
		}, NewPayload: func() any { return &circle{} }},
	}
	d := EnumDescriptor("Shape", tags, &types.Descriptor{})

	for _, v := range []EnumValue{{Tag: 0}, {Tag: 1, Payload: &circle{Radius: 9}}} {
		var buf bytes.Buffer
		require.NoError(t, types.Serialize(d, &buf, v))
		got, err := types.Deserialize(d, &buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestOptionalIsNoneAndOrdering(t *testing.T) {
	inner := &types.Descriptor{
		Name: "Int",
		Methods: types.Metamethods{
			Compare: func(a, b any) int { return a.(int) - b.(int) },
		},
	}
	d := OptionalDescriptor(inner)

	assert.True(t, types.IsNone(d, None()))
	assert.False(t, types.IsNone(d, Some(5)))
	assert.True(t, types.GenericCompare(d, None(), Some(0)) < 0, "none sorts before any value")
	assert.Equal(t, 0, types.GenericCompare(d, None(), None()))
}

func TestOptionalSerializeRoundTrip(t *testing.T) {
	inner := &types.Descriptor{
		Name: "Int",
		Methods: types.Metamethods{
			Serialize: func(w io.Writer, v any) error {
				b := []byte{byte(v.(int))}
				_, err := w.Write(b)
				return err
			},
			Deserialize: func(r io.Reader) (any, error) {
				var b [1]byte
				if _, err := io.ReadFull(r, b[:]); err != nil {
					return nil, err
				}
				return int(b[0]), nil
			},
		},
	}
	d := OptionalDescriptor(inner)

	var buf bytes.Buffer
	require.NoError(t, types.Serialize(d, &buf, Some(42)))
	got, err := types.Deserialize(d, &buf)
	require.NoError(t, err)
	assert.Equal(t, Some(42), got)

	buf.Reset()
	require.NoError(t, types.Serialize(d, &buf, None()))
	got, err = types.Deserialize(d, &buf)
	require.NoError(t, err)
	assert.Equal(t, None(), got)
}

// sentinelInt mimics a type with a reserved "none" value (here, -1)
// instead of a spare bit pattern, to exercise SentinelOptionalDescriptor
// without depending on package list/table/text from this test.
type sentinelInt int

func sentinelIsNone(v any) bool { return v.(sentinelInt) == -1 }
func sentinelNoneValue() any    { return sentinelInt(-1) }

func TestSentinelOptionalDescriptorHasNoDiscriminatorWrapper(t *testing.T) {
	inner := &types.Descriptor{
		Name: "SentinelInt",
		Methods: types.Metamethods{
			Compare: func(a, b any) int { return int(a.(sentinelInt)) - int(b.(sentinelInt)) },
			AsText:  func(v any, colorize bool) string { return fmt.Sprint(int(v.(sentinelInt))) },
		},
	}
	d := SentinelOptionalDescriptor(inner, sentinelIsNone, sentinelNoneValue)

	assert.True(t, types.IsNone(d, sentinelInt(-1)))
	assert.False(t, types.IsNone(d, sentinelInt(5)))
	assert.Equal(t, 0, types.GenericCompare(d, sentinelInt(-1), sentinelInt(-1)))
	assert.True(t, types.GenericCompare(d, sentinelInt(-1), sentinelInt(0)) < 0)
	assert.Equal(t, "none", types.GenericAsText(d, sentinelInt(-1), false))
	assert.Equal(t, "5", types.GenericAsText(d, sentinelInt(5), false))

	var buf bytes.Buffer
	require.NoError(t, types.Serialize(d, &buf, sentinelInt(-1)))
	got, err := types.Deserialize(d, &buf)
	require.NoError(t, err)
	assert.Equal(t, sentinelInt(-1), got, "deserializing an absent value returns the sentinel itself, not a wrapper")
}
