package types

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericFallbacksDeriveFromAsText(t *testing.T) {
	d := &Descriptor{Name: "Opaque", Kind: KindOpaque}

	assert.Equal(t, "5", GenericAsText(d, 5, false))
	assert.Equal(t, 0, GenericCompare(d, 5, 5))
	assert.True(t, GenericCompare(d, 1, 2) < 0)
	assert.True(t, GenericEqual(d, 3, 3))
	assert.False(t, GenericEqual(d, 3, 4))
	assert.False(t, IsNone(d, 3))
}

func TestEqualDefersToCompareWhenNoEqualMetamethod(t *testing.T) {
	d := &Descriptor{
		Name: "Int",
		Methods: Metamethods{
			Compare: func(a, b any) int { return a.(int) - b.(int) },
		},
	}
	assert.True(t, GenericEqual(d, 4, 4))
	assert.False(t, GenericEqual(d, 4, 5))
}

func TestHashUsesMetamethodWhenPresent(t *testing.T) {
	called := false
	d := &Descriptor{
		Methods: Metamethods{
			Hash: func(key [2]uint64, value any) uint64 {
				called = true
				return 42
			},
		},
	}
	assert.Equal(t, uint64(42), GenericHash(d, "x"))
	assert.True(t, called)
}

func TestHashKeyIsStableUntilOverridden(t *testing.T) {
	original := HashKey()
	WithHashKey(1, 2)
	assert.Equal(t, [2]uint64{1, 2}, HashKey())
	WithHashKey(original[0], original[1])
}

func TestSerializeDeserializeRequireMetamethods(t *testing.T) {
	d := &Descriptor{Name: "NoWire"}
	err := Serialize(d, nil, 1)
	require.Error(t, err)

	_, err = Deserialize(d, nil)
	require.Error(t, err)
}

func TestSerializeDeserializeDelegateToMetamethods(t *testing.T) {
	d := &Descriptor{
		Name: "Echo",
		Methods: Metamethods{
			Serialize: func(w io.Writer, v any) error {
				_, err := w.Write([]byte{byte(v.(int))})
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

	var buf bytes.Buffer
	require.NoError(t, Serialize(d, &buf, 7))
	got, err := Deserialize(d, &buf)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}
