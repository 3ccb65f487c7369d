package bignum

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPromotesToBigOnOverflow(t *testing.T) {
	a := FromInt64(math.MaxInt64)
	b := FromInt64(1)
	sum := a.Add(b)
	assert.True(t, sum.IsBig())
	assert.Equal(t, "9223372036854775808", sum.String())
}

func TestAddStaysSmallWithinRange(t *testing.T) {
	sum := FromInt64(2).Add(FromInt64(3))
	assert.False(t, sum.IsBig())
	assert.Equal(t, "5", sum.String())
}

func TestEuclideanDivMod(t *testing.T) {
	t.Run("modulo of a negative dividend is non-negative", func(t *testing.T) {
		r := FromInt64(-7).Mod(FromInt64(3))
		assert.Equal(t, "2", r.String())
	})

	t.Run("division is consistent with the Euclidean remainder", func(t *testing.T) {
		q := FromInt64(-7).Div(FromInt64(3))
		r := FromInt64(-7).Mod(FromInt64(3))
		reconstructed := q.Mul(FromInt64(3)).Add(r)
		assert.Equal(t, "-7", reconstructed.String())
	})
}

func TestMod1WrapsIntoOneIndexedRange(t *testing.T) {
	assert.Equal(t, "3", FromInt64(3).Mod1(FromInt64(5)).String())
	assert.Equal(t, "5", FromInt64(5).Mod1(FromInt64(5)).String())
	assert.Equal(t, "5", FromInt64(10).Mod1(FromInt64(5)).String())
}

func TestParseBasePrefixes(t *testing.T) {
	cases := map[string]int64{
		"0xFF":    255,
		"0o17":    15,
		"0b1010":  10,
		"1_000":   1000,
	}
	for text, want := range cases {
		v, err := Parse(text)
		assert.NoError(t, err)
		assert.Equal(t, want, v.BigInt().Int64(), "parsing %q", text)
	}
}

func TestFormatBases(t *testing.T) {
	v := FromInt64(255)
	assert.Equal(t, "0xff", v.Format(16))
	assert.Equal(t, "0o377", v.Format(8))
	assert.Equal(t, "0b11111111", v.Format(2))
}

func TestClampToBig(t *testing.T) {
	t.Run("clamps above range to max", func(t *testing.T) {
		v, _ := Parse("1000")
		assert.Equal(t, int8(127), ClampToBig[int8](v, false))
	})

	t.Run("clamps below range to min", func(t *testing.T) {
		v, _ := Parse("-1000")
		assert.Equal(t, int8(-128), ClampToBig[int8](v, false))
	})

	t.Run("in-range value passes through", func(t *testing.T) {
		v := FromInt64(42)
		assert.Equal(t, int8(42), ClampToBig[int8](v, false))
	})
}

func TestZigzagRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 42, -42, math.MaxInt32, -math.MaxInt32} {
		assert.Equal(t, v, ZigzagDecode(ZigzagEncode(v)))
	}
}

func TestVarintRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 40} {
		encoded := EncodeVarint(v)
		decoded, n := DecodeVarint(encoded)
		assert.Equal(t, v, decoded)
		assert.Equal(t, len(encoded), n)
	}
}

func TestSerializeRoundTripSmall(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 42, -42, math.MaxInt32} {
		var buf bytes.Buffer
		require.NoError(t, FromInt64(v).Serialize(&buf))
		got, err := Deserialize(&buf)
		require.NoError(t, err)
		assert.False(t, got.IsBig())
		assert.Equal(t, v, got.BigInt().Int64())
	}
}

func TestSerializeRoundTripBig(t *testing.T) {
	v := FromInt64(math.MaxInt64).Add(FromInt64(1)) // 2^63, overflows int64
	require.True(t, v.IsBig())

	var buf bytes.Buffer
	require.NoError(t, v.Serialize(&buf))
	got, err := Deserialize(&buf)
	require.NoError(t, err)
	assert.True(t, got.IsBig())
	assert.Equal(t, v.String(), got.String())
}

func TestSerializeBigIntTransitionAtBiggestSmallInt(t *testing.T) {
	// §8 scenario 6: doubling 1 sixty-two times stays in the tagged
	// small path; the 63rd doubling transitions to big without loss.
	i := FromInt64(1)
	for n := 0; n < 62; n++ {
		i = i.Add(i)
		assert.False(t, i.IsBig(), "doubling #%d should stay small", n+1)
	}
	assert.Equal(t, "4611686018427387904", i.String())

	i = i.Add(i)
	assert.True(t, i.IsBig(), "63rd doubling should transition to big")
	assert.Equal(t, "9223372036854775808", i.String())

	var buf bytes.Buffer
	require.NoError(t, i.Serialize(&buf))
	got, err := Deserialize(&buf)
	require.NoError(t, err)
	assert.Equal(t, i.String(), got.String())
}
