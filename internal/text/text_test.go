package text

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcatAndSlice(t *testing.T) {
	t.Run("concat then slice round-trips through the original content", func(t *testing.T) {
		a := FromString("hello ")
		b := FromString("world")
		joined := Concat(a, b)
		assert.Equal(t, "hello world", joined.String())
		assert.Equal(t, 11, joined.Length())
		assert.Equal(t, "world", joined.Slice(6, 11).String())
	})

	t.Run("concatenating with an empty text returns the other operand unchanged", func(t *testing.T) {
		a := FromString("abc")
		empty := FromString("")
		assert.Same(t, a, Concat(a, empty))
		assert.Same(t, a, Concat(empty, a))
	})
}

func TestGraphemeAwareLength(t *testing.T) {
	t.Run("combining marks count as one grapheme, not two runes", func(t *testing.T) {
		combined := FromString("é") // e + combining acute accent
		assert.Equal(t, 1, combined.Length())
	})
}

func TestHashIsCachedAndStable(t *testing.T) {
	txt := FromString("some content")
	h1 := txt.Hash()
	h2 := txt.Hash()
	assert.Equal(t, h1, h2)
}

func TestEqualIgnoresTreeShape(t *testing.T) {
	flat := FromString("abcdef")
	built := Concat(Concat(FromString("ab"), FromString("cd")), FromString("ef"))
	assert.True(t, Equal(flat, built))
	assert.Equal(t, 0, Compare(flat, built))
}

func TestReplace(t *testing.T) {
	txt := FromString("foo bar foo")
	replaced := txt.Replace("foo", "baz")
	assert.Equal(t, "baz bar baz", replaced.String())
}

// TestMixedScriptRoundTrip is §8 scenario 1: a mixed-script string
// containing a single-codepoint emoji (U+1F44B), a heavy heart followed
// by a variation selector, and a plain ASCII letter.
func TestMixedScriptRoundTrip(t *testing.T) {
	input := []byte{0xF0, 0x9F, 0x91, 0x8B, 0xE2, 0x9D, 0xA4, 0xEF, 0xB8, 0x8F, 0x41}
	txt, ok := FromBytesValidated(input)
	require.True(t, ok)
	assert.Equal(t, input, txt.Utf8Bytes())
}

func TestFromBytesValidatedRejectsInvalidUtf8(t *testing.T) {
	_, ok := FromBytesValidated([]byte{0xFF, 0xFE})
	assert.False(t, ok)
}

func TestUtf16RoundTrip(t *testing.T) {
	for _, s := range []string{"hello", "héllo", "\U0001F64B", "mixed \U0001F600 text"} {
		txt := FromString(s)
		units := txt.Utf16()
		back := Utf16ToText(units)
		assert.True(t, Equal(txt, back), "round trip of %q", s)
	}
}

func TestUtf32RoundTrip(t *testing.T) {
	for _, s := range []string{"hello", "héllo", "\U0001F64B"} {
		txt := FromString(s)
		back := Utf32ToText(txt.Utf32())
		assert.True(t, Equal(txt, back), "round trip of %q", s)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	txt := FromString("hello, 世界")
	var buf bytes.Buffer
	require.NoError(t, txt.Serialize(&buf))
	got, err := Deserialize(&buf)
	require.NoError(t, err)
	assert.True(t, Equal(txt, got))
}

func TestNoneIsDistinctFromEmptyString(t *testing.T) {
	none := None()
	empty := FromString("")

	assert.True(t, IsNone(none))
	assert.False(t, IsNone(empty))
	assert.True(t, IsNone(nil))
	assert.Equal(t, "", none.String(), "None still flattens safely, just carries no content")
}
