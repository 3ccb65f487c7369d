// Package text implements Tomo's persistent Unicode rope (§3.2,
// §4.2): an immutable, structurally-shared string type built out of
// ASCII, grapheme-cluster, and binary-blob leaves joined by CONCAT
// nodes, the way the runtime avoids both UTF-8 re-scanning and
// whole-string copies on every slice/concat.
package text

import (
	"io"
	"sync"
	"unicode/utf8"

	"github.com/dchest/siphash"
	"golang.org/x/text/unicode/norm"

	"github.com/tomo-lang/tomo/internal/wire"
)

// Variant distinguishes the leaf/branch representations of §3.2.
type Variant int

const (
	VariantNone Variant = iota
	VariantAscii
	VariantGraphemes
	VariantBlob
	VariantConcat
)

// maxDepth bounds rope depth (§4.2); concatenation rebalances once a
// tree would exceed it, the same SGI-rope-style policy the spec
// names.
const maxDepth = 48

// Text is an immutable rope. Zero value is the empty ASCII text.
// A Text is safe to share across goroutines: the only state written
// after construction is the cached hash, which is computed once under
// a sync.Once.
type Text struct {
	variant Variant

	// ascii holds the raw bytes when variant == VariantAscii.
	ascii string

	// graphemes holds one entry per user-perceived character when
	// variant == VariantGraphemes: a grapheme cluster may be more
	// than one rune (e.g. a base letter plus combining marks, or CR LF), so a
	// []rune would misrepresent length and indexing.
	graphemes []string

	// blob holds arbitrary non-text bytes (VariantBlob), used for
	// content that passed through Text but isn't guaranteed valid
	// Unicode (§3.2 "Blob").
	blob []byte

	left, right *Text // VariantConcat children
	depth       int

	length int // grapheme-cluster count, cached for O(1) Length()

	hash     uint64
	hashSet  bool
	hashOnce sync.Once
}

// hashKey is the process-wide SipHash-2-4 key used to cache a rope's
// hash on first request (§4.2 "cached hash").
var hashKey = [2]uint64{0x0706050403020100, 0x0f0e0d0c0b0a0908}

// SetHashKey installs the process-wide key, matching the one-time
// randomized-key resource model of §5.
func SetHashKey(k0, k1 uint64) { hashKey = [2]uint64{k0, k1} }

// FromString builds a Text from a Go string, normalizing to NFC and
// splitting into grapheme clusters only if the text isn't pure ASCII
// (the common case stays in the cheaper ASCII representation, per
// §4.2's "ASCII fast path").
func FromString(s string) *Text {
	if isASCII(s) {
		return &Text{variant: VariantAscii, ascii: s, length: len(s)}
	}
	normalized := norm.NFC.String(s)
	clusters := splitGraphemes(normalized)
	return &Text{variant: VariantGraphemes, graphemes: clusters, length: len(clusters)}
}

// FromStringN builds a Text from the first n bytes of s without
// requiring s[:n] to land on a boundary the caller has already
// validated; FromString is applied to the truncated slice.
func FromStringN(s string, n int) *Text {
	if n > len(s) {
		n = len(s)
	}
	return FromString(s[:n])
}

// FromBytes wraps arbitrary bytes as an opaque Blob, for content that
// came from I/O and hasn't been validated as text (§3.2 "Blob").
func FromBytes(b []byte) *Text {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Text{variant: VariantBlob, blob: cp, length: len(cp)}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// splitGraphemes breaks s into user-perceived characters. This
// implements the common cases of UAX #29 (CR/LF, and combining marks
// in the ranges isCombining lists attaching to their base) rather than
// the complete grapheme-cluster algorithm: emoji ZWJ sequences,
// variation selectors and regional-indicator flag pairs are split into
// one cluster per codepoint.
func splitGraphemes(s string) []string {
	runes := []rune(s)
	var out []string
	i := 0
	for i < len(runes) {
		j := i + 1
		for j < len(runes) && isCombining(runes[j]) {
			j++
		}
		if i < len(runes)-1 && runes[i] == '\r' && runes[i+1] == '\n' {
			out = append(out, "\r\n")
			i += 2
			continue
		}
		out = append(out, string(runes[i:j]))
		i = j
	}
	return out
}

func isCombining(r rune) bool {
	return (r >= 0x0300 && r <= 0x036F) || (r >= 0x1AB0 && r <= 0x1AFF) || (r >= 0x20D0 && r <= 0x20FF)
}

// Length returns the number of grapheme clusters (for text variants)
// or bytes (for Blob), matching §4.2's "length counts user-perceived
// characters, not bytes".
func (t *Text) Length() int {
	if t == nil {
		return 0
	}
	return t.length
}

// None returns the text-shaped "none" sentinel (§3.7 "Text? NONE
// tag"): a dedicated rope variant rather than a boxed discriminator,
// matching the same no-extra-bits strategy List/Table use via a
// length of -1.
func None() *Text { return &Text{variant: VariantNone} }

// IsNone reports whether t is the None() sentinel.
func IsNone(t *Text) bool { return t == nil || t.variant == VariantNone }

// Concat joins two ropes, rebalancing if the result would exceed
// maxDepth (§4.2).
func Concat(a, b *Text) *Text {
	if a == nil || a.Length() == 0 {
		return b
	}
	if b == nil || b.Length() == 0 {
		return a
	}
	depth := 1 + max(a.depth, b.depth)
	n := &Text{variant: VariantConcat, left: a, right: b, depth: depth, length: a.Length() + b.Length()}
	if depth > maxDepth {
		return rebalance(n)
	}
	return n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// rebalance flattens n's leaves and rebuilds a balanced tree, the
// standard rope-rebalancing strategy (§4.2).
func rebalance(n *Text) *Text {
	leaves := collectLeaves(n, nil)
	return buildBalanced(leaves)
}

func collectLeaves(n *Text, out []*Text) []*Text {
	if n == nil {
		return out
	}
	if n.variant != VariantConcat {
		return append(out, n)
	}
	out = collectLeaves(n.left, out)
	out = collectLeaves(n.right, out)
	return out
}

func buildBalanced(leaves []*Text) *Text {
	if len(leaves) == 0 {
		return &Text{variant: VariantAscii}
	}
	if len(leaves) == 1 {
		return leaves[0]
	}
	mid := len(leaves) / 2
	left := buildBalanced(leaves[:mid])
	right := buildBalanced(leaves[mid:])
	return &Text{
		variant: VariantConcat, left: left, right: right,
		depth:  1 + max(left.depth, right.depth),
		length: left.Length() + right.Length(),
	}
}

// Slice returns the grapheme-cluster half-open range [start,end) as
// a new Text, sharing structure with t wherever possible instead of
// copying (§4.2 "Slice shares structure with its parent").
func (t *Text) Slice(start, end int) *Text {
	if t == nil || start >= end {
		return &Text{variant: VariantAscii}
	}
	if start < 0 {
		start = 0
	}
	if end > t.Length() {
		end = t.Length()
	}
	switch t.variant {
	case VariantAscii:
		return &Text{variant: VariantAscii, ascii: t.ascii[start:end], length: end - start}
	case VariantBlob:
		return &Text{variant: VariantBlob, blob: t.blob[start:end], length: end - start}
	case VariantGraphemes:
		return &Text{variant: VariantGraphemes, graphemes: t.graphemes[start:end], length: end - start}
	case VariantConcat:
		leftLen := t.left.Length()
		switch {
		case end <= leftLen:
			return t.left.Slice(start, end)
		case start >= leftLen:
			return t.right.Slice(start-leftLen, end-leftLen)
		default:
			return Concat(t.left.Slice(start, leftLen), t.right.Slice(0, end-leftLen))
		}
	}
	return &Text{variant: VariantAscii}
}

// Grapheme returns the i'th user-perceived character.
func (t *Text) Grapheme(i int) string {
	if t == nil || i < 0 || i >= t.length {
		return ""
	}
	switch t.variant {
	case VariantAscii:
		return t.ascii[i : i+1]
	case VariantGraphemes:
		return t.graphemes[i]
	case VariantBlob:
		return string(t.blob[i])
	case VariantConcat:
		leftLen := t.left.Length()
		if i < leftLen {
			return t.left.Grapheme(i)
		}
		return t.right.Grapheme(i - leftLen)
	}
	return ""
}

// String flattens the rope to a Go string. Used for formatting,
// hashing input, and interop with stdlib text APIs; callers on a hot
// path that only need a sub-range should prefer Slice+String on the
// slice instead of flattening the whole rope first.
func (t *Text) String() string {
	if t == nil {
		return ""
	}
	switch t.variant {
	case VariantAscii:
		return t.ascii
	case VariantBlob:
		return string(t.blob)
	case VariantGraphemes:
		var b []byte
		for _, g := range t.graphemes {
			b = append(b, g...)
		}
		return string(b)
	case VariantConcat:
		return t.left.String() + t.right.String()
	}
	return ""
}

// Equal compares two ropes grapheme-by-grapheme, independent of tree
// shape (two differently-built ropes with the same content are
// equal).
func Equal(a, b *Text) bool {
	if a.Length() != b.Length() {
		return false
	}
	return a.String() == b.String()
}

// Compare gives a three-way lexicographic ordering over flattened
// content.
func Compare(a, b *Text) int {
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// Hash returns (and caches) the rope's SipHash-2-4 digest. §9's Open
// Question about remapping a hash of 0 is resolved here: a genuine
// zero digest is remapped to 1234567 so callers can use 0 as a
// sentinel "not yet computed" value in their own caches, matching the
// convention the rest of the runtime's hash caches rely on.
func (t *Text) Hash() uint64 {
	if t == nil {
		return 0
	}
	t.hashOnce.Do(func() {
		h := siphash.Hash(hashKey[0], hashKey[1], []byte(t.String()))
		if h == 0 {
			h = 1234567
		}
		t.hash = h
		t.hashSet = true
	})
	return t.hash
}

// Quoted renders t as a double-quoted literal with escape sequences
// for the double quote, the backslash, newline and tab; every other
// character, including other control characters, is written as-is.
// It optionally uses the REPL's ANSI color theme (supplemented from
// original_source builtins/text.c's Text$quoted: bold blue for the
// surrounding quotes, magenta for each whole escape sequence including
// its backslash).
func (t *Text) Quoted(colorize bool) string {
	const (
		quoteColor = "\x1b[34;1m"
		escColor   = "\x1b[0;35m"
		reset      = "\x1b[0m"
	)
	var out []byte
	put := func(s string) { out = append(out, s...) }
	if colorize {
		put(quoteColor)
	}
	put(`"`)
	for _, r := range t.String() {
		switch r {
		case '"':
			if colorize {
				put(escColor)
			}
			put(`\"`)
		case '\\':
			if colorize {
				put(escColor)
			}
			put(`\\`)
		case '\n':
			if colorize {
				put(escColor)
			}
			put(`\n`)
		case '\t':
			if colorize {
				put(escColor)
			}
			put(`\t`)
		default:
			if colorize {
				put(reset)
			}
			out = append(out, string(r)...)
			continue
		}
		if colorize {
			put(quoteColor)
		}
	}
	if colorize {
		put(reset + quoteColor)
	}
	put(`"`)
	if colorize {
		put(reset)
	}
	return string(out)
}

// Replace substitutes every occurrence of old with replacement,
// operating on flattened content; large-scale rope-aware replace
// (avoiding the flatten) is left as future work since typical Tomo
// programs call this on already-small strings.
func (t *Text) Replace(old, replacement string) *Text {
	return FromString(replaceAll(t.String(), old, replacement))
}

func replaceAll(s, old, repl string) string {
	if old == "" {
		return s
	}
	var out []byte
	for {
		i := indexOf(s, old)
		if i < 0 {
			out = append(out, s...)
			break
		}
		out = append(out, s[:i]...)
		out = append(out, repl...)
		s = s[i+len(old):]
	}
	return string(out)
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 || m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// Utf8Bytes returns the flattened UTF-8 encoding (§4.2 "utf8_bytes").
func (t *Text) Utf8Bytes() []byte { return []byte(t.String()) }

// FromBytesValidated is from_bytes per §4.2/§7: it validates the input
// is well-formed UTF-8 and fails (returns ok=false) rather than
// silently producing a Blob, matching §7's InvalidData error kind for
// "invalid UTF-8 on from_bytes".
func FromBytesValidated(b []byte) (t *Text, ok bool) {
	s := string(b)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return nil, false
		}
		i += size
	}
	return FromString(s), true
}

// Utf16 encodes t as UTF-16 code units (native endianness is the
// caller's concern; this returns logical uint16 values), round-
// tripping via Utf16ToText for every non-surrogate input per §8's
// "round-trip on UTF-16 and UTF-32 holds for all non-surrogate input".
func (t *Text) Utf16() []uint16 {
	var out []uint16
	for _, r := range t.String() {
		if r > 0xFFFF {
			r -= 0x10000
			out = append(out, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
		} else {
			out = append(out, uint16(r))
		}
	}
	return out
}

// Utf16ToText decodes a UTF-16 code unit sequence back to Text.
func Utf16ToText(units []uint16) *Text {
	var runes []rune
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) && units[i+1] >= 0xDC00 && units[i+1] <= 0xDFFF {
			r := rune(0x10000 + (int32(u)-0xD800)<<10 + (int32(units[i+1]) - 0xDC00))
			runes = append(runes, r)
			i++
			continue
		}
		runes = append(runes, rune(u))
	}
	return FromString(string(runes))
}

// Utf32 and Utf32ToText round-trip through one rune per codepoint,
// the trivial case of §8's UTF-32 round-trip law.
func (t *Text) Utf32() []rune { return []rune(t.String()) }

func Utf32ToText(runes []rune) *Text { return FromString(string(runes)) }

// Serialize writes t's flattened UTF-8 bytes, length-prefixed, per
// §6.4's "Text: UTF-8 byte list" wire row.
func (t *Text) Serialize(w io.Writer) error {
	return wire.WriteBytes(w, t.Utf8Bytes())
}

// Deserialize is Serialize's inverse; unlike FromBytesValidated it
// does not re-validate UTF-8, since well-formed serialized data is
// assumed (truncated/corrupt streams fail earlier, at the length
// read).
func Deserialize(r io.Reader) (*Text, error) {
	b, err := wire.ReadBytes(r)
	if err != nil {
		return nil, err
	}
	return FromString(string(b)), nil
}
