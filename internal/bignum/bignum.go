// Package bignum implements Tomo's arbitrary-precision Int (§3.2,
// §4.5): a tagged small/big representation where values that fit in
// an int64 are stored inline and larger values live in a math/big
// integer. Add and Cmp take an int64 fast path when both operands are
// small (Add promotes to math/big only on overflow); the other
// operations compute through math/big and normalize the result back
// to the small form whenever it fits.
package bignum

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/tomo-lang/tomo/internal/wire"
)

// Int is Tomo's BigInt. Exactly one of the two fields is meaningful
// at a time: small is valid when big == nil. This mirrors the
// original runtime's pointer-tagged small/big union as an explicit Go
// sum type instead of pointer-bit tricks, per the design notes on
// translating that pattern.
type Int struct {
	small int64
	big   *big.Int // nil when the value fits in small
}

func FromInt64(v int64) Int { return Int{small: v} }

func FromBigInt(v *big.Int) Int {
	if v.IsInt64() {
		return Int{small: v.Int64()}
	}
	return Int{big: new(big.Int).Set(v)}
}

func (i Int) IsBig() bool { return i.big != nil }

func (i Int) BigInt() *big.Int {
	if i.big != nil {
		return i.big
	}
	return big.NewInt(i.small)
}

func normalize(b *big.Int) Int {
	if b.IsInt64() {
		return Int{small: b.Int64()}
	}
	return Int{big: b}
}

func (a Int) Add(b Int) Int {
	if !a.IsBig() && !b.IsBig() {
		sum := a.small + b.small
		if (sum > a.small) == (b.small > 0) { // no overflow
			return Int{small: sum}
		}
	}
	return normalize(new(big.Int).Add(a.BigInt(), b.BigInt()))
}

func (a Int) Sub(b Int) Int {
	return normalize(new(big.Int).Sub(a.BigInt(), b.BigInt()))
}

func (a Int) Mul(b Int) Int {
	return normalize(new(big.Int).Mul(a.BigInt(), b.BigInt()))
}

// Div performs Euclidean division: the remainder is always
// non-negative, matching §4.5's "division and modulo use Euclidean
// semantics, not truncating or flooring" rule.
func (a Int) Div(b Int) Int {
	r := new(big.Int).Mod(a.BigInt(), b.BigInt())
	q := new(big.Int).Sub(a.BigInt(), r)
	q.Div(q, b.BigInt())
	return normalize(q)
}

// Mod returns the Euclidean remainder, always in [0, |b|).
func (a Int) Mod(b Int) Int {
	return normalize(new(big.Int).Mod(a.BigInt(), b.BigInt()))
}

// Mod1 is the spec's 1-indexed modulo: `x mod1 n` wraps into [1, n]
// instead of [0, n) (§4.5 "mod1", used for cyclic 1-based indexing).
func (a Int) Mod1(b Int) Int {
	m := a.Mod(b)
	if m.BigInt().Sign() == 0 {
		return b
	}
	return m
}

func (a Int) Neg() Int { return normalize(new(big.Int).Neg(a.BigInt())) }

func (a Int) Abs() Int { return normalize(new(big.Int).Abs(a.BigInt())) }

func (a Int) Cmp(b Int) int {
	if !a.IsBig() && !b.IsBig() {
		switch {
		case a.small < b.small:
			return -1
		case a.small > b.small:
			return 1
		default:
			return 0
		}
	}
	return a.BigInt().Cmp(b.BigInt())
}

func (a Int) Equal(b Int) bool { return a.Cmp(b) == 0 }

func GCD(a, b Int) Int {
	return normalize(new(big.Int).GCD(nil, nil, new(big.Int).Abs(a.BigInt()), new(big.Int).Abs(b.BigInt())))
}

// String formats in base 10, the default AsText rendering.
func (a Int) String() string { return a.BigInt().String() }

// Format renders a in the given base (2, 8, 10, or 16), supplementing
// the distilled spec with the hex/octal/binary literal rendering
// original_source/builtins/integers.h's Int$format and
// src/compile/integers.c expose for debug/doctest output.
func (a Int) Format(base int) string {
	s := a.BigInt().Text(base)
	switch base {
	case 16:
		return "0x" + s
	case 8:
		return "0o" + s
	case 2:
		return "0b" + s
	default:
		return s
	}
}

// Parse parses an Int literal per §4.5/§4.7: optional 0x/0o/0b
// prefix, `_` digit separators.
func Parse(text string) (Int, error) {
	clean := strings.ReplaceAll(text, "_", "")
	base := 10
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		base, clean = 16, clean[2:]
	case strings.HasPrefix(clean, "0o") || strings.HasPrefix(clean, "0O"):
		base, clean = 8, clean[2:]
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		base, clean = 2, clean[2:]
	}
	b, ok := new(big.Int).SetString(clean, base)
	if !ok {
		return Int{}, fmt.Errorf("invalid integer literal %q", text)
	}
	return normalize(b), nil
}

// ---- fixed-width integers ----

// Fixed is a fixed-width signed integer family, 8/16/32/64 bits,
// implemented with Go generics instead of per-width C macro expansion
// (§9 design note: "replace per-bit-width duplication with generics").
type Fixed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// ClampToBig converts a BigInt to a fixed-width value, clamping to
// the type's range instead of wrapping, unless truncate is true
// (§4.5 "fixed-width conversions are clamped by default; an explicit
// `truncate` flag opts into wraparound").
func ClampToBig[T Fixed](v Int, truncate bool) T {
	var zero T
	bits := fixedBits(zero)
	min, max := rangeFor(bits)
	if truncate {
		mask := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		mask.Sub(mask, big.NewInt(1))
		wrapped := new(big.Int).And(v.BigInt(), mask)
		half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		if wrapped.Cmp(half) >= 0 {
			full := new(big.Int).Lsh(big.NewInt(1), uint(bits))
			wrapped.Sub(wrapped, full)
		}
		return T(wrapped.Int64())
	}
	bv := v.BigInt()
	if bv.Cmp(min) < 0 {
		return T(min.Int64())
	}
	if bv.Cmp(max) <= 0 {
		return T(bv.Int64())
	}
	return T(max.Int64())
}

func fixedBits[T Fixed](zero T) int {
	switch any(zero).(type) {
	case int8:
		return 8
	case int16:
		return 16
	case int32:
		return 32
	default:
		return 64
	}
}

func rangeFor(bits int) (min, max *big.Int) {
	half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min = new(big.Int).Neg(half)
	max = new(big.Int).Sub(half, big.NewInt(1))
	return
}

// IsBetween reports whether v is in [lo, hi] inclusive (§4.5
// "is_between").
func IsBetween[T Fixed](v, lo, hi T) bool { return v >= lo && v <= hi }

// WrappingAdd adds with two's-complement wraparound, the semantics
// fixed-width arithmetic uses by default (unlike BigInt.Add, which
// always promotes instead of wrapping).
func WrappingAdd[T Fixed](a, b T) T { return a + b }

func WrappingSub[T Fixed](a, b T) T { return a - b }

// UnsignedRsh performs a right shift treating the bit pattern as unsigned,
// per §4.5's "shifts on fixed-width ints are logical, not
// arithmetic".
func UnsignedRsh[T Fixed](v T, n uint) T {
	bits := fixedBits(v)
	switch bits {
	case 8:
		return T(uint8(v) >> n)
	case 16:
		return T(uint16(v) >> n)
	case 32:
		return T(uint32(v) >> n)
	default:
		return T(uint64(v) >> n)
	}
}

// ---- serialization ----

// zigzag maps a signed integer to an unsigned one so small negative
// numbers encode compactly, the same bijection
// hyperpb-go/internal/zigzag implements for protobuf sint fields;
// Tomo's wire format (§6.3) uses it for BigInt and 32/64-bit fixed
// ints, while 8/16-bit ints are serialized as raw little-endian bytes
// per the format table.
func ZigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func ZigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// EncodeVarint writes v as an unsigned LEB128 varint.
func EncodeVarint(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func DecodeVarint(data []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i, b := range data {
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, 0
}

// FormatSmall is exported for callers formatting small fixed-width
// values without promoting through Int.
func FormatSmall(v int64, base int) string { return strconv.FormatInt(v, base) }

// Serialize writes a onto w per §6.4's BigInt row: a zig-zag varint
// for values that fit in int64 ("BigInt (small)"), or a length-
// prefixed decimal string for values that don't ("BigInt (big)"). A
// leading discriminator byte picks between the two encodings, since
// nothing else in the self-describing wire format distinguishes them
// for a bare Int descriptor (see DESIGN.md).
func (a Int) Serialize(w io.Writer) error {
	if !a.IsBig() {
		if err := wire.WriteBool(w, false); err != nil {
			return err
		}
		return wire.WriteZigzag(w, a.small)
	}
	if err := wire.WriteBool(w, true); err != nil {
		return err
	}
	return wire.WriteBytes(w, []byte(a.big.String()))
}

// Deserialize is Serialize's inverse.
func Deserialize(r io.Reader) (Int, error) {
	isBig, err := wire.ReadBool(r)
	if err != nil {
		return Int{}, err
	}
	if !isBig {
		v, err := wire.ReadZigzag(r)
		if err != nil {
			return Int{}, err
		}
		return Int{small: v}, nil
	}
	raw, err := wire.ReadBytes(r)
	if err != nil {
		return Int{}, err
	}
	b, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return Int{}, fmt.Errorf("bignum: invalid serialized big integer %q", raw)
	}
	return normalize(b), nil
}
