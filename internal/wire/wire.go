// Package wire implements the little-endian, self-describing-by-type
// serialization format of §6.4: each concrete type has exactly one
// encoding (varint/zigzag for integers, length-prefixed bytes for text
// and big integers, recursive encodings for List/Table/Optional), and
// nothing on the wire names its own type — the caller supplies the
// descriptor, matching §6.3's generic_serialize/generic_deserialize
// pair.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// WriteVarint writes v as an unsigned LEB128 varint (continuation bit
// 0x80), the encoding §6.4 specifies for i32/i64/BigInt-small values
// and for every length prefix (List length, Table length, Text byte
// count).
func WriteVarint(w io.Writer, v uint64) error {
	var buf [10]byte
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf[n] = b | 0x80
			n++
		} else {
			buf[n] = b
			n++
			break
		}
	}
	_, err := w.Write(buf[:n])
	return err
}

func ReadVarint(r io.Reader) (uint64, error) {
	var v uint64
	var shift uint
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		v |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			return v, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, fmt.Errorf("wire: varint too long")
		}
	}
}

// zigzag maps signed to unsigned so small-magnitude negatives stay
// compact, per §6.4's "i32/i64/BigInt (small): zig-zag varint".
func zigzagEncode(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }
func zigzagDecode(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

func WriteZigzag(w io.Writer, v int64) error { return WriteVarint(w, zigzagEncode(v)) }

func ReadZigzag(r io.Reader) (int64, error) {
	v, err := ReadVarint(r)
	if err != nil {
		return 0, err
	}
	return zigzagDecode(v), nil
}

// WriteRaw8/16 write an 8- or 16-bit int as raw little-endian bytes,
// per §6.4's "8/16-bit ints serialize little-endian raw" exception to
// the varint rule (these widths never benefit from zig-zag's
// small-magnitude compaction).
func WriteRaw8(w io.Writer, v int8) error {
	_, err := w.Write([]byte{byte(v)})
	return err
}

func ReadRaw8(r io.Reader) (int8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

func WriteRaw16(w io.Writer, v int16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	_, err := w.Write(b[:])
	return err
}

func ReadRaw16(r io.Reader) (int16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b[:])), nil
}

func WriteBool(w io.Writer, v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func ReadBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func WriteFloat64(w io.Writer, v float64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	_, err := w.Write(b[:])
	return err
}

func ReadFloat64(r io.Reader) (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}

func WriteFloat32(w io.Writer, v float32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	_, err := w.Write(b[:])
	return err
}

func ReadFloat32(r io.Reader) (float32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b[:])), nil
}

// Bytes writes a length-prefixed byte string: a varint count followed
// by the raw bytes. This realizes both Text's "UTF-8 byte list"
// encoding and BigInt's big-path "length-prefixed decimal string"
// encoding without the per-byte overhead a literal List<byte> would
// imply (§6.4's List encoding is "length varint, then each element";
// for a byte list that collapses to exactly this).
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteVarint(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := ReadVarint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteList writes a generic List<T>'s wire form: a varint length
// then each element via writeItem, per §6.4's List row.
func WriteList[T any](w io.Writer, items []T, writeItem func(io.Writer, T) error) error {
	if err := WriteVarint(w, uint64(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := writeItem(w, item); err != nil {
			return err
		}
	}
	return nil
}

func ReadList[T any](r io.Reader, readItem func(io.Reader) (T, error)) ([]T, error) {
	n, err := ReadVarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		v, err := readItem(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// WriteTable writes a Table's wire form: varint length, alternating
// key/value pairs, then a presence byte and (if 1) a recursively
// encoded fallback table, per §6.4's Table row.
func WriteTable[K, V any](w io.Writer, keys []K, values []V, writeKey func(io.Writer, K) error, writeValue func(io.Writer, V) error, writeFallback func(io.Writer) error) error {
	if len(keys) != len(values) {
		return fmt.Errorf("wire: table keys/values length mismatch")
	}
	if err := WriteVarint(w, uint64(len(keys))); err != nil {
		return err
	}
	for i := range keys {
		if err := writeKey(w, keys[i]); err != nil {
			return err
		}
		if err := writeValue(w, values[i]); err != nil {
			return err
		}
	}
	if writeFallback == nil {
		return WriteBool(w, false)
	}
	if err := WriteBool(w, true); err != nil {
		return err
	}
	return writeFallback(w)
}

// ReadTable is the symmetric counterpart; onFallback is called only
// when the presence byte is 1.
func ReadTable[K, V any](r io.Reader, readKey func(io.Reader) (K, error), readValue func(io.Reader) (V, error), onFallback func(io.Reader) error) (keys []K, values []V, err error) {
	n, err := ReadVarint(r)
	if err != nil {
		return nil, nil, err
	}
	keys = make([]K, n)
	values = make([]V, n)
	for i := range keys {
		if keys[i], err = readKey(r); err != nil {
			return nil, nil, err
		}
		if values[i], err = readValue(r); err != nil {
			return nil, nil, err
		}
	}
	hasFallback, err := ReadBool(r)
	if err != nil {
		return nil, nil, err
	}
	if hasFallback {
		if onFallback == nil {
			return nil, nil, fmt.Errorf("wire: table has fallback but no handler supplied")
		}
		if err := onFallback(r); err != nil {
			return nil, nil, err
		}
	}
	return keys, values, nil
}

// WriteOptional writes the one-byte presence flag plus, when present,
// whatever writeValue encodes, per §6.4's Optional row and §4.6's
// serialize contract ("one leading byte, then inner payload if
// present").
func WriteOptional(w io.Writer, present bool, writeValue func(io.Writer) error) error {
	if err := WriteBool(w, present); err != nil {
		return err
	}
	if !present {
		return nil
	}
	return writeValue(w)
}

func ReadOptional(r io.Reader, readValue func(io.Reader) error) (present bool, err error) {
	present, err = ReadBool(r)
	if err != nil || !present {
		return present, err
	}
	return true, readValue(r)
}
