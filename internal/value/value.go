// Package value implements the struct/enum/optional runtime value
// model of §3.2, §4.6: field-walking metamethods generated once per
// type rather than hand-written per struct, and an Optional wrapper
// whose none-representation depends on whether the wrapped type has a
// spare bit pattern to steal.
package value

import (
	"fmt"
	"io"
	"strings"

	"github.com/tomo-lang/tomo/internal/types"
	"github.com/tomo-lang/tomo/internal/wire"
)

// Field describes one struct/enum-payload field for the generic
// walkers below. Bool-typed fields are recorded separately so callers
// can bit-pack them the way §3.2 describes ("bool fields are packed
// into a single word rather than each taking a byte"); this package
// only tracks which fields are bools, the actual bit-packing is the
// caller's concern at the code-generation boundary (out of scope
// here, since we have no compiled-struct layout to pack into).
//
// Set is optional: supplying it (alongside a Kind the serializer
// recognizes) lets StructDescriptor/EnumDescriptor wire up full
// Serialize/Deserialize metamethods per §6.4's Struct/Enum rows; a
// Field with no Set, or whose value isn't int/string/bool, is still
// fully usable for Compare/Equal/AsText, just not for round-tripping
// through the wire format.
type Field struct {
	Name   string
	Get    func(instance any) any
	Set    func(instance any, value any)
	IsBool bool
}

// serializeField writes one field's value per §6.4: bools as a single
// byte, ints as a zig-zag varint, strings as length-prefixed bytes —
// the primitive kinds this package's generic Compare/AsText walkers
// already support via compareAny.
func serializeField(w io.Writer, v any) error {
	switch x := v.(type) {
	case bool:
		return wire.WriteBool(w, x)
	case int:
		return wire.WriteZigzag(w, int64(x))
	case string:
		return wire.WriteBytes(w, []byte(x))
	default:
		return fmt.Errorf("value: field of type %T has no wire encoding", v)
	}
}

// fieldKind identifies which serializeField/deserializeField branch a
// field needs, since the wire bytes alone don't name their own type.
type fieldKind int

const (
	kindBool fieldKind = iota
	kindInt
	kindString
)

func kindOf(sample any) (fieldKind, bool) {
	switch sample.(type) {
	case bool:
		return kindBool, true
	case int:
		return kindInt, true
	case string:
		return kindString, true
	default:
		return 0, false
	}
}

func deserializeField(r io.Reader, kind fieldKind) (any, error) {
	switch kind {
	case kindBool:
		return wire.ReadBool(r)
	case kindInt:
		v, err := wire.ReadZigzag(r)
		return int(v), err
	default:
		b, err := wire.ReadBytes(r)
		return string(b), err
	}
}

// StructDescriptor builds a types.Descriptor for a struct type given
// its fields, deriving Compare/Equal/Hash/AsText by walking fields in
// declaration order, matching the original runtime's generated
// per-struct metamethods (§4.6 "struct metamethods").
//
// newInstance, if non-nil, returns a zero-valued instance used two
// ways: to probe each field's primitive kind (bool/int/string) at
// descriptor-build time, and as the seed Deserialize mutates via each
// field's Set. When every field has both a recognized kind and a Set
// func, Serialize/Deserialize metamethods are wired per §6.4's Struct
// row ("fields in declaration order; packed booleans as one byte per
// bool"); otherwise the descriptor supports every operation except
// (de)serialization, matching §6.4's closing note that unserializable
// shapes simply fail that one operation, not construction itself.
func StructDescriptor(name string, fields []Field, newInstance func() any, d *types.Descriptor) *types.Descriptor {
	d.Name = name
	d.Kind = types.KindStruct
	d.Methods.Compare = func(a, b any) int {
		for _, f := range fields {
			av, bv := f.Get(a), f.Get(b)
			if c := compareAny(av, bv); c != 0 {
				return c
			}
		}
		return 0
	}
	d.Methods.Equal = func(a, b any) bool { return d.Methods.Compare(a, b) == 0 }
	d.Methods.AsText = func(instance any, colorize bool) string {
		var b strings.Builder
		b.WriteString(name)
		b.WriteByte('(')
		for i, f := range fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", f.Name, f.Get(instance))
		}
		b.WriteByte(')')
		return b.String()
	}
	if newInstance == nil {
		return d
	}
	kinds, ok := probeFieldKinds(fields, newInstance())
	if !ok {
		return d
	}
	d.Methods.Serialize = func(w io.Writer, instance any) error {
		for _, f := range fields {
			if err := serializeField(w, f.Get(instance)); err != nil {
				return err
			}
		}
		return nil
	}
	d.Methods.Deserialize = func(r io.Reader) (any, error) {
		instance := newInstance()
		for i, f := range fields {
			v, err := deserializeField(r, kinds[i])
			if err != nil {
				return nil, err
			}
			f.Set(instance, v)
		}
		return instance, nil
	}
	return d
}

// probeFieldKinds determines each field's wire kind from a zero
// instance, failing (ok=false) if any field lacks Set or has a
// non-primitive value, in which case the caller leaves serialization
// unwired rather than half-implementing it.
func probeFieldKinds(fields []Field, zero any) ([]fieldKind, bool) {
	kinds := make([]fieldKind, len(fields))
	for i, f := range fields {
		if f.Set == nil {
			return nil, false
		}
		k, ok := kindOf(f.Get(zero))
		if !ok {
			return nil, false
		}
		kinds[i] = k
	}
	return kinds, true
}

// EnumTag describes one variant of an enum type: its index (matching
// the parser's resolved §4.7 "enum tag value"), name, and payload
// fields if any.
type EnumTag struct {
	Name   string
	Value  int
	Fields []Field

	// NewPayload returns a zero-valued payload instance, used the same
	// way StructDescriptor's newInstance is: to probe field kinds and
	// to seed Deserialize. Required (alongside a Set on every field)
	// for this tag's payload to round-trip through Serialize; nil for
	// a tag with no payload.
	NewPayload func() any
}

// EnumValue is a runtime instance of an enum: which tag fired, plus
// its payload if the tag carries fields.
type EnumValue struct {
	Tag     int
	Payload any
}

// EnumDescriptor builds a types.Descriptor for a tagged-union enum
// type. Compare first orders by tag value, falling back to payload
// comparison only when both sides share a tag (§4.6 "enum
// comparison: different tags are ordered by tag value; same tag
// compares payloads").
func EnumDescriptor(name string, tags []EnumTag, d *types.Descriptor) *types.Descriptor {
	byValue := make(map[int]EnumTag, len(tags))
	for _, t := range tags {
		byValue[t.Value] = t
	}
	d.Name = name
	d.Kind = types.KindEnum
	d.Methods.Compare = func(a, b any) int {
		av, bv := a.(EnumValue), b.(EnumValue)
		if av.Tag != bv.Tag {
			if av.Tag < bv.Tag {
				return -1
			}
			return 1
		}
		tag := byValue[av.Tag]
		if len(tag.Fields) == 0 {
			return 0
		}
		for _, f := range tag.Fields {
			if c := compareAny(f.Get(av.Payload), f.Get(bv.Payload)); c != 0 {
				return c
			}
		}
		return 0
	}
	d.Methods.Equal = func(a, b any) bool { return d.Methods.Compare(a, b) == 0 }
	d.Methods.AsText = func(instance any, colorize bool) string {
		v := instance.(EnumValue)
		tag := byValue[v.Tag]
		if len(tag.Fields) == 0 {
			return tag.Name
		}
		var b strings.Builder
		b.WriteString(tag.Name)
		b.WriteByte('(')
		for i, f := range tag.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", f.Name, f.Get(v.Payload))
		}
		b.WriteByte(')')
		return b.String()
	}

	tagKinds := make(map[int][]fieldKind, len(tags))
	for _, t := range tags {
		if len(t.Fields) == 0 {
			tagKinds[t.Value] = nil
			continue
		}
		if t.NewPayload == nil {
			return d // at least one payload-bearing tag can't round-trip; leave Serialize unwired
		}
		kinds, ok := probeFieldKinds(t.Fields, t.NewPayload())
		if !ok {
			return d
		}
		tagKinds[t.Value] = kinds
	}
	d.Methods.Serialize = func(w io.Writer, instance any) error {
		v := instance.(EnumValue)
		if err := wire.WriteZigzag(w, int64(v.Tag)); err != nil {
			return err
		}
		tag := byValue[v.Tag]
		for _, f := range tag.Fields {
			if err := serializeField(w, f.Get(v.Payload)); err != nil {
				return err
			}
		}
		return nil
	}
	d.Methods.Deserialize = func(r io.Reader) (any, error) {
		tagValue, err := wire.ReadZigzag(r)
		if err != nil {
			return nil, err
		}
		tag, ok := byValue[int(tagValue)]
		if !ok {
			return nil, fmt.Errorf("value: unknown enum tag %d for %s", tagValue, name)
		}
		if len(tag.Fields) == 0 {
			return EnumValue{Tag: int(tagValue)}, nil
		}
		payload := tag.NewPayload()
		for i, f := range tag.Fields {
			fv, err := deserializeField(r, tagKinds[tag.Value][i])
			if err != nil {
				return nil, err
			}
			f.Set(payload, fv)
		}
		return EnumValue{Tag: int(tagValue), Payload: payload}, nil
	}
	return d
}

func compareAny(a, b any) int {
	switch av := a.(type) {
	case int:
		bv := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv := b.(string)
		return strings.Compare(av, bv)
	case bool:
		bv := b.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// Optional wraps a value that may be absent behind a Present
// discriminator. §3.7 mandates a per-type sentinel representation
// wherever the inner type has a spare bit pattern to steal (Bool?
// uses a sentinel byte, List?/Table? report length -1, Text? has a
// dedicated NONE rope variant, pointer/closure-shaped inners use a
// nil pointer directly, enum-shaped inners reuse tag 0) and reserves
// this boxed form for the types that genuinely have no such spare
// representation: Int/Num (every bit pattern is a legitimate
// two's-complement/IEEE-754 value, so "none" cannot be folded into
// the representation without either narrowing the usable range or a
// tagged-pointer scheme this Go port doesn't use) and bare struct/enum
// payloads that aren't already held by pointer.
//
// Use OptionalDescriptor for those; use SentinelOptionalDescriptor for
// every inner type that already exposes a None()/IsNone() pair
// (package list, package table, package text, and any pointer-shaped
// struct whose zero value is a nil pointer).
type Optional struct {
	Present bool
	Value   any
}

func None() Optional            { return Optional{} }
func Some(v any) Optional       { return Optional{Present: true, Value: v} }
func (o Optional) IsNone() bool { return !o.Present }

// SentinelOptionalDescriptor builds a descriptor for an optional whose
// inner type already has its own none-representation (§3.7): the
// wire value IS the inner value, with isNone distinguishing "absent"
// from "present" instead of a separate Optional wrapper. This is the
// no-discriminator-bits path §1 calls out as a defining property of
// the runtime value model; OptionalDescriptor (the boxed form) is the
// fallback for inner types with no spare representation to steal.
func SentinelOptionalDescriptor(inner *types.Descriptor, isNone func(value any) bool, noneValue func() any) *types.Descriptor {
	return &types.Descriptor{
		Name: inner.Name + "?",
		Kind: types.KindOptional,
		Methods: types.Metamethods{
			IsNone: isNone,
			Compare: func(a, b any) int {
				an, bn := isNone(a), isNone(b)
				switch {
				case an && bn:
					return 0
				case an:
					return -1
				case bn:
					return 1
				default:
					return types.GenericCompare(inner, a, b)
				}
			},
			Equal: func(a, b any) bool {
				an, bn := isNone(a), isNone(b)
				if an || bn {
					return an == bn
				}
				return types.GenericEqual(inner, a, b)
			},
			AsText: func(value any, colorize bool) string {
				if isNone(value) {
					return "none"
				}
				return types.GenericAsText(inner, value, colorize)
			},
			Hash: func(key [2]uint64, value any) uint64 {
				if isNone(value) {
					return 0
				}
				return types.GenericHash(inner, value)
			},
			// Serialize/Deserialize still follow §6.4's one-byte
			// presence flag on the wire even though the in-memory
			// representation has no separate discriminator: the wire
			// format is shared across every Optional, sentinel-backed
			// or boxed.
			Serialize: func(w io.Writer, value any) error {
				return wire.WriteOptional(w, !isNone(value), func(w io.Writer) error {
					return types.Serialize(inner, w, value)
				})
			},
			Deserialize: func(r io.Reader) (any, error) {
				var result any
				present, err := wire.ReadOptional(r, func(r io.Reader) error {
					v, err := types.Deserialize(inner, r)
					result = v
					return err
				})
				if err != nil {
					return nil, err
				}
				if !present {
					return noneValue(), nil
				}
				return result, nil
			},
		},
	}
}

// OptionalDescriptor builds a descriptor for Optional[inner], with
// IsNone checked first in every dispatched operation per §4.6's
// "every optional operation checks is_none before delegating to the
// inner descriptor's metamethod" contract. Reserved for inner types
// with no spare bit pattern to steal; see SentinelOptionalDescriptor
// for the no-discriminator path §3.7 prefers wherever one is
// available.
func OptionalDescriptor(inner *types.Descriptor) *types.Descriptor {
	return &types.Descriptor{
		Name: "Optional<" + inner.Name + ">",
		Kind: types.KindOptional,
		Methods: types.Metamethods{
			IsNone: func(value any) bool { return value.(Optional).IsNone() },
			Compare: func(a, b any) int {
				av, bv := a.(Optional), b.(Optional)
				switch {
				case av.IsNone() && bv.IsNone():
					return 0
				case av.IsNone():
					return -1
				case bv.IsNone():
					return 1
				default:
					return types.GenericCompare(inner, av.Value, bv.Value)
				}
			},
			Equal: func(a, b any) bool {
				av, bv := a.(Optional), b.(Optional)
				if av.IsNone() || bv.IsNone() {
					return av.IsNone() == bv.IsNone()
				}
				return types.GenericEqual(inner, av.Value, bv.Value)
			},
			AsText: func(value any, colorize bool) string {
				o := value.(Optional)
				if o.IsNone() {
					return "none"
				}
				return types.GenericAsText(inner, o.Value, colorize)
			},
			Hash: func(key [2]uint64, value any) uint64 {
				o := value.(Optional)
				if o.IsNone() {
					return 0
				}
				return types.GenericHash(inner, o.Value)
			},
			// Serialize/Deserialize implement §4.6's "one leading byte
			// (0 or 1), then inner payload if present" contract by
			// delegating the payload to the inner descriptor;
			// types.Serialize returns an error if inner has no
			// Serialize metamethod.
			Serialize: func(w io.Writer, value any) error {
				o := value.(Optional)
				return wire.WriteOptional(w, o.Present, func(w io.Writer) error {
					return types.Serialize(inner, w, o.Value)
				})
			},
			Deserialize: func(r io.Reader) (any, error) {
				var result any
				present, err := wire.ReadOptional(r, func(r io.Reader) error {
					v, err := types.Deserialize(inner, r)
					result = v
					return err
				})
				if err != nil {
					return nil, err
				}
				if !present {
					return None(), nil
				}
				return Some(result), nil
			},
		},
	}
}
