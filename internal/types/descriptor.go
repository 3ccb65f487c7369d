// Package types implements the type-descriptor and metamethod
// dispatch model of §4.1: every runtime value is paired with a
// Descriptor that knows how to hash, compare, stringify, and
// (de)serialize it, instead of dispatch living on the value itself.
//
// Where the original runtime keeps a C vtable struct of function
// pointers per type, Go expresses the same "one record of behavior
// per type, shared across all instances" shape as the Metamethods
// interface plus a Descriptor that embeds one.
package types

import (
	"fmt"
	"io"

	"github.com/dchest/siphash"
)

// Kind distinguishes the broad category of a descriptor's payload,
// used by generic dispatch (compare/equal/is_none) to decide whether
// it can apply a structural default or must defer to Metamethods.
type Kind int

const (
	KindPrimitive Kind = iota
	KindText
	KindList
	KindTable
	KindSet
	KindStruct
	KindEnum
	KindOptional
	KindPointer
	KindFunction
	KindOpaque
)

// Metamethods is the behavior vtable every non-trivial type supplies.
// A nil method means "use the generic_* fallback for this operation"
// (§4.1 "default metamethods").
type Metamethods struct {
	Hash        func(key [2]uint64, value any) uint64
	Compare     func(a, b any) int
	Equal       func(a, b any) bool
	AsText      func(value any, colorize bool) string
	IsNone      func(value any) bool
	Serialize   func(w io.Writer, value any) error
	Deserialize func(r io.Reader) (any, error)
}

// Descriptor is the runtime's per-type record (§3.1). Size/Align
// describe the type's in-memory layout the way the original runtime
// needs them for manual allocation; Go's allocator makes these purely
// informational here, and no code in this module reads them.
type Descriptor struct {
	Name    string
	Size    uintptr
	Align   uintptr
	Kind    Kind
	Methods Metamethods
}

// defaultHashKey is the process-wide SipHash key used when no
// per-run random key has been installed (see WithHashKey). The spec's
// §9 Open Question on "should the remap-0-to-1234567 hash quirk be
// preserved" is resolved in package text: the quirk is preserved there
// for rope hash caching specifically, not here in the generic path.
var defaultHashKey = [2]uint64{0x9e3779b97f4a7c15, 0xbf58476d1ce4e5b9}

// HashKey returns the SipHash-2-4 key new Descriptors should use
// unless a context overrides it via WithHashKey.
func HashKey() [2]uint64 { return defaultHashKey }

// WithHashKey installs a process-wide SipHash key, mirroring §5's
// "one randomized hash key per process, set once at startup" resource
// model. It is not safe to call concurrently with hashing.
func WithHashKey(k0, k1 uint64) { defaultHashKey = [2]uint64{k0, k1} }

// GenericHash is the fallback used when a Descriptor supplies no
// Hash metamethod: SipHash-2-4 over the value's textual
// representation. This is deliberately simple (and slower than a
// type-specific hash) because it only fires for KindPrimitive and
// KindOpaque descriptors that don't warrant a bespoke implementation.
func GenericHash(d *Descriptor, value any) uint64 {
	if d.Methods.Hash != nil {
		return d.Methods.Hash(HashKey(), value)
	}
	text := GenericAsText(d, value, false)
	return siphash.Hash(HashKey()[0], HashKey()[1], []byte(text))
}

// GenericCompare is the fallback three-way comparison: by AsText when
// no Compare metamethod exists. Types where textual order isn't the
// right order (numbers, most notably) always supply their own
// Compare.
func GenericCompare(d *Descriptor, a, b any) int {
	if d.Methods.Compare != nil {
		return d.Methods.Compare(a, b)
	}
	ta, tb := GenericAsText(d, a, false), GenericAsText(d, b, false)
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	default:
		return 0
	}
}

// GenericEqual defers to Compare when no Equal metamethod exists,
// matching §4.1's "equal defaults to compare == 0" rule.
func GenericEqual(d *Descriptor, a, b any) bool {
	if d.Methods.Equal != nil {
		return d.Methods.Equal(a, b)
	}
	return GenericCompare(d, a, b) == 0
}

// GenericAsText falls back to fmt's %v when a type supplies no AsText
// metamethod, which only ever applies to KindOpaque descriptors used
// in tests.
func GenericAsText(d *Descriptor, value any, colorize bool) string {
	if d.Methods.AsText != nil {
		return d.Methods.AsText(value, colorize)
	}
	return fmt.Sprintf("%v", value)
}

// IsNone reports whether value is this descriptor's none
// representation. Most descriptors have no special none value and so
// always report false here (§4.6: Optional wraps a descriptor and
// answers this differently depending on whether the inner type has a
// spare bit pattern to steal).
func IsNone(d *Descriptor, value any) bool {
	if d.Methods.IsNone != nil {
		return d.Methods.IsNone(value)
	}
	return false
}

// Serialize and Deserialize round-trip a value through the wire
// format of §6.3. A Descriptor with no Serialize/Deserialize
// metamethod cannot be serialized at all; callers should check for
// this before attempting network/disk round-trips of opaque values.
func Serialize(d *Descriptor, w io.Writer, value any) error {
	if d.Methods.Serialize == nil {
		return fmt.Errorf("type %s does not support serialization", d.Name)
	}
	return d.Methods.Serialize(w, value)
}

func Deserialize(d *Descriptor, r io.Reader) (any, error) {
	if d.Methods.Deserialize == nil {
		return nil, fmt.Errorf("type %s does not support deserialization", d.Name)
	}
	return d.Methods.Deserialize(r)
}
