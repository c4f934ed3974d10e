// Package value implements the tagged Value union and the
// ECMAScript coercion/equality algebra. A Value fits in one
// struct carrying a tag plus, depending on the tag, an inline 64-bit
// number, a Go string, or a pointer to a heap-allocated datum. GC-managed
// payloads (objects, bigints, symbols) are referenced indirectly through
// the opaque Ref type so this package never imports the object model —
// that dependency runs the other way.
package value

import "math"

// Tag discriminates the value union's variants.
type Tag uint8

const (
	Undefined Tag = iota
	Null
	Boolean
	Number
	BigInt
	String
	// IndexString is the distinguished fast-path variant: a
	// string whose entire content is the canonical decimal rendering of a
	// non-negative 32-bit integer. It is observationally indistinguishable
	// from the equivalent String value; only internals consult the tag.
	IndexString
	Symbol
	Object
)

func (t Tag) String() string {
	switch t {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case BigInt:
		return "bigint"
	case String, IndexString:
		return "string"
	case Symbol:
		return "symbol"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Ref is the opaque handle a Value holds for any heap-managed payload
// (object, bigint, symbol). The concrete types behind it are defined by
// the packages that create them, such as internal/object; value never
// type-asserts them itself.
type Ref any

// Value is the engine's tagged value representation.
type Value struct {
	tag Tag
	num float64 // Number payload, Boolean (0/1), or IndexString's integer
	str string  // String payload (non-index strings read this directly)
	ref Ref     // BigInt / Symbol / Object payload
}

var (
	undef = Value{tag: Undefined}
	null  = Value{tag: Null}
)

func Undef() Value { return undef }
func Null_() Value { return null }

func Bool(b bool) Value {
	if b {
		return Value{tag: Boolean, num: 1}
	}
	return Value{tag: Boolean, num: 0}
}

func Num(f float64) Value { return Value{tag: Number, num: f} }

func Str(s string) Value {
	if n, ok := indexOf(s); ok {
		return Value{tag: IndexString, num: float64(n), str: s}
	}
	return Value{tag: String, str: s}
}

// BigIntRef wraps an already-constructed bigint cell (internal/bigint.Int).
func BigIntRef(ref Ref) Value { return Value{tag: BigInt, ref: ref} }

// SymbolRef wraps an already-constructed symbol cell.
func SymbolRef(ref Ref) Value { return Value{tag: Symbol, ref: ref} }

// ObjectRef wraps a heap object cell (an *object.Object in practice).
func ObjectRef(ref Ref) Value { return Value{tag: Object, ref: ref} }

func (v Value) Tag() Tag      { return v.tag }
func (v Value) IsUndefined() bool { return v.tag == Undefined }
func (v Value) IsNull() bool      { return v.tag == Null }
func (v Value) IsNullish() bool   { return v.tag == Undefined || v.tag == Null }
func (v Value) IsBoolean() bool   { return v.tag == Boolean }
func (v Value) IsNumber() bool    { return v.tag == Number }
func (v Value) IsBigInt() bool    { return v.tag == BigInt }
func (v Value) IsString() bool    { return v.tag == String || v.tag == IndexString }
func (v Value) IsIndexString() bool { return v.tag == IndexString }
func (v Value) IsSymbol() bool    { return v.tag == Symbol }
func (v Value) IsObject() bool    { return v.tag == Object }

func (v Value) Bool() bool     { return v.num != 0 }
func (v Value) Float() float64 { return v.num }

// AsString returns the string's text regardless of whether it is tagged
// String or IndexString.
func (v Value) AsString() string {
	if v.tag == IndexString {
		return v.str
	}
	return v.str
}

// IndexValue returns the integer an IndexString caches. Callers must check
// IsIndexString first.
func (v Value) IndexValue() uint32 { return uint32(v.num) }

// Ref returns the heap payload for BigInt/Symbol/Object values.
func (v Value) Ref() Ref { return v.ref }

func indexOf(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > 0xFFFFFFFE {
			return 0, false
		}
	}
	return uint32(n), true
}

// SameValue implements the SameValue algorithm (testable
// property 5): unlike StrictEqual, NaN is SameValue to itself and +0 is not
// SameValue to -0.
func SameValue(a, b Value) bool {
	if a.tag != b.tag {
		// IndexString and String compare equal across tags if their text matches.
		if a.IsString() && b.IsString() {
			return a.AsString() == b.AsString()
		}
		return false
	}
	switch a.tag {
	case Undefined, Null:
		return true
	case Boolean:
		return a.Bool() == b.Bool()
	case Number:
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		if a.num == 0 && b.num == 0 {
			return math.Signbit(a.num) == math.Signbit(b.num)
		}
		return a.num == b.num
	case String, IndexString:
		return a.AsString() == b.AsString()
	case BigInt, Symbol, Object:
		return a.ref == b.ref
	}
	return false
}

// StrictEqual implements the === algorithm (testable property
// 5): structural by tag then payload, except +0 === -0 and NaN !== NaN.
func StrictEqual(a, b Value) bool {
	if a.tag != b.tag {
		if a.IsString() && b.IsString() {
			return a.AsString() == b.AsString()
		}
		return false
	}
	switch a.tag {
	case Undefined, Null:
		return true
	case Boolean:
		return a.Bool() == b.Bool()
	case Number:
		return a.num == b.num // Go's == already gives NaN != NaN and +0 == -0
	case String, IndexString:
		return a.AsString() == b.AsString()
	case BigInt, Symbol, Object:
		return a.ref == b.ref
	}
	return false
}
