package value

import (
	"math"
	"strconv"
	"strings"
)

// ObjectHooks lets the object package (which this package cannot import,
// since objects hold Values) plug in the few conversions that need to call
// back into the meta-protocol. Only ToPrimitive is hooked; ToString and
// ToNumber of an object go through it. internal/object.InstallHooks wires
// it once at runtime construction.
type ObjectHooks struct {
	ToPrimitive func(ref Ref, hint string) (Value, error)
}

var hooks ObjectHooks

// InstallObjectHooks is called by internal/object.InstallHooks, which
// internal/runtime.New runs at startup, to break the import cycle.
func InstallObjectHooks(h ObjectHooks) { hooks = h }

// ToBoolean implements the ToBoolean coercion. It never fails.
func ToBoolean(v Value) bool {
	switch v.tag {
	case Undefined, Null:
		return false
	case Boolean:
		return v.Bool()
	case Number:
		return v.num != 0 && !math.IsNaN(v.num)
	case String, IndexString:
		return len(v.AsString()) > 0
	case BigInt, Symbol, Object:
		return true
	}
	return false
}

// ToNumber implements the ToNumber coercion.
func ToNumber(v Value) (float64, error) {
	switch v.tag {
	case Undefined:
		return math.NaN(), nil
	case Null:
		return 0, nil
	case Boolean:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	case Number:
		return v.num, nil
	case String, IndexString:
		return stringToNumber(v.AsString()), nil
	case Object:
		prim, err := ToPrimitive(v, "number")
		if err != nil {
			return 0, err
		}
		if prim.tag == Object {
			return math.NaN(), nil
		}
		return ToNumber(prim)
	case BigInt:
		return 0, newTypeError("cannot convert a BigInt value to a number")
	}
	return math.NaN(), nil
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if n, err := strconv.ParseInt(s[2:], 16, 64); err == nil {
			return float64(n)
		}
	}
	return math.NaN()
}

// ToPrimitive implements OrdinaryToPrimitive plus the object hook.
// hint is "default", "string", or "number".
func ToPrimitive(v Value, hint string) (Value, error) {
	if v.tag != Object {
		return v, nil
	}
	if hooks.ToPrimitive == nil {
		return v, nil
	}
	return hooks.ToPrimitive(v.ref, hint)
}

// ToString implements the ToString coercion.
func ToString(v Value) (string, error) {
	switch v.tag {
	case Undefined:
		return "undefined", nil
	case Null:
		return "null", nil
	case Boolean:
		if v.Bool() {
			return "true", nil
		}
		return "false", nil
	case Number:
		return NumberToString(v.num), nil
	case String, IndexString:
		return v.AsString(), nil
	case Object:
		prim, err := ToPrimitive(v, "string")
		if err != nil {
			return "", err
		}
		if prim.tag == Object {
			return "[object Object]", nil
		}
		return ToString(prim)
	case BigInt:
		return "", newTypeError("cannot convert a BigInt value to a string implicitly")
	}
	return "", nil
}

// NumberToString renders a float64 per ECMAScript Number::toString(10) rules
// closely enough for scripts and diagnostics: integral values print without
// a decimal point, NaN/Infinity print their literal names.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToInt32 implements the ToInt32 coercion.
func ToInt32(v Value) (int32, error) {
	f, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	return toInt32(f), nil
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	n := math.Trunc(f)
	m := math.Mod(n, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	if m >= 2147483648 {
		m -= 4294967296
	}
	return int32(m)
}

// ToUint32 implements the ToUint32 coercion.
func ToUint32(v Value) (uint32, error) {
	f, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0, nil
	}
	n := math.Trunc(f)
	m := math.Mod(n, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m), nil
}

// ToLength implements ToLength: clamp ToInteger to [0, 2^53-1].
func ToLength(v Value) (int64, error) {
	f, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f <= 0 {
		return 0, nil
	}
	const maxLen = 1<<53 - 1
	n := math.Trunc(f)
	if n > maxLen {
		return maxLen, nil
	}
	return int64(n), nil
}

// ToIndex implements ToIndex: ToLength, but rejects negative inputs.
func ToIndex(v Value) (int64, error) {
	f, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	n := math.Trunc(f)
	if math.IsNaN(n) {
		n = 0
	}
	if n < 0 {
		return 0, newRangeError("index out of range")
	}
	return ToLength(v)
}

// ToPropertyKey implements ToPropertyKey: strings and symbols pass through
// unchanged, everything else is coerced via ToString.
func ToPropertyKey(v Value) (Value, error) {
	if v.tag == Symbol || v.IsString() {
		return v, nil
	}
	s, err := ToString(v)
	if err != nil {
		return Value{}, err
	}
	return Str(s), nil
}

// scriptError is a minimal error carrier so this package can signal
// TypeError/RangeError without importing internal/object (which would
// cycle). internal/runtime recognizes these and rehydrates them into real
// script-level error objects at the host boundary.
type scriptError struct {
	Kind    string
	Message string
}

func (e *scriptError) Error() string { return e.Kind + ": " + e.Message }

func newTypeError(msg string) error  { return &scriptError{Kind: "TypeError", Message: msg} }
func newRangeError(msg string) error { return &scriptError{Kind: "RangeError", Message: msg} }

// ScriptErrorKind extracts the error kind set by this package's coercion
// failures, or "" if err did not originate here.
func ScriptErrorKind(err error) string {
	if se, ok := err.(*scriptError); ok {
		return se.Kind
	}
	return ""
}
