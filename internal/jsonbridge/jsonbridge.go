// Package jsonbridge implements the JSON.parse/JSON.stringify built-ins,
// treating the JSON library surface as an external collaborator reached
// through a narrow interface rather than core-engine functionality, so
// this package marshals between internal/value's tagged union and JSON
// text using
// github.com/tidwall/gjson (a zero-allocation-friendly read-only JSON
// index, used here instead of a hand-rolled recursive-descent parser) and
// github.com/tidwall/sjson (incremental, path-addressed JSON construction,
// used here instead of building strings.Builder output by hand).
package jsonbridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// Install defines the JSON global object on vmRef's global environment,
// the way internal/coro.Install hangs next/return/throw off the Generator
// prototype: a couple of native functions installed once at runtime
// construction time.
func Install(vmRef *vm.VM) {
	global := vmRef.Global.GlobalObject()
	jsonObj := object.New(vmRef.Heap, value.ObjectRef(vmRef.Protos.Object))
	jsonObj.SetClass("JSON")

	define := func(name string, arity int, fn object.CallFunc) {
		nf := object.NewNativeFunction(vmRef.Heap, value.ObjectRef(vmRef.Protos.Function), name, arity, fn)
		jsonObj.DefineOwnProperty(object.StringKey(name), object.DataDescriptor(value.ObjectRef(nf), true, false, true))
	}
	define("parse", 1, func(thisVal value.Value, args []value.Value) (value.Value, error) {
		text := argString(args, 0)
		if !gjson.Valid(text) {
			return value.Value{}, &vm.ThrownError{Value: vmRef.NewSyntaxError("Unexpected token in JSON")}
		}
		return fromGJSON(vmRef, gjson.Parse(text)), nil
	})
	define("stringify", 1, func(thisVal value.Value, args []value.Value) (value.Value, error) {
		v := argOrUndef(args, 0)
		text, ok, err := stringify(v)
		if err != nil {
			return value.Value{}, &vm.ThrownError{Value: vmRef.NewTypeError(err.Error())}
		}
		if !ok {
			return value.Undef(), nil
		}
		return value.Str(text), nil
	})

	global.DefineOwnProperty(object.StringKey("JSON"), object.DataDescriptor(value.ObjectRef(jsonObj), true, false, true))
}

func argOrUndef(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undef()
}

func argString(args []value.Value, i int) string {
	v := argOrUndef(args, i)
	if v.IsString() {
		return v.AsString()
	}
	s, err := value.ToString(v)
	if err != nil {
		return ""
	}
	return s
}

// fromGJSON walks a parsed gjson.Result into a value.Value tree, building
// arrays via object.NewArray and plain objects property-by-property —
// the mirror image of stringify below.
func fromGJSON(vmRef *vm.VM, r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Null_()
	case gjson.True:
		return value.Bool(true)
	case gjson.False:
		return value.Bool(false)
	case gjson.Number:
		return value.Num(r.Float())
	case gjson.String:
		return value.Str(r.String())
	case gjson.JSON:
		if r.IsArray() {
			var elems []value.Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, fromGJSON(vmRef, v))
				return true
			})
			return value.ObjectRef(object.NewArray(vmRef.Heap, value.ObjectRef(vmRef.Protos.Array), elems))
		}
		o := object.New(vmRef.Heap, value.ObjectRef(vmRef.Protos.Object))
		r.ForEach(func(k, v gjson.Result) bool {
			o.DefineOwnProperty(object.StringKey(k.String()), object.DataDescriptor(fromGJSON(vmRef, v), true, true, true))
			return true
		})
		return value.ObjectRef(o)
	default:
		return value.Undef()
	}
}

// stringify implements JSON.stringify's property serialization,
// simplified: no replacer/space arguments, no toJSON lookup. The ok
// return is false for values JSON.stringify must drop rather than
// render (undefined, functions) — matching the real built-in's "return
// undefined" behavior at the top level and "omit the property" behavior
// inside an object.
func stringify(v value.Value) (string, bool, error) {
	switch {
	case v.IsUndefined():
		return "", false, nil
	case v.IsNull():
		return "null", true, nil
	case v.IsBoolean():
		if v.Bool() {
			return "true", true, nil
		}
		return "false", true, nil
	case v.IsNumber():
		f := v.Float()
		if f != f || f > 1.7976931348623157e+308 || f < -1.7976931348623157e+308 {
			return "null", true, nil
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true, nil
	case v.IsString():
		return quoteString(v.AsString()), true, nil
	case v.IsObject():
		o, ok := v.Ref().(*object.Object)
		if !ok {
			return "", false, nil
		}
		if o.Call != nil {
			return "", false, nil // functions are not serializable
		}
		if o.IsArray() {
			return stringifyArray(o)
		}
		return stringifyObject(o)
	default:
		return "", false, nil
	}
}

// stringifyArray builds its JSON text one element at a time via
// sjson.SetRaw's append-by-"-1"-index path, rather than joining strings
// by hand: a `null` hole stands in for any element that drops out
// (undefined or a function), since array serialization never omits an
// index the way object serialization omits a key.
func stringifyArray(o *object.Object) (string, bool, error) {
	acc := "[]"
	n := o.Length()
	for i := uint32(0); i < n; i++ {
		elem, err := o.Get(object.StringKey(strconv.Itoa(int(i))), value.ObjectRef(o))
		if err != nil {
			return "", false, err
		}
		text, ok, err := stringify(elem)
		if err != nil {
			return "", false, err
		}
		if !ok {
			text = "null"
		}
		var setErr error
		acc, setErr = sjson.SetRaw(acc, "-1", text)
		if setErr != nil {
			return "", false, setErr
		}
	}
	return acc, true, nil
}

// stringifyObject builds its JSON text key by key via sjson.SetRaw,
// escaping each key the way sjson's own path syntax requires (a literal
// '.', '*', '?', or '\\' inside a key must be backslash-escaped so sjson
// doesn't read it as path syntax).
func stringifyObject(o *object.Object) (string, bool, error) {
	acc := "{}"
	for _, k := range o.EnumerableStringKeys() {
		v, err := o.Get(k, value.ObjectRef(o))
		if err != nil {
			return "", false, err
		}
		text, ok, err := stringify(v)
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue // undefined/function-valued properties are omitted entirely
		}
		var setErr error
		acc, setErr = sjson.SetRaw(acc, escapeSjsonPath(k.String()), text)
		if setErr != nil {
			return "", false, setErr
		}
	}
	return acc, true, nil
}

func escapeSjsonPath(key string) string {
	r := strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`)
	return r.Replace(key)
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
