package object

import (
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/value"
)

// NewNativeFunction creates a callable object backed by a Go function,
// realizing the "native function registration": create a built-in
// function (native_func, arity, name) and install it as a property.
func NewNativeFunction(heap *gc.Heap, proto value.Value, name string, arity int, fn CallFunc) *Object {
	o := New(heap, proto)
	o.class = "Function"
	o.Call = fn
	o.DefineOwnProperty(StringKey("name"), DataDescriptor(value.Str(name), false, false, true))
	o.DefineOwnProperty(StringKey("length"), DataDescriptor(value.Num(float64(arity)), false, false, true))
	return o
}

// NewArray creates a fresh Array exotic object with the given initial
// elements, each a plain writable/enumerable/configurable own property
//.
func NewArray(heap *gc.Heap, proto value.Value, elems []value.Value) *Object {
	o := New(heap, proto)
	o.MakeArray()
	for i, v := range elems {
		o.defineArrayIndex(uint32(i), DataDescriptor(v, true, true, true))
	}
	return o
}

// EnumerableStringKeys returns, in OwnPropertyKeys order, only the string
// keys whose current descriptor is enumerable — the key set a `for...in`
// loop walks up the prototype chain.
func (o *Object) EnumerableStringKeys() []Key {
	var out []Key
	for _, k := range o.OwnPropertyKeys() {
		if k.IsSymbol() {
			continue
		}
		if d, ok := o.GetOwnProperty(k); ok && d.Enumerable {
			out = append(out, k)
		}
	}
	return out
}
