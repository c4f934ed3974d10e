package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper-lang/vesper/internal/value"
)

func TestGet_FallsThroughPrototypeChain(t *testing.T) {
	h := newHeap()
	proto := New(h, value.Null_())
	proto.DefineOwnProperty(StringKey("greeting"), DataDescriptor(value.Str("hi"), true, true, true))

	child := New(h, value.ObjectRef(proto))
	got, err := child.Get(StringKey("greeting"), value.ObjectRef(child))
	require.NoError(t, err)
	assert.True(t, got.IsString())
	assert.Equal(t, "hi", got.AsString())
}

func TestGet_OwnPropertyShadowsPrototype(t *testing.T) {
	h := newHeap()
	proto := New(h, value.Null_())
	proto.DefineOwnProperty(StringKey("x"), DataDescriptor(value.Num(1), true, true, true))

	child := New(h, value.ObjectRef(proto))
	child.DefineOwnProperty(StringKey("x"), DataDescriptor(value.Num(2), true, true, true))

	got, err := child.Get(StringKey("x"), value.ObjectRef(child))
	require.NoError(t, err)
	assert.Equal(t, float64(2), got.Float())
}

func TestDefineOwnProperty_NonWritableRejectsSet(t *testing.T) {
	h := newHeap()
	o := New(h, value.Null_())
	o.DefineOwnProperty(StringKey("frozen"), DataDescriptor(value.Num(1), false, true, false))

	ok := o.DefineOwnProperty(StringKey("frozen"), Descriptor{Flags: HasValue, Value: value.Num(2)})
	assert.False(t, ok, "redefining a non-writable property's value without going through Set must fail validation")

	got, _, _ := readOwn(o, "frozen")
	assert.Equal(t, float64(1), got.Float())
}

func TestEnumerableStringKeys_SkipsNonEnumerableAndSymbols(t *testing.T) {
	h := newHeap()
	o := New(h, value.Null_())
	o.DefineOwnProperty(StringKey("visible"), DataDescriptor(value.Num(1), true, true, true))
	o.DefineOwnProperty(StringKey("hidden"), DataDescriptor(value.Num(2), true, false, true))
	o.DefineOwnProperty(SymbolKey(new(int)), DataDescriptor(value.Num(3), true, true, true))

	keys := o.EnumerableStringKeys()
	require.Len(t, keys, 1)
	assert.Equal(t, "visible", keys[0].String())
}

func readOwn(o *Object, name string) (value.Value, bool, bool) {
	d, ok := o.GetOwnProperty(StringKey(name))
	if !ok {
		return value.Value{}, false, false
	}
	return d.Value, true, d.Writable
}
