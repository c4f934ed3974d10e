package object

import (
	"testing"

	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/value"
)

func newHeap() *gc.Heap { return gc.New(nil) }

func TestOwnPropertyKeys_Ordering(t *testing.T) {
	h := newHeap()
	o := New(h, value.Null_())

	o.DefineOwnProperty(StringKey("b"), DataDescriptor(value.Num(1), true, true, true))
	o.DefineOwnProperty(StringKey("2"), DataDescriptor(value.Num(2), true, true, true))
	o.DefineOwnProperty(StringKey("a"), DataDescriptor(value.Num(3), true, true, true))
	o.DefineOwnProperty(StringKey("0"), DataDescriptor(value.Num(4), true, true, true))
	sym := SymbolKey(new(int))
	o.DefineOwnProperty(sym, DataDescriptor(value.Num(5), true, true, true))

	keys := o.OwnPropertyKeys()
	want := []string{"0", "2", "b", "a"}
	for i, w := range want {
		if keys[i].IsSymbol() || keys[i].String() != w {
			t.Fatalf("key %d: want %q, got %v", i, w, keys[i])
		}
	}
	if !keys[len(keys)-1].IsSymbol() {
		t.Fatalf("expected symbol key last")
	}
}

func TestArrayLengthInvariant_ShrinkStopsAtNonConfigurable(t *testing.T) {
	h := newHeap()
	arr := NewArray(h, value.Null_(), []value.Value{value.Num(1), value.Num(2), value.Num(3), value.Num(4), value.Num(5)})

	ok := arr.DefineOwnProperty(indexKey(2), Descriptor{Flags: HasConfigurable | HasValue, Configurable: false, Value: value.Num(99)})
	if !ok {
		t.Fatalf("defineProperty on index 2 should succeed")
	}

	result := arr.setArrayLength(Descriptor{Flags: HasValue, Value: value.Num(1)})
	if result {
		t.Fatalf("shrinking past a non-configurable index must report failure")
	}
	if arr.Length() != 3 {
		t.Fatalf("length should clamp to 3 (index 2 + 1), got %d", arr.Length())
	}
	d, has := arr.getArrayOwn(2)
	if !has || d.Value.Float() != 99 {
		t.Fatalf("index 2 must survive the shrink")
	}
	if _, has := arr.getArrayOwn(3); has {
		t.Fatalf("index 3 should have been deleted")
	}
}

func TestArrayLengthInvariant_AlwaysBoundsIndices(t *testing.T) {
	h := newHeap()
	arr := NewArray(h, value.Null_(), nil)
	for i := uint32(0); i < 10; i++ {
		arr.defineArrayIndex(i, DataDescriptor(value.Num(float64(i)), true, true, true))
	}
	for _, k := range arr.arrayIndexKeysSorted() {
		if k.Index() >= arr.Length() {
			t.Fatalf("index %d must be < length %d", k.Index(), arr.Length())
		}
	}
}

func TestDescriptorMerge_NonConfigurableRejectsContradiction(t *testing.T) {
	current := DataDescriptor(value.Num(1), false, true, false)
	_, ok := ValidateAndApplyPropertyDescriptor(&current, true, Descriptor{Flags: HasConfigurable, Configurable: true})
	if ok {
		t.Fatalf("flipping configurable:false -> true must fail")
	}
}

func TestDescriptorMerge_RefinementAllowed(t *testing.T) {
	current := DataDescriptor(value.Num(1), true, true, true)
	merged, ok := ValidateAndApplyPropertyDescriptor(&current, true, Descriptor{Flags: HasConfigurable, Configurable: false})
	if !ok || merged.Configurable {
		t.Fatalf("refining configurable:true -> false must succeed")
	}
}

func TestDescriptorMerge_IdempotentReapplication(t *testing.T) {
	desc := Descriptor{Flags: HasValue | HasWritable | HasEnumerable | HasConfigurable, Value: value.Num(5), Writable: true, Enumerable: true, Configurable: true}
	first, ok := ValidateAndApplyPropertyDescriptor(nil, true, desc)
	if !ok {
		t.Fatalf("initial definition should succeed")
	}
	second, ok := ValidateAndApplyPropertyDescriptor(&first, true, desc)
	if !ok || second != first {
		t.Fatalf("repeated application of the same descriptor must be idempotent")
	}
}

func TestPrototypeChainGetSet(t *testing.T) {
	h := newHeap()
	proto := New(h, value.Null_())
	proto.DefineOwnProperty(StringKey("greeting"), DataDescriptor(value.Str("hi"), true, true, true))

	child := New(h, value.ObjectRef(proto))
	v, err := child.Get(StringKey("greeting"), value.ObjectRef(child))
	if err != nil || v.AsString() != "hi" {
		t.Fatalf("expected inherited property, got %v err=%v", v, err)
	}

	ok, err := child.Set(StringKey("greeting"), value.Str("own"), value.ObjectRef(child))
	if err != nil || !ok {
		t.Fatalf("set through inherited writable property should create an own property")
	}
	if _, has := child.GetOwnProperty(StringKey("greeting")); !has {
		t.Fatalf("expected child to now own 'greeting'")
	}
}

func TestDeleteNonConfigurableFails(t *testing.T) {
	h := newHeap()
	o := New(h, value.Null_())
	o.DefineOwnProperty(StringKey("x"), DataDescriptor(value.Num(1), true, true, false))
	if o.Delete(StringKey("x")) {
		t.Fatalf("deleting a non-configurable property must fail")
	}
}
