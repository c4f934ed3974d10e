package coro

import (
	"testing"

	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/jobqueue"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// newTestVM builds a minimal VM with just enough intrinsics for coro's
// tests: Object/Function prototypes and a bare Generator/Promise
// prototype for Install to hang next/return/throw off of.
func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	heap := gc.New(nil)
	objProto := object.New(heap, value.Null_())
	fnProto := object.New(heap, value.ObjectRef(objProto))
	genProto := object.New(heap, value.ObjectRef(objProto))
	promiseProto := object.New(heap, value.ObjectRef(objProto))
	globalObject := object.New(heap, value.ObjectRef(objProto))

	global := envrec.NewGlobalEnv(heap, globalObject)
	protos := vm.Protos{
		Object:    objProto,
		Function:  fnProto,
		Generator: genProto,
		Promise:   promiseProto,
	}
	v := vm.New(heap, global, protos, vm.Symbols{})
	heap.AddRoot(v)
	return v
}

// genChunkYieldYieldReturn builds a generator body equivalent to:
//
//	function*() { yield 1; yield 2; return 3; }
func genChunkYieldYieldReturn() *bytecode.Function {
	c := bytecode.NewChunk()
	c.RegNum = 2
	one := c.AddConstant(value.Num(1))
	two := c.AddConstant(value.Num(2))
	three := c.AddConstant(value.Num(3))
	c.Code = []uint16{
		uint16(bytecode.OpLoadConst), 0, uint16(one),
		uint16(bytecode.OpYield), 1, 0,
		uint16(bytecode.OpLoadConst), 0, uint16(two),
		uint16(bytecode.OpYield), 1, 0,
		uint16(bytecode.OpLoadConst), 0, uint16(three),
		uint16(bytecode.OpReturn), 0,
	}
	return bytecode.NewFunction("g", c, 0)
}

func iterResultFields(t *testing.T, v value.Value) (value.Value, bool) {
	t.Helper()
	o, ok := v.Ref().(*object.Object)
	if !v.IsObject() || !ok {
		t.Fatalf("expected iterator result object, got %#v", v)
	}
	val, err := o.Get(object.StringKey("value"), v)
	if err != nil {
		t.Fatalf("reading .value: %v", err)
	}
	doneVal, err := o.Get(object.StringKey("done"), v)
	if err != nil {
		t.Fatalf("reading .done: %v", err)
	}
	return val, value.ToBoolean(doneVal)
}

func TestGeneratorNextYieldsThenCompletes(t *testing.T) {
	v := newTestVM(t)
	jq := jobqueue.New()
	Install(v, jq)

	fn := genChunkYieldYieldReturn()
	unit := vm.FromCodegenOutput([]*bytecode.Function{fn}, 0)
	genVal := newGenerator(v, fn, unit, v.Global, nil, value.Undef(), nil)

	nextFn, _ := genProtoMethod(t, v, "next")

	r1, err := nextFn.Call(genVal, nil)
	if err != nil {
		t.Fatalf("first next(): %v", err)
	}
	if val, done := iterResultFields(t, r1); done || !value.StrictEqual(val, value.Num(1)) {
		t.Fatalf("first next() = %#v, done=%v, want 1,false", val, done)
	}

	r2, err := nextFn.Call(genVal, nil)
	if err != nil {
		t.Fatalf("second next(): %v", err)
	}
	if val, done := iterResultFields(t, r2); done {
		t.Fatalf("second next() done=%v, want false (val=%#v)", done, val)
	}

	r3, err := nextFn.Call(genVal, nil)
	if err != nil {
		t.Fatalf("third next(): %v", err)
	}
	val, done := iterResultFields(t, r3)
	if !done {
		t.Fatalf("third next() done=%v, want true", done)
	}
	n, _ := value.ToNumber(val)
	if n != 3 {
		t.Fatalf("third next() value=%v, want 3", n)
	}

	r4, err := nextFn.Call(genVal, nil)
	if err != nil {
		t.Fatalf("next() after completion: %v", err)
	}
	if _, done := iterResultFields(t, r4); !done {
		t.Fatalf("next() after completion done=%v, want true", done)
	}
}

func TestGeneratorReturnCompletesImmediately(t *testing.T) {
	v := newTestVM(t)
	jq := jobqueue.New()
	Install(v, jq)

	fn := genChunkYieldYieldReturn()
	unit := vm.FromCodegenOutput([]*bytecode.Function{fn}, 0)
	genVal := newGenerator(v, fn, unit, v.Global, nil, value.Undef(), nil)

	nextFn, _ := genProtoMethod(t, v, "next")
	returnFn, _ := genProtoMethod(t, v, "return")

	if _, err := nextFn.Call(genVal, nil); err != nil {
		t.Fatalf("next(): %v", err)
	}

	r, err := returnFn.Call(genVal, []value.Value{value.Num(42)})
	if err != nil {
		t.Fatalf("return(): %v", err)
	}
	val, done := iterResultFields(t, r)
	if !done {
		t.Fatalf("return() done=%v, want true", done)
	}
	n, _ := value.ToNumber(val)
	if n != 42 {
		t.Fatalf("return() value=%v, want 42", n)
	}

	r2, err := nextFn.Call(genVal, nil)
	if err != nil {
		t.Fatalf("next() after return(): %v", err)
	}
	if _, done := iterResultFields(t, r2); !done {
		t.Fatalf("next() after return() done=%v, want true", done)
	}
}

func genProtoMethod(t *testing.T, v *vm.VM, name string) (*object.Object, bool) {
	t.Helper()
	mv, err := v.Protos.Generator.Get(object.StringKey(name), value.ObjectRef(v.Protos.Generator))
	if err != nil {
		t.Fatalf("looking up Generator.prototype.%s: %v", name, err)
	}
	o, ok := mv.Ref().(*object.Object)
	if !mv.IsObject() || !ok || o.Call == nil {
		t.Fatalf("Generator.prototype.%s is not callable", name)
	}
	return o, ok
}
