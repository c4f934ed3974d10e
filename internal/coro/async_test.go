package coro

import (
	"testing"

	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/jobqueue"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// asyncChunkAwaitThenReturn builds an async body equivalent to:
//
//	async function() { const x = await 41; return x + 1; }
//
// using OpAdd directly on the awaited register rather than modeling the
// `const x = ...` binding machinery, since this test only exercises the
// await-then-resume path.
func asyncChunkAwaitThenReturn() *bytecode.Function {
	c := bytecode.NewChunk()
	c.RegNum = 2
	fortyOne := c.AddConstant(value.Num(41))
	one := c.AddConstant(value.Num(1))
	c.Code = []uint16{
		uint16(bytecode.OpLoadConst), 0, uint16(fortyOne),
		uint16(bytecode.OpAwait), 0, 0,
		uint16(bytecode.OpLoadConst), 1, uint16(one),
		uint16(bytecode.OpAdd), 0, 0, 1,
		uint16(bytecode.OpReturn), 0,
	}
	return bytecode.NewFunction("f", c, 0)
}

func TestAsyncFunctionAwaitsPlainValue(t *testing.T) {
	v := newTestVM(t)
	jq := jobqueue.New()
	Install(v, jq)

	fn := asyncChunkAwaitThenReturn()
	unit := vm.FromCodegenOutput([]*bytecode.Function{fn}, 0)

	resultVal, err := runAsync(v, jq, fn, unit, v.Global, nil, value.Undef(), nil, value.Undef())
	if err != nil {
		t.Fatalf("runAsync: %v", err)
	}
	p, ok := resultVal.Ref().(*object.Object)
	if !resultVal.IsObject() || !ok {
		t.Fatalf("runAsync did not return a promise: %#v", resultVal)
	}
	pd, ok := p.NativeData.(*promiseData)
	if !ok {
		t.Fatalf("returned object is not one of this package's promises")
	}
	if pd.state != promisePending {
		t.Fatalf("promise settled synchronously before the job queue drained")
	}

	jq.Drain()

	if pd.state != promiseFulfilled {
		t.Fatalf("promise state = %v, want fulfilled", pd.state)
	}
	n, err := value.ToNumber(pd.result)
	if err != nil {
		t.Fatalf("ToNumber(result): %v", err)
	}
	if n != 42 {
		t.Fatalf("resolved value = %v, want 42", n)
	}
}

func TestAsyncFunctionPropagatesThrow(t *testing.T) {
	v := newTestVM(t)
	jq := jobqueue.New()
	Install(v, jq)

	c := bytecode.NewChunk()
	c.RegNum = 1
	msg := c.AddConstant(value.Str("boom"))
	c.Code = []uint16{
		uint16(bytecode.OpLoadConst), 0, uint16(msg),
		uint16(bytecode.OpThrow), 0,
	}
	fn := bytecode.NewFunction("f", c, 0)
	unit := vm.FromCodegenOutput([]*bytecode.Function{fn}, 0)

	resultVal, err := runAsync(v, jq, fn, unit, v.Global, nil, value.Undef(), nil, value.Undef())
	if err != nil {
		t.Fatalf("runAsync: %v", err)
	}
	p := resultVal.Ref().(*object.Object)
	pd := p.NativeData.(*promiseData)
	if pd.state != promiseRejected {
		t.Fatalf("promise state = %v, want rejected", pd.state)
	}
	if !pd.result.IsString() || pd.result.AsString() != "boom" {
		t.Fatalf("rejection reason = %#v, want \"boom\"", pd.result)
	}
}
