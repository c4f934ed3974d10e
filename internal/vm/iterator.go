package vm

import (
	"strconv"

	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// iteratorHandle is the VM's view of an active iterator, opaque to script
// code: either a native fast path over an Array's elements, fast-pathed
// the way most engines special-case arrays instead of always going
// through the full iterator protocol, or the
// object+next-method pair the full iteration protocol produces.
type iteratorHandle struct {
	kind    iterKind
	obj     *object.Object // for-in: enumeration source; protocol: iterator object
	next    *object.Object
	strRune []rune // for-of over a primitive string
	pos     int
	keys    []object.Key // for-in's pre-snapshotted own-enumerable-key list
}

type iterKind int

const (
	iterProtocol iterKind = iota
	iterArrayFast
	iterStringFast
	iterForIn
)

// yieldStarState tracks an in-progress `yield*` delegation:
// while delegating, each .next() on the outer generator polls the inner
// iterator's next() with no argument until it reports done, at which point
// the delegation's final value becomes the yield* expression's result. A
// .throw() on the outer generator closes the inner iterator and raises in
// the outer frame instead of being forwarded.
// Kept on the Frame so Execute can resume a delegation exactly where a
// nested suspension (the inner iterator itself awaiting/yielding when it
// is itself a generator) left off.
type yieldStarState struct {
	iter *iteratorHandle
	dst  uint16
}

// wrapIterator stashes an iteratorHandle inside an opaque object's
// NativeData so it can travel through a register like any other value
// (OpGetIterator's destination register holds the wrapper for the
// OpIteratorNext/Value/Done/Close family that follows).
func wrapIterator(vm *VM, it *iteratorHandle) *object.Object {
	o := object.New(vm.Heap, value.Null_())
	o.NativeData = it
	return o
}

func unwrapIterator(v value.Value) *iteratorHandle {
	o, ok := asObject(v)
	if !ok {
		return nil
	}
	it, _ := o.NativeData.(*iteratorHandle)
	return it
}

// getIterator implements GetIterator: kindFlag is 0 for a
// synchronous for-of, 1 for async for-await-of, 2 for for-in key
// enumeration (internal/codegen's compileForInOfCommon funnels all three
// through one opcode family).
func (vm *VM) getIterator(v value.Value, kindFlag uint16) (*iteratorHandle, error) {
	if kindFlag == 2 {
		return vm.getForInIterator(v), nil
	}
	if v.IsString() {
		s, _ := value.ToString(v)
		return &iteratorHandle{kind: iterStringFast, strRune: []rune(s)}, nil
	}
	if !v.IsObject() {
		return nil, &ThrownError{Value: vm.NewTypeError("value is not iterable")}
	}
	o, _ := v.Ref().(*object.Object)
	if o == nil {
		return nil, &ThrownError{Value: vm.NewTypeError("value is not iterable")}
	}
	if o.IsArray() && !hasCustomIterator(o, vm) {
		return &iteratorHandle{kind: iterArrayFast, obj: o}, nil
	}

	symKey := vm.iteratorSymbolKey(kindFlag == 1)
	methodVal, err := o.Get(symKey, v)
	if err != nil {
		return nil, &ThrownError{Value: vm.toThrowable(err)}
	}
	method, ok := methodVal.Ref().(*object.Object)
	if !methodVal.IsObject() || !ok || method.Call == nil {
		return nil, &ThrownError{Value: vm.NewTypeError("value is not iterable")}
	}
	iterVal, err := method.Call(v, nil)
	if err != nil {
		return nil, err
	}
	iterObj, ok := iterVal.Ref().(*object.Object)
	if !iterVal.IsObject() || !ok {
		return nil, &ThrownError{Value: vm.NewTypeError("iterator result is not an object")}
	}
	nextVal, err := iterObj.Get(object.StringKey("next"), iterVal)
	if err != nil {
		return nil, &ThrownError{Value: vm.toThrowable(err)}
	}
	nextFn, ok := nextVal.Ref().(*object.Object)
	if !nextVal.IsObject() || !ok || nextFn.Call == nil {
		return nil, &ThrownError{Value: vm.NewTypeError("iterator.next is not a function")}
	}
	return &iteratorHandle{kind: iterProtocol, obj: iterObj, next: nextFn}, nil
}

func (vm *VM) iteratorSymbolKey(async bool) object.Key {
	sym := vm.Symbols.Iterator
	if async {
		sym = vm.Symbols.AsyncIterator
	}
	return object.SymbolKey(sym)
}

func hasCustomIterator(o *object.Object, vm *VM) bool {
	if vm.Protos.Array == nil {
		return false
	}
	_, has := o.GetOwnProperty(vm.iteratorSymbolKey(false))
	return has
}

func (vm *VM) getForInIterator(v value.Value) *iteratorHandle {
	if !v.IsObject() {
		return &iteratorHandle{kind: iterForIn}
	}
	o, ok := v.Ref().(*object.Object)
	if !ok {
		return &iteratorHandle{kind: iterForIn}
	}
	seen := map[string]bool{}
	var keys []object.Key
	for cur := o; cur != nil; {
		for _, k := range cur.EnumerableStringKeys() {
			name := k.String()
			if seen[name] {
				continue
			}
			seen[name] = true
			keys = append(keys, k)
		}
		protoVal := cur.GetPrototypeOf()
		if !protoVal.IsObject() {
			break
		}
		cur, _ = protoVal.Ref().(*object.Object)
	}
	return &iteratorHandle{kind: iterForIn, keys: keys}
}

// iteratorNext implements IteratorNext, storing the result on the frame
// (see Frame.currentIterResult's doc comment for why one slot per frame
// suffices).
func (vm *VM) iteratorNext(it *iteratorHandle) (iteratorResult, error) {
	switch it.kind {
	case iterArrayFast:
		idx := uint32(it.pos)
		if idx >= it.obj.Length() {
			return iteratorResult{done: true}, nil
		}
		v, err := it.obj.Get(object.StringKey(strconv.FormatUint(uint64(idx), 10)), value.ObjectRef(it.obj))
		if err != nil {
			return iteratorResult{}, &ThrownError{Value: vm.toThrowable(err)}
		}
		it.pos++
		return iteratorResult{value: v}, nil
	case iterStringFast:
		if it.pos >= len(it.strRune) {
			return iteratorResult{done: true}, nil
		}
		ch := it.strRune[it.pos]
		it.pos++
		return iteratorResult{value: value.Str(string(ch))}, nil
	case iterForIn:
		if it.pos >= len(it.keys) {
			return iteratorResult{done: true}, nil
		}
		k := it.keys[it.pos]
		it.pos++
		return iteratorResult{value: k.ToValue()}, nil
	default:
		res, err := it.next.Call(value.ObjectRef(it.obj), nil)
		if err != nil {
			return iteratorResult{}, err
		}
		resObj, ok := res.Ref().(*object.Object)
		if !res.IsObject() || !ok {
			return iteratorResult{}, &ThrownError{Value: vm.NewTypeError("iterator result is not an object")}
		}
		doneVal, err := resObj.Get(object.StringKey("done"), res)
		if err != nil {
			return iteratorResult{}, &ThrownError{Value: vm.toThrowable(err)}
		}
		valueVal, err := resObj.Get(object.StringKey("value"), res)
		if err != nil {
			return iteratorResult{}, &ThrownError{Value: vm.toThrowable(err)}
		}
		return iteratorResult{value: valueVal, done: value.ToBoolean(doneVal)}, nil
	}
}

// iteratorClose implements IteratorClose (the loop-early-exit
// cleanup): only the full-protocol form has a .return() to call.
func (vm *VM) iteratorClose(it *iteratorHandle) {
	if it == nil || it.kind != iterProtocol {
		return
	}
	retVal, err := it.obj.Get(object.StringKey("return"), value.ObjectRef(it.obj))
	if err != nil || !retVal.IsObject() {
		return
	}
	retFn, ok := retVal.Ref().(*object.Object)
	if !ok || retFn.Call == nil {
		return
	}
	_, _ = retFn.Call(value.ObjectRef(it.obj), nil)
}
