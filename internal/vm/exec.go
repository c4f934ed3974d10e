package vm

import (
	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// OutcomeKind classifies how Execute stopped running a frame: the normal
// completion types, plus the two suspension kinds added for
// generators/async functions.
type OutcomeKind int

const (
	OutcomeReturn OutcomeKind = iota
	OutcomeThrow
	OutcomeYield
	OutcomeAwait
)

// Outcome is what Execute/Resume hand back to their caller: a frame either
// completes (Return/Throw) or suspends (Yield/Await) with a value attached
// to every kind.
type Outcome struct {
	Kind  OutcomeKind
	Value value.Value
}

// Execute runs frame starting at its current ip until it returns, throws,
// or suspends. A plain function call (callOrdinary/construct in calls.go)
// only ever sees Return/Throw, since yield/await are only reachable inside
// a generator/async frame, which internal/coro drives directly through
// Execute/Resume rather than through the ordinary call path.
func (vm *VM) Execute(frame *Frame) Outcome {
	code := frame.Chunk.Code

	for {
		if frame.pendingUnwind != nil && frame.ip == frame.pendingUnwind.resumeAt {
			u := frame.pendingUnwind
			frame.pendingUnwind = nil
			if u.isThrow {
				out, cont := vm.raise(frame, u.value)
				if !cont {
					return out
				}
				continue
			}
			return Outcome{Kind: OutcomeReturn, Value: u.value}
		}

		if frame.ip >= len(code) {
			return Outcome{Kind: OutcomeReturn, Value: value.Undef()}
		}

		op := bytecode.OpCode(code[frame.ip])
		n := op.NumOperands()
		ops := code[frame.ip+1 : frame.ip+1+n]
		next := frame.ip + 1 + n

		switch op {

		// --- constants and registers ---
		case bytecode.OpLoadConst:
			frame.Regs[ops[0]] = frame.Chunk.Constants[ops[1]]
		case bytecode.OpLoadUndefined:
			frame.Regs[ops[0]] = value.Undef()
		case bytecode.OpLoadNull:
			frame.Regs[ops[0]] = value.Null_()
		case bytecode.OpLoadTrue:
			frame.Regs[ops[0]] = value.Bool(true)
		case bytecode.OpLoadFalse:
			frame.Regs[ops[0]] = value.Bool(false)
		case bytecode.OpMove:
			frame.Regs[ops[0]] = frame.Regs[ops[1]]

		// --- environment access ---
		case bytecode.OpGetBinding:
			name := frame.Chunk.Bindings[ops[1]].Name
			v, err := vm.getBinding(frame, name)
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpSetBinding:
			name := frame.Chunk.Bindings[ops[1]].Name
			if err := vm.setBinding(frame, name, frame.Regs[ops[0]]); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
		case bytecode.OpInitBinding:
			name := frame.Chunk.Bindings[ops[1]].Name
			if err := vm.initBinding(frame, name, frame.Regs[ops[0]]); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
		case bytecode.OpPushDeclarative:
			frame.LexEnv = envrec.NewDeclarative(vm.Heap, frame.LexEnv)
		case bytecode.OpPopEnv:
			frame.LexEnv = frame.LexEnv.Outer()
		case bytecode.OpPushWith:
			o, err := vm.requireObject(frame.Regs[ops[0]], "use as a with-target")
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.LexEnv = envrec.NewObjectEnv(vm.Heap, frame.LexEnv, o, true)
		case bytecode.OpCreateGlobalVar:
			name := frame.Chunk.Bindings[ops[0]].Name
			if err := vm.createGlobalVar(frame, name); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}

		// --- property access ---
		case bytecode.OpGetProp:
			key := frame.Chunk.PropRefs[ops[2]].Key
			v, err := vm.getProp(frame.Regs[ops[1]], key)
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpSetProp:
			key := frame.Chunk.PropRefs[ops[2]].Key
			if err := vm.setProp(frame.Regs[ops[0]], key, frame.Regs[ops[1]]); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
		case bytecode.OpGetPropComputed:
			v, err := vm.getPropComputed(frame.Regs[ops[1]], frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpSetPropComputed:
			if err := vm.setPropComputed(frame.Regs[ops[0]], frame.Regs[ops[1]], frame.Regs[ops[2]]); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
		case bytecode.OpDeleteProp:
			key := frame.Chunk.PropRefs[ops[2]].Key
			v, err := vm.deleteProp(frame.Regs[ops[1]], key)
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpDeletePropComputed:
			v, err := vm.deletePropComputed(frame.Regs[ops[1]], frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpGetSuperProp:
			key := frame.Chunk.PropRefs[ops[1]].Key
			v, err := vm.getSuperProp(frame, key)
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpSetSuperProp:
			key := frame.Chunk.PropRefs[ops[1]].Key
			if err := vm.setSuperProp(frame, key, frame.Regs[ops[0]]); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}

		// --- arithmetic / bitwise / comparison ---
		case bytecode.OpAdd:
			v, err := vm.binAdd(frame.Regs[ops[1]], frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod, bytecode.OpPow:
			v, err := vm.numeric(frame.Regs[ops[1]], frame.Regs[ops[2]], numOpFor(op))
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpNeg:
			v, err := vm.neg(frame.Regs[ops[1]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpBitAnd, bytecode.OpBitOr, bytecode.OpBitXor, bytecode.OpShl, bytecode.OpShr:
			v, err := vm.int32Op(frame.Regs[ops[1]], frame.Regs[ops[2]], int32OpFor(op))
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpUShr:
			v, err := vm.ushr(frame.Regs[ops[1]], frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpBitNot:
			v, err := vm.bitNot(frame.Regs[ops[1]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
			lt := op == bytecode.OpLt || op == bytecode.OpLe
			orEqual := op == bytecode.OpLe || op == bytecode.OpGe
			v, err := vm.relational(frame.Regs[ops[1]], frame.Regs[ops[2]], lt, orEqual)
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpStrictEq:
			frame.Regs[ops[0]] = value.Bool(value.StrictEqual(frame.Regs[ops[1]], frame.Regs[ops[2]]))
		case bytecode.OpStrictNeq:
			frame.Regs[ops[0]] = value.Bool(!value.StrictEqual(frame.Regs[ops[1]], frame.Regs[ops[2]]))
		case bytecode.OpLooseEq:
			v, err := vm.looseEqual(frame.Regs[ops[1]], frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpLooseNeq:
			v, err := vm.looseEqual(frame.Regs[ops[1]], frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = value.Bool(!v.Bool())
		case bytecode.OpNot:
			frame.Regs[ops[0]] = value.Bool(!value.ToBoolean(frame.Regs[ops[1]]))
		case bytecode.OpTypeof:
			frame.Regs[ops[0]] = value.Str(typeofValue(frame.Regs[ops[1]]))
		case bytecode.OpInstanceOf:
			v, err := vm.instanceOf(frame.Regs[ops[1]], frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpIn:
			v, err := vm.inOperator(frame.Regs[ops[1]], frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v

		// --- control flow ---
		case bytecode.OpJump:
			frame.ip = next + int(int16(ops[0]))
			continue
		case bytecode.OpJumpIfFalse:
			if !value.ToBoolean(frame.Regs[ops[0]]) {
				frame.ip = next + int(int16(ops[1]))
				continue
			}
		case bytecode.OpJumpIfTrue:
			if value.ToBoolean(frame.Regs[ops[0]]) {
				frame.ip = next + int(int16(ops[1]))
				continue
			}
		case bytecode.OpJumpIfNullish:
			if frame.Regs[ops[0]].IsNullish() {
				frame.ip = next + int(int16(ops[1]))
				continue
			}

		// --- functions / calls / this ---
		case bytecode.OpMakeFunction:
			frame.Regs[ops[0]] = vm.MakeClosure(int(ops[1]), frame.Unit, frame.LexEnv, frame.HomeObject)
		case bytecode.OpCall:
			v, err := vm.Call(frame.Regs[ops[1]], value.Undef(), regSlice(frame, ops[2], ops[3]))
			if err != nil {
				if out, cont := vm.failCall(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpCallMethod:
			v, err := vm.Call(frame.Regs[ops[2]], frame.Regs[ops[1]], regSlice(frame, ops[3], ops[4]))
			if err != nil {
				if out, cont := vm.failCall(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpCallSpread:
			args, err := vm.spreadArgs(frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			v, err := vm.Call(frame.Regs[ops[1]], value.Undef(), args)
			if err != nil {
				if out, cont := vm.failCall(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpCallMethodSpread:
			args, err := vm.spreadArgs(frame.Regs[ops[3]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			v, err := vm.Call(frame.Regs[ops[2]], frame.Regs[ops[1]], args)
			if err != nil {
				if out, cont := vm.failCall(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpConstruct:
			v, err := vm.ConstructValue(frame.Regs[ops[1]], regSlice(frame, ops[2], ops[3]), frame.Regs[ops[1]])
			if err != nil {
				if out, cont := vm.failCall(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpConstructSpread:
			args, err := vm.spreadArgs(frame.Regs[ops[2]])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			v, err := vm.ConstructValue(frame.Regs[ops[1]], args, frame.Regs[ops[1]])
			if err != nil {
				if out, cont := vm.failCall(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpReturn:
			rv := frame.Regs[ops[0]]
			if tr, ok := vm.enclosingFinally(frame, frame.ip); ok {
				frame.pendingUnwind = &unwindState{resumeAt: tr.FinallyEnd, isThrow: false, value: rv}
				frame.ip = tr.FinallyPC
				continue
			}
			return Outcome{Kind: OutcomeReturn, Value: rv}
		case bytecode.OpThrow:
			out, cont := vm.raise(frame, frame.Regs[ops[0]])
			if !cont {
				return out
			}
			continue
		case bytecode.OpGetThis:
			v, err := vm.thisValue(frame)
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpGetNewTarget:
			frame.Regs[ops[0]] = frame.NewTarget
		case bytecode.OpSuperCall:
			v, err := vm.superCall(frame, regSlice(frame, ops[1], ops[2]))
			if err != nil {
				if out, cont := vm.failCall(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = v
		case bytecode.OpMakeArray:
			frame.Regs[ops[0]] = value.ObjectRef(object.NewArray(vm.Heap, value.ObjectRef(vm.Protos.Array), regSlice(frame, ops[1], ops[2])))
		case bytecode.OpMakeObject:
			frame.Regs[ops[0]] = value.ObjectRef(object.New(vm.Heap, value.ObjectRef(vm.Protos.Object)))
		case bytecode.OpSpread:
			if err := vm.spreadInto(frame.Regs[ops[0]], frame.Regs[ops[1]]); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}

		// --- iteration / generators / async ---
		case bytecode.OpGetIterator:
			it, err := vm.getIterator(frame.Regs[ops[1]], ops[2])
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = value.ObjectRef(wrapIterator(vm, it))
		case bytecode.OpIteratorNext:
			it := unwrapIterator(frame.Regs[ops[0]])
			res, err := vm.iteratorNext(it)
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.currentIterResult = res
		case bytecode.OpIteratorValue:
			frame.Regs[ops[0]] = frame.currentIterResult.value
		case bytecode.OpIteratorDone:
			frame.Regs[ops[0]] = value.Bool(frame.currentIterResult.done)
		case bytecode.OpIteratorClose:
			vm.iteratorClose(unwrapIterator(frame.Regs[ops[0]]))
		case bytecode.OpYield:
			frame.ip = next
			frame.pendingDst = ops[0]
			return Outcome{Kind: OutcomeYield, Value: frame.Regs[ops[1]]}
		case bytecode.OpYieldStar:
			it, err := vm.getIterator(frame.Regs[ops[1]], 0)
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.ip = next
			frame.yieldStar = &yieldStarState{iter: it, dst: ops[0]}
			return vm.stepYieldStar(frame, value.Undef(), false)
		case bytecode.OpAwait:
			frame.ip = next
			frame.pendingDst = ops[0]
			return Outcome{Kind: OutcomeAwait, Value: frame.Regs[ops[1]]}

		// --- modules ---
		case bytecode.OpGetModuleNamespace:
			if ModuleNamespaceHook == nil {
				if out, cont := vm.fail(frame, &ThrownError{Value: vm.NewTypeError("modules are not supported by this build")}); !cont {
					return out
				}
				continue
			}
			ns, err := ModuleNamespaceHook(vm, frame.Unit, int(ops[1]))
			if err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = ns
		case bytecode.OpImportMeta:
			if ImportMetaHook == nil {
				if out, cont := vm.fail(frame, &ThrownError{Value: vm.NewTypeError("modules are not supported by this build")}); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = ImportMetaHook(vm, frame.Unit)
		case bytecode.OpDynamicImport:
			if DynamicImportHook == nil {
				if out, cont := vm.fail(frame, &ThrownError{Value: vm.NewTypeError("modules are not supported by this build")}); !cont {
					return out
				}
				continue
			}
			frame.Regs[ops[0]] = DynamicImportHook(vm, frame.Unit, frame.Regs[ops[1]])

		// --- misc ---
		case bytecode.OpPop, bytecode.OpNop:
			// no-op at the value level; neither opcode has operands.

		// --- accessor / object-spread ops ---
		case bytecode.OpDefineGetter:
			key := frame.Chunk.PropRefs[ops[1]].Key
			if err := vm.defineAccessor(frame.Regs[ops[0]], key, frame.Regs[ops[2]], true); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
		case bytecode.OpDefineSetter:
			key := frame.Chunk.PropRefs[ops[1]].Key
			if err := vm.defineAccessor(frame.Regs[ops[0]], key, frame.Regs[ops[2]], false); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
		case bytecode.OpMergeProps:
			if err := vm.mergeProps(frame.Regs[ops[0]], frame.Regs[ops[1]]); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}
		case bytecode.OpSetProto:
			if err := vm.setProto(frame.Regs[ops[0]], frame.Regs[ops[1]]); err != nil {
				if out, cont := vm.fail(frame, err); !cont {
					return out
				}
				continue
			}

		default:
			if out, cont := vm.fail(frame, &ThrownError{Value: vm.NewTypeError("unimplemented opcode")}); !cont {
				return out
			}
			continue
		}

		frame.ip = next
	}
}

// Resume re-enters a suspended generator/async frame: internal/coro
// drives this directly rather than
// going through the ordinary call path, feeding back either the value
// passed to .next(v)/the resolved await, or a .throw(e)/rejected-await
// exception. A frame mid-yield* delegation resumes the delegation loop
// instead of the plain pendingDst writeback.
func (vm *VM) Resume(frame *Frame, resumeValue value.Value, isThrow bool) Outcome {
	if frame.yieldStar != nil {
		return vm.stepYieldStar(frame, resumeValue, isThrow)
	}
	if isThrow {
		out, cont := vm.raise(frame, resumeValue)
		if !cont {
			return out
		}
		return vm.Execute(frame)
	}
	frame.Regs[frame.pendingDst] = resumeValue
	return vm.Execute(frame)
}

// stepYieldStar drives one round of `yield*` delegation: poll
// the delegated iterator, yield its value back out if not done, or land
// the delegation's final value in its destination register and fall back
// into ordinary dispatch once it is. The resumption value sent into a
// delegated yield* is not forwarded into the inner iterator's next() call
// (it always polls with no argument) — an accepted simplification, since
// internal/object's iterator protocol helpers here don't thread a
// send-value through IteratorNext.
func (vm *VM) stepYieldStar(frame *Frame, resumeValue value.Value, isThrow bool) Outcome {
	ys := frame.yieldStar
	if isThrow {
		frame.yieldStar = nil
		vm.iteratorClose(ys.iter)
		out, cont := vm.raise(frame, resumeValue)
		if !cont {
			return out
		}
		return vm.Execute(frame)
	}
	res, err := vm.iteratorNext(ys.iter)
	if err != nil {
		frame.yieldStar = nil
		out, cont := vm.fail(frame, err)
		if !cont {
			return out
		}
		return vm.Execute(frame)
	}
	if res.done {
		frame.Regs[ys.dst] = res.value
		frame.yieldStar = nil
		return vm.Execute(frame)
	}
	return Outcome{Kind: OutcomeYield, Value: res.value}
}

func regSlice(frame *Frame, start, count uint16) []value.Value {
	if count == 0 {
		return nil
	}
	return frame.Regs[start : start+count]
}

func numOpFor(op bytecode.OpCode) numBinOp {
	switch op {
	case bytecode.OpSub:
		return opSub
	case bytecode.OpMul:
		return opMul
	case bytecode.OpDiv:
		return opDiv
	case bytecode.OpMod:
		return opMod
	default:
		return opPow
	}
}

func int32OpFor(op bytecode.OpCode) int32BinOp {
	switch op {
	case bytecode.OpBitAnd:
		return opBitAnd
	case bytecode.OpBitOr:
		return opBitOr
	case bytecode.OpBitXor:
		return opBitXor
	case bytecode.OpShl:
		return opShl
	default:
		return opShr
	}
}

// fail converts a Go error already carrying a script value (*ThrownError)
// or a plain conversion error into a dispatch-table lookup against the
// current frame's try ranges.
func (vm *VM) fail(frame *Frame, err error) (Outcome, bool) {
	return vm.raise(frame, vm.errValue(err))
}

// failCall is fail's counterpart for errors surfacing from a nested call:
// a *ThrownError from deeper in the call stack must still be matched
// against this frame's own try ranges as it propagates upward.
func (vm *VM) failCall(frame *Frame, err error) (Outcome, bool) {
	return vm.raise(frame, vm.errValue(err))
}

func (vm *VM) errValue(err error) value.Value {
	if te, ok := err.(*ThrownError); ok {
		return te.Value
	}
	return vm.toThrowable(err)
}

// raise implements exception dispatch against Chunk.TryRanges: the
// innermost range enclosing the faulting
// instruction wins. A caught exception jumps straight to its handler; an
// uncaught one detours through any enclosing finally before continuing to
// propagate (see unwindState's doc comment on pendingUnwind).
func (vm *VM) raise(frame *Frame, thrown value.Value) (Outcome, bool) {
	best := -1
	for i, tr := range frame.Chunk.TryRanges {
		if frame.ip >= tr.Start && frame.ip < tr.End {
			if best == -1 || rangeWidth(tr) < rangeWidth(frame.Chunk.TryRanges[best]) {
				best = i
			}
		}
	}
	if best == -1 {
		return Outcome{Kind: OutcomeThrow, Value: thrown}, false
	}
	tr := frame.Chunk.TryRanges[best]
	if tr.HasCatch {
		frame.Regs[tr.CatchReg] = thrown
		frame.ip = tr.HandlerPC
		return Outcome{}, true
	}
	if tr.HasFinally {
		frame.pendingUnwind = &unwindState{resumeAt: tr.FinallyEnd, isThrow: true, value: thrown}
		frame.ip = tr.FinallyPC
		return Outcome{}, true
	}
	return Outcome{Kind: OutcomeThrow, Value: thrown}, false
}

func rangeWidth(tr bytecode.TryRange) int { return tr.End - tr.Start }

// enclosingFinally finds the innermost try range with a finally clause
// enclosing ip, used by OpReturn to detour through cleanup code before a
// return takes effect (break/continue bypass this, see pendingUnwind's doc
// comment).
func (vm *VM) enclosingFinally(frame *Frame, ip int) (bytecode.TryRange, bool) {
	best := -1
	for i, tr := range frame.Chunk.TryRanges {
		if !tr.HasFinally {
			continue
		}
		if ip >= tr.Start && ip < tr.End {
			if best == -1 || rangeWidth(tr) < rangeWidth(frame.Chunk.TryRanges[best]) {
				best = i
			}
		}
	}
	if best == -1 {
		return bytecode.TryRange{}, false
	}
	return frame.Chunk.TryRanges[best], true
}

// superCall implements OpSuperCall: invokes the parent class
// constructor (found via the current frame's own constructor object's
// [[Prototype]], see Frame.ctor's doc comment) and binds the result as
// `this` for the rest of this derived constructor.
func (vm *VM) superCall(frame *Frame, args []value.Value) (value.Value, error) {
	if frame.ctor == nil {
		return value.Value{}, &ThrownError{Value: vm.NewSyntaxError("'super' keyword is only valid inside a derived class constructor")}
	}
	parentVal := frame.ctor.GetPrototypeOf()
	parent, ok := asObject(parentVal)
	if !ok || parent.Construct == nil {
		return value.Value{}, &ThrownError{Value: vm.NewTypeError("super constructor is not a constructor")}
	}
	result, err := parent.Construct(args, frame.NewTarget)
	if err != nil {
		return value.Value{}, err
	}
	fenv, ok := frame.LexEnv.(*envrec.FunctionEnv)
	for e := frame.LexEnv; !ok && e != nil; e = e.Outer() {
		fenv, ok = e.(*envrec.FunctionEnv)
	}
	if ok {
		if err := fenv.BindThisValue(result); err != nil {
			return value.Value{}, &ThrownError{Value: vm.toThrowable(err)}
		}
	}
	return result, nil
}

func (vm *VM) spreadArgs(iterable value.Value) ([]value.Value, error) {
	it, err := vm.getIterator(iterable, 0)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for {
		res, err := vm.iteratorNext(it)
		if err != nil {
			return nil, err
		}
		if res.done {
			return out, nil
		}
		out = append(out, res.value)
	}
}

func (vm *VM) spreadInto(dstVal, iterable value.Value) error {
	dst, ok := asObject(dstVal)
	if !ok {
		return &ThrownError{Value: vm.NewTypeError("spread target is not an array")}
	}
	elems, err := vm.spreadArgs(iterable)
	if err != nil {
		return err
	}
	start := dst.Length()
	for i, v := range elems {
		dst.DefineOwnProperty(object.StringKey(indexString(start+uint32(i))), object.DataDescriptor(v, true, true, true))
	}
	return nil
}

func indexString(idx uint32) string {
	if idx == 0 {
		return "0"
	}
	digits := make([]byte, 0, 10)
	for idx > 0 {
		digits = append([]byte{byte('0' + idx%10)}, digits...)
		idx /= 10
	}
	return string(digits)
}
