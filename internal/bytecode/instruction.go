// Package bytecode defines the instruction set emitted by internal/codegen
// and executed by internal/vm: a register-based encoding
// where each instruction is a variable-length tuple (opcode, operand...)
// and operands are small-integer indices — register slots in the current
// frame, or indices into one of the function's side tables (constant pool,
// binding-reference pool, property-reference pool, jump target).
//
// Architecture: register-file-per-frame, side-table-indexed operands.
// Format: [8-bit opcode][operands...], operand count and width fixed per
// opcode (see OpInfo).
package bytecode

// OpCode identifies one bytecode instruction.
type OpCode byte

const (
	// ========================================
	// Constants and registers
	// ========================================

	// OpLoadConst: R[a] = K[b]. Loads constant pool entry b into register a.
	OpLoadConst OpCode = iota
	// OpLoadUndefined: R[a] = undefined.
	OpLoadUndefined
	// OpLoadNull: R[a] = null.
	OpLoadNull
	// OpLoadTrue: R[a] = true.
	OpLoadTrue
	// OpLoadFalse: R[a] = false.
	OpLoadFalse
	// OpMove: R[a] = R[b].
	OpMove

	// ========================================
	// Environment access
	// ========================================

	// OpGetBinding: R[a] = resolve_binding(lex_env, BindingRef[b]).get().
	OpGetBinding
	// OpSetBinding: resolve_binding(lex_env, BindingRef[b]).set(R[a]).
	OpSetBinding
	// OpInitBinding: initialize BindingRef[b] in the current lexical
	// environment to R[a] (let/const/function-parameter initialization).
	OpInitBinding
	// OpPushDeclarative: push a new declarative environment as lex_env
	// (block entry, catch clause, for-loop per-iteration scope).
	OpPushDeclarative
	// OpPopEnv: pop the current lex_env back to its outer environment.
	OpPopEnv
	// OpPushWith: push an object environment (IsWith=true) over R[a].
	OpPushWith
	// OpCreateGlobalVar: declare a var-scoped binding named BindingRef[a]
	// on the running global/function var environment (hoisting).
	OpCreateGlobalVar

	// ========================================
	// Property access
	// ========================================

	// OpGetProp: R[a] = R[b].[PropRef[c]]. The PropRef's inline-cache
	// fields are not consulted.
	OpGetProp
	// OpSetProp: R[a].[PropRef[c]] = R[b].
	OpSetProp
	// OpGetPropComputed: R[a] = R[b][R[c]] (computed member access).
	OpGetPropComputed
	// OpSetPropComputed: R[a][R[b]] = R[c].
	OpSetPropComputed
	// OpDeleteProp: R[a] = delete R[b].[PropRef[c]].
	OpDeleteProp
	// OpDeletePropComputed: R[a] = delete R[b][R[c]].
	OpDeletePropComputed
	// OpGetSuperProp: R[a] = super.[PropRef[b]] using the current frame's
	// home-object prototype as the lookup start and `this` as receiver.
	OpGetSuperProp
	// OpSetSuperProp: super.[PropRef[b]] = R[a].

	OpSetSuperProp

	// ========================================
	// Arithmetic / bitwise / comparison (ToNumeric-based)
	// ========================================

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpNeg
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr
	OpUShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpStrictEq
	OpStrictNeq
	OpLooseEq
	OpLooseNeq
	OpNot
	OpTypeof
	OpInstanceOf
	OpIn

	// ========================================
	// Control flow
	// ========================================

	// OpJump: ip += offset (signed, relative).
	OpJump
	// OpJumpIfFalse: if !ToBoolean(R[a]) then ip += offset.
	OpJumpIfFalse
	// OpJumpIfTrue: if ToBoolean(R[a]) then ip += offset.
	OpJumpIfTrue
	// OpJumpIfNullish: if R[a] is null/undefined then ip += offset (used
	// for optional-chaining short-circuit (`?.`).
	OpJumpIfNullish

	// ========================================
	// Functions / calls / this
	// ========================================

	// OpMakeFunction: R[a] = new closure over FunctionProto[b] capturing
	// the current lex_env.
	OpMakeFunction
	// OpCall: R[a] = call R[b](R[c]..R[c+argc-1]) with this = undefined.
	OpCall
	// OpCallMethod: R[a] = call R[c](R[d]..R[d+argc-1]) with this = R[b].
	// Emitted for any callee the compiler can see needs a receiver other
	// than undefined: obj.method(), obj[key](), and a handful of runtime
	// helpers that otherwise would have needed OpCall plus a separate
	// this-binding instruction.
	OpCallMethod
	// OpConstruct: R[a] = new R[b](R[c]..) with new_target = R[b].
	OpConstruct
	// OpReturn: return R[a] from the current frame (normal completion).
	OpReturn
	// OpThrow: throw R[a] (abrupt completion propagated to the nearest
	// handler in the try-table, or out of the frame).
	OpThrow
	// OpGetThis: R[a] = GetThisBinding() (may raise ReferenceError in a
	// derived-class constructor before super() runs).
	OpGetThis
	// OpGetNewTarget: R[a] = new_target of the current frame.
	OpGetNewTarget
	// OpSuperCall: call the parent class constructor with arguments
	// R[b]..R[b+argc-1]; binds `this` for the current frame on return.
	OpSuperCall
	// OpMakeArray: R[a] = new array from R[b]..R[b+c-1].
	OpMakeArray
	// OpMakeObject: R[a] = new ordinary object.
	OpMakeObject
	// OpSpread: append the iterable R[b]'s elements to the in-progress
	// array/arglist being built in R[a].
	OpSpread

	// ========================================
	// Iteration / generators / async
	// ========================================

	// OpGetIterator: R[a] = GetIterator(R[b]); operand c picks the kind:
	// 0 sync, 1 async, 2 for-in key enumeration.
	OpGetIterator
	// OpIteratorNext: call IteratorNext(R[a]), stashing the IteratorResult
	// as the frame's "current iterator result" for the OpIteratorValue/
	// OpIteratorDone that follow it.
	OpIteratorNext
	// OpIteratorValue: R[a] = current iterator result's .value.
	OpIteratorValue
	// OpIteratorDone: R[a] = ToBoolean(current iterator result's .done).
	OpIteratorDone
	// OpIteratorClose: call IteratorClose(R[a]) (loop early-exit cleanup).
	OpIteratorClose
	// OpYield: suspend the current generator frame, yielding R[b]; the
	// value sent in on resumption lands in R[a]. The frame's context cell
	// is kept alive across this opcode returning from the dispatch loop
	// (the freeze-on-yield protocol).
	OpYield
	// OpYieldStar: delegate yielding to the iterable R[b] (yield*); the
	// delegation's final value lands in R[a].
	OpYieldStar
	// OpAwait: suspend the current async frame awaiting R[b]; resumes via
	// the job queue once the awaited promise settles, with the settled
	// value in R[a].
	OpAwait

	// ========================================
	// Modules
	// ========================================

	// OpGetModuleNamespace: R[a] = namespace object for ModuleRef[b].
	OpGetModuleNamespace
	// OpImportMeta: R[a] = import.meta for the current module.
	OpImportMeta
	// OpDynamicImport: R[a] = a promise for the dynamic import() of
	// module specifier R[b].
	OpDynamicImport

	// ========================================
	// Misc
	// ========================================

	// OpPop takes no operands; the VM executes it as a no-op, like OpNop.
	OpPop
	// OpNop is a no-op.
	OpNop

	// ========================================
	// Spread calls (internal/codegen's lowering of `f(...args)`/
	// `new C(...args)`, where the argument list isn't known to be a fixed
	// contiguous register run at compile time)
	// ========================================

	// OpCallSpread: R[a] = R[b](...iterate R[c]) with this = undefined.
	OpCallSpread
	// OpCallMethodSpread: R[a] = R[c](...iterate R[d]) with this = R[b]
	// (the spread-argument counterpart of OpCallMethod).
	OpCallMethodSpread
	// OpConstructSpread: R[a] = new R[b](...iterate R[c]).
	OpConstructSpread

	// ========================================
	// Accessor properties and object/rest spread (the property
	// descriptor covers accessor pairs; §6.2 puts getters/setters and
	// object/array rest in scope, but the data-property OpSetProp/
	// OpSpread opcodes above don't model either shape)
	// ========================================

	// OpDefineGetter: install R[c] as the [[Get]] of PropRef[b] on R[a].
	OpDefineGetter
	// OpDefineSetter: install R[c] as the [[Set]] of PropRef[b] on R[a].
	OpDefineSetter
	// OpMergeProps: copy every own enumerable string-keyed property of
	// R[b] onto R[a] (object spread `{...src}` and object-rest-pattern
	// collection, which first merges then OpDeleteProp's the keys already
	// destructured elsewhere).
	OpMergeProps
	// OpSetProto: set [[Prototype]] of R[a] to R[b] (class declarations
	// wire up the prototype chain and the static inheritance chain this
	// way instead of through a single combined "make class" opcode).
	OpSetProto

	opCodeCount
)

// OpInfo describes an opcode's operand shape for the disassembler and the
// code generator's instruction-length bookkeeping.
type OpInfo struct {
	Name      string
	NumOperands int
}

var opInfo = [opCodeCount]OpInfo{
	OpLoadConst:          {"LoadConst", 2},
	OpLoadUndefined:      {"LoadUndefined", 1},
	OpLoadNull:           {"LoadNull", 1},
	OpLoadTrue:           {"LoadTrue", 1},
	OpLoadFalse:          {"LoadFalse", 1},
	OpMove:               {"Move", 2},
	OpGetBinding:         {"GetBinding", 2},
	OpSetBinding:         {"SetBinding", 2},
	OpInitBinding:        {"InitBinding", 2},
	OpPushDeclarative:    {"PushDeclarative", 0},
	OpPopEnv:             {"PopEnv", 0},
	OpPushWith:           {"PushWith", 1},
	OpCreateGlobalVar:    {"CreateGlobalVar", 1},
	OpGetProp:            {"GetProp", 3},
	OpSetProp:            {"SetProp", 3},
	OpGetPropComputed:    {"GetPropComputed", 3},
	OpSetPropComputed:    {"SetPropComputed", 3},
	OpDeleteProp:         {"DeleteProp", 3},
	OpDeletePropComputed: {"DeletePropComputed", 3},
	OpGetSuperProp:       {"GetSuperProp", 2},
	OpSetSuperProp:       {"SetSuperProp", 2},
	OpAdd:                {"Add", 3},
	OpSub:                {"Sub", 3},
	OpMul:                {"Mul", 3},
	OpDiv:                {"Div", 3},
	OpMod:                {"Mod", 3},
	OpPow:                {"Pow", 3},
	OpNeg:                {"Neg", 2},
	OpBitAnd:             {"BitAnd", 3},
	OpBitOr:              {"BitOr", 3},
	OpBitXor:             {"BitXor", 3},
	OpBitNot:             {"BitNot", 2},
	OpShl:                {"Shl", 3},
	OpShr:                {"Shr", 3},
	OpUShr:               {"UShr", 3},
	OpLt:                 {"Lt", 3},
	OpLe:                 {"Le", 3},
	OpGt:                 {"Gt", 3},
	OpGe:                 {"Ge", 3},
	OpStrictEq:           {"StrictEq", 3},
	OpStrictNeq:          {"StrictNeq", 3},
	OpLooseEq:            {"LooseEq", 3},
	OpLooseNeq:           {"LooseNeq", 3},
	OpNot:                {"Not", 2},
	OpTypeof:             {"Typeof", 2},
	OpInstanceOf:         {"InstanceOf", 3},
	OpIn:                 {"In", 3},
	OpJump:               {"Jump", 1},
	OpJumpIfFalse:        {"JumpIfFalse", 2},
	OpJumpIfTrue:         {"JumpIfTrue", 2},
	OpJumpIfNullish:      {"JumpIfNullish", 2},
	OpMakeFunction:       {"MakeFunction", 2},
	OpCall:               {"Call", 4},
	OpCallMethod:         {"CallMethod", 5},
	OpConstruct:          {"Construct", 4},
	OpReturn:             {"Return", 1},
	OpThrow:              {"Throw", 1},
	OpGetThis:            {"GetThis", 1},
	OpGetNewTarget:       {"GetNewTarget", 1},
	OpSuperCall:          {"SuperCall", 3},
	OpMakeArray:          {"MakeArray", 3},
	OpMakeObject:         {"MakeObject", 1},
	OpSpread:             {"Spread", 2},
	OpGetIterator:        {"GetIterator", 3},
	OpIteratorNext:       {"IteratorNext", 1},
	OpIteratorValue:      {"IteratorValue", 1},
	OpIteratorDone:       {"IteratorDone", 1},
	OpIteratorClose:      {"IteratorClose", 1},
	OpYield:              {"Yield", 2},
	OpYieldStar:          {"YieldStar", 2},
	OpAwait:              {"Await", 2},
	OpGetModuleNamespace: {"GetModuleNamespace", 2},
	OpImportMeta:         {"ImportMeta", 1},
	OpDynamicImport:      {"DynamicImport", 2},
	OpPop:                {"Pop", 0},
	OpNop:                {"Nop", 0},
	OpCallSpread:         {"CallSpread", 3},
	OpCallMethodSpread:   {"CallMethodSpread", 4},
	OpConstructSpread:    {"ConstructSpread", 3},
	OpDefineGetter:       {"DefineGetter", 3},
	OpDefineSetter:       {"DefineSetter", 3},
	OpMergeProps:         {"MergeProps", 2},
	OpSetProto:           {"SetProto", 2},
}

func (op OpCode) String() string {
	if int(op) < len(opInfo) && opInfo[op].Name != "" {
		return opInfo[op].Name
	}
	return "UNKNOWN"
}

// NumOperands returns how many 16-bit operand words follow op in the
// instruction stream.
func (op OpCode) NumOperands() int { return opInfo[op].NumOperands }
