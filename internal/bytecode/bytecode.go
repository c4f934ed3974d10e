package bytecode

import "github.com/vesper-lang/vesper/internal/value"

// BindingRef is one entry in a function's binding-reference pool: the
// binding's name only. No scope depth is recorded at compile time;
// resolve_binding walks the live environment chain by name.
type BindingRef struct {
	Name string
}

// PropRef is one entry in a function's property-reference table: the
// property key plus a mutable inline-cache slot the interpreter may
// populate with a (shape id, storage slot) pair (the "implementations
// are free to attach an inline cache behind that entry").
type PropRef struct {
	Key        string
	IsComputed bool
	CacheShape uint64
	CacheSlot  int
}

// BindingGroup names the bindings a block/function scope declares. The
// code generator does not fill Chunk.BindingGroups: a block's bindings
// are created one by one by OpInitBinding after OpPushDeclarative.
type BindingGroup struct {
	Names     []string
	Immutable []bool
}

// FunctionDeclGroup lists the function declarations hoisted to the top of
// a block (the function-hoisting semantics): each entry is an
// index into the enclosing chunk's Functions table.
type FunctionDeclGroup struct {
	FunctionIndices []int
}

// PrivateEnvEntry names one private field/method/accessor declared by a
// class body, resolved against internal/envrec.PrivateEnv at class
// evaluation time.
type PrivateEnvEntry struct {
	Name string
	Kind int // mirrors envrec.PrivateKind without importing envrec (avoids a cycle)
}

// LineInfo maps an index into the Code word slice to a source position,
// run-length encoded: InstrOffset is where this entry starts applying,
// valid until the next entry's InstrOffset.
type LineInfo struct {
	InstrOffset int
	Line        int
	Column      int
}

// TryRange marks one try block's protected instruction range: an abrupt
// completion (OpThrow, or an uncaught exception in a callee) raised with
// Start <= ip < End transfers control to HandlerPC when HasCatch, or
// simply unwinds through (running the matching finally, which the code
// generator compiles inline after the catch) when it doesn't. Completion
// is unwound via ranges, recorded per go-dws's protected-range table
// rather than push/pop-handler opcodes.
type TryRange struct {
	Start      int
	End        int
	HandlerPC  int
	CatchReg   uint16 // register the VM stores the thrown value into before jumping to HandlerPC
	HasCatch   bool
	FinallyPC  int
	FinallyEnd int // instruction offset right after the compiled finally block
	HasFinally bool
}

// Chunk is one function's compiled bytecode plus its side tables.
// Instructions are tightly packed opcode+operand uint16 words;
// Code[ip] is always an opcode, and NumOperands(OpCode(Code[ip])) operand
// words follow it.
type Chunk struct {
	Code      []uint16
	Constants []value.Value

	Bindings       []BindingRef
	BindingGroups  []BindingGroup
	FuncDeclGroups []FunctionDeclGroup
	PropRefs       []PropRef
	PrivateEnvs    []PrivateEnvEntry
	Lines          []LineInfo
	TryRanges      []TryRange

	RegNum int // size of the register file this function's frames need
}

// NewChunk allocates an empty chunk.
func NewChunk() *Chunk { return &Chunk{} }

// AddConstant interns v in the constant pool (no dedup: codegen is
// responsible for reusing indices for identical literals when it matters).
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

func (c *Chunk) AddBinding(name string) int {
	c.Bindings = append(c.Bindings, BindingRef{Name: name})
	return len(c.Bindings) - 1
}

func (c *Chunk) AddPropRef(key string, computed bool) int {
	c.PropRefs = append(c.PropRefs, PropRef{Key: key, IsComputed: computed, CacheSlot: -1})
	return len(c.PropRefs) - 1
}

// Emit appends an opcode and its operand words, returning the instruction
// offset (used by the code generator for backpatching jump targets).
func (c *Chunk) Emit(op OpCode, operands ...uint16) int {
	offset := len(c.Code)
	c.Code = append(c.Code, uint16(op))
	c.Code = append(c.Code, operands...)
	return offset
}

// PatchJumpOperand overwrites one operand word of the instruction at
// instrOffset once the target is known (operandIndex is 0-based among
// that instruction's operand words, not counting the opcode itself).
func (c *Chunk) PatchJumpOperand(instrOffset int, operandIndex int, value uint16) {
	c.Code[instrOffset+1+operandIndex] = value
}

// PosAt returns the source line/column recorded for the instruction at ip,
// scanning the run-length-encoded Lines table.
func (c *Chunk) PosAt(ip int) (line, column int) {
	for _, li := range c.Lines {
		if li.InstrOffset > ip {
			break
		}
		line, column = li.Line, li.Column
	}
	return
}

// Function is a compiled function prototype: its chunk plus calling
// metadata. Closures are created at runtime (OpMakeFunction) by pairing a
// Function with a captured lexical environment — see internal/vm.
type Function struct {
	Chunk               *Chunk
	Name                string
	ParamCount          int
	HasRest             bool
	IsArrow             bool
	IsGenerator         bool
	IsAsync             bool
	HomeObjectCapturing bool // methods capture [[HomeObject]] for super
}

func NewFunction(name string, chunk *Chunk, paramCount int) *Function {
	return &Function{Name: name, Chunk: chunk, ParamCount: paramCount}
}
