package codegen

import (
	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/bytecode"
)

// compileFunctionExpr lowers a function declaration or expression into a
// new entry in the shared Output.Functions table and emits OpMakeFunction
// in the enclosing chunk, leaving the closure value in a register.
func (c *Compiler) compileFunctionExpr(n *ast.FunctionLiteral) uint16 {
	child := c.newChildCompiler()
	child.inGenerator = n.IsGenerator
	child.inAsync = n.IsAsync

	child.compileParams(n.Params)
	child.hoistInto(n.Body)
	child.compileStatements(n.Body)
	child.chunk.Emit(bytecode.OpReturn, child.loadUndefined())
	child.chunk.RegNum = int(child.regs.max)

	name := "<anonymous>"
	if n.Name != nil {
		name = n.Name.Name
	}
	fn := bytecode.NewFunction(name, child.chunk, paramCount(n.Params))
	fn.HasRest = hasRestParam(n.Params)
	fn.IsGenerator = n.IsGenerator
	fn.IsAsync = n.IsAsync
	idx := c.registerFunction(fn)

	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpMakeFunction, dst, uint16(idx))
	return dst
}

// compileArrowFunction is like compileFunctionExpr but the child never
// gets its own `this`/`arguments`/`super`/new.target binding (those
// resolve lexically through the enclosing function's frame instead), and a
// concise body (`x => x + 1`) compiles to an implicit return.
func (c *Compiler) compileArrowFunction(n *ast.ArrowFunction) uint16 {
	child := c.newChildCompiler()
	child.inAsync = n.IsAsync

	child.compileParams(n.Params)
	if n.ExprBody != nil {
		val := child.compileExpression(n.ExprBody)
		child.chunk.Emit(bytecode.OpReturn, val)
	} else {
		child.hoistInto(n.Block)
		child.compileStatements(n.Block)
		child.chunk.Emit(bytecode.OpReturn, child.loadUndefined())
	}
	child.chunk.RegNum = int(child.regs.max)

	fn := bytecode.NewFunction("<arrow>", child.chunk, paramCount(n.Params))
	fn.HasRest = hasRestParam(n.Params)
	fn.IsArrow = true
	fn.IsAsync = n.IsAsync
	idx := c.registerFunction(fn)

	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpMakeFunction, dst, uint16(idx))
	return dst
}

func (c *Compiler) registerFunction(fn *bytecode.Function) int {
	c.out.Functions = append(c.out.Functions, fn)
	return len(c.out.Functions) - 1
}

func paramCount(params []ast.Param) int {
	n := 0
	for _, p := range params {
		if p.Rest {
			break
		}
		n++
	}
	return n
}

func hasRestParam(params []ast.Param) bool {
	return len(params) > 0 && params[len(params)-1].Rest
}

// compileParams binds each formal parameter from its incoming argument
// register (the calling convention is: arguments occupy registers
// 0..argc-1 of the new frame) into the function's
// top-level declarative environment, applying defaults and destructuring
// as needed. A rest parameter is always last; frame setup (internal/vm)
// collects every trailing positional argument into one array and places
// it in that parameter's register before the frame's first instruction
// runs, so codegen just binds it like any other parameter.
func (c *Compiler) compileParams(params []ast.Param) {
	// Registers 0..len(params)-1 are occupied by the incoming arguments
	// before this function's bytecode runs at all, so the temporary-
	// register allocator must not hand them out to anything else.
	if uint16(len(params)) > c.regs.top {
		c.regs.top = uint16(len(params))
		if c.regs.top > c.regs.max {
			c.regs.max = c.regs.top
		}
	}
	for i, p := range params {
		reg := uint16(i)
		if p.Rest {
			c.bindPattern(p.Target, reg, ast.DeclLet)
			continue
		}
		val := reg
		if p.Default != nil {
			useDefault := c.emitJump(bytecode.OpJumpIfNullish, val)
			after := c.emitJump(bytecode.OpJump)
			c.patchJumpHere(useDefault)
			def := c.compileExpression(p.Default)
			c.chunk.Emit(bytecode.OpMove, val, def)
			c.patchJumpHere(after)
		}
		c.bindPattern(p.Target, val, ast.DeclLet)
	}
}

// compileClassLiteral lowers a class to a sequence of object/function
// opcodes: build the prototype object, build
// the constructor function, wire [[Prototype]] both ways (instance chain
// via the superclass's prototype, static chain via the superclass itself
// for static inheritance), then install each member.
func (c *Compiler) compileClassLiteral(n *ast.ClassLiteral) uint16 {
	var superCtor uint16
	hasSuper := n.SuperClass != nil
	if hasSuper {
		superCtor = c.compileExpression(n.SuperClass)
	}

	proto := c.regs.alloc()
	c.chunk.Emit(bytecode.OpMakeObject, proto)
	if hasSuper {
		superProto := c.regs.alloc()
		c.chunk.Emit(bytecode.OpGetProp, superProto, superCtor, c.propRef("prototype", false))
		c.chunk.Emit(bytecode.OpSetProto, proto, superProto)
		c.regs.reset(superProto)
	}

	ctorReg := c.compileConstructor(n, proto, hasSuper, superCtor)
	c.chunk.Emit(bytecode.OpSetProp, ctorReg, proto, c.propRef("prototype", false))
	if hasSuper {
		c.chunk.Emit(bytecode.OpSetProto, ctorReg, superCtor)
	}

	for _, m := range n.Members {
		if m.Kind == ast.MethodConstructor {
			continue
		}
		c.compileClassMember(n, m, ctorReg, proto)
	}
	return ctorReg
}

// compileConstructor emits the constructor function: the user-written
// constructor body if one exists, or a synthesized default (one that
// forwards every argument to super() for a derived class, or an empty
// body for a base class).
func (c *Compiler) compileConstructor(n *ast.ClassLiteral, proto uint16, hasSuper bool, superCtor uint16) uint16 {
	var ctorFn *ast.FunctionLiteral
	for _, m := range n.Members {
		if m.Kind == ast.MethodConstructor {
			ctorFn = m.Value.(*ast.FunctionLiteral)
		}
	}

	child := c.newChildCompiler()
	child.inClass = true
	if ctorFn != nil {
		// Simplification: field initializers run right after parameter
		// binding rather than immediately following the explicit super()
		// call inside the body. Observable only
		// when constructor code before super() reads `this`, which is
		// itself a ReferenceError in a derived class and therefore not a
		// legal program this generator needs to match exactly.
		child.compileParams(ctorFn.Params)
		child.emitFieldInits(n)
		child.hoistInto(ctorFn.Body)
		child.compileStatements(ctorFn.Body)
	} else if hasSuper {
		// Default derived constructor: `constructor(...args) { super(...args); }`,
		// built on a synthetic rest parameter so compileParams collects the
		// incoming arguments into an array the normal way.
		syntheticParams := []ast.Param{{Target: &ast.Identifier{Name: "args"}, Rest: true}}
		child.compileParams(syntheticParams)
		argsReg := child.regs.alloc()
		child.chunk.Emit(bytecode.OpGetBinding, argsReg, child.bindingRef("args"))
		dst := child.regs.alloc()
		child.chunk.Emit(bytecode.OpConstructSpread, dst, superCtor, argsReg)
		child.emitFieldInits(n)
	} else {
		child.emitFieldInits(n)
	}
	child.chunk.Emit(bytecode.OpReturn, child.loadUndefined())
	child.chunk.RegNum = int(child.regs.max)

	name := "<class>"
	if n.Name != nil {
		name = n.Name.Name
	}
	paramCnt := 0
	hasRest := false
	switch {
	case ctorFn != nil:
		paramCnt = paramCount(ctorFn.Params)
		hasRest = hasRestParam(ctorFn.Params)
	case hasSuper:
		hasRest = true // synthetic `constructor(...args)`
	}
	fn := bytecode.NewFunction(name, child.chunk, paramCnt)
	fn.HasRest = hasRest
	fn.HomeObjectCapturing = true
	idx := c.registerFunction(fn)

	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpMakeFunction, dst, uint16(idx))
	return dst
}

// emitFieldInits compiles each non-static field's initializer against
// `this` in declaration order. compileConstructor places the call: right
// after parameter binding in an explicit constructor, after the forwarded
// parent construction in a synthesized derived constructor, or as the
// whole body of a synthesized base constructor.
func (c *Compiler) emitFieldInits(n *ast.ClassLiteral) {
	for _, m := range n.Members {
		if m.Kind != ast.FieldDefinition || m.Static {
			continue
		}
		thisReg := c.regs.alloc()
		c.chunk.Emit(bytecode.OpGetThis, thisReg)
		var val uint16
		if m.Value != nil {
			val = c.compileExpression(m.Value)
		} else {
			val = c.loadUndefined()
		}
		name, _ := c.propKeyName(m.Key)
		if m.Private {
			// Private fields are stored as ordinary properties keyed by
			// the "#name" string, through the same PropRef path as public
			// fields; internal/envrec's PrivateEnv is not consulted.
			c.chunk.Emit(bytecode.OpSetProp, thisReg, val, c.propRef(name, false))
		} else {
			c.chunk.Emit(bytecode.OpSetProp, thisReg, val, c.propRef(name, false))
		}
		c.regs.reset(thisReg)
	}
}

// compileClassMember installs one non-constructor member (method,
// accessor, static field, static block) onto the prototype or the
// constructor object depending on m.Static.
func (c *Compiler) compileClassMember(n *ast.ClassLiteral, m ast.ClassMember, ctorReg, proto uint16) {
	target := proto
	if m.Static {
		target = ctorReg
	}
	switch m.Kind {
	case ast.MethodOrdinary:
		fn := m.Value.(*ast.FunctionLiteral)
		fnReg := c.compileMethodFunction(fn)
		name, _ := c.propKeyName(m.Key)
		c.chunk.Emit(bytecode.OpSetProp, target, fnReg, c.propRef(name, false))
	case ast.MethodGetter:
		fn := m.Value.(*ast.FunctionLiteral)
		fnReg := c.compileMethodFunction(fn)
		name, _ := c.propKeyName(m.Key)
		c.chunk.Emit(bytecode.OpDefineGetter, target, c.propRef(name, false), fnReg)
	case ast.MethodSetter:
		fn := m.Value.(*ast.FunctionLiteral)
		fnReg := c.compileMethodFunction(fn)
		name, _ := c.propKeyName(m.Key)
		c.chunk.Emit(bytecode.OpDefineSetter, target, c.propRef(name, false), fnReg)
	case ast.FieldDefinition:
		if m.Static {
			var val uint16
			if m.Value != nil {
				val = c.compileExpression(m.Value)
			} else {
				val = c.loadUndefined()
			}
			name, _ := c.propKeyName(m.Key)
			c.chunk.Emit(bytecode.OpSetProp, target, val, c.propRef(name, false))
		}
		// Non-static fields are handled by emitFieldInits inside the
		// constructor.
	case ast.StaticBlock:
		child := c.newChildCompiler()
		child.hoistInto(m.Body)
		child.compileStatements(m.Body)
		child.chunk.Emit(bytecode.OpReturn, child.loadUndefined())
		child.chunk.RegNum = int(child.regs.max)
		fn := bytecode.NewFunction("<static block>", child.chunk, 0)
		idx := c.registerFunction(fn)
		fnReg := c.regs.alloc()
		c.chunk.Emit(bytecode.OpMakeFunction, fnReg, uint16(idx))
		callDst := c.regs.alloc()
		c.chunk.Emit(bytecode.OpCallMethod, callDst, ctorReg, fnReg, callDst, 0)
	}
}

// compileMethodFunction is compileFunctionExpr specialized for class
// methods: HomeObjectCapturing lets `super.x` inside the method resolve
// against the class's prototype rather than a lexically enclosing method.
func (c *Compiler) compileMethodFunction(n *ast.FunctionLiteral) uint16 {
	child := c.newChildCompiler()
	child.inGenerator = n.IsGenerator
	child.inAsync = n.IsAsync
	child.inClass = true

	child.compileParams(n.Params)
	child.hoistInto(n.Body)
	child.compileStatements(n.Body)
	child.chunk.Emit(bytecode.OpReturn, child.loadUndefined())
	child.chunk.RegNum = int(child.regs.max)

	fn := bytecode.NewFunction("<method>", child.chunk, paramCount(n.Params))
	fn.HasRest = hasRestParam(n.Params)
	fn.IsGenerator = n.IsGenerator
	fn.IsAsync = n.IsAsync
	fn.HomeObjectCapturing = true
	idx := c.registerFunction(fn)

	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpMakeFunction, dst, uint16(idx))
	return dst
}
