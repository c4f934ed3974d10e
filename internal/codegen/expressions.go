package codegen

import (
	"strconv"

	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/value"
)

var binaryOps = map[string]bytecode.OpCode{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul,
	"/": bytecode.OpDiv, "%": bytecode.OpMod, "**": bytecode.OpPow,
	"&": bytecode.OpBitAnd, "|": bytecode.OpBitOr, "^": bytecode.OpBitXor,
	"<<": bytecode.OpShl, ">>": bytecode.OpShr, ">>>": bytecode.OpUShr,
	"<": bytecode.OpLt, "<=": bytecode.OpLe, ">": bytecode.OpGt, ">=": bytecode.OpGe,
	"===": bytecode.OpStrictEq, "!==": bytecode.OpStrictNeq,
	"==": bytecode.OpLooseEq, "!=": bytecode.OpLooseNeq,
	"instanceof": bytecode.OpInstanceOf, "in": bytecode.OpIn,
}

// compoundAssignOps maps `+=`-family operators to the binary op they
// desugar to (`target op= value` is `target = target op value`
// except for the logical-assignment family, handled separately since
// those short-circuit).
var compoundAssignOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%", "**=": "**",
	"&=": "&", "|=": "|", "^=": "^", "<<=": "<<", ">>=": ">>", ">>>=": ">>>",
}

// compileExpression lowers e, leaving its value in a newly allocated
// register (registers are purely expression temporaries).
func (c *Compiler) compileExpression(e ast.Expression) uint16 {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadConst, r, uint16(c.chunk.AddConstant(value.Num(n.Value))))
		return r
	case *ast.BigIntLiteral:
		// TODO(bigint): internal/value/internal/gc have no bigint cell
		// representation yet; until the GC's bigint allocation path
		// exists, load the nearest float64 approximation so expressions
		// referencing a bigint literal still compile and run.
		f, _ := strconv.ParseFloat(n.Value, 64)
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadConst, r, uint16(c.chunk.AddConstant(value.Num(f))))
		return r
	case *ast.StringLiteral:
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadConst, r, uint16(c.chunk.AddConstant(value.Str(n.Value))))
		return r
	case *ast.BooleanLiteral:
		r := c.regs.alloc()
		if n.Value {
			c.chunk.Emit(bytecode.OpLoadTrue, r)
		} else {
			c.chunk.Emit(bytecode.OpLoadFalse, r)
		}
		return r
	case *ast.NullLiteral:
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadNull, r)
		return r
	case *ast.RegexLiteral:
		// Regex object construction is a narrow out-of-scope collaborator
		// ("a conformant regexp engine" is explicitly not core
		// engine scope); codegen records pattern/flags as a string
		// constant for a host-supplied regex factory to consume.
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadConst, r, uint16(c.chunk.AddConstant(value.Str(n.Pattern+"\x00"+n.Flags))))
		return r
	case *ast.Identifier:
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpGetBinding, r, c.bindingRef(n.Name))
		return r
	case *ast.ThisExpression:
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpGetThis, r)
		return r
	case *ast.TemplateLiteral:
		return c.compileTemplateLiteral(n)
	case *ast.TaggedTemplate:
		return c.compileTaggedTemplate(n)
	case *ast.ArrayLiteral:
		return c.compileArrayLiteral(n)
	case *ast.ObjectLiteral:
		return c.compileObjectLiteral(n)
	case *ast.FunctionLiteral:
		return c.compileFunctionExpr(n)
	case *ast.ArrowFunction:
		return c.compileArrowFunction(n)
	case *ast.ClassLiteral:
		return c.compileClassLiteral(n)
	case *ast.UnaryExpression:
		return c.compileUnaryExpression(n)
	case *ast.UpdateExpression:
		return c.compileUpdateExpression(n)
	case *ast.BinaryExpression:
		return c.compileBinaryExpression(n)
	case *ast.LogicalExpression:
		return c.compileLogicalExpression(n)
	case *ast.AssignmentExpression:
		return c.compileAssignmentExpression(n)
	case *ast.ConditionalExpression:
		return c.compileConditionalExpression(n)
	case *ast.CallExpression:
		return c.compileCallExpression(n)
	case *ast.NewExpression:
		return c.compileNewExpression(n)
	case *ast.MemberExpression:
		return c.compileMemberExpression(n, false)
	case *ast.SequenceExpression:
		var r uint16
		for _, sub := range n.Expressions {
			mark := c.regs.mark()
			r = c.compileExpression(sub)
			if sub != n.Expressions[len(n.Expressions)-1] {
				c.regs.reset(mark)
			}
		}
		return r
	case *ast.YieldExpression:
		return c.compileYieldExpression(n)
	case *ast.AwaitExpression:
		arg := c.compileExpression(n.Argument)
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpAwait, r, arg)
		return r
	case *ast.MetaProperty:
		r := c.regs.alloc()
		if n.Meta == "new" {
			c.chunk.Emit(bytecode.OpGetNewTarget, r)
		} else {
			c.chunk.Emit(bytecode.OpImportMeta, r)
		}
		return r
	case *ast.SpreadElement:
		// Only reachable if a caller forgot to special-case spread inside
		// its argument/element list; every legal position handles
		// SpreadElement itself before recursing into compileExpression.
		c.fail("unexpected bare spread element at %v", n.Pos())
	}
	c.fail("codegen: unsupported expression node %T", e)
	return 0
}

func (c *Compiler) compileTemplateLiteral(n *ast.TemplateLiteral) uint16 {
	acc := c.regs.alloc()
	c.chunk.Emit(bytecode.OpLoadConst, acc, uint16(c.chunk.AddConstant(value.Str(n.Quasis[0].Cooked))))
	for i, expr := range n.Expressions {
		mark := c.regs.mark()
		exprReg := c.compileExpression(expr)
		sum := c.regs.alloc()
		// String + anything coerces via ToPrimitive/ToString per the `+`
		// operator's algebra, so chaining OpAdd performs the join.
		c.chunk.Emit(bytecode.OpAdd, sum, acc, exprReg)
		acc = sum
		c.regs.reset(mark)
		acc = c.carryAcrossReset(acc, mark)
		quasi := n.Quasis[i+1]
		if quasi.Cooked != "" || quasi.Tail {
			strReg := c.regs.alloc()
			c.chunk.Emit(bytecode.OpLoadConst, strReg, uint16(c.chunk.AddConstant(value.Str(quasi.Cooked))))
			joined := c.regs.alloc()
			c.chunk.Emit(bytecode.OpAdd, joined, acc, strReg)
			acc = joined
		}
	}
	return acc
}

// carryAcrossReset re-homes a value that must survive a register-mark
// reset: since this compiler never reuses registers out of allocation
// order, a value computed above the reset mark is simply moved down to
// the mark via OpMove so the freed range can be reused by later siblings
// without clobbering it.
func (c *Compiler) carryAcrossReset(reg uint16, mark uint16) uint16 {
	if reg < mark {
		return reg
	}
	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpMove, dst, reg)
	return dst
}

func (c *Compiler) compileTaggedTemplate(n *ast.TaggedTemplate) uint16 {
	thisReg := uint16(0)
	hasThis := false
	var tagReg uint16
	if m, ok := n.Tag.(*ast.MemberExpression); ok && !m.Optional {
		thisReg = c.compileExpression(m.Object)
		hasThis = true
		if m.Computed {
			keyReg := c.compileExpression(m.Property)
			tagReg = c.regs.alloc()
			c.chunk.Emit(bytecode.OpGetPropComputed, tagReg, thisReg, keyReg)
		} else {
			name, _ := c.propKeyName(m.Property)
			tagReg = c.regs.alloc()
			c.chunk.Emit(bytecode.OpGetProp, tagReg, thisReg, c.propRef(name, false))
		}
	} else {
		tagReg = c.compileExpression(n.Tag)
	}
	stringsStart := c.regs.top
	for _, q := range n.Template.Quasis {
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadConst, r, uint16(c.chunk.AddConstant(value.Str(q.Cooked))))
	}
	stringsArr := c.regs.alloc()
	c.chunk.Emit(bytecode.OpMakeArray, stringsArr, stringsStart, uint16(len(n.Template.Quasis)))

	// stringsArr is itself the first call argument; since every argument
	// register so far was allocated in order with no reset in between,
	// stringsArr..top-1 is already the contiguous argument run OpCall
	// expects once the substitutions are appended.
	argc := uint16(1)
	for _, sub := range n.Template.Expressions {
		c.compileExpression(sub)
		argc++
	}
	dst := c.regs.alloc()
	if hasThis {
		c.chunk.Emit(bytecode.OpCallMethod, dst, thisReg, tagReg, stringsArr, argc)
	} else {
		c.chunk.Emit(bytecode.OpCall, dst, tagReg, stringsArr, argc)
	}
	return dst
}

// compileArrayLiteral builds an empty array then appends each element's
// value (wrapping a contiguous non-spread run in its own OpMakeArray and
// merging it in via OpSpread) so a literal spread can appear anywhere in
// the element list (the array spread).
func (c *Compiler) compileArrayLiteral(n *ast.ArrayLiteral) uint16 {
	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpMakeArray, dst, dst, 0)

	i := 0
	for i < len(n.Elements) {
		if spread, ok := n.Elements[i].(*ast.SpreadElement); ok {
			mark := c.regs.mark()
			val := c.compileExpression(spread.Argument)
			c.chunk.Emit(bytecode.OpSpread, dst, val)
			c.regs.reset(mark)
			i++
			continue
		}
		runStart := c.regs.top
		runCount := uint16(0)
		for i < len(n.Elements) {
			if _, ok := n.Elements[i].(*ast.SpreadElement); ok {
				break
			}
			if n.Elements[i] == nil {
				r := c.regs.alloc()
				c.chunk.Emit(bytecode.OpLoadUndefined, r)
			} else {
				c.compileExpression(n.Elements[i])
			}
			runCount++
			i++
		}
		mark := c.regs.mark()
		runArr := c.regs.alloc()
		c.chunk.Emit(bytecode.OpMakeArray, runArr, runStart, runCount)
		c.chunk.Emit(bytecode.OpSpread, dst, runArr)
		c.regs.reset(mark)
	}
	return dst
}

func (c *Compiler) propKeyName(key ast.Expression) (string, bool) {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name, false
	case *ast.PrivateIdentifier:
		return "#" + k.Name, false
	case *ast.StringLiteral:
		return k.Value, false
	case *ast.NumberLiteral:
		return value.NumberToString(k.Value), false
	}
	return "", true
}

func (c *Compiler) compileObjectLiteral(n *ast.ObjectLiteral) uint16 {
	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpMakeObject, dst)

	for _, p := range n.Properties {
		mark := c.regs.mark()
		switch p.Kind {
		case ast.PropertySpread:
			src := c.compileExpression(p.Value)
			c.chunk.Emit(bytecode.OpMergeProps, dst, src)
		case ast.PropertyGet, ast.PropertySet:
			if p.Computed {
				// OpDefineGetter/OpDefineSetter key off a compile-time
				// PropRef; a computed accessor name (`{ [expr]() {} }`)
				// has no such constant. Left unsupported pending a
				// register-keyed accessor-definition opcode.
				c.fail("codegen: computed accessor property names are not yet supported")
			}
			name, _ := c.propKeyName(p.Key)
			fn := p.Value.(*ast.FunctionLiteral)
			fnReg := c.compileFunctionExpr(fn)
			ref := c.propRef(name, false)
			if p.Kind == ast.PropertyGet {
				c.chunk.Emit(bytecode.OpDefineGetter, dst, ref, fnReg)
			} else {
				c.chunk.Emit(bytecode.OpDefineSetter, dst, ref, fnReg)
			}
		default: // PropertyInit / PropertyMethod, shorthand or not
			if p.Computed {
				keyReg := c.compileExpression(p.Key)
				valReg := c.compileExpression(p.Value)
				c.chunk.Emit(bytecode.OpSetPropComputed, dst, keyReg, valReg)
			} else {
				name, _ := c.propKeyName(p.Key)
				var valReg uint16
				if p.Shorthand {
					valReg = c.regs.alloc()
					c.chunk.Emit(bytecode.OpGetBinding, valReg, c.bindingRef(name))
				} else {
					valReg = c.compileExpression(p.Value)
				}
				c.chunk.Emit(bytecode.OpSetProp, dst, valReg, c.propRef(name, false))
			}
		}
		c.regs.reset(mark)
	}
	return dst
}

func (c *Compiler) compileUnaryExpression(n *ast.UnaryExpression) uint16 {
	if n.Operator == "delete" {
		if m, ok := n.Argument.(*ast.MemberExpression); ok {
			return c.compileDeleteMember(m)
		}
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadTrue, r)
		return r
	}
	if n.Operator == "void" {
		mark := c.regs.mark()
		c.compileExpression(n.Argument)
		c.regs.reset(mark)
		r := c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadUndefined, r)
		return r
	}
	arg := c.compileExpression(n.Argument)
	dst := c.regs.alloc()
	switch n.Operator {
	case "!":
		c.chunk.Emit(bytecode.OpNot, dst, arg)
	case "~":
		c.chunk.Emit(bytecode.OpBitNot, dst, arg)
	case "-":
		c.chunk.Emit(bytecode.OpNeg, dst, arg)
	case "+":
		// Unary plus is ToNumber; there's no single-operand ToNumber
		// opcode, so synthesize it as `arg - 0`'s numeric coercion (Sub
		// coerces both sides to numeric before subtracting).
		zero := c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadConst, zero, uint16(c.chunk.AddConstant(value.Num(0))))
		c.chunk.Emit(bytecode.OpSub, dst, arg, zero)
	case "typeof":
		c.chunk.Emit(bytecode.OpTypeof, dst, arg)
	default:
		c.fail("codegen: unsupported unary operator %q", n.Operator)
	}
	return dst
}

func (c *Compiler) compileDeleteMember(m *ast.MemberExpression) uint16 {
	objReg := c.compileExpression(m.Object)
	dst := c.regs.alloc()
	if m.Computed {
		keyReg := c.compileExpression(m.Property)
		c.chunk.Emit(bytecode.OpDeletePropComputed, dst, objReg, keyReg)
	} else {
		name, _ := c.propKeyName(m.Property)
		c.chunk.Emit(bytecode.OpDeleteProp, dst, objReg, c.propRef(name, false))
	}
	return dst
}

func (c *Compiler) compileUpdateExpression(n *ast.UpdateExpression) uint16 {
	old := c.compileExpression(n.Argument)
	one := c.regs.alloc()
	c.chunk.Emit(bytecode.OpLoadConst, one, uint16(c.chunk.AddConstant(value.Num(1))))
	updated := c.regs.alloc()
	if n.Operator == "++" {
		c.chunk.Emit(bytecode.OpAdd, updated, old, one)
	} else {
		c.chunk.Emit(bytecode.OpSub, updated, old, one)
	}
	c.compileAssignTo(n.Argument, updated)
	if n.Prefix {
		return updated
	}
	return old
}

func (c *Compiler) compileBinaryExpression(n *ast.BinaryExpression) uint16 {
	left := c.compileExpression(n.Left)
	right := c.compileExpression(n.Right)
	dst := c.regs.alloc()
	op, ok := binaryOps[n.Operator]
	if !ok {
		c.fail("codegen: unsupported binary operator %q", n.Operator)
	}
	c.chunk.Emit(op, dst, left, right)
	return dst
}

// compileLogicalExpression short-circuits: `&&`/`||`/`??` must not
// evaluate Right unless Left's truthiness (or nullishness, for `??`)
// requires it.
func (c *Compiler) compileLogicalExpression(n *ast.LogicalExpression) uint16 {
	left := c.compileExpression(n.Left)
	var skip int
	switch n.Operator {
	case "&&":
		skip = c.emitJump(bytecode.OpJumpIfFalse, left)
	case "||":
		skip = c.emitJump(bytecode.OpJumpIfTrue, left)
	case "??":
		skip = c.emitJump(bytecode.OpJumpIfNullish, left)
	default:
		c.fail("codegen: unsupported logical operator %q", n.Operator)
	}
	c.regs.reset(left)
	right := c.compileExpression(n.Right)
	result := c.carryAcrossReset(right, left)
	// Make left itself the result when short-circuited: move it down to
	// the same register `right`'s path leaves its answer in.
	afterRight := c.emitJump(bytecode.OpJump)
	c.patchJumpHere(skip)
	if left != result {
		c.chunk.Emit(bytecode.OpMove, result, left)
	}
	c.patchJumpHere(afterRight)
	return result
}

func (c *Compiler) compileConditionalExpression(n *ast.ConditionalExpression) uint16 {
	test := c.compileExpression(n.Test)
	elseJump := c.emitJump(bytecode.OpJumpIfFalse, test)
	c.regs.reset(test)
	thenVal := c.compileExpression(n.Consequent)
	result := c.carryAcrossReset(thenVal, test)
	doneJump := c.emitJump(bytecode.OpJump)
	c.patchJumpHere(elseJump)
	c.regs.reset(test)
	elseVal := c.compileExpression(n.Alternate)
	if elseVal != result {
		c.chunk.Emit(bytecode.OpMove, result, elseVal)
	}
	c.patchJumpHere(doneJump)
	return result
}

func (c *Compiler) compileAssignmentExpression(n *ast.AssignmentExpression) uint16 {
	if n.Operator == "=" {
		val := c.compileExpression(n.Value)
		c.compileAssignTo(n.Target, val)
		return val
	}
	if bin, ok := compoundAssignOps[n.Operator]; ok {
		cur := c.compileExpression(n.Target)
		rhs := c.compileExpression(n.Value)
		dst := c.regs.alloc()
		c.chunk.Emit(binaryOps[bin], dst, cur, rhs)
		c.compileAssignTo(n.Target, dst)
		return dst
	}
	// Logical-assignment family (`&&=`, `||=`, `??=`): short-circuit, only
	// assigning (and evaluating the RHS at all) when the guard passes.
	// `??=` assigns exactly when the current value IS nullish, the
	// opposite polarity of `&&=`/`||=`'s truthy/falsy guards, so there is
	// no single opcode to skip on; it jumps TO the assignment instead of
	// away from it.
	cur := c.compileExpression(n.Target)
	if n.Operator == "??=" {
		doAssign := c.emitJump(bytecode.OpJumpIfNullish, cur)
		skip := c.emitJump(bytecode.OpJump)
		c.patchJumpHere(doAssign)
		rhs := c.compileExpression(n.Value)
		c.compileAssignTo(n.Target, rhs)
		result := c.carryAcrossReset(rhs, cur)
		done := c.emitJump(bytecode.OpJump)
		c.patchJumpHere(skip)
		if cur != result {
			c.chunk.Emit(bytecode.OpMove, result, cur)
		}
		c.patchJumpHere(done)
		return result
	}
	var skip int
	switch n.Operator {
	case "&&=":
		skip = c.emitJump(bytecode.OpJumpIfFalse, cur)
	case "||=":
		skip = c.emitJump(bytecode.OpJumpIfTrue, cur)
	default:
		c.fail("codegen: unsupported assignment operator %q", n.Operator)
	}
	rhs := c.compileExpression(n.Value)
	c.compileAssignTo(n.Target, rhs)
	result := c.carryAcrossReset(rhs, cur)
	done := c.emitJump(bytecode.OpJump)
	c.patchJumpHere(skip)
	if cur != result {
		c.chunk.Emit(bytecode.OpMove, result, cur)
	}
	c.patchJumpHere(done)
	return result
}

// compileAssignTo stores val into target, which is either a plain
// reference (Identifier/MemberExpression) or a destructuring pattern
// (ArrayPattern/ObjectPattern, reached from `[a, b] = rhs` assignment
// expressions parsed via the cover-grammar reinterpretation in
// internal/parser).
func (c *Compiler) compileAssignTo(target ast.Expression, val uint16) {
	switch t := target.(type) {
	case *ast.Identifier:
		if c.declKindActive {
			c.bindPattern(t, val, c.declKind)
			return
		}
		c.chunk.Emit(bytecode.OpSetBinding, val, c.bindingRef(t.Name))
	case *ast.MemberExpression:
		if _, ok := t.Object.(*ast.SuperExpression); ok {
			if t.Computed {
				c.fail("codegen: computed super property assignment is not supported")
			}
			name, _ := c.propKeyName(t.Property)
			c.chunk.Emit(bytecode.OpSetSuperProp, val, c.propRef(name, false))
			return
		}
		objReg := c.compileExpression(t.Object)
		if t.Computed {
			keyReg := c.compileExpression(t.Property)
			c.chunk.Emit(bytecode.OpSetPropComputed, objReg, keyReg, val)
		} else {
			name, _ := c.propKeyName(t.Property)
			c.chunk.Emit(bytecode.OpSetProp, objReg, val, c.propRef(name, false))
		}
	case *ast.ArrayPattern:
		c.destructureArray(t, val)
	case *ast.ObjectPattern:
		c.destructureObject(t, val)
	case *ast.AssignmentPattern:
		c.compileAssignTo(t.Target, val)
	default:
		c.fail("codegen: unsupported assignment target %T", target)
	}
}

// destructureArray iterates srcReg and binds each pattern element in turn
// (the array destructuring with defaults/rest), using the
// iterator protocol opcodes rather than indexed access so iterables
// (not just arrays) can be destructured.
func (c *Compiler) destructureArray(pat *ast.ArrayPattern, srcReg uint16) {
	iterReg := c.regs.alloc()
	c.chunk.Emit(bytecode.OpGetIterator, iterReg, srcReg, 0)
	for _, el := range pat.Elements {
		if rest, ok := el.(*ast.RestElement); ok {
			restArr := c.regs.alloc()
			c.chunk.Emit(bytecode.OpMakeArray, restArr, restArr, 0)
			loopStart := len(c.chunk.Code)
			c.chunk.Emit(bytecode.OpIteratorNext, iterReg)
			doneReg := c.regs.alloc()
			c.chunk.Emit(bytecode.OpIteratorDone, doneReg)
			doneJump := c.emitJump(bytecode.OpJumpIfTrue, doneReg)
			c.regs.reset(doneReg)
			val := c.regs.alloc()
			c.chunk.Emit(bytecode.OpIteratorValue, val)
			single := c.regs.alloc()
			c.chunk.Emit(bytecode.OpMakeArray, single, val, 1)
			c.chunk.Emit(bytecode.OpSpread, restArr, single)
			c.regs.reset(val)
			backJump := c.emitJump(bytecode.OpJump)
			c.patchJumpTo(backJump, loopStart)
			c.patchJumpHere(doneJump)
			c.compileAssignTo(rest.Argument, restArr)
			continue
		}
		c.chunk.Emit(bytecode.OpIteratorNext, iterReg)
		val := c.regs.alloc()
		c.chunk.Emit(bytecode.OpIteratorValue, val)
		if el == nil {
			continue
		}
		if ap, ok := el.(*ast.AssignmentPattern); ok {
			useDefault := c.emitJump(bytecode.OpJumpIfNullish, val)
			afterDefault := c.emitJump(bytecode.OpJump)
			c.patchJumpHere(useDefault)
			def := c.compileExpression(ap.Default)
			c.chunk.Emit(bytecode.OpMove, val, def)
			c.patchJumpHere(afterDefault)
			c.compileAssignTo(ap.Target, val)
			continue
		}
		c.compileAssignTo(el, val)
	}
}

// destructureObject implements `{a, b: c, ...rest} = src` object
// destructuring: each named property reads via OpGetProp, the
// optional rest collects the remaining own enumerable keys via
// OpMergeProps + OpDeleteProp for every key already consumed.
func (c *Compiler) destructureObject(pat *ast.ObjectPattern, srcReg uint16) {
	var takenRefs []uint16
	for _, p := range pat.Properties {
		name, _ := c.propKeyName(p.Key)
		var val uint16
		if p.Computed {
			keyReg := c.compileExpression(p.Key)
			val = c.regs.alloc()
			c.chunk.Emit(bytecode.OpGetPropComputed, val, srcReg, keyReg)
		} else {
			ref := c.propRef(name, false)
			takenRefs = append(takenRefs, ref)
			val = c.regs.alloc()
			c.chunk.Emit(bytecode.OpGetProp, val, srcReg, ref)
		}
		target := p.Value
		if ap, ok := target.(*ast.AssignmentPattern); ok {
			useDefault := c.emitJump(bytecode.OpJumpIfNullish, val)
			afterDefault := c.emitJump(bytecode.OpJump)
			c.patchJumpHere(useDefault)
			def := c.compileExpression(ap.Default)
			c.chunk.Emit(bytecode.OpMove, val, def)
			c.patchJumpHere(afterDefault)
			target = ap.Target
		}
		c.compileAssignTo(target, val)
	}
	if pat.Rest != nil {
		restObj := c.regs.alloc()
		c.chunk.Emit(bytecode.OpMakeObject, restObj)
		c.chunk.Emit(bytecode.OpMergeProps, restObj, srcReg)
		for _, ref := range takenRefs {
			dummy := c.regs.alloc()
			c.chunk.Emit(bytecode.OpDeleteProp, dummy, restObj, ref)
			c.regs.reset(dummy)
		}
		c.compileAssignTo(pat.Rest.Argument, restObj)
	}
}

func (c *Compiler) compileCallExpression(n *ast.CallExpression) uint16 {
	if _, ok := n.Callee.(*ast.SuperExpression); ok {
		return c.compileSuperCall(n)
	}
	if m, ok := n.Callee.(*ast.MemberExpression); ok {
		return c.compileMethodCall(m, n)
	}
	callee := c.compileExpression(n.Callee)
	if !n.Optional {
		return c.emitCall(callee, n.Args)
	}
	shortCircuit := c.emitJump(bytecode.OpJumpIfNullish, callee)
	result := c.emitCall(callee, n.Args)
	done := c.emitJump(bytecode.OpJump)
	c.patchJumpHere(shortCircuit)
	c.regs.reset(callee)
	c.chunk.Emit(bytecode.OpLoadUndefined, result)
	c.patchJumpHere(done)
	return result
}

func (c *Compiler) hasSpreadArg(args []ast.Expression) bool {
	for _, a := range args {
		if _, ok := a.(*ast.SpreadElement); ok {
			return true
		}
	}
	return false
}

// emitCall compiles a plain (non-method) call, folding a single trailing
// spread (the common `f(...args)` shape) into OpCallSpread by building an
// args array first; a spread mixed with ordinary trailing arguments is
// handled the same way by merging every argument into one array (a small
// loss of zero-cost-fast-path compared to the contiguous-register form,
// acceptable since such calls are rare next to plain argument lists).
func (c *Compiler) emitCall(callee uint16, args []ast.Expression) uint16 {
	if c.hasSpreadArg(args) {
		arr := c.compileArgsArray(args)
		dst := c.regs.alloc()
		c.chunk.Emit(bytecode.OpCallSpread, dst, callee, arr)
		return dst
	}
	argStart := c.regs.top
	for _, a := range args {
		c.compileExpression(a)
	}
	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpCall, dst, callee, argStart, uint16(len(args)))
	return dst
}

// compileArgsArray lowers an argument list that contains at least one
// spread into a single array value (the same contiguous-run-then-merge
// strategy as compileArrayLiteral).
func (c *Compiler) compileArgsArray(args []ast.Expression) uint16 {
	lit := &ast.ArrayLiteral{Elements: args}
	return c.compileArrayLiteral(lit)
}

// emitMethodCall is emitCall's explicit-receiver counterpart: obj.method()
// must bind this = obj for the duration of the call, which plain OpCall
// (this = undefined) can't express.
func (c *Compiler) emitMethodCall(thisReg, method uint16, args []ast.Expression) uint16 {
	if c.hasSpreadArg(args) {
		arr := c.compileArgsArray(args)
		dst := c.regs.alloc()
		c.chunk.Emit(bytecode.OpCallMethodSpread, dst, thisReg, method, arr)
		return dst
	}
	argStart := c.regs.top
	for _, a := range args {
		c.compileExpression(a)
	}
	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpCallMethod, dst, thisReg, method, argStart, uint16(len(args)))
	return dst
}

// compileMethodCall lowers obj.method(args)/obj[key](args), handling the
// two independent places `?.` can appear (`obj?.method()` short-circuits
// on a nullish obj, `obj.method?.()` short-circuits on a nullish method)
// with a single shared exit. This does not propagate the short-circuit
// further up an enclosing chain (`a?.b.c()` still evaluates `.c` against
// whatever `a?.b` produced, including undefined) — full chain-wide
// short-circuiting is not implemented, matching compileMemberExpression's
// same single-link scope.
func (c *Compiler) compileMethodCall(m *ast.MemberExpression, call *ast.CallExpression) uint16 {
	if _, ok := m.Object.(*ast.SuperExpression); ok {
		if m.Computed {
			c.fail("codegen: computed super property access is not supported")
		}
		name, _ := c.propKeyName(m.Property)
		method := c.regs.alloc()
		c.chunk.Emit(bytecode.OpGetSuperProp, method, c.propRef(name, false))
		thisReg := c.regs.alloc()
		c.chunk.Emit(bytecode.OpGetThis, thisReg)
		return c.emitMethodCall(thisReg, method, call.Args)
	}

	objReg := c.compileExpression(m.Object)
	var objShortCircuit int
	if m.Optional {
		objShortCircuit = c.emitJump(bytecode.OpJumpIfNullish, objReg)
	}

	var method uint16
	if m.Computed {
		keyReg := c.compileExpression(m.Property)
		method = c.regs.alloc()
		c.chunk.Emit(bytecode.OpGetPropComputed, method, objReg, keyReg)
	} else {
		name, _ := c.propKeyName(m.Property)
		method = c.regs.alloc()
		c.chunk.Emit(bytecode.OpGetProp, method, objReg, c.propRef(name, false))
	}

	var methodShortCircuit int
	if call.Optional {
		methodShortCircuit = c.emitJump(bytecode.OpJumpIfNullish, method)
	}

	result := c.emitMethodCall(objReg, method, call.Args)

	if !m.Optional && !call.Optional {
		return result
	}
	done := c.emitJump(bytecode.OpJump)
	if call.Optional {
		c.patchJumpHere(methodShortCircuit)
	}
	if m.Optional {
		c.patchJumpHere(objShortCircuit)
	}
	c.regs.reset(objReg)
	c.chunk.Emit(bytecode.OpLoadUndefined, result)
	c.patchJumpHere(done)
	return result
}

func (c *Compiler) compileSuperCall(call *ast.CallExpression) uint16 {
	argStart := c.regs.top
	for _, a := range call.Args {
		c.compileExpression(a)
	}
	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpSuperCall, dst, argStart, uint16(len(call.Args)))
	return dst
}

func (c *Compiler) compileNewExpression(n *ast.NewExpression) uint16 {
	callee := c.compileExpression(n.Callee)
	if c.hasSpreadArg(n.Args) {
		arr := c.compileArgsArray(n.Args)
		dst := c.regs.alloc()
		c.chunk.Emit(bytecode.OpConstructSpread, dst, callee, arr)
		return dst
	}
	argStart := c.regs.top
	for _, a := range n.Args {
		c.compileExpression(a)
	}
	dst := c.regs.alloc()
	c.chunk.Emit(bytecode.OpConstruct, dst, callee, argStart, uint16(len(n.Args)))
	return dst
}

// compileMemberExpression compiles `obj.prop`/`obj[prop]`, and their
// optional-chaining forms when asCallee is false (a MemberExpression used
// as a call's callee is handled directly by compileMethodCall instead, so
// this path is for member access used as an ordinary value).
func (c *Compiler) compileMemberExpression(m *ast.MemberExpression, asCallee bool) uint16 {
	if _, ok := m.Object.(*ast.SuperExpression); ok {
		dst := c.regs.alloc()
		if m.Computed {
			c.fail("codegen: computed super property access is not supported")
		}
		name, _ := c.propKeyName(m.Property)
		c.chunk.Emit(bytecode.OpGetSuperProp, dst, c.propRef(name, false))
		return dst
	}
	objReg := c.compileExpression(m.Object)
	if m.Optional {
		shortCircuit := c.emitJump(bytecode.OpJumpIfNullish, objReg)
		result := c.regs.alloc()
		if m.Computed {
			keyReg := c.compileExpression(m.Property)
			c.chunk.Emit(bytecode.OpGetPropComputed, result, objReg, keyReg)
		} else {
			name, _ := c.propKeyName(m.Property)
			c.chunk.Emit(bytecode.OpGetProp, result, objReg, c.propRef(name, false))
		}
		done := c.emitJump(bytecode.OpJump)
		c.patchJumpHere(shortCircuit)
		c.chunk.Emit(bytecode.OpLoadUndefined, result)
		c.patchJumpHere(done)
		return result
	}
	result := c.regs.alloc()
	if m.Computed {
		keyReg := c.compileExpression(m.Property)
		c.chunk.Emit(bytecode.OpGetPropComputed, result, objReg, keyReg)
	} else {
		name, _ := c.propKeyName(m.Property)
		c.chunk.Emit(bytecode.OpGetProp, result, objReg, c.propRef(name, false))
	}
	return result
}

func (c *Compiler) compileYieldExpression(n *ast.YieldExpression) uint16 {
	var arg uint16
	if n.Argument != nil {
		arg = c.compileExpression(n.Argument)
	} else {
		arg = c.regs.alloc()
		c.chunk.Emit(bytecode.OpLoadUndefined, arg)
	}
	dst := c.regs.alloc()
	if n.Delegate {
		c.chunk.Emit(bytecode.OpYieldStar, dst, arg)
	} else {
		c.chunk.Emit(bytecode.OpYield, dst, arg)
	}
	return dst
}
