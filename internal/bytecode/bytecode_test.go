package bytecode

import (
	"strings"
	"testing"

	"github.com/vesper-lang/vesper/internal/value"
)

func TestOpCodeNamesAndOperandCounts(t *testing.T) {
	if OpAdd.String() != "Add" {
		t.Fatalf("got %s", OpAdd.String())
	}
	if OpAdd.NumOperands() != 3 {
		t.Fatalf("expected Add to take 3 operands (dst, lhs, rhs), got %d", OpAdd.NumOperands())
	}
	if OpReturn.NumOperands() != 1 {
		t.Fatalf("expected Return to take 1 operand, got %d", OpReturn.NumOperands())
	}
}

func TestChunkEmitAndPatchJump(t *testing.T) {
	c := NewChunk()
	idx := c.AddConstant(value.Num(42))
	c.Emit(OpLoadConst, 0, uint16(idx))
	jumpAt := c.Emit(OpJump, 0)
	c.Emit(OpNop)
	target := uint16(len(c.Code))
	c.PatchJumpOperand(jumpAt, 0, target)

	if c.Code[jumpAt+1] != target {
		t.Fatalf("expected patched jump operand %d, got %d", target, c.Code[jumpAt+1])
	}
}

func TestChunkPosAt(t *testing.T) {
	c := NewChunk()
	c.Emit(OpLoadUndefined, 0)
	c.Lines = append(c.Lines, LineInfo{InstrOffset: 0, Line: 1, Column: 1})
	c.Emit(OpPop)
	c.Lines = append(c.Lines, LineInfo{InstrOffset: 2, Line: 2, Column: 5})

	line, col := c.PosAt(0)
	if line != 1 || col != 1 {
		t.Fatalf("got %d:%d", line, col)
	}
	line, col = c.PosAt(2)
	if line != 2 || col != 5 {
		t.Fatalf("got %d:%d", line, col)
	}
}

func TestDisassembleSmoke(t *testing.T) {
	c := NewChunk()
	idx := c.AddConstant(value.Num(1))
	c.Emit(OpLoadConst, 0, uint16(idx))
	c.Emit(OpReturn, 0)

	sw := NewStringWriter()
	out := DisassembleToString("main", c, sw)
	if !strings.Contains(out, "LoadConst") || !strings.Contains(out, "Return") {
		t.Fatalf("expected disassembly to name both opcodes, got:\n%s", out)
	}
}
