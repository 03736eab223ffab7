package bytecode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/bytecode"
)

func TestWriteOpAppendsSingleByte(t *testing.T) {
	c := bytecode.NewChunk("x.lang")
	c.WriteOp(bytecode.OpReturn, 1, 1)
	require.Equal(t, 1, c.Len())
	require.Equal(t, byte(bytecode.OpReturn), c.Code[0])
}

func TestWriteConstantInternsAndEmitsIndex(t *testing.T) {
	c := bytecode.NewChunk("x.lang")
	c.WriteConstant(bytecode.Constant{Kind: bytecode.ConstInt, I: 41}, 1, 1)
	require.Len(t, c.Constants, 1)
	require.Equal(t, uint16(0), c.ReadU16(1))
}

func TestWriteU64RoundTripsBigEndian(t *testing.T) {
	c := bytecode.NewChunk("x.lang")
	c.WriteU64(bytecode.OpAddRef, 0x0102030405060708, 1, 1)
	require.Equal(t, uint64(0x0102030405060708), c.ReadU64(1))
}

func TestPatchJumpFillsForwardOffset(t *testing.T) {
	c := bytecode.NewChunk("x.lang")
	pos := c.WriteJump(bytecode.OpJumpIfFalse, 1, 1)
	c.WriteOp(bytecode.OpPop, 1, 1)
	c.PatchJump(pos)
	offset := int16(c.ReadU16(pos))
	require.Equal(t, int16(1), offset)
}

func TestDisassembleRendersConstantAndCall(t *testing.T) {
	c := bytecode.NewChunk("x.lang")
	c.WriteConstant(bytecode.Constant{Kind: bytecode.ConstInt, I: 42}, 1, 1)
	c.WriteOp(bytecode.OpReturn, 1, 5)

	out := bytecode.Disassemble(c, "test")
	require.True(t, strings.HasPrefix(out, "== test ==\n"))
	require.Contains(t, out, "CONSTANT")
	require.Contains(t, out, "42")
	require.Contains(t, out, "RETURN")
}
