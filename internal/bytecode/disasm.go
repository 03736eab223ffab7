package bytecode

import (
	"fmt"
	"strings"

	"github.com/funvibe/langc/internal/typehash"
)

// operandKind classifies an opcode's trailing operand bytes, so
// Disassemble can format every instruction from one table-driven loop
// instead of funxy/internal/vm/disasm.go's one-case-per-opcode switch —
// this instruction set is large enough (spec §6's full per-type
// arithmetic family) that the one-case style would dwarf the rest of
// the package for no added clarity.
type operandKind int

const (
	operandNone operandKind = iota
	operandU16           // slot / field index / constant-pool index
	operandU64Argc       // func_hash (u64) + argc (u8): Call, CallMethod
	operandU64U64Argc    // type_hash + ctor_hash (u64 each) + argc (u8): New
	operandU64           // func_hash (u64): AddRef, Release
	operandJump          // i16 relative offset
)

var operandKinds = map[Opcode]operandKind{
	OpConstant: operandU16,
	OpGetLocal: operandU16, OpSetLocal: operandU16,
	OpGetField: operandU16, OpSetField: operandU16,
	OpGetGlobal: operandU16, OpSetGlobal: operandU16,
	OpCall: operandU64Argc, OpCallMethod: operandU64Argc,
	OpNew:     operandU64U64Argc,
	OpAddRef:  operandU64,
	OpRelease: operandU64,
	OpJump:    operandJump, OpJumpIfFalse: operandJump, OpJumpIfTrue: operandJump,
}

// Disassemble renders chunk as human-readable text under a "== name =="
// banner, matching funxy/internal/vm/disasm.go's `Disassemble(chunk,
// name) string` entry point.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	fmt.Fprintf(sb, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", chunk.Lines[offset])
	}

	op := Opcode(chunk.Code[offset])
	name := OpcodeNames[op]
	if name == "" {
		name = fmt.Sprintf("UNKNOWN(%d)", op)
	}

	switch operandKinds[op] {
	case operandU16:
		idx := chunk.ReadU16(offset + 1)
		if op == OpConstant {
			fmt.Fprintf(sb, "%-16s %4d '%s'\n", name, idx, formatConstant(chunk.Constants[idx]))
		} else {
			fmt.Fprintf(sb, "%-16s %4d\n", name, idx)
		}
		return offset + 3
	case operandU64Argc:
		fn := typehash.Hash(chunk.ReadU64(offset + 1))
		argc := chunk.Code[offset+9]
		fmt.Fprintf(sb, "%-16s %s argc=%d\n", name, fn, argc)
		return offset + 10
	case operandU64U64Argc:
		typeHash := typehash.Hash(chunk.ReadU64(offset + 1))
		ctorHash := typehash.Hash(chunk.ReadU64(offset + 9))
		argc := chunk.Code[offset+17]
		fmt.Fprintf(sb, "%-16s type=%s ctor=%s argc=%d\n", name, typeHash, ctorHash, argc)
		return offset + 18
	case operandU64:
		fn := typehash.Hash(chunk.ReadU64(offset + 1))
		fmt.Fprintf(sb, "%-16s %s\n", name, fn)
		return offset + 9
	case operandJump:
		rel := int16(chunk.ReadU16(offset + 1))
		fmt.Fprintf(sb, "%-16s %d -> %d\n", name, rel, offset+3+int(rel))
		return offset + 3
	default:
		fmt.Fprintf(sb, "%s\n", name)
		return offset + 1
	}
}

func formatConstant(c Constant) string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.I)
	case ConstUint:
		return fmt.Sprintf("%d", c.U)
	case ConstFloat:
		return fmt.Sprintf("%g", c.F)
	case ConstBool:
		return fmt.Sprintf("%t", c.B)
	case ConstString:
		return c.S
	default:
		return "?"
	}
}
