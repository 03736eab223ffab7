package compiler

import (
	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typesystem"
)

// binaryOperatorBehavior maps a source operator symbol to the operator
// slot name it resolves through when no dedicated primitive opcode
// applies (spec §4.11's fixed operator -> method-name table). Reuses
// registry.OperatorBehavior.MethodName rather than redefining the table.
var binaryOperatorBehavior = map[string]registry.OperatorBehavior{
	"+": registry.OpAdd, "-": registry.OpSub, "*": registry.OpMul,
	"/": registry.OpDiv, "%": registry.OpMod, "**": registry.OpPow,
	"==": registry.OpEquals, "!=": registry.OpEquals,
	"<": registry.OpCmp, "<=": registry.OpCmp, ">": registry.OpCmp, ">=": registry.OpCmp,
}

var unaryOperatorBehavior = map[string]registry.OperatorBehavior{
	"-": registry.OpNeg,
}

func reversedBehaviorName(b registry.OperatorBehavior) string {
	return b.MethodName() + "_r"
}

func arithFamilyFor(cat typesystem.PrimitiveCategory) (bytecode.ArithFamily, bool) {
	switch cat {
	case typesystem.CatI32:
		return bytecode.Int32Family, true
	case typesystem.CatI64:
		return bytecode.Int64Family, true
	case typesystem.CatU32:
		return bytecode.Uint32Family, true
	case typesystem.CatU64:
		return bytecode.Uint64Family, true
	case typesystem.CatF32:
		return bytecode.Float32Family, true
	case typesystem.CatF64:
		return bytecode.Float64Family, true
	default:
		return bytecode.ArithFamily{}, false
	}
}

// compareFamilyFor widens int/float comparisons onto the three
// comparison families the emitter actually has opcodes for (spec §6
// only specializes comparisons by I64/U64/F64, unlike arithmetic which
// also specializes the 32-bit width).
func compareFamilyFor(cat typesystem.PrimitiveCategory) (bytecode.CompareFamily, bool) {
	switch cat {
	case typesystem.CatI32, typesystem.CatI64:
		return bytecode.Int64Compare, true
	case typesystem.CatU32, typesystem.CatU64:
		return bytecode.Uint64Compare, true
	case typesystem.CatF32, typesystem.CatF64:
		return bytecode.Float64Compare, true
	default:
		return bytecode.CompareFamily{}, false
	}
}

func arithOpcode(op string, fam bytecode.ArithFamily) (bytecode.Opcode, bool) {
	switch op {
	case "+":
		return fam.Add, true
	case "-":
		return fam.Sub, true
	case "*":
		return fam.Mul, true
	case "/":
		return fam.Div, true
	case "%":
		if fam.Mod == bytecode.OpHalt {
			return 0, false
		}
		return fam.Mod, true
	default:
		return 0, false
	}
}

func compareOpcode(op string, fam bytecode.CompareFamily) (bytecode.Opcode, bool) {
	switch op {
	case "==":
		return fam.Eq, true
	case "!=":
		return fam.Ne, true
	case "<":
		return fam.Lt, true
	case "<=":
		return fam.Le, true
	case ">":
		return fam.Gt, true
	case ">=":
		return fam.Ge, true
	default:
		return 0, false
	}
}

func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func isBitwiseOp(op string) bool {
	switch op {
	case "&", "|", "^", "<<", ">>", ">>>":
		return true
	}
	return false
}

func bitwiseOpcode(op string) bytecode.Opcode {
	switch op {
	case "&":
		return bytecode.OpBAnd
	case "|":
		return bytecode.OpBOr
	case "^":
		return bytecode.OpBXor
	case "<<":
		return bytecode.OpShl
	case ">>":
		return bytecode.OpShr
	case ">>>":
		return bytecode.OpUShr
	}
	return bytecode.OpHalt
}
