// Package bytecode defines the instruction set the Body Compiler emits
// and the reference internal/runtime VM executes (spec §6, "Bytecode
// surface"). It generalizes funvibe-funxy/internal/vm's
// Opcode/Chunk/disassembler trio — byte opcode stream, an indexed
// constant pool, parallel line/column tables — from a dynamically typed
// functional VM to a statically typed, handle-aware OO one: locals are
// still GetLocal/SetLocal by slot, but arithmetic is now
// type-specialized per primitive kind rather than dispatched at
// runtime, and reference counting (AddRef/Release) is new.
package bytecode

// Opcode is a single VM instruction.
type Opcode byte

const (
	// Stack manipulation
	OpPushZero Opcode = iota
	OpPushOne
	OpPushTrue
	OpPushFalse
	OpPushNull
	OpConstant // u16 constant-pool index
	OpDup
	OpPop

	// Locals and fields
	OpGetLocal  // u16 slot
	OpSetLocal  // u16 slot
	OpGetField  // u16 field index
	OpSetField  // u16 field index
	OpGetGlobal // u16 slot
	OpSetGlobal // u16 slot

	// Calls and object creation
	OpCall       // u64 func_hash, u8 argc
	OpCallMethod // u64 func_hash, u8 argc
	OpNew        // u64 type_hash, u64 ctor_hash, u8 argc

	// Reference counting
	OpAddRef  // u64 func_hash (AddRef behavior)
	OpRelease // u64 func_hash (Release behavior)

	// Control flow
	OpJump        // i16 relative offset
	OpJumpIfFalse // i16 relative offset
	OpJumpIfTrue  // i16 relative offset
	OpReturn
	OpReturnVoid

	// Signed 32-bit arithmetic (covers int8/int16/int32 after promotion)
	OpAddI32
	OpSubI32
	OpMulI32
	OpDivI32
	OpModI32
	OpNegI32

	// Signed 64-bit arithmetic
	OpAddI64
	OpSubI64
	OpMulI64
	OpDivI64
	OpModI64
	OpNegI64

	// Unsigned 32-bit arithmetic (covers uint8/uint16/uint32)
	OpAddU32
	OpSubU32
	OpMulU32
	OpDivU32
	OpModU32

	// Unsigned 64-bit arithmetic
	OpAddU64
	OpSubU64
	OpMulU64
	OpDivU64
	OpModU64

	// 32-bit float arithmetic
	OpAddF32
	OpSubF32
	OpMulF32
	OpDivF32
	OpNegF32

	// 64-bit float arithmetic (double)
	OpAddF64
	OpSubF64
	OpMulF64
	OpDivF64
	OpNegF64

	// Bitwise (integer only; width-agnostic at the bit-pattern level)
	OpBAnd
	OpBOr
	OpBXor
	OpBNot
	OpShl
	OpShr
	OpUShr

	// Comparison, one family per operand kind (push bool)
	OpEqI64
	OpNeI64
	OpLtI64
	OpLeI64
	OpGtI64
	OpGeI64

	OpEqU64
	OpNeU64
	OpLtU64
	OpLeU64
	OpGtU64
	OpGeU64

	OpEqF64
	OpNeF64
	OpLtF64
	OpLeF64
	OpGtF64
	OpGeF64

	// Bool logic
	OpNot
	OpAnd
	OpOr

	// Handle identity / null test
	OpIsNull
	OpHandleEq

	// Halt
	OpHalt
)

// OpcodeNames maps each opcode to its disassembly mnemonic.
var OpcodeNames = map[Opcode]string{
	OpPushZero:  "PUSH_ZERO",
	OpPushOne:   "PUSH_ONE",
	OpPushTrue:  "PUSH_TRUE",
	OpPushFalse: "PUSH_FALSE",
	OpPushNull:  "PUSH_NULL",
	OpConstant:  "CONSTANT",
	OpDup:       "DUP",
	OpPop:       "POP",

	OpGetLocal:  "GET_LOCAL",
	OpSetLocal:  "SET_LOCAL",
	OpGetField:  "GET_FIELD",
	OpSetField:  "SET_FIELD",
	OpGetGlobal: "GET_GLOBAL",
	OpSetGlobal: "SET_GLOBAL",

	OpCall:       "CALL",
	OpCallMethod: "CALL_METHOD",
	OpNew:        "NEW",

	OpAddRef:  "ADD_REF",
	OpRelease: "RELEASE",

	OpJump:        "JUMP",
	OpJumpIfFalse: "JUMP_IF_FALSE",
	OpJumpIfTrue:  "JUMP_IF_TRUE",
	OpReturn:      "RETURN",
	OpReturnVoid:  "RETURN_VOID",

	OpAddI32: "ADD_I32", OpSubI32: "SUB_I32", OpMulI32: "MUL_I32", OpDivI32: "DIV_I32", OpModI32: "MOD_I32", OpNegI32: "NEG_I32",
	OpAddI64: "ADD_I64", OpSubI64: "SUB_I64", OpMulI64: "MUL_I64", OpDivI64: "DIV_I64", OpModI64: "MOD_I64", OpNegI64: "NEG_I64",
	OpAddU32: "ADD_U32", OpSubU32: "SUB_U32", OpMulU32: "MUL_U32", OpDivU32: "DIV_U32", OpModU32: "MOD_U32",
	OpAddU64: "ADD_U64", OpSubU64: "SUB_U64", OpMulU64: "MUL_U64", OpDivU64: "DIV_U64", OpModU64: "MOD_U64",
	OpAddF32: "ADD_F32", OpSubF32: "SUB_F32", OpMulF32: "MUL_F32", OpDivF32: "DIV_F32", OpNegF32: "NEG_F32",
	OpAddF64: "ADD_F64", OpSubF64: "SUB_F64", OpMulF64: "MUL_F64", OpDivF64: "DIV_F64", OpNegF64: "NEG_F64",

	OpBAnd: "BAND", OpBOr: "BOR", OpBXor: "BXOR", OpBNot: "BNOT", OpShl: "SHL", OpShr: "SHR", OpUShr: "USHR",

	OpEqI64: "EQ_I64", OpNeI64: "NE_I64", OpLtI64: "LT_I64", OpLeI64: "LE_I64", OpGtI64: "GT_I64", OpGeI64: "GE_I64",
	OpEqU64: "EQ_U64", OpNeU64: "NE_U64", OpLtU64: "LT_U64", OpLeU64: "LE_U64", OpGtU64: "GT_U64", OpGeU64: "GE_U64",
	OpEqF64: "EQ_F64", OpNeF64: "NE_F64", OpLtF64: "LT_F64", OpLeF64: "LE_F64", OpGtF64: "GT_F64", OpGeF64: "GE_F64",

	OpNot: "NOT", OpAnd: "AND", OpOr: "OR",

	OpIsNull:   "IS_NULL",
	OpHandleEq: "HANDLE_EQ",

	OpHalt: "HALT",
}

// ArithFamily holds the (add, sub, mul, div, mod, neg) opcode family
// for a primitive numeric kind, used by the Body Compiler's operator
// table (§4.11 step 1) to pick the specialized instruction without a
// giant literal switch at every call site. Neg (for kinds with no unary
// negate) and Mod (for float kinds) are OpHalt, an opcode no arithmetic
// lowering ever emits standalone; callers compare against OpHalt to
// detect "unsupported". Ok is true in every family defined here.
type ArithFamily struct {
	Add, Sub, Mul, Div, Mod, Neg Opcode
	Ok                           bool
}

var Int32Family = ArithFamily{OpAddI32, OpSubI32, OpMulI32, OpDivI32, OpModI32, OpNegI32, true}
var Int64Family = ArithFamily{OpAddI64, OpSubI64, OpMulI64, OpDivI64, OpModI64, OpNegI64, true}
var Uint32Family = ArithFamily{OpAddU32, OpSubU32, OpMulU32, OpDivU32, OpModU32, OpHalt, true}
var Uint64Family = ArithFamily{OpAddU64, OpSubU64, OpMulU64, OpDivU64, OpModU64, OpHalt, true}
var Float32Family = ArithFamily{OpAddF32, OpSubF32, OpMulF32, OpDivF32, OpHalt, OpNegF32, true}
var Float64Family = ArithFamily{OpAddF64, OpSubF64, OpMulF64, OpDivF64, OpHalt, OpNegF64, true}

// CompareFamily holds the six relational opcodes for one operand kind.
type CompareFamily struct {
	Eq, Ne, Lt, Le, Gt, Ge Opcode
}

var Int64Compare = CompareFamily{OpEqI64, OpNeI64, OpLtI64, OpLeI64, OpGtI64, OpGeI64}
var Uint64Compare = CompareFamily{OpEqU64, OpNeU64, OpLtU64, OpLeU64, OpGtU64, OpGeU64}
var Float64Compare = CompareFamily{OpEqF64, OpNeF64, OpLtF64, OpLeF64, OpGtF64, OpGeF64}
