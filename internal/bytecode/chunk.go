package bytecode

import "github.com/funvibe/langc/internal/typehash"

// ConstKind tags the variant held by a Constant.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstUint
	ConstFloat
	ConstBool
	ConstString
)

// Constant is one entry in a Chunk's constant pool: a typed literal the
// Body Compiler lifted out of source (spec §6's "constant pool of typed
// literals"), generalizing funxy/internal/vm/chunk.go's
// `Constants []evaluator.Object` to this language's closed primitive set
// rather than an open dynamically-typed Object.
type Constant struct {
	Kind ConstKind
	I    int64
	U    uint64
	F    float64
	B    bool
	S    string
}

// Chunk is one function's compiled bytecode: the instruction stream, its
// constant pool, and parallel line/column tables for diagnostics —
// directly generalizing funxy/internal/vm/chunk.go's Chunk shape.
type Chunk struct {
	Code      []byte
	Constants []Constant
	Lines     []int
	Columns   []int
	File      string
}

// NewChunk creates an empty Chunk for file.
func NewChunk(file string) *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 256),
		Constants: make([]Constant, 0, 16),
		Lines:     make([]int, 0, 256),
		Columns:   make([]int, 0, 256),
		File:      file,
	}
}

func (c *Chunk) writeByte(b byte, line, col int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	c.Columns = append(c.Columns, col)
}

// WriteOp appends a bare opcode with no operands.
func (c *Chunk) WriteOp(op Opcode, line, col int) int {
	pos := len(c.Code)
	c.writeByte(byte(op), line, col)
	return pos
}

// WriteU8 appends an opcode followed by a single-byte operand (argc).
func (c *Chunk) WriteU8(op Opcode, v byte, line, col int) {
	c.writeByte(byte(op), line, col)
	c.writeByte(v, line, col)
}

// WriteU16 appends an opcode followed by a big-endian 2-byte operand
// (slot index, field index, constant-pool index).
func (c *Chunk) WriteU16(op Opcode, v uint16, line, col int) {
	c.writeByte(byte(op), line, col)
	c.writeByte(byte(v>>8), line, col)
	c.writeByte(byte(v), line, col)
}

// WriteU64 appends an opcode followed by a big-endian 8-byte operand
// (a TypeHash/function hash).
func (c *Chunk) WriteU64(op Opcode, v uint64, line, col int) {
	c.writeByte(byte(op), line, col)
	for shift := 56; shift >= 0; shift -= 8 {
		c.writeByte(byte(v>>uint(shift)), line, col)
	}
}

// WriteCall appends Call/CallMethod: func_hash (u64) then argc (u8).
func (c *Chunk) WriteCall(op Opcode, fn typehash.Hash, argc byte, line, col int) {
	c.WriteU64(op, uint64(fn), line, col)
	c.writeByte(argc, line, col)
}

// WriteNew appends OpNew: type_hash, ctor_hash (both u64), then argc (u8).
func (c *Chunk) WriteNew(typeHash, ctorHash typehash.Hash, argc byte, line, col int) {
	c.writeByte(byte(OpNew), line, col)
	for shift := 56; shift >= 0; shift -= 8 {
		c.writeByte(byte(uint64(typeHash)>>uint(shift)), line, col)
	}
	for shift := 56; shift >= 0; shift -= 8 {
		c.writeByte(byte(uint64(ctorHash)>>uint(shift)), line, col)
	}
	c.writeByte(argc, line, col)
}

// WriteJump appends a jump opcode with a placeholder 2-byte relative
// offset and returns the offset of the placeholder, for PatchJump to
// fill in once the target address is known.
func (c *Chunk) WriteJump(op Opcode, line, col int) int {
	c.writeByte(byte(op), line, col)
	pos := len(c.Code)
	c.writeByte(0, line, col)
	c.writeByte(0, line, col)
	return pos
}

// PatchJump backfills the 2-byte relative offset at pos (as returned by
// WriteJump) to point at the current end of the chunk.
func (c *Chunk) PatchJump(pos int) {
	offset := len(c.Code) - (pos + 2)
	c.Code[pos] = byte(int16(offset) >> 8)
	c.Code[pos+1] = byte(int16(offset))
}

// EmitLoop appends OpJump with a backward relative offset to loopStart,
// generalizing funxy/internal/vm/compiler_loops.go's OP_LOOP emission.
func (c *Chunk) EmitLoop(loopStart, line, col int) {
	c.writeByte(byte(OpJump), line, col)
	offset := -(len(c.Code) + 2 - loopStart)
	c.writeByte(byte(int16(offset)>>8), line, col)
	c.writeByte(byte(int16(offset)), line, col)
}

// AddConstant interns value into the pool and returns its index.
func (c *Chunk) AddConstant(value Constant) uint16 {
	for i, existing := range c.Constants {
		if existing == value {
			return uint16(i)
		}
	}
	c.Constants = append(c.Constants, value)
	return uint16(len(c.Constants) - 1)
}

// WriteConstant emits OpConstant followed by value's pool index.
func (c *Chunk) WriteConstant(value Constant, line, col int) {
	idx := c.AddConstant(value)
	c.WriteU16(OpConstant, idx, line, col)
}

// ReadU16 reads a big-endian 2-byte value at offset.
func (c *Chunk) ReadU16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// ReadU64 reads a big-endian 8-byte value at offset.
func (c *Chunk) ReadU64(offset int) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(c.Code[offset+i])
	}
	return v
}

// Len returns the number of bytes of bytecode in the chunk.
func (c *Chunk) Len() int { return len(c.Code) }
