package runtime

import "github.com/funvibe/langc/internal/typehash"

// HandleObject is the heap allocation behind every T@ handle and every
// ScriptObject instance (spec §4.5). RefCount is maintained entirely by
// the AddRef/Release opcodes the Body Compiler emits around assignment
// and scope exit — the VM itself never reference-counts implicitly,
// matching spec §4.5's "reference counting is explicit bytecode, not a
// VM-managed GC root set" design (funxy, by contrast, never reference
// counts at all; its evaluator.Object tree is swept by the Go GC, which
// is exactly why handle lifetime needed reinventing here rather than
// reuse).
type HandleObject struct {
	TypeHash typehash.Hash
	RefCount int32
	Fields   []Value // ScriptObject / Class instance storage, indexed by PropertyDecl order
	Native   interface{} // opaque payload for FFI-owned objects (e.g. stringPayload, a decoded proto message)
}

// stringPayload is the Native payload of a built-in string HandleObject.
// A distinct defined type (rather than storing a bare string) so
// Value.AsString's type assertion can't accidentally match an unrelated
// FFI object that happens to wrap a string.
type stringPayload string

func NewStringObject(s string) *HandleObject {
	return &HandleObject{Native: stringPayload(s)}
}

// NewObject allocates a zeroed instance of typeHash with numFields
// storage slots, RefCount 1 (the NEW opcode's result is always the
// owning reference until something else AddRefs it).
func NewObject(typeHash typehash.Hash, numFields int) *HandleObject {
	return &HandleObject{TypeHash: typeHash, RefCount: 1, Fields: make([]Value, numFields)}
}

// ValueObject boxes a value_pod/value-kind type's field storage without
// the VM needing a second Value.Kind per concrete struct shape. Copy
// returns an independent copy of the fields; no opcode calls it, so
// OpDup, OpGetLocal/OpSetLocal and assignment copy only the Value itself.
type ValueObject struct {
	TypeHash typehash.Hash
	Fields   []Value
}

func (o *ValueObject) Copy() *ValueObject {
	fields := make([]Value, len(o.Fields))
	copy(fields, o.Fields)
	return &ValueObject{TypeHash: o.TypeHash, Fields: fields}
}
