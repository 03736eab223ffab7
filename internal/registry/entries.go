// Package registry is the Symbol Registry: the universal name/hash-
// addressed store of every type, function, and global the compiler and
// runtime see. It generalizes the two-tier Prelude/Global singleton split
// already present in the teacher (funxy/internal/symbols: a shared,
// once-initialized base table chained behind per-compilation-unit
// tables) to an explicitly host-constructed Registry, since an embedding
// host may run more than one independent script VM in a process.
package registry

import (
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

// EntryTag discriminates the TypeEntry sum variants.
type EntryTag int

const (
	EntryClass EntryTag = iota
	EntryInterface
	EntryEnum
	EntryFuncdef
	EntryTemplateParam
)

// PropertyDecl is a declared field or virtual property on a class.
type PropertyDecl struct {
	Name       string
	Type       typesystem.DataType
	IsVirtual  bool // true for a get/set property pair rather than a plain field
	GetterHash typehash.Hash
	SetterHash typehash.Hash // zero Hash if read-only
}

// EnumValue is one enumerator of an Enum TypeEntry.
type EnumValue struct {
	Name  string
	Value int64
}

// TemplateParamRef is used only during template body lowering (§4.7): it
// stands in for an as-yet-unsubstituted template parameter.
type TemplateParamRef struct {
	Owner typehash.Hash
	Index int
}

// TypeEntry is a closed sum type over the five kinds of symbol the
// registry can hold for a *type*. Exactly one Tag-selected group of
// fields is meaningful, mirroring the funxy compiler's convention of one
// exported "kind" field gating the rest of a struct's fields (e.g.
// typesystem.TCon.UnderlyingType only meaningful for aliases).
type TypeEntry struct {
	Tag EntryTag

	Hash          typehash.Hash
	Name          string // unqualified
	QualifiedName string
	Namespace     string

	// Valid when Tag == EntryClass.
	Kind                 typesystem.TypeKind
	BaseClass            *typehash.Hash
	Interfaces           []typehash.Hash
	Properties           []PropertyDecl
	Methods              []typehash.Hash
	TemplateParams       []string
	TemplateOrigin       *typehash.Hash // non-nil if this is a template instance
	TemplateArgs         []typesystem.DataType

	// Valid when Tag == EntryInterface.
	BaseInterfaces  []typehash.Hash
	AbstractMethods []typehash.Hash

	// Valid when Tag == EntryEnum.
	Enumerators []EnumValue

	// Valid when Tag == EntryFuncdef.
	FuncdefParams []typesystem.DataType
	FuncdefReturn typesystem.DataType

	// Valid when Tag == EntryTemplateParam.
	TemplateParamRef TemplateParamRef
}

// IsTemplateInstance reports whether this class entry was synthesized by
// the TemplateInstantiator rather than declared directly.
func (e *TypeEntry) IsTemplateInstance() bool {
	return e.Tag == EntryClass && e.TemplateOrigin != nil
}

// FunctionImplTag discriminates FunctionEntry's implementation variant.
type FunctionImplTag int

const (
	ImplScript FunctionImplTag = iota
	ImplFFI
	ImplAbstract
)

// FunctionParam describes one parameter of a FunctionDef.
type FunctionParam struct {
	Name          string
	Type          typesystem.DataType
	HasDefault    bool
	HandleIsConst bool // meaningful only when Type.IsHandle
}

// FunctionTraits are the orthogonal boolean qualifiers a declaration may
// carry.
type FunctionTraits struct {
	IsConst       bool
	IsVirtual     bool
	IsFinal       bool
	IsAbstract    bool
	IsConstructor bool
	IsDestructor  bool
	IsExplicit    bool
}

// FunctionDef is the signature shared by every function-shaped entry:
// free functions, methods, constructors, destructors.
type FunctionDef struct {
	Hash          typehash.Hash
	Name          string // unqualified (method or function name)
	QualifiedName string
	Params        []FunctionParam
	Return        typesystem.DataType
	ObjectType    *typehash.Hash // owner type if this is a method
	Traits        FunctionTraits
}

// ScriptImpl is the body of a script-defined function: a reference into
// its compilation unit and the bytecode chunk produced for it.
type ScriptImpl struct {
	UnitID     string
	Span       Span
	Bytecode   []byte // nil until the Body Compiler has run
	ConstPool  []interface{}
}

// Span is a minimal source location, independent of internal/token to
// avoid a registry->parser import cycle while still letting FunctionEntry
// carry provenance.
type Span struct {
	Line, Column int
}

// FFIImpl is a trampoline handle into host-native code. The registry does
// not know the host's calling convention; NativeTrampoline is an opaque
// key the VM's FFI dispatcher resolves.
type FFIImpl struct {
	NativeTrampoline string
}

// FunctionEntry is FunctionDef plus exactly one implementation.
type FunctionEntry struct {
	Def  FunctionDef
	Tag  FunctionImplTag
	Script *ScriptImpl
	FFI    *FFIImpl
}

// GlobalImplTag discriminates GlobalPropertyEntry's implementation.
type GlobalImplTag int

const (
	GlobalScript GlobalImplTag = iota
	GlobalFFI
)

// GlobalPropertyEntry is a top-level (namespace-scoped) variable.
type GlobalPropertyEntry struct {
	Hash          typehash.Hash
	QualifiedName string
	Type          typesystem.DataType
	IsConst       bool
	Tag           GlobalImplTag

	// Valid when Tag == GlobalScript.
	SlotIndex int

	// Valid when Tag == GlobalFFI.
	Address string // opaque host-resolved address key
}
