// Package typesystem represents the language's nominal, statically
// resolved data types: a DataType is a TypeHash reference plus the
// const/handle qualifiers that distinguish `T`, `const T`, `T@`,
// `const T@`, and `T@ const` from one another, the TypeKind that drives
// memory-shape and lifecycle decisions, and the conversion lattice that
// is the single source of truth for assignability and overload ranking.
//
// The package keeps the teacher's (funxy/internal/typesystem) file split
// and "Type is a small closed set of struct variants, compared and
// substituted structurally" discipline, but the variants themselves are
// rebuilt end to end: this is a nominal, handle-based OO type system, not
// funxy's Hindley-Milner inference lattice.
package typesystem

import "github.com/funvibe/langc/internal/typehash"

// RefModifier classifies how a parameter is passed, distinct from the
// const/handle qualifiers carried by DataType itself.
type RefModifier int

const (
	RefNone RefModifier = iota
	RefIn
	RefOut
	RefInOut
)

func (m RefModifier) String() string {
	switch m {
	case RefIn:
		return "in"
	case RefOut:
		return "out"
	case RefInOut:
		return "inout"
	default:
		return ""
	}
}

// Distinguished type hashes that do not correspond to an ordinary
// registered TypeEntry.
var (
	NullHash = typehash.FromName("$null")
	VoidHash = typehash.FromName("$void")
)

// DataType is a fully-qualified type reference as it appears on a
// parameter, return value, field, or local slot.
type DataType struct {
	TypeHash        typehash.Hash
	IsConst         bool // the reference/handle slot itself is const
	IsHandle        bool // T@ : pointer-like reference to a managed object
	IsHandleToConst bool // points at an immutable object; orthogonal to IsConst
	RefModifier     RefModifier
}

// Void is the distinguished void type (no instances).
func Void() DataType { return DataType{TypeHash: VoidHash} }

// IsVoid reports whether d is the void type.
func (d DataType) IsVoid() bool { return d.TypeHash == VoidHash }

// Null is the distinguished null-literal type, convertible to any handle.
func Null() DataType { return DataType{TypeHash: NullHash} }

// IsNull reports whether d is the null-literal type.
func (d DataType) IsNull() bool { return d.TypeHash == NullHash }

// Equal reports whether two DataTypes denote exactly the same reference
// (same underlying symbol and same qualifiers). Two DataTypes can refer
// to the same TypeHash but not be Equal (e.g. `Foo` vs `const Foo@`).
func (d DataType) Equal(o DataType) bool {
	return d.TypeHash == o.TypeHash &&
		d.IsConst == o.IsConst &&
		d.IsHandle == o.IsHandle &&
		d.IsHandleToConst == o.IsHandleToConst
}

// SameSymbol reports whether two DataTypes reference the same underlying
// type symbol, ignoring const/handle qualifiers.
func (d DataType) SameSymbol(o DataType) bool { return d.TypeHash == o.TypeHash }

// AsConst returns a copy of d with IsConst set.
func (d DataType) AsConst() DataType { d.IsConst = true; return d }

// AsHandle returns a copy of d with IsHandle set.
func (d DataType) AsHandle() DataType { d.IsHandle = true; return d }

// ReferenceKind classifies the lifecycle discipline of a Reference
// TypeKind.
type ReferenceKind int

const (
	StandardRefCounted ReferenceKind = iota // ordinary AddRef/Release shared handle
	NoCount                                 // borrowed, no AddRef/Release
	NoHandle                                // value-only class (no @ form)
	Scoped                                  // owns, released at scope exit
)

func (k ReferenceKind) String() string {
	switch k {
	case NoCount:
		return "NoCount"
	case NoHandle:
		return "NoHandle"
	case Scoped:
		return "Scoped"
	default:
		return "StandardRefCounted"
	}
}

// KindTag discriminates the TypeKind sum variants.
type KindTag int

const (
	KindValue KindTag = iota
	KindScriptObject
	KindReference
)

// TypeKind categorizes memory shape and drives both code generation and
// behavior validation. It is a closed sum type: exactly one of the
// Value/Reference fields is meaningful, selected by Tag.
type TypeKind struct {
	Tag KindTag

	// Valid when Tag == KindValue.
	Size  int
	Align int
	Pod   bool

	// Valid when Tag == KindReference.
	RefKind ReferenceKind
}

func ValueKind(size, align int, pod bool) TypeKind {
	return TypeKind{Tag: KindValue, Size: size, Align: align, Pod: pod}
}

func ScriptObjectKind() TypeKind { return TypeKind{Tag: KindScriptObject} }

func ReferenceKindOf(rk ReferenceKind) TypeKind {
	return TypeKind{Tag: KindReference, RefKind: rk}
}

func (k TypeKind) String() string {
	switch k.Tag {
	case KindValue:
		if k.Pod {
			return "Value(POD)"
		}
		return "Value"
	case KindScriptObject:
		return "ScriptObject"
	case KindReference:
		return "Reference/" + k.RefKind.String()
	default:
		return "?"
	}
}

// IsHandleCapable reports whether instances of a type with this kind may
// be referenced through a `T@` handle.
func (k TypeKind) IsHandleCapable() bool {
	if k.Tag == KindScriptObject {
		return true
	}
	if k.Tag != KindReference {
		return false
	}
	return k.RefKind != NoHandle
}
