package typesystem

import "github.com/funvibe/langc/internal/typehash"

// Conversion is the non-nil result of a successful CanConvertTo query: a
// cost (lower is preferred by overload resolution) and whether the
// conversion may be applied without an explicit cast expression.
type Conversion struct {
	Cost      int
	Implicit  bool
	ViaFunc   *typehash.Hash // user-defined conversion function, if any
	ViaCtor   bool           // true if ViaFunc is a converting constructor rather than opImplConv/opConv/opImplCast/opCast
}

const (
	costIdentity        = 0
	costNullToHandle     = 1
	costIntWiden         = 1
	costIntNarrow        = 2
	costSignReinterpret  = 2
	costIntToFloat       = 1
	costInt64ToFloat     = 2
	costFloatToIntTrunc  = 3
	costFloatWiden       = 1
	costFloatNarrow      = 2
	costAddConstHandle   = 2
	costRemoveConstHandle = 100
	costDerivedToBase    = 3
	costDerivedToBaseConst = 2
	costClassToInterface = 5
	costClassToInterfaceConst = 4
	costUserCtor         = 10
	costOpImplConv       = 10
	costOpConv           = 100
	costOpImplCast       = 10
	costOpCast           = 100
)

// Primitive is the closed set of built-in scalar kinds the conversion
// table is defined over. Script DataTypes for these carry the
// corresponding well-known TypeHash (see PrimitiveHash).
type Primitive int

const (
	PrimI8 Primitive = iota
	PrimI16
	PrimI32
	PrimI64
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimF32
	PrimF64
	PrimBool
	notPrimitive
)

var primitiveNames = map[Primitive]string{
	PrimI8: "int8", PrimI16: "int16", PrimI32: "int32", PrimI64: "int64",
	PrimU8: "uint8", PrimU16: "uint16", PrimU32: "uint32", PrimU64: "uint64",
	PrimF32: "float", PrimF64: "double", PrimBool: "bool",
}

var primitiveHashes = func() map[Primitive]typehash.Hash {
	m := make(map[Primitive]typehash.Hash, len(primitiveNames))
	for p, name := range primitiveNames {
		m[p] = typehash.FromName(name)
	}
	return m
}()

var hashToPrimitive = func() map[typehash.Hash]Primitive {
	m := make(map[typehash.Hash]Primitive, len(primitiveHashes))
	for p, h := range primitiveHashes {
		m[h] = p
	}
	return m
}()

// PrimitiveHash returns the well-known TypeHash for a primitive kind.
func PrimitiveHash(p Primitive) typehash.Hash { return primitiveHashes[p] }

func primitiveOf(h typehash.Hash) (Primitive, bool) {
	p, ok := hashToPrimitive[h]
	return p, ok
}

func isIntPrimitive(p Primitive) bool {
	switch p {
	case PrimI8, PrimI16, PrimI32, PrimI64, PrimU8, PrimU16, PrimU32, PrimU64:
		return true
	}
	return false
}

func isUnsigned(p Primitive) bool {
	switch p {
	case PrimU8, PrimU16, PrimU32, PrimU64:
		return true
	}
	return false
}

func isFloatPrimitive(p Primitive) bool { return p == PrimF32 || p == PrimF64 }

func intWidth(p Primitive) int {
	switch p {
	case PrimI8, PrimU8:
		return 8
	case PrimI16, PrimU16:
		return 16
	case PrimI32, PrimU32:
		return 32
	case PrimI64, PrimU64:
		return 64
	}
	return 0
}

// ConversionQuerier is the narrow slice of Registry that CanConvertTo
// needs, letting internal/typesystem stay free of an import cycle with
// internal/registry (which itself imports internal/typesystem for
// DataType/TypeKind).
type ConversionQuerier interface {
	BaseClassChain(h typehash.Hash) []typehash.Hash
	ImplementedInterfaces(h typehash.Hash) []typehash.Hash
	SingleArgConstructor(target typehash.Hash, from DataType) (fn typehash.Hash, explicit bool, ok bool)
	OperatorConversion(from typehash.Hash, op string, to typehash.Hash) (fn typehash.Hash, ok bool)
}

// CanConvertTo implements spec §4.6: identity, null-to-handle, the
// primitive table, handle conversions, and finally user-defined
// conversions, in that precedence order. Returns nil when no conversion
// path exists at all (not even an explicit one).
func CanConvertTo(from, to DataType, reg ConversionQuerier, floatToIntNarrowingAllowed bool) *Conversion {
	if from.Equal(to) {
		return &Conversion{Cost: costIdentity, Implicit: true}
	}

	if from.IsNull() && to.IsHandle {
		return &Conversion{Cost: costNullToHandle, Implicit: true}
	}

	if fp, ok := primitiveOf(from.TypeHash); ok && !from.IsHandle && !to.IsHandle {
		if tp, ok2 := primitiveOf(to.TypeHash); ok2 {
			if c := convertPrimitive(fp, tp, floatToIntNarrowingAllowed); c != nil {
				return c
			}
		}
	}

	if from.IsHandle && to.IsHandle {
		if c := convertHandle(from, to, reg); c != nil {
			return c
		}
	}

	if !from.IsHandle && !to.IsHandle {
		if c := convertUserValue(from, to, reg); c != nil {
			return c
		}
	}

	if from.IsHandle && to.IsHandle {
		if c := convertUserHandle(from, to, reg); c != nil {
			return c
		}
	}

	return nil
}

func convertPrimitive(from, to Primitive, narrowingAllowed bool) *Conversion {
	if from == to {
		return &Conversion{Cost: costIdentity, Implicit: true}
	}
	if from == PrimBool || to == PrimBool {
		return nil
	}

	switch {
	case isIntPrimitive(from) && isIntPrimitive(to):
		switch {
		case isUnsigned(from) != isUnsigned(to) && intWidth(from) == intWidth(to):
			return &Conversion{Cost: costSignReinterpret, Implicit: true}
		case intWidth(to) > intWidth(from):
			return &Conversion{Cost: costIntWiden, Implicit: true}
		default:
			return &Conversion{Cost: costIntNarrow, Implicit: true}
		}

	case isIntPrimitive(from) && isFloatPrimitive(to):
		cost := costIntToFloat
		if from == PrimI64 || from == PrimU64 {
			cost = costInt64ToFloat
		}
		return &Conversion{Cost: cost, Implicit: true}

	case isFloatPrimitive(from) && isIntPrimitive(to):
		return &Conversion{Cost: costFloatToIntTrunc, Implicit: narrowingAllowed}

	case isFloatPrimitive(from) && isFloatPrimitive(to):
		if from == PrimF32 && to == PrimF64 {
			return &Conversion{Cost: costFloatWiden, Implicit: true}
		}
		return &Conversion{Cost: costFloatNarrow, Implicit: true}
	}
	return nil
}

func convertHandle(from, to DataType, reg ConversionQuerier) *Conversion {
	if from.TypeHash == to.TypeHash {
		return handleQualifierConversion(from, to)
	}

	for _, base := range reg.BaseClassChain(from.TypeHash) {
		if base == to.TypeHash {
			cost := costDerivedToBase
			if !from.IsConst && to.IsConst {
				cost = costDerivedToBaseConst
			}
			return &Conversion{Cost: cost, Implicit: true}
		}
	}

	for _, iface := range reg.ImplementedInterfaces(from.TypeHash) {
		if iface == to.TypeHash {
			cost := costClassToInterface
			if !from.IsConst && to.IsConst {
				cost = costClassToInterfaceConst
			}
			return &Conversion{Cost: cost, Implicit: true}
		}
	}
	return nil
}

// handleQualifierConversion handles same-symbol handle-to-handle
// conversions that only change const/handle-to-const qualifiers.
func handleQualifierConversion(from, to DataType) *Conversion {
	addingConst := (!from.IsConst && to.IsConst) || (!from.IsHandleToConst && to.IsHandleToConst)
	removingConst := (from.IsConst && !to.IsConst) || (from.IsHandleToConst && !to.IsHandleToConst)

	switch {
	case removingConst:
		return &Conversion{Cost: costRemoveConstHandle, Implicit: false}
	case addingConst:
		return &Conversion{Cost: costAddConstHandle, Implicit: true}
	default:
		return &Conversion{Cost: costIdentity, Implicit: true}
	}
}

func convertUserValue(from, to DataType, reg ConversionQuerier) *Conversion {
	if fn, explicit, ok := reg.SingleArgConstructor(to.TypeHash, from); ok {
		return &Conversion{Cost: costUserCtor, Implicit: !explicit, ViaFunc: &fn, ViaCtor: true}
	}
	if fn, ok := reg.OperatorConversion(from.TypeHash, "opImplConv", to.TypeHash); ok {
		return &Conversion{Cost: costOpImplConv, Implicit: true, ViaFunc: &fn}
	}
	if fn, ok := reg.OperatorConversion(from.TypeHash, "opConv", to.TypeHash); ok {
		return &Conversion{Cost: costOpConv, Implicit: false, ViaFunc: &fn}
	}
	return nil
}

func convertUserHandle(from, to DataType, reg ConversionQuerier) *Conversion {
	if fn, ok := reg.OperatorConversion(from.TypeHash, "opImplCast", to.TypeHash); ok {
		return &Conversion{Cost: costOpImplCast, Implicit: true, ViaFunc: &fn}
	}
	if fn, ok := reg.OperatorConversion(from.TypeHash, "opCast", to.TypeHash); ok {
		return &Conversion{Cost: costOpCast, Implicit: false, ViaFunc: &fn}
	}
	return nil
}

// Preferred reports whether a has lower conversion cost than b, with no
// tiebreak; callers apply the const-preference tiebreak themselves once
// all argument-cost sums are equal (spec §4.6).
func Preferred(a, b *Conversion) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Cost < b.Cost
}

// PrimitiveCategory groups the closed Primitive set by the bytecode
// family that handles its arithmetic (spec §6): once an operand has been
// promoted, the Body Compiler's operator table only needs to tell
// signed/unsigned 32/64-bit integers and 32/64-bit floats apart, not the
// full i8..u64 width matrix.
type PrimitiveCategory int

const (
	CatNotPrimitive PrimitiveCategory = iota
	CatBool
	CatI32
	CatI64
	CatU32
	CatU64
	CatF32
	CatF64
)

// CategoryOf classifies h's primitive family, if any, for bytecode
// opcode-family selection by internal/compiler.
func CategoryOf(h typehash.Hash) PrimitiveCategory {
	p, ok := primitiveOf(h)
	if !ok {
		return CatNotPrimitive
	}
	switch p {
	case PrimBool:
		return CatBool
	case PrimI8, PrimI16, PrimI32:
		return CatI32
	case PrimI64:
		return CatI64
	case PrimU8, PrimU16, PrimU32:
		return CatU32
	case PrimU64:
		return CatU64
	case PrimF32:
		return CatF32
	case PrimF64:
		return CatF64
	}
	return CatNotPrimitive
}

// IsPrimitive reports whether h is one of the built-in scalar kinds.
func IsPrimitive(h typehash.Hash) bool {
	_, ok := primitiveOf(h)
	return ok
}
