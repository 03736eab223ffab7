package registry

import (
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

// primitiveLayout pairs a Primitive with the spelling scripts use to name
// it and its Value-kind memory shape. Names must match the private
// primitiveNames table in internal/typesystem/conversion.go exactly —
// that table is what PrimitiveHash derives a primitive's TypeHash from.
var primitiveLayout = []struct {
	prim  typesystem.Primitive
	name  string
	size  int
	align int
}{
	{typesystem.PrimI8, "int8", 1, 1},
	{typesystem.PrimI16, "int16", 2, 2},
	{typesystem.PrimI32, "int32", 4, 4},
	{typesystem.PrimI64, "int64", 8, 8},
	{typesystem.PrimU8, "uint8", 1, 1},
	{typesystem.PrimU16, "uint16", 2, 2},
	{typesystem.PrimU32, "uint32", 4, 4},
	{typesystem.PrimU64, "uint64", 8, 8},
	{typesystem.PrimF32, "float", 4, 4},
	{typesystem.PrimF64, "double", 8, 8},
	{typesystem.PrimBool, "bool", 1, 1},
}

// primitiveAliases maps the short spellings AngelScript-family scripts
// write for the 32-bit default width onto the canonical name above; the
// canonical name (not the alias) carries the registered TypeHash, so
// `int` and `int32` resolve to the same symbol without a second
// RegisterType call (which RegisterType would reject as a hash
// collision).
var primitiveAliases = map[string]string{
	"int":  "int32",
	"uint": "uint32",
}

// stringTypeName is the built-in value-type name scripts use for string
// literals; it has no script-visible constructors because the compiler
// only ever produces it via StringLiteral/string-concatenation bytecode,
// never a user `new` expression.
const stringTypeName = "string"

// InstallPrelude registers the closed primitive set plus the built-in
// `string` value type into the global registry, the way a host's FFI
// bootstrap would — but for symbols every script needs regardless of
// host, so the driver installs them unconditionally before any unit
// compiles (generalizing funxy/internal/symbols.GetPrelude()'s
// once-initialized built-in table to this explicitly host-constructed
// Registry). Idempotent: a second call on an already-installed registry
// is a silent no-op rather than a duplicate-registration error.
func InstallPrelude(r *Registry) *diagnostics.Error {
	if _, exists := r.GetType(typehash.FromName("int32")); exists {
		return nil
	}
	for _, p := range primitiveLayout {
		entry := &TypeEntry{
			Tag:           EntryClass,
			Hash:          typesystem.PrimitiveHash(p.prim),
			Name:          p.name,
			QualifiedName: p.name,
			Kind:          typesystem.ValueKind(p.size, p.align, true),
		}
		if err := r.RegisterType(entry); err != nil {
			return err
		}
	}
	for alias, canonical := range primitiveAliases {
		h, ok := r.lookupByQualifiedName(canonical)
		if !ok {
			continue
		}
		r.byQualifiedName[alias] = h
	}

	strHash := typehash.FromName(stringTypeName)
	r.types[strHash] = &TypeEntry{
		Tag:           EntryClass,
		Hash:          strHash,
		Name:          stringTypeName,
		QualifiedName: stringTypeName,
		Kind:          typesystem.ValueKind(16, 8, false),
	}
	r.byQualifiedName[stringTypeName] = strHash
	r.behaviors[strHash] = NewTypeBehaviors()
	return nil
}
