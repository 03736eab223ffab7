package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

func TestInstallPreludeRegistersPrimitives(t *testing.T) {
	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))

	h, ok := reg.LookupQualified("int32")
	require.True(t, ok)
	entry, ok := reg.GetType(h)
	require.True(t, ok)
	require.Equal(t, "int32", entry.QualifiedName)
}

func TestRegisterTypeRejectsDuplicateHash(t *testing.T) {
	reg := registry.NewGlobal()
	h := typehash.FromName("game::Player")
	e := &registry.TypeEntry{Tag: registry.EntryClass, Hash: h, Name: "Player", QualifiedName: "game::Player", Kind: typesystem.ScriptObjectKind()}

	require.Nil(t, reg.RegisterType(e))
	err := reg.RegisterType(e)
	require.NotNil(t, err)
	require.Equal(t, "R001", string(err.Code))
}

func TestUnitRegistryChainsToGlobal(t *testing.T) {
	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))

	unit := reg.NewUnit("mainunit")
	h, ok := unit.LookupQualified("int32")
	require.True(t, ok, "a unit registry must see symbols already folded into its global outer")
	_, ok = unit.GetType(h)
	require.True(t, ok)
}

func TestValidateStandardRefCountedRequiresAddRefRelease(t *testing.T) {
	kind := typesystem.ReferenceKindOf(typesystem.StandardRefCounted)
	result := registry.Validate(kind, registry.NewTypeBehaviors())
	require.False(t, result.OK())
	require.Contains(t, result.Missing, registry.BehaviorAddRef)
	require.Contains(t, result.Missing, registry.BehaviorRelease)
}

func TestValidateNoCountForbidsAddRefRelease(t *testing.T) {
	kind := typesystem.ReferenceKindOf(typesystem.NoCount)
	b := registry.NewTypeBehaviors()
	h := typehash.FromName("native::Foo::AddRef")
	b.AddRef = &h
	result := registry.Validate(kind, b)
	require.False(t, result.OK())
	require.Contains(t, result.Forbidden, registry.BehaviorAddRef)
}

func TestValidateScriptObjectHasNoLifecycleRequirement(t *testing.T) {
	result := registry.Validate(typesystem.ScriptObjectKind(), registry.NewTypeBehaviors())
	require.True(t, result.OK())
}

func TestFoldRoundTripsThroughDelta(t *testing.T) {
	// Fold's caller (internal/driver) always hands it one unit's own
	// RegistryDelta, never a whole registry re-including the prelude it
	// was chained behind — so the delta under test here carries only the
	// one freshly-registered type, not src's inherited prelude entries.
	h := typehash.FromName("game::Player")
	delta := &registry.Delta{
		Types: []*registry.TypeEntry{{
			Tag: registry.EntryClass, Hash: h, Name: "Player", QualifiedName: "game::Player",
			Kind: typesystem.ScriptObjectKind(),
		}},
		Behaviors: map[typehash.Hash]*registry.TypeBehaviors{},
	}

	dst := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(dst))
	require.Nil(t, dst.Fold(delta))

	_, ok := dst.GetType(h)
	require.True(t, ok)
}
