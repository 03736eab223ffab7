package driver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/arena"
	"github.com/funvibe/langc/internal/driver"
	"github.com/funvibe/langc/internal/lexer"
	"github.com/funvibe/langc/internal/parser"
	"github.com/funvibe/langc/internal/pipeline"
	"github.com/funvibe/langc/internal/registry"
)

func parseUnit(t *testing.T, id, src string, imports []string) driver.Unit {
	t.Helper()
	l := lexer.New(src, arena.New())
	stream := pipeline.NewTokenStream(l)
	prog, errs := parser.ParseProgram(stream)
	require.Empty(t, errs)
	return driver.Unit{ID: id, File: id + ".lang", Program: prog, Imports: imports}
}

func TestBuildOrdersUnitsByImport(t *testing.T) {
	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))

	base := parseUnit(t, "base", `class Vector3 { float x; float y; float z; }`, nil)
	game := parseUnit(t, "game", `class Player { Vector3 pos; }`, []string{"base"})

	outputs, err := driver.Build([]driver.Unit{game, base}, reg)
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	_, ok := reg.LookupQualified("Vector3")
	require.True(t, ok, "base's Vector3 must be folded into the shared registry before game compiles")
	_, ok = reg.LookupQualified("Player")
	require.True(t, ok)
}

func TestBuildReportsImportCycle(t *testing.T) {
	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))

	a := parseUnit(t, "a", `class A { }`, []string{"b"})
	b := parseUnit(t, "b", `class B { }`, []string{"a"})

	_, err := driver.Build([]driver.Unit{a, b}, reg)
	require.Error(t, err)
}

func TestBuildFailsWhenAUnitHasErrorsButStillFoldsItsDelta(t *testing.T) {
	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))

	broken := parseUnit(t, "broken", `class Broken { Nonexistent field; }`, nil)
	sibling := parseUnit(t, "sibling", `class Sibling { }`, nil)

	outputs, err := driver.Build([]driver.Unit{broken, sibling}, reg)
	require.Error(t, err)
	require.Len(t, outputs, 2)

	_, ok := reg.LookupQualified("Sibling")
	require.True(t, ok, "a sibling unit with no errors of its own still gets folded")
}
