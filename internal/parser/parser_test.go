package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/arena"
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/lexer"
	"github.com/funvibe/langc/internal/parser"
	"github.com/funvibe/langc/internal/pipeline"
	"github.com/funvibe/langc/internal/typesystem"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src, arena.New())
	stream := pipeline.NewTokenStream(l)
	prog, errs := parser.ParseProgram(stream)
	require.Empty(t, errs, "unexpected parser errors for %q", src)
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parse(t, "int x = 5;")
	require.Len(t, prog.Decls, 1)
	v, ok := prog.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "x", v.Name)
	require.False(t, v.IsConst)
}

func TestParseClassWithHandleField(t *testing.T) {
	prog := parse(t, "class Player { Weapon@ weapon; }")
	require.Len(t, prog.Decls, 1)
	c, ok := prog.Decls[0].(*ast.ClassDecl)
	require.True(t, ok)
	require.Equal(t, "Player", c.Name)
	require.Len(t, c.Fields, 1)
	require.Equal(t, "weapon", c.Fields[0].Name)
}

func TestParseClassWithBaseAndInterface(t *testing.T) {
	prog := parse(t, "class Orc : Monster, IAttackable { }")
	c := prog.Decls[0].(*ast.ClassDecl)
	require.NotNil(t, c.Base)
	require.Len(t, c.Interfaces, 1)
}

func TestParseFuncWithRefModifiers(t *testing.T) {
	prog := parse(t, "void swap(inout int a, inout int b) { }")
	fn, ok := prog.Decls[0].(*ast.FunctionDecl)
	require.True(t, ok)
	require.Equal(t, "swap", fn.Name)
	require.Len(t, fn.Params, 2)
	require.Equal(t, typesystem.RefInOut, fn.Params[0].Type.RefModifier)
}

func TestParseImportDecl(t *testing.T) {
	prog := parse(t, `import "physics";`)
	require.Len(t, prog.Imports, 1)
	require.Equal(t, "physics", prog.Imports[0].Path)
}

func TestParseEnumDecl(t *testing.T) {
	prog := parse(t, "enum Color { Red, Green = 5, Blue }")
	e, ok := prog.Decls[0].(*ast.EnumDecl)
	require.True(t, ok)
	require.Len(t, e.Values, 3)
	require.Equal(t, "Green", e.Values[1].Name)
	require.NotNil(t, e.Values[1].Value)
}
