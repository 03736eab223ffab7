package compiler_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/arena"
	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/compiler"
	"github.com/funvibe/langc/internal/lexer"
	"github.com/funvibe/langc/internal/parser"
	"github.com/funvibe/langc/internal/pipeline"
	"github.com/funvibe/langc/internal/registry"
)

func compileSource(t *testing.T, src string) *compiler.ModuleOutput {
	t.Helper()
	l := lexer.New(src, arena.New())
	stream := pipeline.NewTokenStream(l)
	prog, errs := parser.ParseProgram(stream)
	require.Empty(t, errs)

	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))
	unit := reg.NewUnit("main")

	return compiler.Compile(prog, unit, "main", "main.lang", nil)
}

func TestCompileFreeFunction(t *testing.T) {
	out := compileSource(t, `
		int add(int a, int b) {
			return a + b;
		}
	`)
	require.Empty(t, out.Errors)
	require.Len(t, out.Bytecode, 1)

	for _, chunk := range out.Bytecode {
		require.NotEmpty(t, chunk.Code)
	}
}

func TestCompileDisassemblySnapshot(t *testing.T) {
	out := compileSource(t, `
		int square(int x) {
			return x * x;
		}
	`)
	require.Empty(t, out.Errors)

	for _, chunk := range out.Bytecode {
		snaps.MatchSnapshot(t, bytecode.Disassemble(chunk, "square"))
	}
}

func TestCompileGlobalInitEmitsModuleInitChunk(t *testing.T) {
	out := compileSource(t, `int counter = 41 + 1;`)
	require.Empty(t, out.Errors)
	_, ok := out.Bytecode[compiler.ModuleInitHash("main")]
	require.True(t, ok, "a unit declaring a global with an initializer must emit a $moduleinit chunk")
}

func TestCompileReportsUnknownTypeError(t *testing.T) {
	out := compileSource(t, `Nonexistent x;`)
	require.NotEmpty(t, out.Errors)
}
