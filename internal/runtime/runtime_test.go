package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/arena"
	"github.com/funvibe/langc/internal/compiler"
	"github.com/funvibe/langc/internal/lexer"
	"github.com/funvibe/langc/internal/parser"
	"github.com/funvibe/langc/internal/pipeline"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/runtime"
)

func buildUnit(t *testing.T, src string) (*compiler.ModuleOutput, *registry.Registry) {
	t.Helper()
	l := lexer.New(src, arena.New())
	stream := pipeline.NewTokenStream(l)
	prog, errs := parser.ParseProgram(stream)
	require.Empty(t, errs)

	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))
	unit := reg.NewUnit("main")

	out := compiler.Compile(prog, unit, "main", "main.lang", nil)
	require.Empty(t, out.Errors)
	require.Nil(t, reg.Fold(out.RegistryDelta))
	return out, reg
}

func TestVMCallsCompiledFunction(t *testing.T) {
	out, reg := buildUnit(t, `
		int add(int a, int b) {
			return a + b;
		}
	`)

	vm := runtime.New(reg, out.Bytecode, 0)
	hash, ok := reg.LookupQualified("add")
	require.True(t, ok)

	result, err := vm.Call(hash, []runtime.Value{runtime.IntVal(2), runtime.IntVal(3)})
	require.NoError(t, err)
	require.Equal(t, int64(5), result.AsInt())
}

func TestVMCallReturnsErrorForUnknownFunction(t *testing.T) {
	out, reg := buildUnit(t, `int noop() { return 0; }`)
	vm := runtime.New(reg, out.Bytecode, 0)

	bogus, ok := reg.LookupQualified("doesNotExist")
	require.False(t, ok)
	_, err := vm.Call(bogus, nil)
	require.Error(t, err)
}

func TestVMRunsModuleInit(t *testing.T) {
	out, reg := buildUnit(t, `int counter = 40 + 2;`)

	globalHash, ok := reg.LookupQualified("counter")
	require.True(t, ok)
	g, ok := reg.GetGlobal(globalHash)
	require.True(t, ok)

	vm := runtime.New(reg, out.Bytecode, g.SlotIndex+1)
	require.NoError(t, vm.RunModuleInit(compiler.ModuleInitHash("main")))
	require.Equal(t, int64(42), vm.GlobalSlot(g.SlotIndex).AsInt())
}

func TestValueConstructorsAndAccessors(t *testing.T) {
	require.Equal(t, int64(7), runtime.IntVal(7).AsInt())
	require.Equal(t, 2.5, runtime.FloatVal(2.5).AsFloat())
	require.True(t, runtime.BoolVal(true).AsBool())
	require.False(t, runtime.BoolVal(false).AsBool())
	require.True(t, runtime.NullHandle().IsNullHandle())
	require.Equal(t, "hi", runtime.StringVal("hi").AsString())
}
