package exportpb_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/arena"
	"github.com/funvibe/langc/internal/compiler"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/lexer"
	"github.com/funvibe/langc/internal/parser"
	"github.com/funvibe/langc/internal/pipeline"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/registry/exportpb"
)

func TestWriteReadRoundTripsBytecodeAndDelta(t *testing.T) {
	l := lexer.New(`int add(int a, int b) { return a + b; }`, arena.New())
	stream := pipeline.NewTokenStream(l)
	prog, errs := parser.ParseProgram(stream)
	require.Empty(t, errs)

	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))
	unit := reg.NewUnit("main")
	out := compiler.Compile(prog, unit, "main", "main.lang", nil)
	require.Empty(t, out.Errors)

	var buf bytes.Buffer
	require.NoError(t, exportpb.Write(&buf, out))

	got, err := exportpb.Read(&buf)
	require.NoError(t, err)
	require.Len(t, got.Bytecode, len(out.Bytecode))
	for hash, chunk := range out.Bytecode {
		gotChunk, ok := got.Bytecode[hash]
		require.True(t, ok)
		require.Equal(t, chunk.Code, gotChunk.Code)
	}
	require.Equal(t, len(out.RegistryDelta.Types), len(got.RegistryDelta.Types))
}

func TestReadReconstructsErrorMessages(t *testing.T) {
	l := lexer.New(`Nonexistent x;`, arena.New())
	stream := pipeline.NewTokenStream(l)
	prog, errs := parser.ParseProgram(stream)
	require.Empty(t, errs)

	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))
	unit := reg.NewUnit("main")
	out := compiler.Compile(prog, unit, "main", "main.lang", nil)
	require.NotEmpty(t, out.Errors)

	var buf bytes.Buffer
	require.NoError(t, exportpb.Write(&buf, out))

	got, err := exportpb.Read(&buf)
	require.NoError(t, err)
	require.Len(t, got.Errors, len(out.Errors))
	want := fmt.Sprintf("[%s/%s] internal compiler error: %s", out.Errors[0].Phase, diagnostics.ErrInternal, out.Errors[0].Error())
	require.Equal(t, want, got.Errors[0].Error())
}
