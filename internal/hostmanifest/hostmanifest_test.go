package hostmanifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/hostmanifest"
	"github.com/funvibe/langc/internal/registry"
)

const sampleManifest = `
types:
  - name: Vector3
    kind: value_pod
    fields:
      - name: x
        type: float
      - name: y
        type: float
      - name: z
        type: float

functions:
  - decl: "float distance(Vector3 a, Vector3 b)"
    native: "mathlib.Distance"

globals:
  - decl: "const int32 MAX_PLAYERS"
    address: "game.MaxPlayers"
`

func TestLoadYAMLRegistersTypesFunctionsAndGlobals(t *testing.T) {
	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))

	dir := t.TempDir()
	path := filepath.Join(dir, "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0644))

	require.NoError(t, hostmanifest.LoadYAML(path, reg))

	typeHash, ok := reg.LookupQualified("Vector3")
	require.True(t, ok)
	entry, ok := reg.GetType(typeHash)
	require.True(t, ok)
	require.Len(t, entry.Properties, 3)

	fns := reg.FindFunctionsByName("distance")
	require.Len(t, fns, 1)
	require.Equal(t, registry.ImplFFI, fns[0].Tag)
	require.Equal(t, "mathlib.Distance", fns[0].FFI.NativeTrampoline)

	globalHash, ok := reg.LookupQualified("MAX_PLAYERS")
	require.True(t, ok)
	g, ok := reg.GetGlobal(globalHash)
	require.True(t, ok)
	require.True(t, g.IsConst)
	require.Equal(t, "game.MaxPlayers", g.Address)
}

func TestLoadYAMLMissingFileReturnsError(t *testing.T) {
	reg := registry.NewGlobal()
	require.Nil(t, registry.InstallPrelude(reg))
	err := hostmanifest.LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"), reg)
	require.Error(t, err)
}
