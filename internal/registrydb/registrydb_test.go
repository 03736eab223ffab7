package registrydb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/hostmanifest"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/registrydb"
)

const manifestYAML = `
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
`

func TestSaveLoadRoundTripsDelta(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "host.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifestYAML), 0644))

	reg := registry.NewGlobal()
	require.NoError(t, hostmanifest.LoadYAML(manifestPath, reg))

	dbPath := filepath.Join(dir, "snapshot.db")
	db, err := registrydb.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Save(reg))

	delta, err := db.Load()
	require.NoError(t, err)
	require.NotNil(t, delta)
	require.Len(t, delta.Types, 1)
	require.Equal(t, "Vector3", delta.Types[0].Name)
}

func TestLoadReturnsNilWhenNoSnapshotSaved(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snapshot.db")
	db, err := registrydb.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	delta, err := db.Load()
	require.NoError(t, err)
	require.Nil(t, delta)
}

func TestRestoreFoldsSnapshotIntoFreshRegistry(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "host.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifestYAML), 0644))

	src := registry.NewGlobal()
	require.NoError(t, hostmanifest.LoadYAML(manifestPath, src))

	dbPath := filepath.Join(dir, "snapshot.db")
	db, err := registrydb.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Save(src))

	dst := registry.NewGlobal()
	require.NoError(t, db.Restore(dst))

	_, ok := dst.LookupQualified("Vector3")
	require.True(t, ok)
}
