// Package registrydb persists the global (FFI) registry to a local
// SQLite file between host process runs, so a long-lived host does not
// need to re-run internal/hostmanifest registration on every restart
// (spec §6's "unit-scoped vs shared" persistence note on the Symbol
// Registry). It never touches the per-build unit-scoped registries
// internal/driver creates — only the snapshot a host explicitly asks to
// save, between builds, matching SPEC_FULL.md's shared-resource policy
// that registry mutation (including this persistence layer's writes)
// never overlaps a Registration Pass.
package registrydb

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/funvibe/langc/internal/registry"
)

// DB wraps a SQLite connection holding exactly one registry snapshot.
// Grounded on mcgru-funxy/internal/evaluator/builtins_sql.go's
// database/sql + blank modernc.org/sqlite import pattern — this package
// needs none of that file's ADT marshaling dance because a
// registry.Delta already serializes cleanly as one JSON blob (the same
// property internal/registry/exportpb relies on for ModuleOutput).
type DB struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS registry_snapshot (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	delta_json TEXT NOT NULL,
	saved_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// Open creates or opens the SQLite file at path and ensures its schema
// exists.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("registrydb: open %s: %w", path, err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("registrydb: schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

func (db *DB) Close() error { return db.conn.Close() }

// Save overwrites the stored snapshot with reg's current Delta (the
// types/functions/globals/behaviors registered directly on reg — a host
// calls this with its top-level global registry, not a per-unit one,
// since that is the only registry whose contents make sense to survive
// a process restart).
func (db *DB) Save(reg *registry.Registry) error {
	data, err := json.Marshal(reg.Delta())
	if err != nil {
		return fmt.Errorf("registrydb: encode delta: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT INTO registry_snapshot (id, delta_json) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET delta_json = excluded.delta_json, saved_at = datetime('now')`,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("registrydb: save: %w", err)
	}
	return nil
}

// Load reads back the stored snapshot, or (nil, nil) if none has been
// saved yet — a fresh host process with no prior snapshot should start
// from registry.InstallPrelude plus a fresh host.yaml load, not an
// error.
func (db *DB) Load() (*registry.Delta, error) {
	var data string
	err := db.conn.QueryRow(`SELECT delta_json FROM registry_snapshot WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registrydb: load: %w", err)
	}

	var delta registry.Delta
	if err := json.Unmarshal([]byte(data), &delta); err != nil {
		return nil, fmt.Errorf("registrydb: decode delta: %w", err)
	}
	return &delta, nil
}

// Restore loads the stored snapshot (if any) and folds it directly into
// reg, the same Fold internal/driver.Build uses after a unit compiles —
// a host calls this once, immediately after registry.InstallPrelude,
// before any host.yaml load or unit build.
func (db *DB) Restore(reg *registry.Registry) error {
	delta, err := db.Load()
	if err != nil {
		return err
	}
	if delta == nil {
		return nil
	}
	if diagErr := reg.Fold(delta); diagErr != nil {
		return fmt.Errorf("registrydb: restore: %w", diagErr)
	}
	return nil
}
