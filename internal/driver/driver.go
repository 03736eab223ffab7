// Package driver orders and runs multi-unit builds: it installs each
// unit's imports into the shared registry before that unit compiles,
// then folds the unit's own registrations in before moving to the next
// (spec §5 Ordering, §4.12). Grounded on funvibe-funxy's
// internal/modules.Loader — the cycle-detection map (Processing) and
// cached-by-path module table are the same shape here, generalized from
// "load a directory of source files and recurse into its imports" to
// "topologically order a fixed unit list and Fold each one's
// RegistryDelta into the shared registry before its dependents run".
package driver

import (
	"fmt"
	"sort"

	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/compiler"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/token"
)

// Unit is one parsed compilation unit awaiting Registration+Body
// compilation. ID is the name other units' ImportDecl.Path refers to
// (by convention, the unit's import path with its source extension
// stripped); Imports lists those same IDs, already resolved from
// Program.Imports by the caller (a host may map a relative file path to
// a unit ID however it likes before calling Build).
type Unit struct {
	ID      string
	File    string
	Program *ast.Program
	Imports []string
}

// Build topologically sorts units by import edges (Kahn's algorithm,
// deterministic tie-break by ID so a build's output order is stable
// across runs), then runs compiler.Compile for each unit in that order
// against a fresh per-unit registry (reg.NewUnit), folding its
// RegistryDelta into reg before the next unit starts. reg must already
// have had registry.InstallPrelude (and any host FFI registration) run
// against it — Build itself never installs the prelude, since a host
// embedding multiple independent builds against the same global
// registry would otherwise install it repeatedly.
//
// A unit whose own compilation reports errors still has its
// RegistryDelta folded (so sibling units referencing only its
// successfully-registered symbols keep working), but Build's returned
// error is non-nil whenever any unit reported errors, and the caller
// should treat the whole build as failed for bytecode-emission
// purposes (spec §5.3: "the driver refuses to emit bytecode for any
// function whose body reported an error").
func Build(units []Unit, reg *registry.Registry) ([]*compiler.ModuleOutput, error) {
	order, cycleErr := topoSort(units)
	if cycleErr != nil {
		return nil, cycleErr
	}

	byID := make(map[string]Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	outputs := make([]*compiler.ModuleOutput, 0, len(units))
	var failed []string

	for _, id := range order {
		u := byID[id]
		unitReg := reg.NewUnit(u.ID)

		out := compiler.Compile(u.Program, unitReg, u.ID, u.File, u.Imports)
		outputs = append(outputs, out)

		if err := reg.Fold(out.RegistryDelta); err != nil {
			out.Errors = append(out.Errors, err)
		}
		if len(out.Errors) > 0 {
			failed = append(failed, u.ID)
		}
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		return outputs, fmt.Errorf("build failed: unit(s) reported errors: %v", failed)
	}
	return outputs, nil
}

// topoSort orders units so that every unit appears after all units
// named in its Imports (Kahn's algorithm). A unit importing an ID not
// present in units is left unconstrained by that edge — it is the
// host's job to have already folded that dependency into reg (e.g. a
// previously completed Build call, or FFI registration), not this
// Build call's.
func topoSort(units []Unit) ([]string, *diagnostics.Error) {
	inDegree := make(map[string]int, len(units))
	dependents := make(map[string][]string)
	known := make(map[string]bool, len(units))
	for _, u := range units {
		known[u.ID] = true
	}
	for _, u := range units {
		inDegree[u.ID] = 0
	}
	for _, u := range units {
		for _, dep := range u.Imports {
			if !known[dep] {
				continue
			}
			dependents[dep] = append(dependents[dep], u.ID)
			inDegree[u.ID]++
		}
	}

	var ready []string
	for _, u := range units {
		if inDegree[u.ID] == 0 {
			ready = append(ready, u.ID)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var unlocked []string
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				unlocked = append(unlocked, dep)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
	}

	if len(order) != len(units) {
		var stuck []string
		for id, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, diagnostics.New(diagnostics.PhaseRegistration, diagnostics.ErrImportCycle, token.Span{}, fmt.Sprintf("%v", stuck))
	}
	return order, nil
}
