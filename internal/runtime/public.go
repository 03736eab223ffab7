package runtime

import "github.com/funvibe/langc/internal/typehash"

// GlobalSlot returns the current value of global slot idx, for a host
// inspecting state between calls (e.g. a REPL or a test harness reading
// back a script global after running an entry point).
func (vm *VM) GlobalSlot(idx int) Value { return vm.globals[idx] }

// SetGlobalSlot seeds global slot idx before the first call into a unit
// that reads it — used by a host to inject configuration that a
// GlobalFFI-tagged registry.GlobalPropertyEntry's Address names, since
// this reference VM has no separate "native address" memory space of its
// own; FFI globals and script globals share the same vm.globals array,
// indexed by registry.GlobalPropertyEntry.SlotIndex.
func (vm *VM) SetGlobalSlot(idx int, v Value) { vm.globals[idx] = v }

// RunModuleInit runs unitID's synthetic global-initializer chunk if one
// was emitted (internal/compiler.Compile only adds one when the unit
// declares at least one global with an initializer) — a host calls this
// once per unit, in the same dependency order internal/driver.Build
// already established, before calling any of that unit's functions.
func (vm *VM) RunModuleInit(moduleInitHash typehash.Hash) error {
	if _, ok := vm.chunks[moduleInitHash]; !ok {
		return nil
	}
	_, err := vm.Call(moduleInitHash, nil)
	return err
}
