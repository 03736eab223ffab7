package runtime

import (
	"fmt"

	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typehash"
)

// dispatchCall resolves fn against both bytecode sources: a script
// function compiled into vm.chunks, or an FFI function whose
// registry.FunctionEntry.FFI.NativeTrampoline names an entry in
// vm.natives. argc operand values are already sitting on top of the
// stack, in declaration order.
func (vm *VM) dispatchCall(fn typehash.Hash, argc int) (Value, error) {
	args := vm.popN(argc)

	if chunk, ok := vm.chunks[fn]; ok {
		return vm.runChunk(chunk, args)
	}

	entry, ok := vm.reg.GetFunction(fn)
	if !ok {
		return Value{}, fmt.Errorf("runtime: call to unregistered function %s", fn)
	}
	if entry.Tag != registry.ImplFFI || entry.FFI == nil {
		return Value{}, fmt.Errorf("runtime: function %s has no compiled body and no FFI binding", entry.Def.QualifiedName)
	}
	native, ok := vm.natives[entry.FFI.NativeTrampoline]
	if !ok {
		return Value{}, fmt.Errorf("runtime: no native bound for trampoline %q (function %s)", entry.FFI.NativeTrampoline, entry.Def.QualifiedName)
	}
	return native(vm, args)
}

func (vm *VM) popN(n int) []Value {
	args := make([]Value, n)
	copy(args, vm.stack[vm.sp-n:vm.sp])
	vm.sp -= n
	return args
}

// dispatchNew allocates a fresh instance of typeHash and runs its
// constructor (ctorHash == 0 means "no declared constructor arguments
// matched — zero-initialize and stop", the same `len(candidates) == 0`
// case compileNewExpression's caller already short-circuits at compile
// time per internal/compiler/calls.go).
func (vm *VM) dispatchNew(typeHash, ctorHash typehash.Hash, argc int) (Value, error) {
	args := vm.popN(argc)

	entry, ok := vm.reg.GetType(typeHash)
	if !ok {
		return Value{}, fmt.Errorf("runtime: NEW of unregistered type %s", typeHash)
	}

	numFields := len(entry.Properties)
	obj := NewObject(typeHash, numFields)
	result := HandleVal(obj)

	if ctorHash == 0 {
		return result, nil
	}

	// dispatchCall reads its operands back off vm's own stack (via
	// popN), so the receiver-then-args tuple has to be pushed there
	// first, mirroring how OpCallMethod's receiver+args arrive already
	// pushed by the Body Compiler.
	vm.push(result)
	for _, a := range args {
		vm.push(a)
	}
	if _, err := vm.dispatchCall(ctorHash, 1+len(args)); err != nil {
		return Value{}, err
	}
	// A constructor runs for side effects on obj's fields only; the
	// NEW expression's result is always the handle itself, regardless
	// of what the constructor call returned (constructors are declared
	// void, per spec §4.5).
	return result, nil
}

// addRef increments obj's refcount directly for the VM-managed default
// case (fn does not resolve to a registered FunctionEntry — per
// internal/compiler/context.go's releaseHookFor fallback, this is what a
// ScriptObject/Scoped handle's hook hash actually is: its own TypeHash,
// not a real function), or calls the host's native AddRef trampoline for
// an FFI StandardRefCounted type.
func (vm *VM) addRef(v Value, fn typehash.Hash) {
	if v.Kind != KindHandle || v.Handle == nil {
		return
	}
	if entry, ok := vm.reg.GetFunction(fn); ok && entry.Tag == registry.ImplFFI && entry.FFI != nil {
		if native, ok := vm.natives[entry.FFI.NativeTrampoline]; ok {
			native(vm, []Value{v})
			return
		}
	}
	v.Handle.RefCount++
}

// release decrements obj's refcount, freeing nothing explicitly (Go's GC
// reclaims a HandleObject once unreachable) but running a registered
// Destructor behavior at the point the refcount would reach zero, the
// way spec §4.5 describes destructor timing for StandardRefCounted and
// Scoped types.
func (vm *VM) release(v Value, fn typehash.Hash) error {
	if v.Kind != KindHandle || v.Handle == nil {
		return nil
	}
	if entry, ok := vm.reg.GetFunction(fn); ok && entry.Tag == registry.ImplFFI && entry.FFI != nil {
		if native, ok := vm.natives[entry.FFI.NativeTrampoline]; ok {
			_, err := native(vm, []Value{v})
			return err
		}
	}

	v.Handle.RefCount--
	if v.Handle.RefCount > 0 {
		return nil
	}
	if b, ok := vm.reg.GetBehaviors(v.Handle.TypeHash); ok && b.Destructor != nil {
		vm.push(v)
		if _, err := vm.dispatchCall(*b.Destructor, 1); err != nil {
			return err
		}
	}
	return nil
}
