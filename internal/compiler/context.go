// Package compiler implements the two-pass Registration+Body compiler of
// spec §4.9/§4.10: walking a parsed ast.Script, declaring every type and
// function signature into a unit registry.Registry, then lowering each
// function body to an internal/bytecode.Chunk. It generalizes
// funvibe-funxy/internal/vm.Compiler's per-function scope/slot
// bookkeeping (locals, scopeDepth, slotCount, loop contexts for
// break/continue jump patching) from a dynamically-typed expression
// compiler to a statically-typed one that also tracks handle liveness
// for AddRef/Release insertion at scope exit.
package compiler

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

// Local is one declared local slot, directly generalizing
// funxy/internal/vm/compiler_scope.go's Local{Name, Depth} with the
// slot's resolved DataType (needed for scope-exit release/destruct
// decisions, which the teacher's dynamically-typed VM does not need).
type Local struct {
	Name  string
	Slot  int
	Type  typesystem.DataType
	Depth int
}

// needsRelease reports whether this local needs an AddRef/Release pair
// around its lifetime (an ordinary handle, or a Scoped value released at
// scope exit).
func (l Local) needsRelease(reg *registry.Registry) bool {
	if l.Type.IsHandle {
		return true
	}
	entry, ok := reg.GetType(l.Type.TypeHash)
	if !ok || entry.Tag != registry.EntryClass {
		return false
	}
	return entry.Kind.Tag == typesystem.KindReference && entry.Kind.RefKind == typesystem.Scoped
}

// LoopContext tracks one enclosing loop's patch points, generalizing
// funxy/internal/vm/compiler_loops.go's LoopContext{loopStart,
// breakJumps, scopeDepth, localCount, slotCount}.
type LoopContext struct {
	LoopStart  int
	BreakJumps []int
	ScopeDepth int
	LocalCount int
}

// SourceKind classifies where an expression's value came from, so the
// Body Compiler knows whether an lvalue write is a SetLocal, a
// SetField, or not available at all (a bare stack temporary).
type SourceKind int

const (
	SourceTemp SourceKind = iota
	SourceLocal
	SourceGlobal
	SourceMember
)

// ExprInfo is the Body Compiler's return value for every lowered
// expression (spec §4.10).
type ExprInfo struct {
	DataType   typesystem.DataType
	IsLValue   bool
	IsMutable  bool
	SourceKind SourceKind

	// Valid when SourceKind == SourceLocal.
	LocalSlot int
	// Valid when SourceKind == SourceGlobal.
	GlobalHash typehash.Hash
	// Valid when SourceKind == SourceMember: the field index (PropertyDecl
	// is not itself a handle; GetField/SetField address the owner fields
	// directly) or, for a virtual property, the getter/setter hashes.
	FieldIndex  int
	GetterHash  typehash.Hash
	SetterHash  typehash.Hash
	IsVirtual   bool
	MemberOwner typesystem.DataType
}

// CompilationContext is the per-function compilation state: the
// function's chunk, its declared locals, the active loop stack, and the
// owning unit's registry/namespace/import view used for name
// resolution — directly generalizing funxy/internal/vm.Compiler's
// per-function struct.
type CompilationContext struct {
	Reg       *registry.Registry
	Namespace string
	Imports   []string
	UnitID    string

	Chunk *bytecode.Chunk

	Locals     []Local
	ScopeDepth int
	SlotCount  int

	LoopStack []*LoopContext

	ThisType   *typesystem.DataType // non-nil inside a method body
	ReturnType typesystem.DataType

	Errors diagnostics.List
}

// NewCompilationContext creates the context for lowering one function
// body.
func NewCompilationContext(reg *registry.Registry, namespace, unitID string, imports []string, file string) *CompilationContext {
	return &CompilationContext{
		Reg:       reg,
		Namespace: namespace,
		Imports:   imports,
		UnitID:    unitID,
		Chunk:     bytecode.NewChunk(file),
	}
}

func (c *CompilationContext) addError(e *diagnostics.Error) { c.Errors.Add(e) }

// beginScope opens a new lexical scope.
func (c *CompilationContext) beginScope() { c.ScopeDepth++ }

// endScope closes the current scope, emitting Release/destruct calls for
// every local declared in it (in reverse declaration order, per spec
// §4.10 "Scope exit discipline"), then pops them from the locals slice.
func (c *CompilationContext) endScope(line, col int) {
	c.ScopeDepth--
	for len(c.Locals) > 0 && c.Locals[len(c.Locals)-1].Depth > c.ScopeDepth {
		last := c.Locals[len(c.Locals)-1]
		c.emitReleaseIfOwned(last, line, col)
		c.Locals = c.Locals[:len(c.Locals)-1]
	}
}

func (c *CompilationContext) emitReleaseIfOwned(l Local, line, col int) {
	if !l.needsRelease(c.Reg) {
		return
	}
	c.Chunk.WriteU16(bytecode.OpGetLocal, uint16(l.Slot), line, col)
	releaseHash := c.releaseHookFor(l.Type)
	c.Chunk.WriteU64(bytecode.OpRelease, uint64(releaseHash), line, col)
}

func (c *CompilationContext) releaseHookFor(t typesystem.DataType) typehash.Hash {
	if b, ok := c.Reg.GetBehaviors(t.TypeHash); ok && b.Release != nil {
		return *b.Release
	}
	return t.TypeHash
}

// addLocal declares a new local in the current scope and returns its
// slot index, directly generalizing
// funxy/internal/vm/compiler_scope.go's addLocal(name, depth).
func (c *CompilationContext) addLocal(name string, t typesystem.DataType) int {
	slot := c.SlotCount
	c.SlotCount++
	c.Locals = append(c.Locals, Local{Name: name, Slot: slot, Type: t, Depth: c.ScopeDepth})
	return slot
}

// resolveLocal performs a linear scan from the top of the locals stack
// so inner-scope shadowing wins, generalizing
// funxy/internal/vm/compiler_scope.go's resolveLocal.
func (c *CompilationContext) resolveLocal(name string) (Local, bool) {
	for i := len(c.Locals) - 1; i >= 0; i-- {
		if c.Locals[i].Name == name {
			return c.Locals[i], true
		}
	}
	return Local{}, false
}

func (c *CompilationContext) pushLoop() *LoopContext {
	lc := &LoopContext{LoopStart: c.Chunk.Len(), ScopeDepth: c.ScopeDepth, LocalCount: len(c.Locals)}
	c.LoopStack = append(c.LoopStack, lc)
	return lc
}

func (c *CompilationContext) popLoop() {
	c.LoopStack = c.LoopStack[:len(c.LoopStack)-1]
}

func (c *CompilationContext) currentLoop() *LoopContext {
	if len(c.LoopStack) == 0 {
		return nil
	}
	return c.LoopStack[len(c.LoopStack)-1]
}

// spanOf extracts a token.Span-shaped pair of (line, column) from any
// ast.Node, used pervasively when emitting bytecode from a node.
func spanOf(n ast.Node) (int, int) {
	t := n.GetToken()
	return t.Span.Line, t.Span.Column
}
