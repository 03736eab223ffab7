package compiler

import (
	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typehash"

	"github.com/funvibe/langc/internal/ast"
)

// ModuleOutput is the result of compiling one unit (spec §6 names this
// an ast.Script; this codebase's parser produces ast.Program for the
// same thing). Bytecode holds one Chunk per registered script function,
// keyed by the same TypeHash the function was registered under, plus one
// synthetic entry for the unit's global-variable initializers, if any
// (see moduleInitHash). RegistryDelta is everything the unit's own
// registry tier gained during Registration, ready for
// internal/driver to Fold into the shared global registry; the driver
// folds it whether or not the unit reported errors.
type ModuleOutput struct {
	Bytecode      map[typehash.Hash]*bytecode.Chunk
	Constants     []bytecode.Constant
	RegistryDelta *registry.Delta
	Errors        []*diagnostics.Error
}

// moduleInitHash names the synthetic function that runs a unit's global
// variable initializers in declaration order, tagged so it can never
// collide with a real FromName/FromFunction/FromMethod/FromConstructor
// hash (those never hash a "$"-prefixed qualified name on their own).
func moduleInitHash(unitID string) typehash.Hash {
	return typehash.FromName("$moduleinit::" + unitID)
}

// ModuleInitHash exposes moduleInitHash to callers outside the package
// (internal/runtime, cmd/langc) that need to look a unit's initializer
// chunk up in a ModuleOutput.Bytecode map after a build without knowing
// the "$moduleinit::" naming convention itself.
func ModuleInitHash(unitID string) typehash.Hash {
	return moduleInitHash(unitID)
}

// Compile runs the Registration Pass followed by the Body Compiler over
// one parsed unit (spec §4.9/§4.10), against a unit registry reg already
// chained behind the host's shared global registry via reg.NewUnit.
// Compile never Folds into that outer registry itself — RegistryDelta is
// the caller's (internal/driver's) to Fold after the unit is compiled,
// per spec §5's "global registry is read-only during compilation".
func Compile(prog *ast.Program, reg *registry.Registry, unitID, file string, imports []string) *ModuleOutput {
	out := &ModuleOutput{Bytecode: make(map[typehash.Hash]*bytecode.Chunk)}

	registrar := NewRegistrar(reg, unitID, file, imports)
	registrar.RegisterProgram(prog)
	out.Errors = append(out.Errors, registrar.Errors().Errors...)

	if len(registrar.GlobalInits) > 0 {
		initChunk := bytecode.NewChunk(file)
		for _, g := range registrar.GlobalInits {
			out.Errors = append(out.Errors, compileGlobalInit(reg, unitID, file, g, initChunk)...)
		}
		initChunk.WriteOp(bytecode.OpReturnVoid, 0, 0)
		out.Bytecode[moduleInitHash(unitID)] = initChunk
	}

	for _, pf := range registrar.Pending {
		ctx := NewCompilationContext(reg, pf.Namespace, unitID, pf.Imports, file)
		ctx.ThisType = pf.ThisType
		ctx.ReturnType = pf.Entry.Def.Return

		if pf.ThisType != nil {
			ctx.addLocal("this", *pf.ThisType) // always slot 0, per compileThis's hardcoded OpGetLocal 0
		}
		for _, p := range pf.Entry.Def.Params {
			ctx.addLocal(p.Name, p.Type)
		}

		line, col := 0, 0
		if pf.Body != nil {
			ctx.compileBlock(pf.Body)
			line, col = spanOf(pf.Body)
		}
		ctx.Chunk.WriteOp(bytecode.OpReturnVoid, line, col)

		out.Errors = append(out.Errors, ctx.Errors.Errors...)
		pf.Entry.Script.Bytecode = ctx.Chunk.Code
		out.Bytecode[pf.Entry.Def.Hash] = ctx.Chunk
	}

	out.RegistryDelta = reg.Delta()
	return out
}

// compileGlobalInit lowers one global variable's initializer into the
// unit's shared module-init chunk, in declaration order (spec §4.9's
// global variables run their initializers once, at module load).
func compileGlobalInit(reg *registry.Registry, unitID, file string, g PendingGlobal, chunk *bytecode.Chunk) []*diagnostics.Error {
	ctx := NewCompilationContext(reg, g.Namespace, unitID, g.Imports, file)
	ctx.Chunk = chunk

	ctx.compileExpressionAgainst(g.Init, g.Entry.Type)
	line, col := spanOf(g.Init)

	chunk.WriteU16(bytecode.OpSetGlobal, uint16(g.Entry.SlotIndex), line, col)
	chunk.WriteU16(bytecode.OpGetGlobal, uint16(g.Entry.SlotIndex), line, col)
	if g.Entry.Type.IsHandle {
		if b, ok := reg.GetBehaviors(g.Entry.Type.TypeHash); ok && b.AddRef != nil {
			chunk.WriteU64(bytecode.OpAddRef, uint64(*b.AddRef), line, col)
		}
	}
	chunk.WriteOp(bytecode.OpPop, line, col)

	return ctx.Errors.Errors
}
