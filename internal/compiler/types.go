package compiler

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/templates"
	"github.com/funvibe/langc/internal/typesystem"
)

// sharedInstantiator is used by every CompilationContext in a build: the
// cache is keyed by (template, args) independent of which unit asked, so
// a single instance shared for the process matches spec §4.7's "cache
// hit for identical re-request" guarantee across units too.
var sharedInstantiator = templates.NewInstantiator()

// resolveTypeExpr turns a parsed ast.TypeExpr into a typesystem.DataType,
// resolving the base name through the unit's registry view (current
// namespace, then imports, then global) and instantiating templates on
// first reference (spec §4.7).
func (c *CompilationContext) resolveTypeExpr(te *ast.TypeExpr) (typesystem.DataType, *diagnostics.Error) {
	if te.Name == "void" {
		d := typesystem.Void()
		d.IsConst = te.IsConst
		return d, nil
	}

	var baseHash = typesystem.VoidHash
	if len(te.TemplateArgs) > 0 {
		tmpl, ok := c.Reg.ResolveType(te.Name, c.Namespace, c.Imports)
		if !ok {
			return typesystem.DataType{}, diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownType, te.Token, te.Name)
		}
		args := make([]typesystem.DataType, len(te.TemplateArgs))
		for i, a := range te.TemplateArgs {
			dt, err := c.resolveTypeExpr(a)
			if err != nil {
				return typesystem.DataType{}, err
			}
			args[i] = dt
		}
		inst, methods, behaviors, err := sharedInstantiator.Instantiate(tmpl, args, c.templateMethodsOf(tmpl), c.templateBehaviorsOf(tmpl), nil)
		if err != nil {
			return typesystem.DataType{}, err
		}
		if _, exists := c.Reg.GetType(inst.Hash); !exists {
			if regErr := c.Reg.RegisterType(inst); regErr != nil {
				return typesystem.DataType{}, regErr
			}
			for _, m := range methods {
				_ = c.Reg.RegisterFunction(m)
			}
			if behaviors != nil {
				_ = c.Reg.SetBehaviors(inst.Hash, behaviors)
			}
		}
		baseHash = inst.Hash
	} else {
		entry, ok := c.Reg.ResolveType(te.Name, c.Namespace, c.Imports)
		if !ok {
			return typesystem.DataType{}, diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownType, te.Token, te.Name)
		}
		baseHash = entry.Hash
	}

	return typesystem.DataType{
		TypeHash:        baseHash,
		IsConst:         te.IsConst,
		IsHandle:        te.IsHandle,
		IsHandleToConst: te.IsHandleToConst,
		RefModifier:     te.RefModifier,
	}, nil
}

// ResolveTypeExprIn resolves a standalone ast.TypeExpr (one not attached
// to a function body being compiled) against reg, as seen from
// namespace with imports in scope. internal/hostmanifest uses this to
// turn a YAML field/parameter type string into a typesystem.DataType
// without duplicating the template-instantiation path above.
func ResolveTypeExprIn(reg *registry.Registry, namespace string, imports []string, te *ast.TypeExpr) (typesystem.DataType, *diagnostics.Error) {
	ctx := &CompilationContext{Reg: reg, Namespace: namespace, Imports: imports}
	return ctx.resolveTypeExpr(te)
}

// templateMethodsOf/templateBehaviorsOf collect a template class's own
// (unspecialized) methods/behaviors for the Instantiator to copy and
// substitute. templateMethodsOf returns an empty, non-nil slice when the
// type has no registered methods (a primitive used as a bare identifier
// never reaches here with TemplateArgs set).
func (c *CompilationContext) templateMethodsOf(tmpl *registry.TypeEntry) []*registry.FunctionEntry {
	out := make([]*registry.FunctionEntry, 0, len(tmpl.Methods))
	for _, h := range tmpl.Methods {
		if fn, ok := c.Reg.GetFunction(h); ok {
			out = append(out, fn)
		}
	}
	return out
}

func (c *CompilationContext) templateBehaviorsOf(tmpl *registry.TypeEntry) *registry.TypeBehaviors {
	b, _ := c.Reg.GetBehaviors(tmpl.Hash)
	return b
}
