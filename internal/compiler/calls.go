package compiler

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/config"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typesystem"
)

func (c *CompilationContext) compileMember(n *ast.MemberExpression) ExprInfo {
	obj := c.compileExpression(n.Object)
	line, col := spanOf(n)

	entry, ok := c.Reg.GetType(obj.DataType.TypeHash)
	if !ok || entry.Tag != registry.EntryClass {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownField, n.Token, obj.DataType.TypeHash.String(), n.Member))
		return ExprInfo{DataType: typesystem.Void()}
	}
	for i, p := range entry.Properties {
		if p.Name != n.Member {
			continue
		}
		if p.IsVirtual {
			c.Chunk.WriteCall(bytecode.OpCallMethod, p.GetterHash, 0, line, col)
		} else {
			c.Chunk.WriteU16(bytecode.OpGetField, uint16(i), line, col)
		}
		return ExprInfo{
			DataType: p.Type, IsLValue: true, IsMutable: !obj.DataType.IsConst && !p.Type.IsConst,
			SourceKind: SourceMember, FieldIndex: i, GetterHash: p.GetterHash, SetterHash: p.SetterHash,
			IsVirtual: p.IsVirtual, MemberOwner: obj.DataType,
		}
	}
	c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownField, n.Token, entry.QualifiedName, n.Member))
	return ExprInfo{DataType: typesystem.Void()}
}

// compileIndex lowers `left[index]` through the opIndex/get_opIndex
// behavior (spec §4.11): a read-only get_opIndex is tried when no
// read-write opIndex overload accepts the index argument.
func (c *CompilationContext) compileIndex(n *ast.IndexExpression) ExprInfo {
	left := c.compileExpression(n.Left)
	idx := c.compileExpression(n.Index)
	line, col := spanOf(n)

	name := registry.OpIndex.MethodName()
	candidates := c.Reg.FindMethods(left.DataType.TypeHash, name)
	if len(candidates) == 0 {
		name = registry.OpIndexGet.MethodName()
		candidates = c.Reg.FindMethods(left.DataType.TypeHash, name)
	}
	if len(candidates) == 0 {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrNoOperator, n.Token, "[]", left.DataType.TypeHash.String(), idx.DataType.TypeHash.String()))
		return ExprInfo{DataType: typesystem.Void()}
	}
	fn, err := resolveOverload(c.Reg, candidates, []typesystem.DataType{idx.DataType}, left.DataType.IsConst, name, n.Token)
	if err != nil && name == registry.OpIndex.MethodName() {
		getName := registry.OpIndexGet.MethodName()
		if getters := c.Reg.FindMethods(left.DataType.TypeHash, getName); len(getters) > 0 {
			if gfn, gerr := resolveOverload(c.Reg, getters, []typesystem.DataType{idx.DataType}, left.DataType.IsConst, getName, n.Token); gerr == nil {
				fn, err, name = gfn, nil, getName
			}
		}
	}
	if err != nil {
		c.addError(err)
		return ExprInfo{DataType: typesystem.Void()}
	}
	c.Chunk.WriteCall(bytecode.OpCallMethod, fn.Def.Hash, 1, line, col)
	return ExprInfo{DataType: fn.Def.Return, IsLValue: name == registry.OpIndex.MethodName(), IsMutable: !left.DataType.IsConst, SourceKind: SourceTemp}
}

func (c *CompilationContext) compileArgs(args []ast.Expression) []typesystem.DataType {
	out := make([]typesystem.DataType, len(args))
	for i, a := range args {
		out[i] = c.compileExpression(a).DataType
	}
	return out
}

func (c *CompilationContext) compileCall(n *ast.CallExpression) ExprInfo {
	switch callee := n.Callee.(type) {
	case *ast.MemberExpression:
		return c.compileMethodCall(callee, n)
	case *ast.ScopeExpression:
		return c.compileScopedCall(callee, n)
	case *ast.Identifier:
		return c.compileFreeCall(callee, n)
	default:
		c.addError(diagnostics.Internal(n.Token.Span, "unsupported call target"))
		return ExprInfo{DataType: typesystem.Void()}
	}
}

func (c *CompilationContext) compileMethodCall(callee *ast.MemberExpression, call *ast.CallExpression) ExprInfo {
	obj := c.compileExpression(callee.Object)
	argTypes := c.compileArgs(call.Args)
	line, col := spanOf(call)

	candidates := c.Reg.FindMethods(obj.DataType.TypeHash, callee.Member)
	if len(candidates) == 0 {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownMethod, call.Token, obj.DataType.TypeHash.String(), callee.Member))
		return ExprInfo{DataType: typesystem.Void()}
	}
	fn, err := resolveOverload(c.Reg, candidates, argTypes, obj.DataType.IsConst, callee.Member, call.Token)
	if err != nil {
		c.addError(err)
		return ExprInfo{DataType: typesystem.Void()}
	}
	c.Chunk.WriteCall(bytecode.OpCallMethod, fn.Def.Hash, byte(len(argTypes)), line, col)
	return ExprInfo{DataType: fn.Def.Return}
}

// resolveFreeCandidates tries currentNamespace::name, then each import's
// name, then the bare name, returning the first qualified name with any
// registered free function (overloads are then ranked together).
func (c *CompilationContext) resolveFreeCandidates(name string) ([]*registry.FunctionEntry, string) {
	candidates := []string{qualifyName(c.Namespace, name)}
	for _, imp := range c.Imports {
		candidates = append(candidates, qualifyName(imp, name))
	}
	candidates = append(candidates, name)
	for _, qname := range candidates {
		if fns := c.Reg.FindFunctionsByName(qname); len(fns) > 0 {
			return fns, qname
		}
	}
	return nil, ""
}

func (c *CompilationContext) compileFreeCall(callee *ast.Identifier, call *ast.CallExpression) ExprInfo {
	argTypes := c.compileArgs(call.Args)
	line, col := spanOf(call)

	candidates, qname := c.resolveFreeCandidates(callee.Name)
	if len(candidates) == 0 {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownMethod, call.Token, "<global>", callee.Name))
		return ExprInfo{DataType: typesystem.Void()}
	}
	fn, err := resolveOverload(c.Reg, candidates, argTypes, false, qname, call.Token)
	if err != nil {
		c.addError(err)
		return ExprInfo{DataType: typesystem.Void()}
	}
	c.Chunk.WriteCall(bytecode.OpCall, fn.Def.Hash, byte(len(argTypes)), line, col)
	return ExprInfo{DataType: fn.Def.Return}
}

func (c *CompilationContext) compileScopedCall(callee *ast.ScopeExpression, call *ast.CallExpression) ExprInfo {
	argTypes := c.compileArgs(call.Args)
	line, col := spanOf(call)

	qname := qualifyName(callee.Scope, callee.Member)
	candidates := c.Reg.FindFunctionsByName(qname)
	if len(candidates) == 0 {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownMethod, call.Token, callee.Scope, callee.Member))
		return ExprInfo{DataType: typesystem.Void()}
	}
	fn, err := resolveOverload(c.Reg, candidates, argTypes, false, qname, call.Token)
	if err != nil {
		c.addError(err)
		return ExprInfo{DataType: typesystem.Void()}
	}
	c.Chunk.WriteCall(bytecode.OpCall, fn.Def.Hash, byte(len(argTypes)), line, col)
	return ExprInfo{DataType: fn.Def.Return}
}

// compileNew lowers `Type(args)` / `new Type(args)`: script-object and
// reference kinds go through a factory (producing a handle), value kinds
// through an in-place constructor (spec §4.5's behavior table).
func (c *CompilationContext) compileNew(n *ast.NewExpression) ExprInfo {
	t, terr := c.resolveTypeExpr(n.Type)
	if terr != nil {
		c.addError(terr)
		return ExprInfo{DataType: typesystem.Void()}
	}

	if n.InitList != nil {
		return c.compileInitList(n.InitList, t)
	}

	entry, ok := c.Reg.GetType(t.TypeHash)
	if !ok {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownType, n.Token, t.TypeHash.String()))
		return ExprInfo{DataType: typesystem.Void()}
	}
	behaviors, _ := c.Reg.GetBehaviors(t.TypeHash)
	if behaviors == nil {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrMissingBehaviors, n.Token, entry.Kind.String(), "constructor"))
		return ExprInfo{DataType: typesystem.Void()}
	}

	useFactory := entry.Kind.Tag != typesystem.KindValue
	candidateHashes := behaviors.Constructors
	if useFactory {
		candidateHashes = behaviors.Factories
	}
	var candidates []*registry.FunctionEntry
	for _, h := range candidateHashes {
		if fn, ok := c.Reg.GetFunction(h); ok {
			candidates = append(candidates, fn)
		}
	}

	argTypes := c.compileArgs(n.Args)
	line, col := spanOf(n)
	if len(candidates) == 0 && len(argTypes) == 0 {
		c.Chunk.WriteNew(t.TypeHash, 0, 0, line, col)
		result := t
		result.IsHandle = useFactory
		return ExprInfo{DataType: result}
	}
	fn, err := resolveOverload(c.Reg, candidates, argTypes, false, entry.QualifiedName, n.Token)
	if err != nil {
		c.addError(err)
		return ExprInfo{DataType: t}
	}
	c.Chunk.WriteNew(t.TypeHash, fn.Def.Hash, byte(len(argTypes)), line, col)
	result := t
	result.IsHandle = useFactory
	return ExprInfo{DataType: result}
}

func (c *CompilationContext) compileHandleOf(n *ast.HandleOfExpression) ExprInfo {
	v := c.compileExpression(n.Value)
	line, col := spanOf(n)
	if b, ok := c.Reg.GetBehaviors(v.DataType.TypeHash); ok && b.AddRef != nil {
		c.Chunk.WriteU64(bytecode.OpAddRef, uint64(*b.AddRef), line, col)
	}
	result := v.DataType
	result.IsHandle = true
	return ExprInfo{DataType: result}
}

func (c *CompilationContext) compileCast(n *ast.CastExpression) ExprInfo {
	v := c.compileExpression(n.Value)
	target, terr := c.resolveTypeExpr(n.Type)
	if terr != nil {
		c.addError(terr)
		return ExprInfo{DataType: typesystem.Void()}
	}
	conv := typesystem.CanConvertTo(v.DataType, target, c.Reg, config.FloatToIntNarrowingAllowed)
	if conv == nil {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrTypeMismatch, n.Token, v.DataType.TypeHash.String(), target.TypeHash.String()))
		return ExprInfo{DataType: target}
	}
	if conv.ViaFunc != nil {
		line, col := spanOf(n)
		argc := byte(0)
		if conv.ViaCtor {
			argc = 1
		}
		c.Chunk.WriteCall(bytecode.OpCallMethod, *conv.ViaFunc, argc, line, col)
	}
	return ExprInfo{DataType: target}
}

// compileIs lowers `a is b` / `a !is null` to a handle-identity or
// null test (spec Glossary "opIs"); a literal null on either side skips
// evaluating that side since OpIsNull takes a single handle operand.
func (c *CompilationContext) compileIs(n *ast.IsExpression) ExprInfo {
	line, col := spanOf(n)
	if _, isNull := n.Right.(*ast.NullLiteral); isNull {
		c.compileExpression(n.Left)
		c.Chunk.WriteOp(bytecode.OpIsNull, line, col)
	} else if _, isNull := n.Left.(*ast.NullLiteral); isNull {
		c.compileExpression(n.Right)
		c.Chunk.WriteOp(bytecode.OpIsNull, line, col)
	} else {
		c.compileExpression(n.Left)
		c.compileExpression(n.Right)
		c.Chunk.WriteOp(bytecode.OpHandleEq, line, col)
	}
	if n.Negated {
		c.Chunk.WriteOp(bytecode.OpNot, line, col)
	}
	return ExprInfo{DataType: boolDataType()}
}

func (c *CompilationContext) compileConditional(n *ast.ConditionalExpression) ExprInfo {
	c.compileExpression(n.Condition)
	line, col := spanOf(n)
	elseJump := c.Chunk.WriteJump(bytecode.OpJumpIfFalse, line, col)
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
	thenInfo := c.compileExpression(n.Consequence)
	endJump := c.Chunk.WriteJump(bytecode.OpJump, line, col)
	c.Chunk.PatchJump(elseJump)
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
	c.compileExpression(n.Alternative)
	c.Chunk.PatchJump(endJump)
	return ExprInfo{DataType: thenInfo.DataType}
}

// compileScope resolves `Namespace::Name` in value position: either an
// enumerator of an enum type named by Scope, or a namespace-qualified
// global variable.
func (c *CompilationContext) compileScope(n *ast.ScopeExpression) ExprInfo {
	line, col := spanOf(n)
	if entry, ok := c.Reg.ResolveType(n.Scope, c.Namespace, c.Imports); ok && entry.Tag == registry.EntryEnum {
		for _, ev := range entry.Enumerators {
			if ev.Name != n.Member {
				continue
			}
			c.Chunk.WriteConstant(bytecode.Constant{Kind: bytecode.ConstInt, I: ev.Value}, line, col)
			return ExprInfo{DataType: typesystem.DataType{TypeHash: entry.Hash}}
		}
	}

	qname := qualifyName(n.Scope, n.Member)
	if h, ok := c.Reg.LookupQualified(qname); ok {
		if g, ok := c.Reg.GetGlobal(h); ok {
			c.Chunk.WriteU16(bytecode.OpGetGlobal, uint16(g.SlotIndex), line, col)
			return ExprInfo{DataType: g.Type, IsLValue: true, IsMutable: !g.IsConst, SourceKind: SourceGlobal, GlobalHash: g.Hash}
		}
	}

	c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownType, n.Token, qname))
	return ExprInfo{DataType: typesystem.Void()}
}
