package compiler

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/config"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

// stringHash is the well-known TypeHash of the built-in string type
// InstallPrelude registers (kept in sync by name, since internal/typesystem
// has no PrimitiveHash slot for non-scalar built-ins like string).
func stringHash() typehash.Hash { return typehash.FromName("string") }

// compileExpression lowers one expression node to bytecode on c.Chunk and
// returns the ExprInfo the caller needs to keep compiling (spec §4.10:
// "Expressions return an ExprInfo{DataType, IsLValue, IsMutable,
// SourceKind}").
func (c *CompilationContext) compileExpression(e ast.Expression) ExprInfo {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return c.compileIntLiteral(n)
	case *ast.FloatLiteral:
		return c.compileFloatLiteral(n)
	case *ast.BoolLiteral:
		return c.compileBoolLiteral(n)
	case *ast.StringLiteral:
		return c.compileStringLiteral(n)
	case *ast.CharLiteral:
		return c.compileCharLiteral(n)
	case *ast.NullLiteral:
		return c.compileNullLiteral(n)
	case *ast.ThisExpression:
		return c.compileThis(n)
	case *ast.Identifier:
		return c.compileIdentifier(n)
	case *ast.PrefixExpression:
		return c.compilePrefix(n)
	case *ast.PostfixExpression:
		return c.compilePostfix(n)
	case *ast.InfixExpression:
		return c.compileInfix(n)
	case *ast.AssignExpression:
		return c.compileAssign(n)
	case *ast.MemberExpression:
		return c.compileMember(n)
	case *ast.IndexExpression:
		return c.compileIndex(n)
	case *ast.CallExpression:
		return c.compileCall(n)
	case *ast.NewExpression:
		return c.compileNew(n)
	case *ast.HandleOfExpression:
		return c.compileHandleOf(n)
	case *ast.CastExpression:
		return c.compileCast(n)
	case *ast.IsExpression:
		return c.compileIs(n)
	case *ast.ConditionalExpression:
		return c.compileConditional(n)
	case *ast.ScopeExpression:
		return c.compileScope(n)
	case *ast.InitListExpression:
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrInvalidInitList, n.Token, "<untyped>", "initializer list has no target type in this position"))
		return ExprInfo{DataType: typesystem.Void()}
	default:
		c.addError(diagnostics.Internal(n.GetToken().Span, "unhandled expression node"))
		return ExprInfo{DataType: typesystem.Void()}
	}
}

func intDataType() typesystem.DataType {
	return typesystem.DataType{TypeHash: typesystem.PrimitiveHash(typesystem.PrimI32)}
}
func floatDataType() typesystem.DataType {
	return typesystem.DataType{TypeHash: typesystem.PrimitiveHash(typesystem.PrimF64)}
}
func boolDataType() typesystem.DataType {
	return typesystem.DataType{TypeHash: typesystem.PrimitiveHash(typesystem.PrimBool)}
}

func (c *CompilationContext) compileIntLiteral(n *ast.IntegerLiteral) ExprInfo {
	line, col := spanOf(n)
	switch n.Value {
	case 0:
		c.Chunk.WriteOp(bytecode.OpPushZero, line, col)
	case 1:
		c.Chunk.WriteOp(bytecode.OpPushOne, line, col)
	default:
		c.Chunk.WriteConstant(bytecode.Constant{Kind: bytecode.ConstInt, I: n.Value}, line, col)
	}
	return ExprInfo{DataType: intDataType()}
}

func (c *CompilationContext) compileFloatLiteral(n *ast.FloatLiteral) ExprInfo {
	line, col := spanOf(n)
	c.Chunk.WriteConstant(bytecode.Constant{Kind: bytecode.ConstFloat, F: n.Value}, line, col)
	return ExprInfo{DataType: floatDataType()}
}

func (c *CompilationContext) compileBoolLiteral(n *ast.BoolLiteral) ExprInfo {
	line, col := spanOf(n)
	if n.Value {
		c.Chunk.WriteOp(bytecode.OpPushTrue, line, col)
	} else {
		c.Chunk.WriteOp(bytecode.OpPushFalse, line, col)
	}
	return ExprInfo{DataType: boolDataType()}
}

func (c *CompilationContext) compileStringLiteral(n *ast.StringLiteral) ExprInfo {
	line, col := spanOf(n)
	c.Chunk.WriteConstant(bytecode.Constant{Kind: bytecode.ConstString, S: n.Value}, line, col)
	return ExprInfo{DataType: typesystem.DataType{TypeHash: stringHash()}}
}

func (c *CompilationContext) compileCharLiteral(n *ast.CharLiteral) ExprInfo {
	line, col := spanOf(n)
	c.Chunk.WriteConstant(bytecode.Constant{Kind: bytecode.ConstInt, I: int64(n.Value)}, line, col)
	return ExprInfo{DataType: typesystem.DataType{TypeHash: typesystem.PrimitiveHash(typesystem.PrimU8)}}
}

func (c *CompilationContext) compileNullLiteral(n *ast.NullLiteral) ExprInfo {
	line, col := spanOf(n)
	c.Chunk.WriteOp(bytecode.OpPushNull, line, col)
	return ExprInfo{DataType: typesystem.Null()}
}

func (c *CompilationContext) compileThis(n *ast.ThisExpression) ExprInfo {
	if c.ThisType == nil {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownType, n.Token, "this"))
		return ExprInfo{DataType: typesystem.Void()}
	}
	line, col := spanOf(n)
	c.Chunk.WriteU16(bytecode.OpGetLocal, 0, line, col)
	return ExprInfo{DataType: *c.ThisType, IsLValue: false, IsMutable: !c.ThisType.IsConst, SourceKind: SourceLocal, LocalSlot: 0}
}

// compileIdentifier resolves a bare name: local, then this's fields (if
// inside a method), then a global, in that order — mirroring the
// resolution order ResolveType itself uses for types (current scope
// first, then outward).
func (c *CompilationContext) compileIdentifier(n *ast.Identifier) ExprInfo {
	line, col := spanOf(n)
	if local, ok := c.resolveLocal(n.Name); ok {
		c.Chunk.WriteU16(bytecode.OpGetLocal, uint16(local.Slot), line, col)
		return ExprInfo{DataType: local.Type, IsLValue: true, IsMutable: !local.Type.IsConst, SourceKind: SourceLocal, LocalSlot: local.Slot}
	}

	if c.ThisType != nil {
		if info, ok := c.tryFieldAccessOnThis(n.Name, line, col); ok {
			return info
		}
	}

	if g, ok := c.resolveGlobal(n.Name); ok {
		c.Chunk.WriteU16(bytecode.OpGetGlobal, uint16(g.SlotIndex), line, col)
		return ExprInfo{DataType: g.Type, IsLValue: true, IsMutable: !g.IsConst, SourceKind: SourceGlobal, GlobalHash: g.Hash}
	}

	c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownType, n.Token, n.Name))
	return ExprInfo{DataType: typesystem.Void()}
}

// resolveGlobal looks up a bare name as a namespace-scoped global,
// honoring the same current-namespace/imports/bare-name precedence
// ResolveType uses for types.
func (c *CompilationContext) resolveGlobal(name string) (*registry.GlobalPropertyEntry, bool) {
	candidates := []string{qualifyName(c.Namespace, name)}
	for _, imp := range c.Imports {
		candidates = append(candidates, qualifyName(imp, name))
	}
	candidates = append(candidates, name)
	for _, qname := range candidates {
		if h, ok := c.Reg.LookupQualified(qname); ok {
			if g, ok := c.Reg.GetGlobal(h); ok {
				return g, true
			}
		}
	}
	return nil, false
}

func qualifyName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "::" + name
}

func (c *CompilationContext) tryFieldAccessOnThis(name string, line, col int) (ExprInfo, bool) {
	entry, ok := c.Reg.GetType(c.ThisType.TypeHash)
	if !ok || entry.Tag != registry.EntryClass {
		return ExprInfo{}, false
	}
	for i, p := range entry.Properties {
		if p.Name != name {
			continue
		}
		c.Chunk.WriteU16(bytecode.OpGetLocal, 0, line, col)
		if p.IsVirtual {
			c.Chunk.WriteCall(bytecode.OpCallMethod, p.GetterHash, 0, line, col)
		} else {
			c.Chunk.WriteU16(bytecode.OpGetField, uint16(i), line, col)
		}
		return ExprInfo{
			DataType: p.Type, IsLValue: true, IsMutable: !c.ThisType.IsConst && !p.Type.IsConst,
			SourceKind: SourceMember, FieldIndex: i, GetterHash: p.GetterHash, SetterHash: p.SetterHash,
			IsVirtual: p.IsVirtual, MemberOwner: *c.ThisType,
		}, true
	}
	return ExprInfo{}, false
}

func (c *CompilationContext) compilePrefix(n *ast.PrefixExpression) ExprInfo {
	right := c.compileExpression(n.Right)
	line, col := spanOf(n)

	if n.Operator == "!" {
		c.Chunk.WriteOp(bytecode.OpNot, line, col)
		return ExprInfo{DataType: boolDataType()}
	}
	if n.Operator == "~" {
		c.Chunk.WriteOp(bytecode.OpBNot, line, col)
		return ExprInfo{DataType: right.DataType}
	}
	if n.Operator == "-" {
		if cat := typesystem.CategoryOf(right.DataType.TypeHash); cat != typesystem.CatNotPrimitive {
			if fam, ok := arithFamilyFor(cat); ok && fam.Neg != bytecode.OpHalt {
				c.Chunk.WriteOp(fam.Neg, line, col)
				return ExprInfo{DataType: right.DataType}
			}
		}
		if fn, ok := c.resolveUnaryMethod(right.DataType, registry.OpNeg); ok {
			c.Chunk.WriteCall(bytecode.OpCallMethod, fn.Def.Hash, 0, line, col)
			return ExprInfo{DataType: fn.Def.Return}
		}
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrNoOperator, n.Token, n.Operator, right.DataType.TypeHash.String(), ""))
		return ExprInfo{DataType: right.DataType}
	}

	c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrNoOperator, n.Token, n.Operator, right.DataType.TypeHash.String(), ""))
	return ExprInfo{DataType: right.DataType}
}

func (c *CompilationContext) resolveUnaryMethod(operand typesystem.DataType, op registry.OperatorBehavior) (*registry.FunctionEntry, bool) {
	for _, fn := range c.Reg.FindMethods(operand.TypeHash, op.MethodName()) {
		if len(fn.Def.Params) == 0 {
			return fn, true
		}
	}
	return nil, false
}

func (c *CompilationContext) compilePostfix(n *ast.PostfixExpression) ExprInfo {
	info := c.compileExpression(n.Operand)
	line, col := spanOf(n)
	if !info.IsMutable {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrCannotModifyConst, n.Token, n.Operator))
		return info
	}
	cat := typesystem.CategoryOf(info.DataType.TypeHash)
	fam, ok := arithFamilyFor(cat)
	if !ok {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrNoOperator, n.Token, n.Operator, info.DataType.TypeHash.String(), ""))
		return info
	}
	c.Chunk.WriteOp(bytecode.OpPushOne, line, col)
	if n.Operator == "++" {
		c.Chunk.WriteOp(fam.Add, line, col)
	} else {
		c.Chunk.WriteOp(fam.Sub, line, col)
	}
	c.storeToSource(info, line, col)
	return info
}

// storeToSource emits the matching store opcode for an lvalue ExprInfo,
// assuming the new value is already on top of the stack.
func (c *CompilationContext) storeToSource(info ExprInfo, line, col int) {
	switch info.SourceKind {
	case SourceLocal:
		c.Chunk.WriteU16(bytecode.OpSetLocal, uint16(info.LocalSlot), line, col)
	case SourceMember:
		if info.IsVirtual {
			c.Chunk.WriteCall(bytecode.OpCallMethod, info.SetterHash, 1, line, col)
		} else {
			c.Chunk.WriteU16(bytecode.OpSetField, uint16(info.FieldIndex), line, col)
		}
	case SourceGlobal:
		if g, ok := c.Reg.GetGlobal(info.GlobalHash); ok {
			c.Chunk.WriteU16(bytecode.OpSetGlobal, uint16(g.SlotIndex), line, col)
		}
	}
}

func (c *CompilationContext) compileInfix(n *ast.InfixExpression) ExprInfo {
	if n.Operator == "&&" || n.Operator == "||" {
		return c.compileShortCircuit(n)
	}

	left := c.compileExpression(n.Left)
	right := c.compileExpression(n.Right)
	line, col := spanOf(n)

	lcat := typesystem.CategoryOf(left.DataType.TypeHash)
	rcat := typesystem.CategoryOf(right.DataType.TypeHash)
	if lcat != typesystem.CatNotPrimitive && lcat == rcat {
		if isComparisonOp(n.Operator) {
			if fam, ok := compareFamilyFor(lcat); ok {
				if op, ok2 := compareOpcode(n.Operator, fam); ok2 {
					c.Chunk.WriteOp(op, line, col)
					return ExprInfo{DataType: boolDataType()}
				}
			}
		} else if isBitwiseOp(n.Operator) {
			c.Chunk.WriteOp(bitwiseOpcode(n.Operator), line, col)
			return ExprInfo{DataType: left.DataType}
		} else if fam, ok := arithFamilyFor(lcat); ok {
			if op, ok2 := arithOpcode(n.Operator, fam); ok2 {
				c.Chunk.WriteOp(op, line, col)
				return ExprInfo{DataType: left.DataType}
			}
		}
	}

	return c.compileUserOperator(n, left, right, line, col)
}

// compileUserOperator implements spec §4.11 steps 2-3: L.opXxx(R), else
// R.opXxx_r(L).
func (c *CompilationContext) compileUserOperator(n *ast.InfixExpression, left, right ExprInfo, line, col int) ExprInfo {
	behavior, ok := binaryOperatorBehavior[n.Operator]
	if !ok {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrNoOperator, n.Token, n.Operator, left.DataType.TypeHash.String(), right.DataType.TypeHash.String()))
		return ExprInfo{DataType: left.DataType}
	}

	if candidates := c.Reg.FindMethods(left.DataType.TypeHash, behavior.MethodName()); len(candidates) > 0 {
		if fn, err := resolveOverload(c.Reg, candidates, []typesystem.DataType{right.DataType}, left.DataType.IsConst, behavior.MethodName(), n.Token); err == nil {
			c.Chunk.WriteCall(bytecode.OpCallMethod, fn.Def.Hash, 1, line, col)
			return ExprInfo{DataType: resultTypeFor(behavior, fn.Def.Return)}
		}
	}
	if candidates := c.Reg.FindMethods(right.DataType.TypeHash, reversedBehaviorName(behavior)); len(candidates) > 0 {
		if fn, err := resolveOverload(c.Reg, candidates, []typesystem.DataType{left.DataType}, right.DataType.IsConst, reversedBehaviorName(behavior), n.Token); err == nil {
			c.Chunk.WriteCall(bytecode.OpCallMethod, fn.Def.Hash, 1, line, col)
			return ExprInfo{DataType: resultTypeFor(behavior, fn.Def.Return)}
		}
	}

	c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrNoOperator, n.Token, n.Operator, left.DataType.TypeHash.String(), right.DataType.TypeHash.String()))
	return ExprInfo{DataType: left.DataType}
}

func resultTypeFor(b registry.OperatorBehavior, fnReturn typesystem.DataType) typesystem.DataType {
	if b == registry.OpEquals || b == registry.OpCmp {
		return boolDataType()
	}
	return fnReturn
}

// compileShortCircuit lowers && / || with JumpIfFalse/JumpIfTrue so the
// right operand is not evaluated unless needed.
func (c *CompilationContext) compileShortCircuit(n *ast.InfixExpression) ExprInfo {
	left := c.compileExpression(n.Left)
	line, col := spanOf(n)
	var skipPos int
	if n.Operator == "&&" {
		skipPos = c.Chunk.WriteJump(bytecode.OpJumpIfFalse, line, col)
	} else {
		skipPos = c.Chunk.WriteJump(bytecode.OpJumpIfTrue, line, col)
	}
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
	c.compileExpression(n.Right)
	c.Chunk.PatchJump(skipPos)
	_ = left
	return ExprInfo{DataType: boolDataType()}
}

func (c *CompilationContext) compileAssign(n *ast.AssignExpression) ExprInfo {
	target := c.compileLValue(n.Target)
	line, col := spanOf(n)
	if !target.IsMutable {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrCannotModifyConst, n.Token, "="))
	}

	if n.Operator == "=" {
		value := c.compileExpressionAgainst(n.Value, target.DataType)
		_ = value
		c.storeToSource(target, line, col)
		return target
	}

	// Compound assignment (+=, -=, ...): re-read target, combine, store.
	baseOp := n.Operator[:len(n.Operator)-1]
	c.replayLoad(target, line, col)
	c.compileExpression(n.Value)
	cat := typesystem.CategoryOf(target.DataType.TypeHash)
	if fam, ok := arithFamilyFor(cat); ok {
		if op, ok2 := arithOpcode(baseOp, fam); ok2 {
			c.Chunk.WriteOp(op, line, col)
		}
	} else if isBitwiseOp(baseOp) {
		c.Chunk.WriteOp(bitwiseOpcode(baseOp), line, col)
	}
	c.storeToSource(target, line, col)
	return target
}

// replayLoad re-emits the load half of an already-resolved lvalue, used
// by compound assignment to read-before-combine without re-evaluating
// (and re-side-effecting) the target expression's subexpressions.
func (c *CompilationContext) replayLoad(info ExprInfo, line, col int) {
	switch info.SourceKind {
	case SourceLocal:
		c.Chunk.WriteU16(bytecode.OpGetLocal, uint16(info.LocalSlot), line, col)
	case SourceMember:
		if info.IsVirtual {
			c.Chunk.WriteCall(bytecode.OpCallMethod, info.GetterHash, 0, line, col)
		} else {
			c.Chunk.WriteU16(bytecode.OpGetField, uint16(info.FieldIndex), line, col)
		}
	case SourceGlobal:
		if g, ok := c.Reg.GetGlobal(info.GlobalHash); ok {
			c.Chunk.WriteU16(bytecode.OpGetGlobal, uint16(g.SlotIndex), line, col)
		}
	}
}

// compileLValue compiles an expression expected to be assignable, for
// callers that only need the ExprInfo's addressing metadata: it runs
// compileExpression, pops the loaded value that compileExpression leaves
// on the stack, and reports an error when the expression is not an
// lvalue.
func (c *CompilationContext) compileLValue(e ast.Expression) ExprInfo {
	info := c.compileExpression(e)
	c.Chunk.WriteOp(bytecode.OpPop, 0, 0)
	if !info.IsLValue {
		c.addError(diagnostics.Internal(e.GetToken().Span, "assignment target is not an lvalue"))
	}
	return info
}

// compileExpressionAgainst lowers e and, if its static type differs from
// target, applies the conversion the lattice allows (spec §4.6);
// mismatches with no conversion path are a TypeMismatch error.
func (c *CompilationContext) compileExpressionAgainst(e ast.Expression, target typesystem.DataType) ExprInfo {
	if il, ok := e.(*ast.InitListExpression); ok {
		return c.compileInitList(il, target)
	}
	info := c.compileExpression(e)
	if info.DataType.Equal(target) {
		return info
	}
	conv := typesystem.CanConvertTo(info.DataType, target, c.Reg, config.FloatToIntNarrowingAllowed)
	if conv == nil {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrTypeMismatch, e.GetToken(), info.DataType.TypeHash.String(), target.TypeHash.String()))
		return info
	}
	if conv.ViaFunc != nil {
		line, col := spanOf(e)
		argc := byte(0)
		if conv.ViaCtor {
			argc = 1
		}
		c.Chunk.WriteCall(bytecode.OpCallMethod, *conv.ViaFunc, argc, line, col)
	}
	info.DataType = target
	return info
}
