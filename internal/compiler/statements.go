package compiler

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/typesystem"
)

// compileStatement lowers one ast.Statement, generalizing
// funxy/internal/vm's statement-compiling switch to the statically-typed
// statement set of spec §4.10.
func (c *CompilationContext) compileStatement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.BlockStatement:
		c.compileBlock(n)
	case *ast.ExpressionStatement:
		c.compileExpression(n.Expression)
		line, col := spanOf(n)
		c.Chunk.WriteOp(bytecode.OpPop, line, col)
	case *ast.VarDecl:
		c.compileVarDecl(n)
	case *ast.IfStatement:
		c.compileIf(n)
	case *ast.WhileStatement:
		c.compileWhile(n)
	case *ast.DoWhileStatement:
		c.compileDoWhile(n)
	case *ast.ForStatement:
		c.compileFor(n)
	case *ast.ForEachStatement:
		c.compileForEach(n)
	case *ast.BreakStatement:
		c.compileBreak(n)
	case *ast.ContinueStatement:
		c.compileContinue(n)
	case *ast.ReturnStatement:
		c.compileReturn(n)
	default:
		c.addError(diagnostics.Internal(s.GetToken().Span, "unhandled statement node"))
	}
}

func (c *CompilationContext) compileBlock(n *ast.BlockStatement) {
	c.beginScope()
	for _, s := range n.Statements {
		c.compileStatement(s)
	}
	line, col := spanOf(n)
	c.endScope(line, col)
}

// compileVarDecl allocates a local slot, evaluates the initializer (or
// pushes a zero/null default when absent), and AddRefs a freshly stored
// handle so the local owns a reference for its lifetime.
func (c *CompilationContext) compileVarDecl(n *ast.VarDecl) {
	if _, exists := c.resolveLocal(n.Name); exists {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrVariableRedeclaration, n.Token, n.Name))
	}

	t, terr := c.resolveTypeExpr(n.Type)
	if terr != nil {
		c.addError(terr)
		return
	}
	t.IsConst = n.IsConst || t.IsConst
	line, col := spanOf(n)

	if n.Init != nil {
		c.compileExpressionAgainst(n.Init, t)
	} else if t.IsHandle {
		c.Chunk.WriteOp(bytecode.OpPushNull, line, col)
	} else {
		c.compileZeroValue(t, line, col)
	}

	slot := c.addLocal(n.Name, t)
	c.Chunk.WriteU16(bytecode.OpSetLocal, uint16(slot), line, col)
	c.Chunk.WriteU16(bytecode.OpGetLocal, uint16(slot), line, col)
	c.maybeAddRefLocal(t, line, col)
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
}

func (c *CompilationContext) maybeAddRefLocal(t typesystem.DataType, line, col int) {
	if !t.IsHandle {
		return
	}
	if b, ok := c.Reg.GetBehaviors(t.TypeHash); ok && b.AddRef != nil {
		c.Chunk.WriteU64(bytecode.OpAddRef, uint64(*b.AddRef), line, col)
	}
}

func (c *CompilationContext) compileZeroValue(t typesystem.DataType, line, col int) {
	switch typesystem.CategoryOf(t.TypeHash) {
	case typesystem.CatF32, typesystem.CatF64:
		c.Chunk.WriteConstant(bytecode.Constant{Kind: bytecode.ConstFloat, F: 0}, line, col)
	case typesystem.CatBool:
		c.Chunk.WriteOp(bytecode.OpPushFalse, line, col)
	default:
		c.Chunk.WriteOp(bytecode.OpPushZero, line, col)
	}
}

func (c *CompilationContext) compileIf(n *ast.IfStatement) {
	c.compileExpression(n.Condition)
	line, col := spanOf(n)
	elseJump := c.Chunk.WriteJump(bytecode.OpJumpIfFalse, line, col)
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
	c.compileStatement(n.Consequence)

	if n.Alternative == nil {
		c.Chunk.PatchJump(elseJump)
		c.Chunk.WriteOp(bytecode.OpPop, line, col)
		return
	}
	endJump := c.Chunk.WriteJump(bytecode.OpJump, line, col)
	c.Chunk.PatchJump(elseJump)
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
	c.compileStatement(n.Alternative)
	c.Chunk.PatchJump(endJump)
}

func (c *CompilationContext) compileWhile(n *ast.WhileStatement) {
	line, col := spanOf(n)
	loop := c.pushLoop()
	c.compileExpression(n.Condition)
	exitJump := c.Chunk.WriteJump(bytecode.OpJumpIfFalse, line, col)
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
	c.compileStatement(n.Body)
	c.Chunk.EmitLoop(loop.LoopStart, line, col)
	c.Chunk.PatchJump(exitJump)
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
	c.patchBreaks(loop)
	c.popLoop()
}

func (c *CompilationContext) compileDoWhile(n *ast.DoWhileStatement) {
	line, col := spanOf(n)
	loop := c.pushLoop()
	bodyStart := c.Chunk.Len()
	c.compileStatement(n.Body)
	c.compileExpression(n.Condition)
	exitJump := c.Chunk.WriteJump(bytecode.OpJumpIfFalse, line, col)
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
	c.Chunk.EmitLoop(bodyStart, line, col)
	c.Chunk.PatchJump(exitJump)
	c.Chunk.WriteOp(bytecode.OpPop, line, col)
	c.patchBreaks(loop)
	c.popLoop()
}

func (c *CompilationContext) compileFor(n *ast.ForStatement) {
	line, col := spanOf(n)
	c.beginScope()
	if n.Init != nil {
		c.compileStatement(n.Init)
	}

	loop := c.pushLoop()
	loop.LoopStart = c.Chunk.Len()
	var exitJump int
	hasCond := n.Condition != nil
	if hasCond {
		c.compileExpression(n.Condition)
		exitJump = c.Chunk.WriteJump(bytecode.OpJumpIfFalse, line, col)
		c.Chunk.WriteOp(bytecode.OpPop, line, col)
	}

	c.compileStatement(n.Body)

	if n.Post != nil {
		c.compileExpression(n.Post)
		c.Chunk.WriteOp(bytecode.OpPop, line, col)
	}
	c.Chunk.EmitLoop(loop.LoopStart, line, col)
	if hasCond {
		c.Chunk.PatchJump(exitJump)
		c.Chunk.WriteOp(bytecode.OpPop, line, col)
	}
	c.patchBreaks(loop)
	c.popLoop()
	c.endScope(line, col)
}

// compileForEach lowers `for (T x : iterable) body` onto the same opIndex
// / length-driven protocol a foreach-capable container exposes: an
// implicit counter local plus a `get_length()` bound check, generalizing
// the plain ForStatement lowering rather than requiring a dedicated
// iterator-object bytecode protocol.
func (c *CompilationContext) compileForEach(n *ast.ForEachStatement) {
	line, col := spanOf(n)
	c.beginScope()

	iterable := c.compileExpression(n.Iterable)
	iterSlot := c.addLocal("$iter", iterable.DataType)
	c.Chunk.WriteU16(bytecode.OpSetLocal, uint16(iterSlot), line, col)

	c.compileZeroValue(intDataType(), line, col)
	idxSlot := c.addLocal("$idx", intDataType())
	c.Chunk.WriteU16(bytecode.OpSetLocal, uint16(idxSlot), line, col)

	lengthFns := c.Reg.FindMethods(iterable.DataType.TypeHash, "get_length")
	elemT, elemErr := c.resolveTypeExpr(n.VarType)
	if elemErr != nil {
		c.addError(elemErr)
	}

	loop := c.pushLoop()
	if len(lengthFns) > 0 {
		c.Chunk.WriteU16(bytecode.OpGetLocal, uint16(idxSlot), line, col)
		c.Chunk.WriteU16(bytecode.OpGetLocal, uint16(iterSlot), line, col)
		c.Chunk.WriteCall(bytecode.OpCallMethod, lengthFns[0].Def.Hash, 0, line, col)
		c.Chunk.WriteOp(bytecode.OpLtI64, line, col)
		exitJump := c.Chunk.WriteJump(bytecode.OpJumpIfFalse, line, col)
		c.Chunk.WriteOp(bytecode.OpPop, line, col)

		indexFns := c.Reg.FindMethods(iterable.DataType.TypeHash, "opIndex")
		if len(indexFns) > 0 {
			c.Chunk.WriteU16(bytecode.OpGetLocal, uint16(iterSlot), line, col)
			c.Chunk.WriteU16(bytecode.OpGetLocal, uint16(idxSlot), line, col)
			c.Chunk.WriteCall(bytecode.OpCallMethod, indexFns[0].Def.Hash, 1, line, col)
		} else {
			c.Chunk.WriteOp(bytecode.OpPushNull, line, col)
		}
		c.addLocal(n.VarName, elemT)

		c.compileStatement(n.Body)

		c.Chunk.WriteU16(bytecode.OpGetLocal, uint16(idxSlot), line, col)
		c.Chunk.WriteOp(bytecode.OpPushOne, line, col)
		c.Chunk.WriteOp(bytecode.OpAddI64, line, col)
		c.Chunk.WriteU16(bytecode.OpSetLocal, uint16(idxSlot), line, col)
		c.Chunk.WriteOp(bytecode.OpPop, line, col)

		c.Chunk.EmitLoop(loop.LoopStart, line, col)
		c.Chunk.PatchJump(exitJump)
		c.Chunk.WriteOp(bytecode.OpPop, line, col)
	} else {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrUnknownMethod, n.Token, iterable.DataType.TypeHash.String(), "get_length"))
	}
	c.patchBreaks(loop)
	c.popLoop()
	c.endScope(line, col)
}

func (c *CompilationContext) patchBreaks(loop *LoopContext) {
	for _, pos := range loop.BreakJumps {
		c.Chunk.PatchJump(pos)
	}
}

func (c *CompilationContext) compileBreak(n *ast.BreakStatement) {
	loop := c.currentLoop()
	if loop == nil {
		c.addError(diagnostics.Internal(n.Token.Span, "break outside of loop"))
		return
	}
	line, col := spanOf(n)
	c.unwindToLoop(loop, line, col)
	pos := c.Chunk.WriteJump(bytecode.OpJump, line, col)
	loop.BreakJumps = append(loop.BreakJumps, pos)
}

func (c *CompilationContext) compileContinue(n *ast.ContinueStatement) {
	loop := c.currentLoop()
	if loop == nil {
		c.addError(diagnostics.Internal(n.Token.Span, "continue outside of loop"))
		return
	}
	line, col := spanOf(n)
	c.unwindToLoop(loop, line, col)
	c.Chunk.EmitLoop(loop.LoopStart, line, col)
}

// unwindToLoop releases every local declared since the loop's own scope
// depth, since break/continue jump past the normal endScope release
// sequence for those scopes.
func (c *CompilationContext) unwindToLoop(loop *LoopContext, line, col int) {
	for i := len(c.Locals) - 1; i >= loop.LocalCount; i-- {
		c.emitReleaseIfOwned(c.Locals[i], line, col)
	}
}

func (c *CompilationContext) compileReturn(n *ast.ReturnStatement) {
	line, col := spanOf(n)
	for i := len(c.Locals) - 1; i >= 0; i-- {
		c.emitReleaseIfOwned(c.Locals[i], line, col)
	}

	if n.Value == nil {
		if !c.ReturnType.IsVoid() {
			c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrTypeMismatch, n.Token, "void", c.ReturnType.TypeHash.String()))
		}
		c.Chunk.WriteOp(bytecode.OpReturnVoid, line, col)
		return
	}
	c.compileExpressionAgainst(n.Value, c.ReturnType)
	c.Chunk.WriteOp(bytecode.OpReturn, line, col)
}
