package compiler

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typesystem"
)

// compileInitList elaborates a brace-delimited initializer list against
// target's list behavior (spec §4.8): Repeat recurses into a nested
// `{...}` whose element itself names a list-capable type, RepeatTuple
// takes any number of top-level `{...}` groups, each holding exactly one
// element per entry of the pattern's type list, and Fixed matches the
// top-level elements positionally against that type list.
//
// Simplification: only the first registered ListBehavior for the target
// type is used: this language generalizes one list pattern per type
// (the common case) rather than AngelScript's full list-pattern grammar
// with alternation.
func (c *CompilationContext) compileInitList(il *ast.InitListExpression, target typesystem.DataType) ExprInfo {
	behaviors, ok := c.Reg.GetBehaviors(target.TypeHash)
	if !ok {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrInvalidInitList, il.Token, target.TypeHash.String(), "type has no registered behaviors"))
		return ExprInfo{DataType: target}
	}
	list := behaviors.ListBehaviors()
	if len(list) == 0 {
		c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrInvalidInitList, il.Token, target.TypeHash.String(), "type has no list-initialization behavior"))
		return ExprInfo{DataType: target}
	}
	lb := list[0]
	argc := len(il.Elements)

	switch lb.Pattern.Tag {
	case registry.ListRepeat:
		elemType := typesystem.DataType{TypeHash: lb.Pattern.Element}
		for _, el := range il.Elements {
			c.compileInitListElement(el, elemType)
		}
	case registry.ListRepeatTuple:
		for _, el := range il.Elements {
			group, ok := el.(*ast.InitListExpression)
			if !ok || len(group.Elements) != len(lb.Pattern.Tuple) {
				c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrInvalidInitList, il.Token, target.TypeHash.String(), "each element must be a {...} group matching the list pattern"))
				return ExprInfo{DataType: target}
			}
			for i, inner := range group.Elements {
				c.compileExpressionAgainst(inner, typesystem.DataType{TypeHash: lb.Pattern.Tuple[i]})
			}
		}
		argc = len(il.Elements) * len(lb.Pattern.Tuple)
	case registry.ListFixed:
		if len(il.Elements) != len(lb.Pattern.Tuple) {
			c.addError(diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrInvalidInitList, il.Token, target.TypeHash.String(), "element count does not match list pattern"))
			return ExprInfo{DataType: target}
		}
		for i, el := range il.Elements {
			c.compileInitListElement(el, typesystem.DataType{TypeHash: lb.Pattern.Tuple[i]})
		}
	}

	line, col := spanOf(il)
	c.Chunk.WriteCall(bytecode.OpCallMethod, lb.FuncHash, byte(argc), line, col)
	return ExprInfo{DataType: target}
}

func (c *CompilationContext) compileInitListElement(el ast.Expression, elemType typesystem.DataType) {
	if inner, ok := el.(*ast.InitListExpression); ok {
		c.compileInitList(inner, elemType)
		return
	}
	c.compileExpressionAgainst(el, elemType)
}
