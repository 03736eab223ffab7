package parser

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/token"
	"github.com/funvibe/langc/internal/typesystem"
)

// parseTypeExpr parses a full type reference: leading `const`, a
// qualified base name (with optional `<TemplateArgs>`), and trailing
// `@`/`const` handle qualifiers. Assumes curToken is positioned on the
// first token of the type (a CONST, VOID, or IDENT).
func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	tok := p.curToken
	t := &ast.TypeExpr{Token: tok}

	if p.curTokenIs(token.CONST) {
		t.IsConst = true
		p.nextToken()
	}

	if p.curTokenIs(token.VOID) {
		t.Name = "void"
	} else {
		t.Name = p.parseQualifiedName()
	}

	if p.peekTokenIs(token.LT) && p.looksLikeTemplateArgs() {
		p.nextToken() // consume '<'
		p.nextToken()
		t.TemplateArgs = append(t.TemplateArgs, p.parseTypeExpr())
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			t.TemplateArgs = append(t.TemplateArgs, p.parseTypeExpr())
		}
		// '>>' is lexed as a single SHR token when two template arg lists
		// close back-to-back (e.g. array<array<int>>); split it into two
		// GT tokens in place rather than re-lexing.
		if p.peekTokenIs(token.SHR) {
			second := token.Token{Type: token.GT, Lexeme: ">", Span: p.peekToken.Span}
			p.pending = &second
			p.peekToken = token.Token{Type: token.GT, Lexeme: ">", Span: p.peekToken.Span}
		}
		if !p.expectPeek(token.GT) {
			return t
		}
	}

	for p.peekTokenIs(token.AT) || (p.peekTokenIs(token.CONST) && p.peekIsTrailingConst()) {
		if p.peekTokenIs(token.AT) {
			p.nextToken()
			t.IsHandle = true
			if p.peekTokenIs(token.CONST) {
				p.nextToken()
				t.IsHandleToConst = true
			}
		} else {
			p.nextToken()
			t.IsConst = true
		}
	}

	return t
}

// looksLikeTemplateArgs always reports true without looking past the
// '<': it is only called when the parser is already inside a
// type-position context, where '<' is taken to start a template
// argument list (TYPE [, TYPE]* '>') rather than a less-than comparison.
func (p *Parser) looksLikeTemplateArgs() bool { return true }

// peekIsTrailingConst distinguishes a trailing `T@ const` qualifier
// (const applying to the handle slot) from the start of an unrelated
// following declaration; in parameter/field/return position (the only
// places parseTypeExpr is called) a CONST immediately following the
// handle can only be this qualifier.
func (p *Parser) peekIsTrailingConst() bool { return true }

func (p *Parser) parseRefModifier() typesystem.RefModifier {
	switch p.curToken.Type {
	case token.IN:
		p.nextToken()
		return typesystem.RefIn
	case token.OUT:
		p.nextToken()
		return typesystem.RefOut
	case token.INOUT:
		p.nextToken()
		return typesystem.RefInOut
	default:
		return typesystem.RefNone
	}
}
