package parser

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/token"
)

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FOR:
		return p.parseForOrForEachStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.CONST:
		return p.parseVarDecl()
	case token.IDENT:
		if p.looksLikeVarDecl() {
			return p.parseVarDecl()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return &ast.IfStatement{Token: tok}
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return &ast.IfStatement{Token: tok, Condition: cond}
	}
	if !p.expectPeek(token.LBRACE) {
		return &ast.IfStatement{Token: tok, Condition: cond}
	}
	cons := p.parseBlockStatement()
	stmt := &ast.IfStatement{Token: tok, Condition: cond, Consequence: cons}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			stmt.Alternative = p.parseIfStatement()
		} else if p.expectPeek(token.LBRACE) {
			stmt.Alternative = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return &ast.WhileStatement{Token: tok}
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) || !p.expectPeek(token.LBRACE) {
		return &ast.WhileStatement{Token: tok, Condition: cond}
	}
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: p.parseBlockStatement()}
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	tok := p.curToken
	if !p.expectPeek(token.LBRACE) {
		return &ast.DoWhileStatement{Token: tok}
	}
	body := p.parseBlockStatement()
	if !p.expectPeek(token.WHILE) || !p.expectPeek(token.LPAREN) {
		return &ast.DoWhileStatement{Token: tok, Body: body}
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	p.expectPeek(token.RPAREN)
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.DoWhileStatement{Token: tok, Body: body, Condition: cond}
}

func (p *Parser) parseForOrForEachStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return &ast.ForStatement{Token: tok}
	}
	p.nextToken()

	if p.isTypeStart() && p.nthTokenIsForEachColon() {
		typ := p.parseTypeExpr()
		if !p.expectPeek(token.IDENT) {
			return &ast.ForEachStatement{Token: tok}
		}
		name := p.curToken.Lexeme
		if !p.expectPeek(token.COLON) {
			return &ast.ForEachStatement{Token: tok}
		}
		p.nextToken()
		iter := p.parseExpression(LOWEST)
		if !p.expectPeek(token.RPAREN) || !p.expectPeek(token.LBRACE) {
			return &ast.ForEachStatement{Token: tok, VarType: typ, VarName: name, Iterable: iter}
		}
		return &ast.ForEachStatement{Token: tok, VarType: typ, VarName: name, Iterable: iter, Body: p.parseBlockStatement()}
	}

	var init ast.Statement
	if !p.curTokenIs(token.SEMI) {
		if p.isTypeStart() {
			init = p.parseVarDeclNoSemi()
		} else {
			init = &ast.ExpressionStatement{Token: p.curToken, Expression: p.parseExpression(LOWEST)}
		}
	}
	if !p.expectPeek(token.SEMI) {
		return &ast.ForStatement{Token: tok, Init: init}
	}
	var cond ast.Expression
	if !p.peekTokenIs(token.SEMI) {
		p.nextToken()
		cond = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(token.SEMI) {
		return &ast.ForStatement{Token: tok, Init: init, Condition: cond}
	}
	var post ast.Expression
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		post = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(token.RPAREN) || !p.expectPeek(token.LBRACE) {
		return &ast.ForStatement{Token: tok, Init: init, Condition: cond, Post: post}
	}
	return &ast.ForStatement{Token: tok, Init: init, Condition: cond, Post: post, Body: p.parseBlockStatement()}
}

// nthTokenIsForEachColon distinguishes `for (T x : iterable)` from a
// plain C-style `for (T x = 0; ...)` by peeking ahead past the type and
// identifier for a ':' versus a '=' or ';'. curToken is positioned on
// the first token of the type.
func (p *Parser) nthTokenIsForEachColon() bool {
	for i := 0; i < 8; i++ {
		switch p.lookahead(i).Type {
		case token.COLON:
			return true
		case token.ASSIGN, token.SEMI:
			return false
		}
	}
	return false
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	return &ast.BreakStatement{Token: p.curToken}
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	return &ast.ContinueStatement{Token: p.curToken}
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	tok := p.curToken
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
		return &ast.ReturnStatement{Token: tok}
	}
	p.nextToken()
	val := p.parseExpression(LOWEST)
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.ReturnStatement{Token: tok, Value: val}
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}

// isTypeStart reports whether curToken can begin a type reference
// (CONST, VOID, or IDENT followed eventually by a local-declaration
// shape); used to decide var-decl vs expression-statement ambiguity.
func (p *Parser) isTypeStart() bool {
	return p.curTokenIs(token.CONST) || p.curTokenIs(token.VOID) || p.curTokenIs(token.IDENT)
}

// looksLikeVarDecl disambiguates `Foo x = ...;` (a local declaration)
// from `foo();` or `foo = 1;` (expression statements) by checking
// whether, after the leading IDENT (and optional `::Ident`/
// `<TemplateArgs>`/`@`/`const` suffix), another IDENT follows — the
// variable name. curToken is positioned on the leading IDENT, so
// lookahead(1) is the first token after it.
func (p *Parser) looksLikeVarDecl() bool {
	i := 1
	for p.lookahead(i).Type == token.SCOPE {
		i++ // ::
		i++ // ident
	}
	if p.lookahead(i).Type == token.LT {
		depth := 0
		for {
			t := p.lookahead(i).Type
			if t == token.LT {
				depth++
			} else if t == token.GT {
				depth--
			} else if t == token.SHR {
				depth -= 2
			} else if t == token.EOF || t == token.SEMI {
				return false
			}
			i++
			if depth <= 0 {
				break
			}
		}
	}
	for p.lookahead(i).Type == token.AT || p.lookahead(i).Type == token.CONST {
		i++
	}
	return p.lookahead(i).Type == token.IDENT
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	d := p.parseVarDeclNoSemi()
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return d
}

func (p *Parser) parseVarDeclNoSemi() *ast.VarDecl {
	tok := p.curToken
	typ := p.parseTypeExpr()
	if !p.expectPeek(token.IDENT) {
		return &ast.VarDecl{Token: tok, Type: typ}
	}
	d := &ast.VarDecl{Token: tok, Type: typ, Name: p.curToken.Lexeme, IsConst: typ.IsConst}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		d.Init = p.parseExpression(LOWEST)
	} else if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		d.Init = p.parseInitListExpression()
	}
	return d
}
