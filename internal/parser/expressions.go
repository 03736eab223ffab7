package parser

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/token"
)

// parseExpression is the Pratt-parser core, unchanged in shape from
// funxy's expressions_core.go aside from dropping the NEWLINE-
// continuation lookahead this language's grammar does not need.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		p.addError(diagnostics.ErrUnexpectedToken, "expression too deeply nested")
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for !p.peekTokenIs(token.SEMI) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}
	return leftExp
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	return &ast.IntegerLiteral{Token: p.curToken, Value: strconvParseInt(p.curToken.Lexeme)}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	return &ast.FloatLiteral{Token: p.curToken, Value: strconvParseFloat(p.curToken.Lexeme)}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	r, _ := p.curToken.Literal.(rune)
	return &ast.CharLiteral{Token: p.curToken, Value: r}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.BoolLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression { return &ast.NullLiteral{Token: p.curToken} }

func (p *Parser) parseThisExpression() ast.Expression { return &ast.ThisExpression{Token: p.curToken} }

// parseIdentifierOrScopeOrCall handles the common case: a bare
// identifier that may turn out to be a type name used in constructor-
// call position (Foo(args)) once the next token is seen. Disambiguating
// "is this a call or a type-construction expression" is left to the
// Registration/Body passes, following funxy's member-access
// disambiguation convention of deferring kind resolution past parsing.
func (p *Parser) parseIdentifierOrScopeOrCall() ast.Expression {
	if p.curToken.Lexeme == "cast" && p.peekTokenIs(token.LT) {
		return p.parseCastExpression()
	}
	return &ast.Identifier{Token: p.curToken, Name: p.curToken.Lexeme}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return exp
	}
	return exp
}

func (p *Parser) parseInitListExpression() ast.Expression {
	tok := p.curToken
	lit := &ast.InitListExpression{Token: tok}
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return lit
	}
	p.nextToken()
	lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(token.RBRACE) {
		return lit
	}
	return lit
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.curToken
	op := string(tok.Type)
	if tok.Type == token.INC || tok.Type == token.DEC {
		p.nextToken()
		return &ast.PrefixExpression{Token: tok, Operator: op, Right: p.parseExpression(PREFIX)}
	}
	p.nextToken()
	return &ast.PrefixExpression{Token: tok, Operator: op, Right: p.parseExpression(PREFIX)}
}

func (p *Parser) parseHandleOfExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	return &ast.HandleOfExpression{Token: tok, Value: p.parseExpression(PREFIX)}
}

func (p *Parser) parsePostfixExpression(left ast.Expression) ast.Expression {
	return &ast.PostfixExpression{Token: p.curToken, Operand: left, Operator: string(p.curToken.Type)}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := string(tok.Type)
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.InfixExpression{Token: tok, Left: left, Operator: op, Right: right}
}

func (p *Parser) parseIsExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	negated := tok.Type == token.NOT_IS
	p.nextToken()
	right := p.parseExpression(EQUALITY)
	return &ast.IsExpression{Token: tok, Left: left, Right: right, Negated: negated}
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return left
	}
	return &ast.MemberExpression{Token: tok, Object: left, Member: p.curToken.Lexeme}
}

func (p *Parser) parseScopeExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	ident, ok := left.(*ast.Identifier)
	scope := ""
	if ok {
		scope = ident.Name
	}
	if !p.expectPeek(token.IDENT) {
		return left
	}
	return &ast.ScopeExpression{Token: tok, Scope: scope, Member: p.curToken.Lexeme}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	idx := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return left
	}
	return &ast.IndexExpression{Token: tok, Left: left, Index: idx}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.curToken
	call := &ast.CallExpression{Token: tok, Callee: callee}
	call.Args, call.ArgNames = p.parseCallArguments()
	return call
}

func (p *Parser) parseCallArguments() ([]ast.Expression, []string) {
	var args []ast.Expression
	var names []string
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args, names
	}
	p.nextToken()
	name, val := p.parseMaybeNamedArg()
	args = append(args, val)
	names = append(names, name)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		name, val := p.parseMaybeNamedArg()
		args = append(args, val)
		names = append(names, name)
	}
	p.expectPeek(token.RPAREN)
	return args, names
}

// parseMaybeNamedArg handles `name: expr` named-argument call syntax by
// looking one token ahead for `IDENT COLON` before falling back to a
// plain positional expression.
func (p *Parser) parseMaybeNamedArg() (string, ast.Expression) {
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		name := p.curToken.Lexeme
		p.nextToken() // consume ident
		p.nextToken() // consume ':'
		return name, p.parseExpression(LOWEST)
	}
	return "", p.parseExpression(LOWEST)
}

func (p *Parser) parseConditionalExpression(cond ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	cons := p.parseExpression(LOWEST)
	if !p.expectPeek(token.COLON) {
		return cond
	}
	p.nextToken()
	alt := p.parseExpression(LOWEST)
	return &ast.ConditionalExpression{Token: tok, Condition: cond, Consequence: cons, Alternative: alt}
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := string(tok.Type)
	p.nextToken()
	val := p.parseExpression(LOWEST)
	return &ast.AssignExpression{Token: tok, Target: left, Operator: op, Value: val}
}

// parseTypeAsExpressionHead covers `void`/`const` appearing where an
// expression is grammatically expected only inside a cast context
// (`cast<const Foo@>(x)`); the cast-specific parse rule
// (parseCastExpression in declarations.go) handles those directly, so
// this prefix fn only exists to give a prefixParseFns entry and report a
// clear error if one of these tokens is ever reached as a bare
// expression head.
func (p *Parser) parseTypeAsExpressionHead() ast.Expression {
	p.addError(diagnostics.ErrUnexpectedToken, p.curToken.Lexeme)
	return nil
}
