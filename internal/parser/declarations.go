package parser

import (
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/token"
)

// parseClassDecl parses `class Name [<T,U>] [: Base, IFace, ...] { ... }`.
// A leading `final` or `mixin` modifier is handled by the caller
// (parseMixinClassDecl) or consumed here when curToken is already past it.
func (p *Parser) parseClassDecl() *ast.ClassDecl {
	tok := p.curToken
	d := &ast.ClassDecl{Token: tok}
	if !p.expectPeek(token.IDENT) {
		return d
	}
	d.Name = p.curToken.Lexeme

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		p.nextToken()
		d.TemplateParams = append(d.TemplateParams, p.curToken.Lexeme)
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			d.TemplateParams = append(d.TemplateParams, p.curToken.Lexeme)
		}
		p.expectPeek(token.GT)
	}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		first := p.parseTypeExpr()
		bases := []*ast.TypeExpr{first}
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			bases = append(bases, p.parseTypeExpr())
		}
		// The first listed base is conventionally the superclass; any
		// further entries name implemented interfaces. A Registration-pass
		// lookup resolves which is actually which once types are known.
		d.Base = bases[0]
		d.Interfaces = bases[1:]
	}

	if !p.expectPeek(token.LBRACE) {
		return d
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.parseClassMember(d)
		p.nextToken()
	}
	return d
}

func (p *Parser) parseMixinClassDecl() *ast.ClassDecl {
	// curToken == MIXIN; advance onto CLASS and parse normally.
	if !p.expectPeek(token.CLASS) {
		return &ast.ClassDecl{Token: p.curToken, IsMixin: true}
	}
	d := p.parseClassDecl()
	d.IsMixin = true
	return d
}

// parseClassMember parses one field or method declaration at curToken
// and appends it to d. Leading access/trait modifiers (private,
// protected, final, override, explicit, property) are consumed before
// the member's type/name.
func (p *Parser) parseClassMember(d *ast.ClassDecl) {
	var isPrivate, isProtected, isFinal, isOverride, isExplicit, isProperty bool
	for {
		switch p.curToken.Type {
		case token.PRIVATE:
			isPrivate = true
		case token.PROTECTED:
			isProtected = true
		case token.FINAL:
			isFinal = true
		case token.OVERRIDE:
			isOverride = true
		case token.EXPLICIT:
			isExplicit = true
		case token.PROPERTY:
			isProperty = true
		default:
			goto done
		}
		p.nextToken()
	}
done:

	// Constructor / destructor: `Name(...)` or `~Name(...)` matching the
	// enclosing class name, with no return type.
	if p.curTokenIs(token.TILDE) {
		p.nextToken()
		name := "~" + p.curToken.Lexeme
		if !p.expectPeek(token.LPAREN) {
			return
		}
		p.parseMethodTail(d, name, nil, isFinal, isOverride, isExplicit, isProperty)
		return
	}
	if p.curTokenIs(token.IDENT) && p.curToken.Lexeme == d.Name && p.peekTokenIs(token.LPAREN) {
		name := p.curToken.Lexeme
		p.nextToken()
		p.parseMethodTail(d, name, nil, isFinal, isOverride, isExplicit, isProperty)
		return
	}

	typ := p.parseTypeExpr()
	if !p.expectPeek(token.IDENT) {
		return
	}
	name := p.curToken.Lexeme

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		p.parseMethodTail(d, name, typ, isFinal, isOverride, isExplicit, isProperty)
		return
	}

	field := &ast.FieldDecl{Token: p.curToken, Name: name, Type: typ, IsPrivate: isPrivate, IsProtected: isProtected}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		field.Init = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	d.Fields = append(d.Fields, field)
}

// parseMethodTail parses the `(params) [const] { body }` or `(params)
// [const];` tail shared by methods, constructors, and destructors.
// curToken is LPAREN on entry.
func (p *Parser) parseMethodTail(d *ast.ClassDecl, name string, ret *ast.TypeExpr, isFinal, isOverride, isExplicit, isProperty bool) {
	tok := p.curToken
	method := &ast.FunctionDecl{
		Token: tok, Name: name, Return: ret,
		IsFinal: isFinal, IsOverride: isOverride, IsExplicit: isExplicit, IsProperty: isProperty,
	}
	method.Params = p.parseParamList()
	if p.peekTokenIs(token.CONST) {
		p.nextToken()
		method.IsConst = true
	}
	if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		method.Body = p.parseBlockStatement()
	} else if p.peekTokenIs(token.SEMI) {
		p.nextToken()
		method.IsAbstract = true
	}
	d.Methods = append(d.Methods, method)
}

// parseParamList parses `(T a, const U@ b = expr, ...)`; curToken is
// LPAREN on entry, RPAREN on exit.
func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.parseParam())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseParam())
	}
	p.expectPeek(token.RPAREN)
	return params
}

func (p *Parser) parseParam() *ast.Param {
	tok := p.curToken
	refMod := p.parseRefModifier()
	typ := p.parseTypeExpr()
	typ.RefModifier = refMod
	param := &ast.Param{Token: tok, Type: typ}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		param.Name = p.curToken.Lexeme
	}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		param.Default = p.parseExpression(LOWEST)
		param.HasDefault = true
	}
	return param
}

// parseInterfaceDecl parses `interface Name [: Base, ...] { ... }`; every
// member is an abstract method signature, never a field or body.
func (p *Parser) parseInterfaceDecl() *ast.InterfaceDecl {
	tok := p.curToken
	d := &ast.InterfaceDecl{Token: tok}
	if !p.expectPeek(token.IDENT) {
		return d
	}
	d.Name = p.curToken.Lexeme

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		d.Bases = append(d.Bases, p.parseTypeExpr())
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			d.Bases = append(d.Bases, p.parseTypeExpr())
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return d
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		isProperty := false
		if p.curTokenIs(token.PROPERTY) {
			isProperty = true
			p.nextToken()
		}
		ret := p.parseTypeExpr()
		if !p.expectPeek(token.IDENT) {
			p.nextToken()
			continue
		}
		name := p.curToken.Lexeme
		if !p.expectPeek(token.LPAREN) {
			p.nextToken()
			continue
		}
		m := &ast.FunctionDecl{Token: p.curToken, Name: name, Return: ret, IsAbstract: true, IsProperty: isProperty}
		m.Params = p.parseParamList()
		if p.peekTokenIs(token.CONST) {
			p.nextToken()
			m.IsConst = true
		}
		if p.peekTokenIs(token.SEMI) {
			p.nextToken()
		}
		d.Methods = append(d.Methods, m)
		p.nextToken()
	}
	return d
}

// parseEnumDecl parses `enum Name { A, B = 5, C }`.
func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	tok := p.curToken
	d := &ast.EnumDecl{Token: tok}
	if !p.expectPeek(token.IDENT) {
		return d
	}
	d.Name = p.curToken.Lexeme
	if !p.expectPeek(token.LBRACE) {
		return d
	}
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return d
	}
	p.nextToken()
	d.Values = append(d.Values, p.parseEnumValue())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if p.peekTokenIs(token.RBRACE) {
			break
		}
		p.nextToken()
		d.Values = append(d.Values, p.parseEnumValue())
	}
	p.expectPeek(token.RBRACE)
	return d
}

func (p *Parser) parseEnumValue() ast.EnumValueDecl {
	v := ast.EnumValueDecl{Name: p.curToken.Lexeme}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		v.Value = p.parseExpression(LOWEST)
	}
	return v
}

// parseFuncdefDecl parses `funcdef Ret Name(params);`.
func (p *Parser) parseFuncdefDecl() *ast.FuncdefDecl {
	tok := p.curToken
	p.nextToken()
	ret := p.parseTypeExpr()
	d := &ast.FuncdefDecl{Token: tok, Return: ret}
	if !p.expectPeek(token.IDENT) {
		return d
	}
	d.Name = p.curToken.Lexeme
	if !p.expectPeek(token.LPAREN) {
		return d
	}
	d.Params = p.parseParamList()
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return d
}

// parseFunctionOrVarDecl handles top-level `Ret name(params) { ... }` and
// `Type name [= expr];`, disambiguated by whether a '(' follows the name.
func (p *Parser) parseFunctionOrVarDecl() ast.Statement {
	tok := p.curToken
	typ := p.parseTypeExpr()
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Lexeme

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		fn := &ast.FunctionDecl{Token: tok, Name: name, Return: typ}
		fn.Params = p.parseParamList()
		if p.peekTokenIs(token.CONST) {
			p.nextToken()
			fn.IsConst = true
		}
		if p.peekTokenIs(token.LBRACE) {
			p.nextToken()
			fn.Body = p.parseBlockStatement()
		} else if p.peekTokenIs(token.SEMI) {
			p.nextToken()
		}
		return fn
	}

	d := &ast.VarDecl{Token: tok, Name: name, Type: typ, IsConst: typ.IsConst}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		d.Init = p.parseExpression(LOWEST)
	} else if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		d.Init = p.parseInitListExpression()
	}
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return d
}

// parseCastExpression parses `cast<Type>(expr)`; registered as a prefix
// fn for an identifier lexeme "cast" is not possible through the
// token-type-keyed prefixParseFns table, so the cast form is recognized
// directly inside parseIdentifierOrScopeOrCall by lexeme instead.
func (p *Parser) parseCastExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.LT) {
		return nil
	}
	p.nextToken()
	typ := p.parseTypeExpr()
	if !p.expectPeek(token.GT) || !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	val := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		p.addError(diagnostics.ErrExpected, ")", p.peekToken.Lexeme)
	}
	return &ast.CastExpression{Token: tok, Type: typ, Value: val}
}
