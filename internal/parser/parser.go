// Package parser builds an *ast.Program from a token stream: a Pratt
// expression parser plus recursive-descent declaration/statement rules,
// generalizing funxy/internal/parser's prefix/infix function-table
// design (curToken/peekToken, registerPrefix/registerInfix, a precedence
// table driving parseExpression's binding-power loop) to this language's
// grammar. Unlike funxy, statements here are semicolon-terminated and
// newline-insensitive, so the "continuation operator across NEWLINE"
// machinery funxy needs has no counterpart.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/pipeline"
	"github.com/funvibe/langc/internal/token"
)

// MaxRecursionDepth guards parseExpression against pathological/
// adversarial input, matching the teacher's own recursion-depth
// safeguard in expressions_core.go.
const MaxRecursionDepth = 250

// Precedence levels, lowest to highest.
const (
	LOWEST int = iota
	TERNARY
	LOGIC_OR
	LOGIC_AND
	BIT_OR
	BIT_XOR
	BIT_AND
	EQUALITY
	COMPARE
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	POW
	PREFIX
	POSTFIX
	CALL
)

var precedences = map[token.Type]int{
	token.QUESTION:    TERNARY,
	token.OR:          LOGIC_OR,
	token.AND:         LOGIC_AND,
	token.PIPE:        BIT_OR,
	token.CARET:       BIT_XOR,
	token.AMP:         BIT_AND,
	token.EQ:          EQUALITY,
	token.NOT_EQ:      EQUALITY,
	token.IS:          EQUALITY,
	token.NOT_IS:      EQUALITY,
	token.LT:          COMPARE,
	token.GT:          COMPARE,
	token.LTE:         COMPARE,
	token.GTE:         COMPARE,
	token.SHL:         SHIFT,
	token.SHR:         SHIFT,
	token.USHR:        SHIFT,
	token.PLUS:        ADDITIVE,
	token.MINUS:       ADDITIVE,
	token.ASTERISK:    MULTIPLICATIVE,
	token.SLASH:       MULTIPLICATIVE,
	token.PERCENT:     MULTIPLICATIVE,
	token.POWER:       POW,
	token.INC:         POSTFIX,
	token.DEC:         POSTFIX,
	token.LPAREN:      CALL,
	token.LBRACKET:    CALL,
	token.DOT:         CALL,
	token.SCOPE:       CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser is a single-pass, recursive-descent + Pratt-expression parser
// over a materialized pipeline.TokenStream.
type Parser struct {
	stream *pipeline.TokenStream
	errors []*diagnostics.Error

	curToken  token.Token
	peekToken token.Token

	// pending holds a synthetic token manufactured by splitting a
	// lexed token in two (e.g. '>>' closing nested template args as two
	// '>' tokens); nextToken consumes it before pulling from stream.
	pending *token.Token

	depth int

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a Parser over an already-lexed token stream.
func New(stream *pipeline.TokenStream) *Parser {
	p := &Parser{stream: stream}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifierOrScopeOrCall,
		token.INT:      p.parseIntegerLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.CHAR:     p.parseCharLiteral,
		token.TRUE:     p.parseBoolLiteral,
		token.FALSE:    p.parseBoolLiteral,
		token.NULL:     p.parseNullLiteral,
		token.THIS:     p.parseThisExpression,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACE:   p.parseInitListExpression,
		token.BANG:     p.parsePrefixExpression,
		token.MINUS:    p.parsePrefixExpression,
		token.PLUS:     p.parsePrefixExpression,
		token.TILDE:    p.parsePrefixExpression,
		token.INC:      p.parsePrefixExpression,
		token.DEC:      p.parsePrefixExpression,
		token.AT:       p.parseHandleOfExpression,
		token.VOID:     p.parseTypeAsExpressionHead,
		token.CONST:    p.parseTypeAsExpressionHead,
	}

	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:     p.parseInfixExpression,
		token.MINUS:    p.parseInfixExpression,
		token.ASTERISK: p.parseInfixExpression,
		token.SLASH:    p.parseInfixExpression,
		token.PERCENT:  p.parseInfixExpression,
		token.POWER:    p.parseInfixExpression,
		token.EQ:       p.parseInfixExpression,
		token.NOT_EQ:   p.parseInfixExpression,
		token.LT:       p.parseInfixExpression,
		token.GT:       p.parseInfixExpression,
		token.LTE:      p.parseInfixExpression,
		token.GTE:      p.parseInfixExpression,
		token.AND:      p.parseInfixExpression,
		token.OR:       p.parseInfixExpression,
		token.AMP:      p.parseInfixExpression,
		token.PIPE:     p.parseInfixExpression,
		token.CARET:    p.parseInfixExpression,
		token.SHL:      p.parseInfixExpression,
		token.SHR:      p.parseInfixExpression,
		token.USHR:     p.parseInfixExpression,
		token.IS:       p.parseIsExpression,
		token.NOT_IS:   p.parseIsExpression,
		token.DOT:      p.parseMemberExpression,
		token.SCOPE:    p.parseScopeExpression,
		token.LPAREN:   p.parseCallExpression,
		token.LBRACKET: p.parseIndexExpression,
		token.QUESTION: p.parseConditionalExpression,
		token.INC:      p.parsePostfixExpression,
		token.DEC:      p.parsePostfixExpression,
		token.ASSIGN:       p.parseAssignExpression,
		token.PLUS_ASSIGN:  p.parseAssignExpression,
		token.MINUS_ASSIGN: p.parseAssignExpression,
		token.MUL_ASSIGN:   p.parseAssignExpression,
		token.SLASH_ASSIGN: p.parseAssignExpression,
		token.MOD_ASSIGN:   p.parseAssignExpression,
		token.POW_ASSIGN:   p.parseAssignExpression,
		token.AND_ASSIGN:   p.parseAssignExpression,
		token.OR_ASSIGN:    p.parseAssignExpression,
		token.XOR_ASSIGN:   p.parseAssignExpression,
		token.SHL_ASSIGN:   p.parseAssignExpression,
		token.SHR_ASSIGN:   p.parseAssignExpression,
		token.USHR_ASSIGN:  p.parseAssignExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every syntax error accumulated during parsing.
func (p *Parser) Errors() []*diagnostics.Error { return p.errors }

func (p *Parser) addError(code diagnostics.Code, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.FromToken(diagnostics.PhaseParser, code, p.curToken, args...))
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pending != nil {
		p.peekToken = *p.pending
		p.pending = nil
		return
	}
	p.peekToken = p.stream.Advance()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

// lookahead returns the token n positions past curToken (0 = curToken,
// 1 = peekToken, 2+ reaches into the underlying stream), for multi-
// token disambiguation heuristics (var-decl vs expression-statement,
// for vs foreach) that need to see further than the one-token peek the
// Pratt core uses.
func (p *Parser) lookahead(n int) token.Token {
	switch {
	case n == 0:
		return p.curToken
	case n == 1:
		return p.peekToken
	default:
		return p.stream.PeekAt(n - 2)
	}
}

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errors = append(p.errors, diagnostics.FromToken(diagnostics.PhaseParser, diagnostics.ErrExpected,
		p.peekToken, string(t), p.peekToken.Lexeme))
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) noPrefixParseFnError(t token.Type) {
	p.addError(diagnostics.ErrUnexpectedToken, string(t))
}

// ParseProgram parses an entire compilation unit.
func ParseProgram(stream *pipeline.TokenStream) (*ast.Program, []*diagnostics.Error) {
	p := New(stream)
	prog := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		switch {
		case p.curTokenIs(token.IMPORT):
			prog.Imports = append(prog.Imports, p.parseImportDecl())
		case p.curTokenIs(token.USING):
			prog.Usings = append(prog.Usings, p.parseUsingDecl())
		case p.curTokenIs(token.NAMESPACE):
			prog.Decls = append(prog.Decls, p.parseNamespaceDecl())
		default:
			if d := p.parseTopLevelDecl(); d != nil {
				prog.Decls = append(prog.Decls, d)
			}
		}
		p.nextToken()
	}
	return prog, p.errors
}

// ParseDeclString parses a single FFI declaration string (e.g. a host
// function or property signature registered via the embedding API) and
// rejects trailing tokens per spec: FFI decl strings must be pinned
// tight, unlike a full program which simply ends at EOF.
func ParseDeclString(stream *pipeline.TokenStream) (ast.Statement, []*diagnostics.Error) {
	p := New(stream)
	decl := p.parseTopLevelDecl()
	if !p.peekTokenIs(token.EOF) {
		p.addError(diagnostics.ErrTrailingTokens, p.peekToken.Lexeme)
	}
	return decl, p.errors
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	tok := p.curToken
	if !p.expectPeek(token.STRING) {
		return &ast.ImportDecl{Token: tok}
	}
	path := fmt.Sprint(p.curToken.Literal)
	d := &ast.ImportDecl{Token: tok, Path: path}
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return d
}

func (p *Parser) parseUsingDecl() *ast.UsingDecl {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return &ast.UsingDecl{Token: tok}
	}
	ns := p.parseQualifiedName()
	d := &ast.UsingDecl{Token: tok, Namespace: ns}
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return d
}

// parseQualifiedName consumes `Ident(::Ident)*` starting at curToken
// positioned on the first IDENT, leaving curToken on the last IDENT.
func (p *Parser) parseQualifiedName() string {
	var sb strings.Builder
	sb.WriteString(p.curToken.Lexeme)
	for p.peekTokenIs(token.SCOPE) {
		p.nextToken() // consume ::
		if !p.expectPeek(token.IDENT) {
			break
		}
		sb.WriteString("::")
		sb.WriteString(p.curToken.Lexeme)
	}
	return sb.String()
}

func (p *Parser) parseNamespaceDecl() *ast.NamespaceDecl {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return &ast.NamespaceDecl{Token: tok}
	}
	name := p.parseQualifiedName()
	d := &ast.NamespaceDecl{Token: tok, Name: name}
	if !p.expectPeek(token.LBRACE) {
		return d
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if decl := p.parseTopLevelDecl(); decl != nil {
			d.Body = append(d.Body, decl)
		}
		p.nextToken()
	}
	return d
}

func (p *Parser) parseTopLevelDecl() ast.Statement {
	switch p.curToken.Type {
	case token.CLASS:
		return p.parseClassDecl()
	case token.MIXIN:
		return p.parseMixinClassDecl()
	case token.INTERFACE:
		return p.parseInterfaceDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.FUNCDEF:
		return p.parseFuncdefDecl()
	default:
		return p.parseFunctionOrVarDecl()
	}
}

func strconvParseInt(lit string) int64 {
	base := 10
	s := strings.ReplaceAll(lit, "_", "")
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base, s = 2, s[2:]
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		base, s = 8, s[2:]
	case strings.HasPrefix(s, "0d") || strings.HasPrefix(s, "0D"):
		base, s = 10, s[2:]
	}
	n, _ := strconv.ParseInt(s, base, 64)
	return n
}

func strconvParseFloat(lit string) float64 {
	s := strings.TrimSuffix(strings.TrimSuffix(lit, "f"), "F")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
