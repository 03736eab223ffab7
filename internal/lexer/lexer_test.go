package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/arena"
	"github.com/funvibe/langc/internal/lexer"
	"github.com/funvibe/langc/internal/token"
)

func scan(src string) []token.Token {
	l := lexer.New(src, arena.New())
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerSimpleAssignment(t *testing.T) {
	toks := scan("int x = 5;")
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	require.Equal(t, []token.Type{
		token.IDENT, token.IDENT, token.ASSIGN, token.INT, token.SEMI, token.EOF,
	}, types)
}

func TestLexerHandleDeclaration(t *testing.T) {
	toks := scan("Player@ p = null;")
	require.Equal(t, token.IDENT, toks[0].Type)
	require.Equal(t, token.AT, toks[1].Type)
	require.Equal(t, token.NULL, toks[4].Type)
}

func TestLexerUnterminatedStringReportsError(t *testing.T) {
	l := lexer.New(`"unterminated`, arena.New())
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
	}
	require.NotEmpty(t, l.Errors())
}

func TestLexerPreservesSpan(t *testing.T) {
	toks := scan("x\ny")
	require.Equal(t, 1, toks[0].Span.Line)
	last := toks[len(toks)-2] // skip the trailing EOF token
	require.Equal(t, 2, last.Span.Line)
}
