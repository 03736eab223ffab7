// Package pipeline materializes a Lexer's output into a peekable token
// list the parser can look arbitrarily far ahead over — needed to
// disambiguate e.g. `Foo<T>(x)` template-call syntax from a
// less-than comparison, which a single-token-lookahead parser can't do
// on its own.
package pipeline

import "github.com/funvibe/langc/internal/token"

// TokenStream is a materialized, peekable token list — the parser works
// against a slice rather than pulling directly from the Lexer so it can
// look arbitrarily far ahead.
type TokenStream struct {
	tokens []token.Token
	pos    int
}

// NewTokenStream drains lexer into a TokenStream, stopping at EOF. Unlike
// funxy's indentation-significant language, this language's statements
// are semicolon-terminated, so NEWLINE tokens carry no grammatical
// meaning here and are dropped rather than threaded through the parser.
func NewTokenStream(lex interface{ NextToken() token.Token }) *TokenStream {
	var toks []token.Token
	for {
		t := lex.NextToken()
		if t.Type == token.NEWLINE {
			continue
		}
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}
	return &TokenStream{tokens: toks}
}

func (s *TokenStream) Current() token.Token {
	if s.pos >= len(s.tokens) {
		return token.Token{Type: token.EOF}
	}
	return s.tokens[s.pos]
}

func (s *TokenStream) PeekAt(offset int) token.Token {
	i := s.pos + offset
	if i >= len(s.tokens) {
		return token.Token{Type: token.EOF}
	}
	return s.tokens[i]
}

func (s *TokenStream) Advance() token.Token {
	t := s.Current()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return t
}

// Peek returns up to n tokens starting at the current position, for
// lookahead decisions that need more than one token of context.
func (s *TokenStream) Peek(n int) []token.Token {
	end := s.pos + n
	if end > len(s.tokens) {
		end = len(s.tokens)
	}
	if s.pos >= len(s.tokens) {
		return nil
	}
	return s.tokens[s.pos:end]
}
