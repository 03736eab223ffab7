// Package diagnostics defines the structured error values returned from
// every compiler entry point. No panics on user input: lexical, syntactic,
// semantic, and registration failures are all represented as *Error.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/langc/internal/token"
)

type Phase string

const (
	PhaseLexer        Phase = "lexer"
	PhaseParser       Phase = "parser"
	PhaseRegistration Phase = "registration"
	PhaseBody         Phase = "body"
	PhaseInternal     Phase = "internal"
)

type Code string

const (
	// Lexical
	ErrUnterminatedString  Code = "L001"
	ErrUnterminatedComment Code = "L002"
	ErrInvalidDigit        Code = "L003"
	ErrInvalidChar         Code = "L004"

	// Syntactic
	ErrUnexpectedToken Code = "P001"
	ErrExpected        Code = "P002"
	ErrTrailingTokens  Code = "P003" // FFI decl strings must be pinned tight

	// Semantic
	ErrUnknownType             Code = "S001"
	ErrUnknownField            Code = "S002"
	ErrUnknownMethod           Code = "S003"
	ErrTypeMismatch            Code = "S004"
	ErrNoOperator              Code = "S005"
	ErrCannotModifyConst       Code = "S006"
	ErrVariableRedeclaration   Code = "S007"
	ErrInvalidTemplateInstance Code = "S008"
	ErrWrongTemplateArgCount   Code = "S009"
	ErrAmbiguousOverload       Code = "S010"
	ErrNoMatchingOverload      Code = "S011"
	ErrInvalidInitList         Code = "S012"
	ErrSecondBaseClass         Code = "S013"

	// Registration
	ErrDuplicateName       Code = "R001"
	ErrForbiddenBehavior   Code = "R002"
	ErrMissingBehaviors    Code = "R003"
	ErrUnregisteredBase    Code = "R004"
	ErrObjectTypeMismatch  Code = "R005"
	ErrImportCycle         Code = "R006"
	ErrUninstalledImport   Code = "R007"

	// Internal (compiler bug indicators)
	ErrInternal Code = "I001"
)

var templates = map[Code]string{
	ErrUnterminatedString:  "unterminated string literal",
	ErrUnterminatedComment: "unterminated block comment",
	ErrInvalidDigit:        "invalid digit %q in numeric literal",
	ErrInvalidChar:         "unexpected character %q",

	ErrUnexpectedToken: "unexpected token %q",
	ErrExpected:        "expected %s, got %q",
	ErrTrailingTokens:  "unexpected trailing tokens after declaration: %q",

	ErrUnknownType:             "unknown type %q",
	ErrUnknownField:            "type %q has no field %q",
	ErrUnknownMethod:           "type %q has no method %q",
	ErrTypeMismatch:            "cannot convert %s to %s",
	ErrNoOperator:              "no operator %q for operands %s and %s",
	ErrCannotModifyConst:       "cannot call non-const method %q on const object",
	ErrVariableRedeclaration:   "redeclaration of %q in this scope",
	ErrInvalidTemplateInstance: "invalid template instantiation %q: %s",
	ErrWrongTemplateArgCount:   "template %q expects %d arguments, got %d",
	ErrAmbiguousOverload:       "ambiguous call to overloaded %q",
	ErrNoMatchingOverload:      "no matching overload for %q",
	ErrInvalidInitList:         "invalid initializer list for %q: %s",
	ErrSecondBaseClass:         "class %q already has a base class %q",

	ErrDuplicateName:      "symbol %q is already registered with hash %d",
	ErrForbiddenBehavior:  "behavior %q is forbidden for type kind %s",
	ErrMissingBehaviors:   "type kind %s requires behavior %q",
	ErrUnregisteredBase:   "base type %q is not registered",
	ErrObjectTypeMismatch: "method owner %q does not match object type %q",
	ErrImportCycle:        "import cycle detected: %s",
	ErrUninstalledImport:  "unit imports %q, which has not been installed",

	ErrInternal: "internal compiler error: %s",
}

// Error is the single structured error type returned from every entry
// point. It is never a bare `error` string in hot compiler paths.
type Error struct {
	Code  Code
	Phase Phase
	Args  []interface{}
	Span  token.Span
	File  string
}

func (e *Error) Error() string {
	tmpl, ok := templates[e.Code]
	msg := ""
	if ok {
		msg = fmt.Sprintf(tmpl, e.Args...)
	} else {
		msg = fmt.Sprintf("unknown diagnostic code %s", e.Code)
	}
	prefix := ""
	if e.File != "" {
		prefix = e.File + ": "
	}
	if e.Span.Line > 0 {
		return fmt.Sprintf("%s%d:%d [%s/%s] %s", prefix, e.Span.Line, e.Span.Column, e.Phase, e.Code, msg)
	}
	return fmt.Sprintf("%s[%s/%s] %s", prefix, e.Phase, e.Code, msg)
}

// New creates an error at a given phase and span.
func New(phase Phase, code Code, span token.Span, args ...interface{}) *Error {
	return &Error{Code: code, Phase: phase, Span: span, Args: args}
}

// FromToken creates an error located at a token's span.
func FromToken(phase Phase, code Code, tok token.Token, args ...interface{}) *Error {
	return New(phase, code, tok.Span, args...)
}

// Internal creates an internal-invariant-violation error (compiler bug).
func Internal(span token.Span, message string) *Error {
	return New(PhaseInternal, ErrInternal, span, message)
}

// List is a convenience accumulator used by passes that must report as
// many problems as possible before giving up.
type List struct {
	Errors []*Error
}

func (l *List) Add(e *Error) {
	if e != nil {
		l.Errors = append(l.Errors, e)
	}
}

func (l *List) HasErrors() bool { return len(l.Errors) > 0 }
