// Package ast defines the syntax tree produced by internal/parser. It
// keeps the teacher's (funvibe-funxy/internal/ast) "Node/Statement/
// Expression sub-interfaces, nil-safe GetToken()" discipline, generalized
// to this language's declarations (class/interface/enum/funcdef/mixin,
// namespaces, handle types) instead of funxy's pattern-matched functional
// constructs. Node values are typically arena-backed: the parser borrows
// an *arena.Arena for every lexeme string a node stores, so Program trees
// can be freed in one shot once compilation of a unit finishes.
package ast

import (
	"github.com/funvibe/langc/internal/token"
	"github.com/funvibe/langc/internal/typesystem"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Statement is a Node that represents a statement or top-level
// declaration.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node produced for one compilation unit.
type Program struct {
	File       string
	Namespace  *NamespaceDecl
	Imports    []*ImportDecl
	Usings     []*UsingDecl
	Decls      []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Decls) > 0 {
		return p.Decls[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetToken() token.Token { return token.Token{} }

// ImportDecl: `import "path/to/unit";`
type ImportDecl struct {
	Token token.Token
	Path  string
}

func (d *ImportDecl) statementNode()        {}
func (d *ImportDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *ImportDecl) GetToken() token.Token { return d.Token }

// UsingDecl: `using Some::Namespace;`
type UsingDecl struct {
	Token     token.Token
	Namespace string
}

func (d *UsingDecl) statementNode()        {}
func (d *UsingDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *UsingDecl) GetToken() token.Token { return d.Token }

// NamespaceDecl: `namespace Foo::Bar { ... }` or the file-level form.
type NamespaceDecl struct {
	Token token.Token
	Name  string
	Body  []Statement
}

func (d *NamespaceDecl) statementNode()        {}
func (d *NamespaceDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *NamespaceDecl) GetToken() token.Token { return d.Token }

// Identifier is a bare name reference.
type Identifier struct {
	Token token.Token
	Name  string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }

// TypeExpr is a parsed reference to a DataType in source syntax: a base
// name (possibly `Namespace::Name` or `Template<Args>`), trailing `@`/
// `const` qualifiers, and an optional ref modifier used on parameters.
type TypeExpr struct {
	Token           token.Token
	Name            string // qualified base name, e.g. "Foo::Bar"
	TemplateArgs    []*TypeExpr
	IsConst         bool
	IsHandle        bool
	IsHandleToConst bool
	RefModifier     typesystem.RefModifier
}

func (t *TypeExpr) TokenLiteral() string  { return t.Token.Lexeme }
func (t *TypeExpr) GetToken() token.Token { return t.Token }

// Param is one function/method parameter as written in source.
type Param struct {
	Token      token.Token
	Name       string
	Type       *TypeExpr
	Default    Expression
	HasDefault bool
}

// FunctionDecl covers free functions, methods, constructors (Name ==
// owning class name and Return == nil), and destructors (Name prefixed
// with "~").
type FunctionDecl struct {
	Token      token.Token
	Name       string
	Params     []*Param
	Return     *TypeExpr // nil for constructors/destructors
	Body       *BlockStatement
	IsConst    bool
	IsVirtual  bool
	IsFinal    bool
	IsOverride bool
	IsExplicit bool
	IsAbstract bool // true (Body == nil) for interface methods
	IsProperty bool // declared with the `property` keyword (get_/set_ accessor)
}

func (d *FunctionDecl) statementNode()        {}
func (d *FunctionDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *FunctionDecl) GetToken() token.Token { return d.Token }

// FieldDecl is a class member variable.
type FieldDecl struct {
	Token     token.Token
	Name      string
	Type      *TypeExpr
	Init      Expression
	IsPrivate bool
	IsProtected bool
}

func (d *FieldDecl) statementNode()        {}
func (d *FieldDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *FieldDecl) GetToken() token.Token { return d.Token }

// ClassDecl covers ordinary classes and template class definitions
// (TemplateParams non-empty).
type ClassDecl struct {
	Token          token.Token
	Name           string
	TemplateParams []string
	Base           *TypeExpr
	Interfaces     []*TypeExpr
	Fields         []*FieldDecl
	Methods        []*FunctionDecl
	IsFinal        bool
	IsMixin        bool
}

func (d *ClassDecl) statementNode()        {}
func (d *ClassDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *ClassDecl) GetToken() token.Token { return d.Token }

// InterfaceDecl: `interface Foo : Base1, Base2 { void m(); }`.
type InterfaceDecl struct {
	Token   token.Token
	Name    string
	Bases   []*TypeExpr
	Methods []*FunctionDecl
}

func (d *InterfaceDecl) statementNode()        {}
func (d *InterfaceDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *InterfaceDecl) GetToken() token.Token { return d.Token }

// EnumValueDecl is one enumerator, with an optional explicit value.
type EnumValueDecl struct {
	Name       string
	Value      Expression // nil if implicit (previous + 1)
}

// EnumDecl: `enum Color { Red, Green = 5, Blue }`.
type EnumDecl struct {
	Token  token.Token
	Name   string
	Values []EnumValueDecl
}

func (d *EnumDecl) statementNode()        {}
func (d *EnumDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *EnumDecl) GetToken() token.Token { return d.Token }

// FuncdefDecl: `funcdef void Callback(int);`.
type FuncdefDecl struct {
	Token  token.Token
	Name   string
	Params []*Param
	Return *TypeExpr
}

func (d *FuncdefDecl) statementNode()        {}
func (d *FuncdefDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *FuncdefDecl) GetToken() token.Token { return d.Token }

// VarDecl is a local or global variable declaration.
type VarDecl struct {
	Token   token.Token
	Name    string
	Type    *TypeExpr
	Init    Expression
	IsConst bool
}

func (d *VarDecl) statementNode()        {}
func (d *VarDecl) TokenLiteral() string  { return d.Token.Lexeme }
func (d *VarDecl) GetToken() token.Token { return d.Token }

// --- statements -------------------------------------------------------

type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (s *BlockStatement) statementNode()        {}
func (s *BlockStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *BlockStatement) GetToken() token.Token { return s.Token }

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (s *ExpressionStatement) statementNode()        {}
func (s *ExpressionStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *ExpressionStatement) GetToken() token.Token { return s.Token }

type IfStatement struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *BlockStatement or *IfStatement (else if), nil if absent
}

func (s *IfStatement) statementNode()        {}
func (s *IfStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *IfStatement) GetToken() token.Token { return s.Token }

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (s *WhileStatement) statementNode()        {}
func (s *WhileStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *WhileStatement) GetToken() token.Token { return s.Token }

type DoWhileStatement struct {
	Token     token.Token
	Body      *BlockStatement
	Condition Expression
}

func (s *DoWhileStatement) statementNode()        {}
func (s *DoWhileStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *DoWhileStatement) GetToken() token.Token { return s.Token }

type ForStatement struct {
	Token     token.Token
	Init      Statement // *VarDecl or *ExpressionStatement, nil if absent
	Condition Expression
	Post      Expression
	Body      *BlockStatement
}

func (s *ForStatement) statementNode()        {}
func (s *ForStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *ForStatement) GetToken() token.Token { return s.Token }

type ForEachStatement struct {
	Token     token.Token
	VarType   *TypeExpr
	VarName   string
	Iterable  Expression
	Body      *BlockStatement
}

func (s *ForEachStatement) statementNode()        {}
func (s *ForEachStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *ForEachStatement) GetToken() token.Token { return s.Token }

type BreakStatement struct{ Token token.Token }

func (s *BreakStatement) statementNode()        {}
func (s *BreakStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *BreakStatement) GetToken() token.Token { return s.Token }

type ContinueStatement struct{ Token token.Token }

func (s *ContinueStatement) statementNode()        {}
func (s *ContinueStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *ContinueStatement) GetToken() token.Token { return s.Token }

type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for `return;`
}

func (s *ReturnStatement) statementNode()        {}
func (s *ReturnStatement) TokenLiteral() string  { return s.Token.Lexeme }
func (s *ReturnStatement) GetToken() token.Token { return s.Token }

// --- expressions --------------------------------------------------------

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (e *IntegerLiteral) expressionNode()      {}
func (e *IntegerLiteral) TokenLiteral() string  { return e.Token.Lexeme }
func (e *IntegerLiteral) GetToken() token.Token { return e.Token }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (e *FloatLiteral) expressionNode()       {}
func (e *FloatLiteral) TokenLiteral() string  { return e.Token.Lexeme }
func (e *FloatLiteral) GetToken() token.Token { return e.Token }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (e *StringLiteral) expressionNode()       {}
func (e *StringLiteral) TokenLiteral() string  { return e.Token.Lexeme }
func (e *StringLiteral) GetToken() token.Token { return e.Token }

type CharLiteral struct {
	Token token.Token
	Value rune
}

func (e *CharLiteral) expressionNode()       {}
func (e *CharLiteral) TokenLiteral() string  { return e.Token.Lexeme }
func (e *CharLiteral) GetToken() token.Token { return e.Token }

type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (e *BoolLiteral) expressionNode()       {}
func (e *BoolLiteral) TokenLiteral() string  { return e.Token.Lexeme }
func (e *BoolLiteral) GetToken() token.Token { return e.Token }

type NullLiteral struct{ Token token.Token }

func (e *NullLiteral) expressionNode()       {}
func (e *NullLiteral) TokenLiteral() string  { return e.Token.Lexeme }
func (e *NullLiteral) GetToken() token.Token { return e.Token }

type ThisExpression struct{ Token token.Token }

func (e *ThisExpression) expressionNode()       {}
func (e *ThisExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *ThisExpression) GetToken() token.Token { return e.Token }

// InitListExpression is a brace-delimited initializer list `{1, 2, 3}`,
// elaborated against a target type's list behavior (spec §4.8).
type InitListExpression struct {
	Token    token.Token
	Elements []Expression
}

func (e *InitListExpression) expressionNode()       {}
func (e *InitListExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *InitListExpression) GetToken() token.Token { return e.Token }

type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (e *PrefixExpression) expressionNode()       {}
func (e *PrefixExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *PrefixExpression) GetToken() token.Token { return e.Token }

type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (e *InfixExpression) expressionNode()       {}
func (e *InfixExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *InfixExpression) GetToken() token.Token { return e.Token }

// PostfixExpression covers `x++` and `x--`.
type PostfixExpression struct {
	Token    token.Token
	Operand  Expression
	Operator string
}

func (e *PostfixExpression) expressionNode()       {}
func (e *PostfixExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *PostfixExpression) GetToken() token.Token { return e.Token }

type AssignExpression struct {
	Token    token.Token
	Target   Expression
	Operator string // "=", "+=", ...
	Value    Expression
}

func (e *AssignExpression) expressionNode()       {}
func (e *AssignExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *AssignExpression) GetToken() token.Token { return e.Token }

// MemberExpression is `obj.field` or `obj.method` (disambiguated from a
// call at the parser level: a trailing `(` after a MemberExpression is
// reparsed as the callee of a CallExpression rather than the method
// itself being a node variant, following funxy's "member access
// disambiguation" convention of leaving method-vs-field resolution to a
// later pass).
type MemberExpression struct {
	Token    token.Token
	Object   Expression
	Member   string
}

func (e *MemberExpression) expressionNode()       {}
func (e *MemberExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *MemberExpression) GetToken() token.Token { return e.Token }

// ScopeExpression is `Namespace::Name` or `Type::StaticMember`.
type ScopeExpression struct {
	Token  token.Token
	Scope  string
	Member string
}

func (e *ScopeExpression) expressionNode()       {}
func (e *ScopeExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *ScopeExpression) GetToken() token.Token { return e.Token }

type IndexExpression struct {
	Token token.Token
	Left  Expression
	Index Expression
}

func (e *IndexExpression) expressionNode()       {}
func (e *IndexExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *IndexExpression) GetToken() token.Token { return e.Token }

type CallExpression struct {
	Token    token.Token
	Callee   Expression
	Args     []Expression
	ArgNames []string // named-argument form; empty string for positional
}

func (e *CallExpression) expressionNode()       {}
func (e *CallExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *CallExpression) GetToken() token.Token { return e.Token }

// NewExpression is `Type(args)` used in object-creation position
// (distinguished from a call by the parser when Type resolves to a known
// type name rather than a function) or the explicit `Type@ h = Type();`
// factory-call form; the Registration/Body passes disambiguate fully
// once types are known.
type NewExpression struct {
	Token token.Token
	Type  *TypeExpr
	Args  []Expression
	InitList *InitListExpression // non-nil for `Type arr = {1,2,3};`
}

func (e *NewExpression) expressionNode()       {}
func (e *NewExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *NewExpression) GetToken() token.Token { return e.Token }

// HandleOfExpression is `@expr`, taking a handle to an existing object.
type HandleOfExpression struct {
	Token token.Token
	Value Expression
}

func (e *HandleOfExpression) expressionNode()       {}
func (e *HandleOfExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *HandleOfExpression) GetToken() token.Token { return e.Token }

// CastExpression is a named conversion `cast<Type>(expr)` or the
// implicit-cast sugar `Type(expr)` when Type is not being constructed
// (resolved during the Body pass).
type CastExpression struct {
	Token token.Token
	Type  *TypeExpr
	Value Expression
}

func (e *CastExpression) expressionNode()       {}
func (e *CastExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *CastExpression) GetToken() token.Token { return e.Token }

// IsExpression: `a is b` / `a !is b`.
type IsExpression struct {
	Token    token.Token
	Left     Expression
	Right    Expression
	Negated  bool
}

func (e *IsExpression) expressionNode()       {}
func (e *IsExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *IsExpression) GetToken() token.Token { return e.Token }

// ConditionalExpression: `cond ? then : else`.
type ConditionalExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (e *ConditionalExpression) expressionNode()       {}
func (e *ConditionalExpression) TokenLiteral() string  { return e.Token.Lexeme }
func (e *ConditionalExpression) GetToken() token.Token { return e.Token }
