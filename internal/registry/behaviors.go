package registry

import "github.com/funvibe/langc/internal/typehash"

// OperatorBehavior enumerates the overloadable operator slots a type may
// provide an implementation for. Encoded as a tagged enum keyed into
// TypeBehaviors.Operators rather than dynamic dispatch — the compiler
// always picks one concrete function hash at compile time (spec §9).
type OperatorBehavior int

const (
	OpAdd OperatorBehavior = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpNeg
	OpEquals
	OpCmp
	OpIs
	OpIndex
	OpIndexGet // get_opIndex: read-only index
	OpImplConv
	OpConv
	OpImplCast
	OpCast
)

// methodNameOf is the fixed operator -> method-name table from spec §4.11.
var methodNameOf = map[OperatorBehavior]string{
	OpAdd:      "opAdd",
	OpSub:      "opSub",
	OpMul:      "opMul",
	OpDiv:      "opDiv",
	OpMod:      "opMod",
	OpPow:      "opPow",
	OpNeg:      "opNeg",
	OpEquals:   "opEquals",
	OpCmp:      "opCmp",
	OpIs:       "opIs",
	OpIndex:    "opIndex",
	OpIndexGet: "get_opIndex",
	OpImplConv: "opImplConv",
	OpConv:     "opConv",
	OpImplCast: "opImplCast",
	OpCast:     "opCast",
}

// MethodName returns the fixed method name for an operator slot.
func (b OperatorBehavior) MethodName() string { return methodNameOf[b] }

// ListPatternTag discriminates the three init-list shapes (spec §4.8 /
// Glossary "List pattern").
type ListPatternTag int

const (
	ListRepeat ListPatternTag = iota
	ListRepeatTuple
	ListFixed
)

// ListPattern governs init-list elaboration. Repeat carries a single
// element type hash; RepeatTuple and Fixed carry a positional list of
// element type hashes.
type ListPattern struct {
	Tag     ListPatternTag
	Element typehash.Hash   // valid when Tag == ListRepeat
	Tuple   []typehash.Hash // valid when Tag == ListRepeatTuple or ListFixed
}

func RepeatPattern(elem typehash.Hash) ListPattern {
	return ListPattern{Tag: ListRepeat, Element: elem}
}

func RepeatTuplePattern(elems []typehash.Hash) ListPattern {
	return ListPattern{Tag: ListRepeatTuple, Tuple: elems}
}

func FixedPattern(elems []typehash.Hash) ListPattern {
	return ListPattern{Tag: ListFixed, Tuple: elems}
}

// ListBehavior pairs a list-capable constructor/factory with the pattern
// script syntax must match against it.
type ListBehavior struct {
	FuncHash typehash.Hash
	Pattern  ListPattern
}

// TypeBehaviors is the lifecycle record for one type: constructors,
// factories, destructor, ref-counting hooks, list-initialization, and
// operator overloads. Stored separately from TypeEntry (in the Registry's
// own behaviors map) so behavior validation can run as a distinct phase,
// and so a host can attach behaviors to a type it registered moments ago
// without re-registering the type itself.
type TypeBehaviors struct {
	Constructors []typehash.Hash
	Factories    []typehash.Hash

	Destructor     *typehash.Hash
	AddRef         *typehash.Hash
	Release        *typehash.Hash
	GetWeakRefFlag *typehash.Hash
	TemplateCallback *typehash.Hash

	ListConstructs []ListBehavior
	ListFactories  []ListBehavior

	Operators map[OperatorBehavior][]typehash.Hash
}

// NewTypeBehaviors returns an empty TypeBehaviors with its map initialized.
func NewTypeBehaviors() *TypeBehaviors {
	return &TypeBehaviors{Operators: make(map[OperatorBehavior][]typehash.Hash)}
}

// ListBehaviors returns the effective list-init overload set: factories
// take preference over in-place constructs, because reference types
// (which use factories) dominate init-list scenarios (spec §4.5).
func (b *TypeBehaviors) ListBehaviors() []ListBehavior {
	if len(b.ListFactories) > 0 {
		return b.ListFactories
	}
	return b.ListConstructs
}
