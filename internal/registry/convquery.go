package registry

import (
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

// *Registry satisfies typesystem.ConversionQuerier directly: the
// conversion lattice is defined over exactly the data the registry
// already exposes (base-class chain, implemented interfaces, converting
// constructors, operator-conversion methods), so there is no separate
// adapter type — grounded on the same "Registry implements the narrow
// interface the algorithm needs" shape as funxy's own
// typesystem.Unify(a, b Type, sub Substitution) taking its collaborators
// as plain parameters rather than a wrapper struct.

// BaseClassChain walks h's BaseClass links to the root, not including h
// itself.
func (r *Registry) BaseClassChain(h typehash.Hash) []typehash.Hash {
	var chain []typehash.Hash
	cur := h
	for {
		e, ok := r.GetType(cur)
		if !ok || e.Tag != EntryClass || e.BaseClass == nil {
			return chain
		}
		chain = append(chain, *e.BaseClass)
		cur = *e.BaseClass
	}
}

// ImplementedInterfaces collects every interface h implements directly or
// through a base class, plus each interface's own base interfaces.
func (r *Registry) ImplementedInterfaces(h typehash.Hash) []typehash.Hash {
	seen := map[typehash.Hash]bool{}
	var out []typehash.Hash
	var addInterface func(ih typehash.Hash)
	addInterface = func(ih typehash.Hash) {
		if seen[ih] {
			return
		}
		seen[ih] = true
		out = append(out, ih)
		if e, ok := r.GetType(ih); ok && e.Tag == EntryInterface {
			for _, base := range e.BaseInterfaces {
				addInterface(base)
			}
		}
	}

	chain := append([]typehash.Hash{h}, r.BaseClassChain(h)...)
	for _, c := range chain {
		e, ok := r.GetType(c)
		if !ok || e.Tag != EntryClass {
			continue
		}
		for _, ih := range e.Interfaces {
			addInterface(ih)
		}
	}
	return out
}

// SingleArgConstructor implements spec §4.6 step 5's first branch: a
// single-parameter constructor on target whose parameter from converts
// to, tried before opImplConv/opConv. Recursion through CanConvertTo is
// safe as long as the script's own user-defined conversions are
// acyclic — the same assumption any compiler with converting
// constructors and conversion operators makes.
func (r *Registry) SingleArgConstructor(target typehash.Hash, from typesystem.DataType) (typehash.Hash, bool, bool) {
	b, ok := r.GetBehaviors(target)
	if !ok {
		return 0, false, false
	}
	for _, ctorHash := range b.Constructors {
		fn, ok := r.GetFunction(ctorHash)
		if !ok || len(fn.Def.Params) != 1 {
			continue
		}
		if typesystem.CanConvertTo(from, fn.Def.Params[0].Type, r, true) != nil {
			return ctorHash, fn.Def.Traits.IsExplicit, true
		}
	}
	return 0, false, false
}

// OperatorConversion looks up a zero-argument method named op on from's
// type whose return type is to, for the opImplConv/opConv/opImplCast/
// opCast family.
func (r *Registry) OperatorConversion(from typehash.Hash, op string, to typehash.Hash) (typehash.Hash, bool) {
	for _, fn := range r.FindMethods(from, op) {
		if len(fn.Def.Params) == 0 && fn.Def.Return.TypeHash == to {
			return fn.Def.Hash, true
		}
	}
	return 0, false
}
