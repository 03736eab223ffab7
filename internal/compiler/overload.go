package compiler

import (
	"github.com/funvibe/langc/internal/config"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/token"
	"github.com/funvibe/langc/internal/typesystem"
)

// candidateCost is the total argument-conversion cost for one overload
// candidate, plus whether it matched at all.
type candidateCost struct {
	fn    *registry.FunctionEntry
	total int
	ok    bool
}

// resolveOverload implements spec §4.6's overload-ranking rule: rank
// candidates by the sum of per-argument conversion costs, apply a
// const-preference tiebreak (callerConst true on a const receiver
// prefers const methods), and fail with Ambiguous on a tied minimum.
func resolveOverload(reg *registry.Registry, candidates []*registry.FunctionEntry, argTypes []typesystem.DataType, callerConst bool, name string, tok token.Token) (*registry.FunctionEntry, *diagnostics.Error) {
	var scored []candidateCost
	for _, fn := range candidates {
		if len(fn.Def.Params) != len(argTypes) {
			continue
		}
		total := 0
		ok := true
		for i, at := range argTypes {
			conv := typesystem.CanConvertTo(at, fn.Def.Params[i].Type, reg, config.FloatToIntNarrowingAllowed)
			if conv == nil || !conv.Implicit {
				ok = false
				break
			}
			total += conv.Cost
		}
		scored = append(scored, candidateCost{fn: fn, total: total, ok: ok})
	}

	var best *registry.FunctionEntry
	bestCost := -1
	tied := 0
	for _, sc := range scored {
		if !sc.ok {
			continue
		}
		switch {
		case bestCost == -1 || sc.total < bestCost:
			best = sc.fn
			bestCost = sc.total
			tied = 1
		case sc.total == bestCost:
			tied++
		}
	}

	if best == nil {
		return nil, diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrNoMatchingOverload, tok, name)
	}
	if tied > 1 {
		best = breakConstTie(scored, bestCost, callerConst)
		if best == nil {
			return nil, diagnostics.FromToken(diagnostics.PhaseBody, diagnostics.ErrAmbiguousOverload, tok, name)
		}
	}
	return best, nil
}

// breakConstTie applies the const-preference rule: among candidates tied
// at the minimum cost, a const receiver prefers a const method and a
// mutable receiver prefers a non-const one. Returns nil if the tie
// remains after the preference is applied (genuinely ambiguous).
func breakConstTie(scored []candidateCost, bestCost int, callerConst bool) *registry.FunctionEntry {
	var preferred []*registry.FunctionEntry
	for _, sc := range scored {
		if !sc.ok || sc.total != bestCost {
			continue
		}
		if sc.fn.Def.Traits.IsConst == callerConst {
			preferred = append(preferred, sc.fn)
		}
	}
	if len(preferred) == 1 {
		return preferred[0]
	}
	return nil
}
