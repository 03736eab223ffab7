package typehash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/typehash"
)

func TestFromNameDeterministic(t *testing.T) {
	a := typehash.FromName("game::Player")
	b := typehash.FromName("game::Player")
	require.Equal(t, a, b)
}

func TestFromNameDistinctForDifferentNames(t *testing.T) {
	require.NotEqual(t, typehash.FromName("Foo"), typehash.FromName("Bar"))
}

func TestConstructorsNeverAliasAcrossTags(t *testing.T) {
	owner := typehash.FromName("game::Player")
	paramHash := typehash.FromName("int32")

	name := typehash.FromName("game::Player")
	fn := typehash.FromFunction("game::Player", []typehash.Hash{paramHash})
	method := typehash.FromMethod(owner, "Player", []typehash.Hash{paramHash})
	ctor := typehash.FromConstructor(owner, []typehash.Hash{paramHash})
	tmpl := typehash.FromTemplateInstance(owner, []typehash.Hash{paramHash})

	seen := map[typehash.Hash]bool{}
	for _, h := range []typehash.Hash{name, fn, method, ctor, tmpl} {
		require.False(t, seen[h], "hash %s collided across constructor tags", h)
		seen[h] = true
	}
}

func TestFromFunctionOrderSensitive(t *testing.T) {
	a := typehash.FromName("int32")
	b := typehash.FromName("float")

	ab := typehash.FromFunction("f", []typehash.Hash{a, b})
	ba := typehash.FromFunction("f", []typehash.Hash{b, a})
	require.NotEqual(t, ab, ba)
}

func TestStringIsHex(t *testing.T) {
	h := typehash.FromName("x")
	s := h.String()
	require.NotEmpty(t, s)
	for _, r := range s {
		require.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'))
	}
}
