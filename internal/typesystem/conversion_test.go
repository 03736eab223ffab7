package typesystem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/typesystem"
)

func primType(p typesystem.Primitive) typesystem.DataType {
	return typesystem.DataType{TypeHash: typesystem.PrimitiveHash(p)}
}

func TestCanConvertToIdentity(t *testing.T) {
	i32 := primType(typesystem.PrimI32)
	c := typesystem.CanConvertTo(i32, i32, nil, false)
	require.NotNil(t, c)
	require.True(t, c.Implicit)
	require.Zero(t, c.Cost)
}

func TestCanConvertToWideningIsImplicit(t *testing.T) {
	c := typesystem.CanConvertTo(primType(typesystem.PrimI32), primType(typesystem.PrimI64), nil, false)
	require.NotNil(t, c)
	require.True(t, c.Implicit)
}

func TestCanConvertToNarrowingWithoutFlagFails(t *testing.T) {
	c := typesystem.CanConvertTo(primType(typesystem.PrimF64), primType(typesystem.PrimI32), nil, false)
	require.NotNil(t, c)
	require.False(t, c.Implicit, "float->int truncation must not be implicit without floatToIntNarrowingAllowed")
}

func TestCanConvertToNarrowingWithFlagSucceeds(t *testing.T) {
	c := typesystem.CanConvertTo(primType(typesystem.PrimF64), primType(typesystem.PrimI32), nil, true)
	require.NotNil(t, c)
}

func TestNullConvertsToAnyHandle(t *testing.T) {
	handle := typesystem.DataType{TypeHash: typesystem.PrimitiveHash(typesystem.PrimI32), IsHandle: true}
	c := typesystem.CanConvertTo(typesystem.Null(), handle, nil, false)
	require.NotNil(t, c)
	require.True(t, c.Implicit)
}

func TestPreferredPicksLowerCost(t *testing.T) {
	cheap := &typesystem.Conversion{Cost: 1}
	expensive := &typesystem.Conversion{Cost: 5}
	require.True(t, typesystem.Preferred(cheap, expensive))
	require.False(t, typesystem.Preferred(expensive, cheap))
}

func TestDataTypeEqualIgnoresNothingButFields(t *testing.T) {
	a := primType(typesystem.PrimI32)
	b := primType(typesystem.PrimI32)
	b.IsConst = true
	require.True(t, a.SameSymbol(b))
	require.False(t, a.Equal(b), "const qualifier must distinguish Equal even when the symbol matches")
}
