package templates_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/templates"
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

func arrayTemplate() *registry.TypeEntry {
	return &registry.TypeEntry{
		Tag:            registry.EntryClass,
		Hash:           typehash.FromName("array"),
		Name:           "array",
		QualifiedName:  "array",
		Kind:           typesystem.ScriptObjectKind(),
		TemplateParams: []string{"T"},
	}
}

func TestInstantiateBuildsSpecializedClass(t *testing.T) {
	tmpl := arrayTemplate()
	intHash := typesystem.PrimitiveHash(typesystem.PrimI32)
	args := []typesystem.DataType{{TypeHash: intHash}}

	inst := templates.NewInstantiator()
	instance, methods, behaviors, diagErr := inst.Instantiate(tmpl, args, nil, registry.NewTypeBehaviors(), nil)

	require.Nil(t, diagErr)
	require.NotNil(t, instance)
	require.Equal(t, registry.EntryClass, instance.Tag)
	require.NotNil(t, instance.TemplateOrigin)
	require.Equal(t, tmpl.Hash, *instance.TemplateOrigin)
	require.Contains(t, instance.Name, "array<")
	require.Empty(t, methods)
	require.NotNil(t, behaviors)
}

func TestInstantiateCachesByArgs(t *testing.T) {
	tmpl := arrayTemplate()
	intHash := typesystem.PrimitiveHash(typesystem.PrimI32)
	args := []typesystem.DataType{{TypeHash: intHash}}

	inst := templates.NewInstantiator()
	first, _, _, err := inst.Instantiate(tmpl, args, nil, registry.NewTypeBehaviors(), nil)
	require.Nil(t, err)

	second, methods, behaviors, err := inst.Instantiate(tmpl, args, nil, registry.NewTypeBehaviors(), nil)
	require.Nil(t, err)
	require.Equal(t, first.Hash, second.Hash)
	require.Nil(t, methods)
	require.Nil(t, behaviors)
}

func TestInstantiateDistinctArgsProduceDistinctInstances(t *testing.T) {
	tmpl := arrayTemplate()
	intArgs := []typesystem.DataType{{TypeHash: typesystem.PrimitiveHash(typesystem.PrimI32)}}
	floatArgs := []typesystem.DataType{{TypeHash: typesystem.PrimitiveHash(typesystem.PrimF64)}}

	inst := templates.NewInstantiator()
	intInstance, _, _, err := inst.Instantiate(tmpl, intArgs, nil, registry.NewTypeBehaviors(), nil)
	require.Nil(t, err)
	floatInstance, _, _, err := inst.Instantiate(tmpl, floatArgs, nil, registry.NewTypeBehaviors(), nil)
	require.Nil(t, err)

	require.NotEqual(t, intInstance.Hash, floatInstance.Hash)
}

func TestInstantiateRejectsWrongArgCount(t *testing.T) {
	tmpl := arrayTemplate()
	inst := templates.NewInstantiator()

	_, _, _, err := inst.Instantiate(tmpl, nil, nil, registry.NewTypeBehaviors(), nil)
	require.NotNil(t, err)
	require.Equal(t, "S009", string(err.Code))
}

func TestInstantiateRunsCallbackAndCanReject(t *testing.T) {
	tmpl := arrayTemplate()
	voidArgs := []typesystem.DataType{typesystem.Void()}

	inst := templates.NewInstantiator()
	reject := func(instance typehash.Hash, args []typehash.Hash) (bool, string) {
		return false, "array<void> is not allowed"
	}

	_, _, _, err := inst.Instantiate(tmpl, voidArgs, nil, registry.NewTypeBehaviors(), reject)
	require.NotNil(t, err)
	require.Equal(t, "S008", string(err.Code))
}
