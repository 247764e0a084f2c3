package avidmeta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mxf/pkg/klv"
	"mxf/pkg/metadata"
)

func id(n byte) klv.Key {
	var k klv.Key
	k[15] = n
	return k
}

func TestBuildMetaDictionaryResolvesParentAndTypeWeakRefs(t *testing.T) {
	hm := metadata.NewHeaderMetadata(true)
	preface := hm.NewSet(metadata.ClassPreface)

	b := NewBuilder(hm)
	root := b.AddClassDefinition(ClassDefinition{Identifier: id(1), Name: "InterchangeObject", IsConcrete: false})
	child := b.AddClassDefinition(ClassDefinition{Identifier: id(2), ParentIdentifier: id(1), Name: "Track", IsConcrete: true})
	typ := b.AddTypeDefinition(TypeDefinition{Identifier: id(3), Name: "UInt32"})
	b.AddPropertyDefinition(PropertyDefinition{
		Identifier:          id(4),
		Name:                "TrackID",
		MemberOf:            id(2),
		TypeIdentifier:      id(3),
		LocalIdentification: 0x4801,
	})

	require.NoError(t, b.Finalise())

	itemParentClassTag, itemPropertyTypeTag := itemParentClass, itemPropertyType
	resolvedParent, ok := hm.GetWeakRef(child, itemParentClassTag)
	require.True(t, ok)
	require.Equal(t, root, resolvedParent)

	propSet := b.properties[0]
	resolvedType, ok := hm.GetWeakRef(propSet, itemPropertyTypeTag)
	require.True(t, ok)
	require.Equal(t, typ, resolvedType)

	dict, err := b.Build(preface, itemClassDefinitions)
	require.NoError(t, err)

	classes, ok := hm.GetStrongRefArray(dict, itemClassDefinitions)
	require.True(t, ok)
	require.Len(t, classes, 2)

	props, ok := hm.GetStrongRefArray(dict, itemPropertyDefinitions)
	require.True(t, ok)
	require.Len(t, props, 1)

	types, ok := hm.GetStrongRefArray(dict, itemTypeDefinitions)
	require.True(t, ok)
	require.Len(t, types, 1)

	attached, ok := hm.GetStrongRef(preface, itemClassDefinitions)
	require.True(t, ok)
	require.Equal(t, dict, attached)
}

func TestFinaliseErrorsOnUnknownTarget(t *testing.T) {
	hm := metadata.NewHeaderMetadata(true)
	b := NewBuilder(hm)
	b.AddClassDefinition(ClassDefinition{Identifier: id(1), ParentIdentifier: id(99), Name: "Orphan"})
	require.Error(t, b.Finalise())
}

func TestCatalogueReferencedClassesDeduplicatesInFirstSeenOrder(t *testing.T) {
	hm := metadata.NewHeaderMetadata(true)
	hm.NewSet(metadata.ClassPreface)
	hm.NewSet(metadata.ClassTrack)
	hm.NewSet(metadata.ClassTrack)
	hm.NewSet(metadata.ClassSequence)

	classes := CatalogueReferencedClasses(hm)
	require.Equal(t, []klv.Key{metadata.ClassPreface, metadata.ClassTrack, metadata.ClassSequence}, classes)
}

func TestAddPropertyDefinitionSkipsPendingWhenKeysZero(t *testing.T) {
	hm := metadata.NewHeaderMetadata(true)
	b := NewBuilder(hm)
	b.AddPropertyDefinition(PropertyDefinition{Identifier: id(1), Name: "Untyped"})
	require.NoError(t, b.Finalise())
}
