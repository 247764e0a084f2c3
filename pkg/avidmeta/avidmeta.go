// Package avidmeta builds the Avid-flavour meta-dictionary: a set
// cataloguing every class and type referenced by a file's header
// metadata, built from a table of class and property definitions. Weak
// references inside the meta-dictionary (a ClassDefinition's parent, a
// PropertyDefinition's owning class and type) are recorded against
// stable identifiers first and resolved to instance UIDs in a
// finalisation pass, since instance UIDs for the definition sets
// themselves are only allocated as they are built. Grounded on the same
// arena-of-sets composite pattern pkg/metadata uses for the ordinary
// header metadata graph (pkg/metadata/headermetadata.go), applied here to
// a dictionary-of-definitions tree instead of a package/track graph.
package avidmeta

import (
	"mxf/pkg/klv"
	"mxf/pkg/metadata"
	"mxf/pkg/mxferrors"
)

func cul(b ...byte) klv.Key {
	var k klv.Key
	copy(k[:], b)
	return k
}

// Class ULs for the meta-dictionary's own definition sets, per SMPTE
// ST 377-1 Annex A/B baseline class/type registers.
var (
	ClassMetaDictionary    = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x4C, 0x00)
	ClassClassDefinition   = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01)
	ClassPropertyDefinition = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x08)
	ClassTypeDefinition    = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x0B)
)

// Item ULs used on the definition sets themselves.
var (
	itemIdentification    = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x01, 0x00, 0x00)
	itemName              = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x02, 0x00, 0x00)
	itemIsConcrete        = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x04, 0x00, 0x00)
	itemParentClass       = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x05, 0x00, 0x00)
	itemMemberOf          = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x09, 0x00, 0x00)
	itemPropertyType      = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x0A, 0x00, 0x00)
	itemLocalIdentification = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x0B, 0x00, 0x00)
	itemIsOptional        = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x0C, 0x00, 0x00)
	itemIsUniqueIdentifier = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x0D, 0x00, 0x00)

	itemClassDefinitions    = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x10, 0x00, 0x00)
	itemPropertyDefinitions = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x11, 0x00, 0x00)
	itemTypeDefinitions     = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x01, 0x01, 0x01, 0x02, 0x12, 0x00, 0x00)
)

// ClassDefinition describes one class catalogued in the meta-dictionary.
// Identifier is the class's own UL; ParentIdentifier is the zero key for
// a root class (no weak reference is recorded in that case).
type ClassDefinition struct {
	Identifier       klv.Key
	ParentIdentifier klv.Key
	Name             string
	IsConcrete       bool
}

// PropertyDefinition describes one property catalogued in the
// meta-dictionary.
type PropertyDefinition struct {
	Identifier          klv.Key
	Name                string
	MemberOf            klv.Key
	TypeIdentifier      klv.Key
	LocalIdentification uint16
	IsOptional          bool
	IsUniqueIdentifier  bool
}

// TypeDefinition describes one type catalogued in the meta-dictionary.
type TypeDefinition struct {
	Identifier klv.Key
	Name       string
}

var zeroKey klv.Key

type pendingWeakRef struct {
	owner  *metadata.Set
	itemUL klv.Key
	target klv.Key
}

// Builder accumulates class/property/type definition sets and the weak
// references between them, deferring resolution until Finalise.
type Builder struct {
	hm           *metadata.HeaderMetadata
	byIdentifier map[klv.Key]*metadata.Set

	classes    []*metadata.Set
	properties []*metadata.Set
	types      []*metadata.Set

	pending []pendingWeakRef
}

// NewBuilder creates a meta-dictionary builder over hm's arena.
func NewBuilder(hm *metadata.HeaderMetadata) *Builder {
	return &Builder{
		hm:           hm,
		byIdentifier: make(map[klv.Key]*metadata.Set),
	}
}

// AddClassDefinition allocates a ClassDefinition set for def and records
// its parent-class weak reference as pending, keyed on the parent's
// identifier rather than its (not yet allocated) instance UID.
func (b *Builder) AddClassDefinition(def ClassDefinition) *metadata.Set {
	s := b.hm.NewSet(ClassClassDefinition)
	s.SetRaw(itemIdentification, def.Identifier[:])
	s.SetString(itemName, def.Name)
	s.SetUint8(itemIsConcrete, boolToUint8(def.IsConcrete))

	b.byIdentifier[def.Identifier] = s
	b.classes = append(b.classes, s)

	if def.ParentIdentifier != zeroKey {
		b.pending = append(b.pending, pendingWeakRef{owner: s, itemUL: itemParentClass, target: def.ParentIdentifier})
	}
	return s
}

// AddPropertyDefinition allocates a PropertyDefinition set for def and
// records its owning-class and type weak references as pending.
func (b *Builder) AddPropertyDefinition(def PropertyDefinition) *metadata.Set {
	s := b.hm.NewSet(ClassPropertyDefinition)
	s.SetRaw(itemIdentification, def.Identifier[:])
	s.SetString(itemName, def.Name)
	s.SetUint16(itemLocalIdentification, def.LocalIdentification)
	s.SetUint8(itemIsOptional, boolToUint8(def.IsOptional))
	s.SetUint8(itemIsUniqueIdentifier, boolToUint8(def.IsUniqueIdentifier))

	b.byIdentifier[def.Identifier] = s
	b.properties = append(b.properties, s)

	if def.MemberOf != zeroKey {
		b.pending = append(b.pending, pendingWeakRef{owner: s, itemUL: itemMemberOf, target: def.MemberOf})
	}
	if def.TypeIdentifier != zeroKey {
		b.pending = append(b.pending, pendingWeakRef{owner: s, itemUL: itemPropertyType, target: def.TypeIdentifier})
	}
	return s
}

// AddTypeDefinition allocates a TypeDefinition set for def.
func (b *Builder) AddTypeDefinition(def TypeDefinition) *metadata.Set {
	s := b.hm.NewSet(ClassTypeDefinition)
	s.SetRaw(itemIdentification, def.Identifier[:])
	s.SetString(itemName, def.Name)

	b.byIdentifier[def.Identifier] = s
	b.types = append(b.types, s)
	return s
}

// Finalise resolves every pending weak reference against the
// identifiers recorded so far. It must run after every definition that
// might be referenced has been added.
func (b *Builder) Finalise() error {
	for _, p := range b.pending {
		target, ok := b.byIdentifier[p.target]
		if !ok {
			return &mxferrors.InconsistentError{Reason: "meta-dictionary weak reference targets an unknown identifier"}
		}
		b.hm.SetWeakRef(p.owner, p.itemUL, target)
	}
	b.pending = nil
	return nil
}

// Build allocates the MetaDictionary set itself, strong-referencing every
// class/property/type definition added so far, and attaches it to owner
// (typically the Preface) via itemUL. Call Finalise before Build so the
// dictionary set is not mistaken for an unresolved weak-ref target.
func (b *Builder) Build(owner *metadata.Set, itemUL klv.Key) (*metadata.Set, error) {
	dict := b.hm.NewSet(ClassMetaDictionary)
	if len(b.classes) > 0 {
		if err := b.hm.SetStrongRefArray(dict, itemClassDefinitions, b.classes); err != nil {
			return nil, err
		}
	}
	if len(b.properties) > 0 {
		if err := b.hm.SetStrongRefArray(dict, itemPropertyDefinitions, b.properties); err != nil {
			return nil, err
		}
	}
	if len(b.types) > 0 {
		if err := b.hm.SetStrongRefArray(dict, itemTypeDefinitions, b.types); err != nil {
			return nil, err
		}
	}
	if owner != nil {
		if err := b.hm.SetStrongRef(owner, itemUL, dict); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

func boolToUint8(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// CatalogueReferencedClasses walks every set in hm's arena and returns
// the distinct class ULs it uses, in first-seen order, so a caller can
// build exactly the ClassDefinition set the file actually needs rather
// than emitting the full baseline register.
func CatalogueReferencedClasses(hm *metadata.HeaderMetadata) []klv.Key {
	seen := make(map[klv.Key]bool)
	var out []klv.Key
	for _, s := range hm.Sets() {
		if !seen[s.Class] {
			seen[s.Class] = true
			out = append(out, s.Class)
		}
	}
	return out
}
