package metadata

// itemDef describes one item's allowed shape in the minimal data model
// used to catch malformed sets on read and omissions on write, without
// pulling in the full SMPTE baseline-registry data dictionary.
type itemDef struct {
	ul       [16]byte
	name     string
	required bool
}

// classDef is the minimal definition of a class: which items it requires.
// It exists to validate that a set written or read carries the mandatory
// properties for its class, not to enforce every registry constraint.
type classDef struct {
	name     string
	required []ClassUL
}

var dataModel = map[ClassUL]struct {
	name     string
	required []struct {
		ul   ClassUL
		name string
	}
}{}

// Validate reports the first missing mandatory item for a set's class, if
// the class is one this minimal model knows about. Classes not in the
// model are accepted unconditionally: the model only expresses enough to
// catch the handful of cases the writer itself must get right, not a full
// conformance checker.
func Validate(s *Set) error {
	req, ok := requiredItems[s.Class]
	if !ok {
		return nil
	}
	for _, item := range req {
		if _, present := s.GetRaw(item); !present {
			return &missingItemError{class: ClassName(s.Class), item: item}
		}
	}
	return nil
}

type missingItemError struct {
	class string
	item  ClassUL
}

func (e *missingItemError) Error() string {
	return "metadata: " + e.class + " set is missing a required item"
}

// requiredItems lists the mandatory items per class that this engine
// itself always needs to populate correctly; it is deliberately small.
var requiredItems = map[ClassUL][]ClassUL{
	ClassPreface:         {ItemInstanceUID},
	ClassMaterialPackage: {ItemInstanceUID},
	ClassSourcePackage:   {ItemInstanceUID},
	ClassTrack:           {ItemInstanceUID},
}
