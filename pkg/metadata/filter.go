package metadata

import "mxf/pkg/label"

// Filters composes multiple ReadFilters into one, for callers of
// ReadSets that want, say, an Avid-meta-dictionary skip and a diagnostic
// capture applied in the same pass.
type Filters []ReadFilter

// BeforeSetRead returns false (skip) if any composed filter vetoes the
// set.
func (fs Filters) BeforeSetRead(class label.UL) bool {
	keep := true
	for _, f := range fs {
		if !f.BeforeSetRead(class) {
			keep = false
		}
	}
	return keep
}

// AfterSetRead notifies every composed filter.
func (fs Filters) AfterSetRead(set *Set) {
	for _, f := range fs {
		f.AfterSetRead(set)
	}
}

// SkipClasses is a ReadFilter that vetoes a fixed set of classes, the
// simplest way to keep, say, Avid meta-dictionary sets out of a graph
// built only to answer package/track/descriptor questions.
type SkipClasses map[ClassUL]bool

func (s SkipClasses) BeforeSetRead(class label.UL) bool { return !s[ClassUL(class)] }
func (s SkipClasses) AfterSetRead(*Set)                 {}
