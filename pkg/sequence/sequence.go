// Package sequence joins multiple file readers whose packages share a
// Material Package UID and lead-filler offset into group readers ordered
// by playout timecode. GroupInputs/OrderGroups/VerifyChargeAndRollout/
// ExtendTracks build the grouping and track-extension bookkeeping;
// GroupReader (reader.go) does the actual per-edit-unit read, dispatching
// to each input's essence reader in turn and concatenating their output.
package sequence

import (
	"sort"

	"github.com/google/uuid"

	"mxf/pkg/mxferrors"
)

// DataDef identifies a track's essence kind for parallelisation within a
// group (picture, sound, data, timecode).
type DataDef int

const (
	DataDefPicture DataDef = iota
	DataDefSound
	DataDefData
	DataDefTimecode
)

// Track is one material track's essence identity, used both to
// parallelise tracks of equal data-def within a group and to match
// compatible segments across groups when extending.
type Track struct {
	Index        int
	DataDef      DataDef
	EssenceType  string // opaque descriptor-equivalence key (essence type + sample rate + key dimensions)
	SampleRate   int64
}

// compatible reports whether two tracks are extension-compatible: same
// data-def and the same descriptor-equivalence key.
func (t Track) compatible(other Track) bool {
	return t.DataDef == other.DataDef && t.EssenceType == other.EssenceType && t.SampleRate == other.SampleRate
}

// Input is one FileReader's worth of package identity and track list.
type Input struct {
	ID                 string
	MaterialPackageUID uuid.UUID
	LeadFillerOffset    int64
	PlayoutTimecode     int64
	HasTimecode         bool
	PreCharge           int64
	Rollout             int64
	Tracks              []Track
}

// GroupKey identifies one group of inputs that together form one playout
// item (the common case for card-spanning P2 recordings).
type GroupKey struct {
	MaterialPackageUID uuid.UUID
	LeadFillerOffset    int64
}

// Group is one GroupReader's worth of inputs, tracks parallelised by
// data-def.
type Group struct {
	Key             GroupKey
	Inputs          []*Input
	PlayoutTimecode int64
	HasTimecode     bool
	PreCharge       int64
	Rollout         int64
	Tracks          []Track
}

// GroupInputs groups inputs by (material_package_uid, lead_filler_offset).
// Within a group, PlayoutTimecode/HasTimecode are taken from the first
// input that carries a timecode, PreCharge/Rollout are the largest values
// among the group's inputs, and Tracks is the union of every
// input's tracks, parallelised (grouped) by data-def in stable order.
func GroupInputs(inputs []*Input) []*Group {
	index := make(map[GroupKey]*Group)
	var order []GroupKey
	for _, in := range inputs {
		key := GroupKey{MaterialPackageUID: in.MaterialPackageUID, LeadFillerOffset: in.LeadFillerOffset}
		g, ok := index[key]
		if !ok {
			g = &Group{Key: key}
			index[key] = g
			order = append(order, key)
		}
		g.Inputs = append(g.Inputs, in)
		if in.HasTimecode && !g.HasTimecode {
			g.PlayoutTimecode = in.PlayoutTimecode
			g.HasTimecode = true
		}
		if in.PreCharge > g.PreCharge {
			g.PreCharge = in.PreCharge
		}
		if in.Rollout > g.Rollout {
			g.Rollout = in.Rollout
		}
		g.Tracks = append(g.Tracks, in.Tracks...)
	}
	groups := make([]*Group, 0, len(order))
	for _, key := range order {
		g := index[key]
		sortTracksByDataDef(g.Tracks)
		groups = append(groups, g)
	}
	return groups
}

func sortTracksByDataDef(tracks []Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].DataDef != tracks[j].DataDef {
			return tracks[i].DataDef < tracks[j].DataDef
		}
		return tracks[i].Index < tracks[j].Index
	})
}

// OrderGroups orders groups by playout timecode. If any group lacks a
// timecode and keepInputOrder is false, ordering is ambiguous and this
// returns an error; otherwise the groups are returned in their original
// (input) order.
func OrderGroups(groups []*Group, keepInputOrder bool) ([]*Group, error) {
	for _, g := range groups {
		if !g.HasTimecode && !keepInputOrder {
			return nil, &mxferrors.InconsistentError{Reason: "group has no playout timecode and keep_input_order is false"}
		}
	}
	if keepInputOrder {
		return groups, nil
	}
	ordered := make([]*Group, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PlayoutTimecode < ordered[j].PlayoutTimecode
	})
	return ordered, nil
}

// VerifyChargeAndRollout checks that only the first group carries
// pre-charge and only the last carries rollout; interior groups must be
// sample-accurate continuations (zero of both).
func VerifyChargeAndRollout(groups []*Group) error {
	for i, g := range groups {
		if i != 0 && g.PreCharge != 0 {
			return &mxferrors.InconsistentError{Reason: "only the first group may carry pre-charge"}
		}
		if i != len(groups)-1 && g.Rollout != 0 {
			return &mxferrors.InconsistentError{Reason: "only the last group may carry rollout"}
		}
	}
	return nil
}

// ExtendedTrack is a material track from the first group together with
// the matching compatible track index found in every subsequent group.
type ExtendedTrack struct {
	Track          Track
	PerGroupIndex  []int // PerGroupIndex[i] is the matching track index within groups[i]
}

// ExtendTracks attempts to extend every material track of the first group
// with a compatible segment in every subsequent group (same data-def,
// essence type, and sample rate). Tracks that fail to extend into every
// group are dropped.
func ExtendTracks(groups []*Group) []ExtendedTrack {
	if len(groups) == 0 {
		return nil
	}
	var extended []ExtendedTrack
	for _, t := range groups[0].Tracks {
		perGroup := make([]int, len(groups))
		perGroup[0] = t.Index
		ok := true
		for gi := 1; gi < len(groups); gi++ {
			match := -1
			for _, candidate := range groups[gi].Tracks {
				if t.compatible(candidate) {
					match = candidate.Index
					break
				}
			}
			if match < 0 {
				ok = false
				break
			}
			perGroup[gi] = match
		}
		if ok {
			extended = append(extended, ExtendedTrack{Track: t, PerGroupIndex: perGroup})
		}
	}
	return extended
}
