package sequence

import (
	"mxf/pkg/essence"
	"mxf/pkg/mxferrors"
)

// FrameSource is the minimal per-source reader a GroupReader dispatches to.
// pkg/essence.Reader satisfies it, and so does GroupReader itself, so an
// outer GroupReader can concatenate several groups each built from an inner
// GroupReader over that group's own inputs.
type FrameSource interface {
	Read(numSamples int) ([][]essence.Frame, error)
	Seek(position int64) error
}

// GroupReader concatenates N FrameSources, each contributing `durations[i]`
// edit units, into one continuous stream, advancing to the next source once
// the current one is exhausted and remapping each source's own track
// numbering onto an output track index via trackIndices.
//
// The same struct serves both axes sequence.go's bookkeeping describes:
// dispatched over a Group's Inputs it is the "read the three card spans
// that make up one group back-to-back" reader; dispatched over a sequence
// of Groups (each wrapped as a FrameSource, typically by another
// GroupReader) it is the ExtendTracks-driven reader that concatenates
// distinct playout items into one virtual programme track.
type GroupReader struct {
	trackIndices [][]int // trackIndices[outIdx][srcIdx] is that track's index within sources[srcIdx], or -1 if absent there.
	sources      []FrameSource
	durations    []int64

	srcIdx          int
	position        int64 // position within the current source
	overallPosition int64 // position across the whole concatenated stream
}

// NewGroupReader builds a GroupReader over one source and duration (in edit
// units) per element of group.Inputs, in the same order. trackIndices maps
// output track index to each source's local track index; use
// IdentityTrackIndices when every source shares the same track numbering,
// or TrackIndicesFromExtended to drive it from ExtendTracks across a
// sequence of groups instead of group.Inputs.
func NewGroupReader(group *Group, trackIndices [][]int, sources []FrameSource, durations []int64) (*GroupReader, error) {
	if len(sources) != len(group.Inputs) || len(durations) != len(group.Inputs) {
		return nil, &mxferrors.InconsistentError{Reason: "group reader needs one source and duration per input"}
	}
	return &GroupReader{trackIndices: trackIndices, sources: sources, durations: durations}, nil
}

// IdentityTrackIndices builds a trackIndices table for numTracks output
// tracks shared unchanged, by the same local index, across every source.
func IdentityTrackIndices(numTracks, numSources int) [][]int {
	out := make([][]int, numTracks)
	for i := range out {
		row := make([]int, numSources)
		for j := range row {
			row[j] = i
		}
		out[i] = row
	}
	return out
}

// TrackIndicesFromExtended converts ExtendTracks' output (PerGroupIndex,
// one local track index per group) into the trackIndices a GroupReader
// dispatched over that same ordered slice of groups expects.
func TrackIndicesFromExtended(extended []ExtendedTrack) [][]int {
	out := make([][]int, len(extended))
	for i, et := range extended {
		out[i] = et.PerGroupIndex
	}
	return out
}

func (g *GroupReader) totalDuration() int64 {
	var total int64
	for _, d := range g.durations {
		total += d
	}
	return total
}

// Read produces numSamples sets of frames, keyed by output track index,
// concatenating the underlying sources byte-for-byte across their
// boundaries.
func (g *GroupReader) Read(numSamples int) ([][]essence.Frame, error) {
	out := make([][]essence.Frame, 0, numSamples)
	for i := 0; i < numSamples; i++ {
		for g.srcIdx < len(g.sources) && g.position >= g.durations[g.srcIdx] {
			g.srcIdx++
			g.position = 0
			if g.srcIdx < len(g.sources) {
				if err := g.sources[g.srcIdx].Seek(0); err != nil {
					return out, err
				}
			}
		}
		if g.srcIdx >= len(g.sources) {
			return out, &mxferrors.OutOfRangeError{Position: g.overallPosition, Duration: g.totalDuration()}
		}

		frames, err := g.sources[g.srcIdx].Read(1)
		if err != nil {
			return out, err
		}
		if len(frames) != 1 {
			return out, &mxferrors.InconsistentError{Reason: "input source returned no frames for one edit unit"}
		}
		out = append(out, g.remapFrames(frames[0]))
		g.position++
		g.overallPosition++
	}
	return out, nil
}

// Seek moves to an overall stream position, translating it into the source
// it falls within and that source's local offset.
func (g *GroupReader) Seek(position int64) error {
	var base int64
	for idx, d := range g.durations {
		if position < base+d {
			if err := g.sources[idx].Seek(position - base); err != nil {
				return err
			}
			g.srcIdx = idx
			g.position = position - base
			g.overallPosition = position
			return nil
		}
		base += d
	}
	return &mxferrors.OutOfRangeError{Position: position, Duration: base}
}

// remapFrames translates frames keyed by the current source's own local
// track numbering onto the output track index, dropping any frame for a
// track this source does not carry.
func (g *GroupReader) remapFrames(frames []essence.Frame) []essence.Frame {
	out := make([]essence.Frame, 0, len(g.trackIndices))
	for outIdx, perSource := range g.trackIndices {
		if g.srcIdx >= len(perSource) {
			continue
		}
		localIdx := perSource[g.srcIdx]
		if localIdx < 0 {
			continue
		}
		for _, f := range frames {
			if f.TrackIndex == localIdx {
				out = append(out, essence.Frame{TrackIndex: outIdx, Position: g.overallPosition, Data: f.Data})
				break
			}
		}
	}
	return out
}
