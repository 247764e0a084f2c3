// Package index implements the CBE and VBE index-table-segment model:
// edit-unit position to (container offset, size, temporal-offset,
// key-frame-offset, flags) lookup and update, plus the sliding
// temporal-offset window GOP-coded essence needs.
package index

import (
	"mxf/pkg/mxferrors"
)

// Rational is a numerator/denominator pair (the segment's edit rate).
type Rational struct {
	Num int32
	Den int32
}

// Entry is one VBE index entry.
type Entry struct {
	TemporalOffset int8
	KeyFrameOffset int8
	Flags          uint8
	StreamOffset   uint64
	SliceOffsets   []uint32
}

// Flags byte bits, per the MPEG-2 LG helper's convention.
const (
	FlagReferenceFrame   uint8 = 0x80
	FlagSequenceHeader   uint8 = 0x40
	FlagPPrediction      uint8 = 0x22
	FlagBBidirectional   uint8 = 0x33
	FlagOffsetOutOfRange uint8 = 0x0b
)

// DeltaEntry describes one slice's per-edit-unit element delta, used to
// locate slice boundaries within a content package.
type DeltaEntry struct {
	PosTableIndex int8
	Slice         uint8
	ElementDelta  uint32
}

// temporalWindowSize is the sliding window depth the engine maintains
// while a GOP is open: a key-frame offset must point at a reference frame
// within the last 128 positions, and a closed GOP must have every slot in
// that window filled.
const temporalWindowSize = 128

// Segment is one index-table-segment: either CBE (EditUnitByteCount != 0,
// Entries empty) or VBE (EditUnitByteCount == 0, Entries populated).
type Segment struct {
	EditRate          Rational
	IndexSID          uint32
	BodySID           uint32
	StartPosition     int64
	Duration          int64
	EditUnitByteCount uint32
	SliceCount        uint8
	PosTableCount     uint8
	DeltaEntries      []DeltaEntry

	Entries []Entry

	// window tracks which of the last temporalWindowSize positions have
	// had their temporal offset filled, for the GOP-close invariant.
	window     [temporalWindowSize]bool
	windowBase int64
}

// NewCBESegment creates a constant-bytes-per-edit-unit segment: position
// × editUnitByteCount yields the offset directly, no entries are stored.
func NewCBESegment(editRate Rational, indexSID, bodySID uint32, editUnitByteCount uint32) *Segment {
	return &Segment{
		EditRate:          editRate,
		IndexSID:          indexSID,
		BodySID:           bodySID,
		EditUnitByteCount: editUnitByteCount,
	}
}

// NewVBESegment creates a variable-bytes-per-edit-unit segment starting
// at startPosition.
func NewVBESegment(editRate Rational, indexSID, bodySID uint32, startPosition int64) *Segment {
	return &Segment{
		EditRate:      editRate,
		IndexSID:      indexSID,
		BodySID:       bodySID,
		StartPosition: startPosition,
		windowBase:    startPosition,
	}
}

// IsCBE reports whether this segment uses constant bytes per edit unit.
func (s *Segment) IsCBE() bool { return s.EditUnitByteCount != 0 }

// GetEditUnit resolves position to its container offset, size, temporal
// offset, key-frame offset, and flags. For CBE segments size, temporal
// offset and key-frame offset are always (EditUnitByteCount, 0, 0) and
// flags is 0, since those properties are not tracked per edit unit.
func (s *Segment) GetEditUnit(position int64) (offset uint64, size uint32, temporalOffset, keyFrameOffset int8, flags uint8, err error) {
	if position < s.StartPosition || position >= s.StartPosition+s.Duration {
		return 0, 0, 0, 0, 0, &mxferrors.OutOfRangeError{Position: position, Duration: s.Duration}
	}
	if s.IsCBE() {
		return uint64(position-s.StartPosition) * uint64(s.EditUnitByteCount), s.EditUnitByteCount, 0, 0, 0, nil
	}
	idx := position - s.StartPosition
	if idx < 0 || int(idx) >= len(s.Entries) {
		return 0, 0, 0, 0, 0, &mxferrors.OutOfRangeError{Position: position, Duration: s.Duration}
	}
	e := s.Entries[idx]
	var sz uint32
	if int(idx+1) < len(s.Entries) {
		sz = uint32(s.Entries[idx+1].StreamOffset - e.StreamOffset)
	}
	return e.StreamOffset, sz, e.TemporalOffset, e.KeyFrameOffset, e.Flags, nil
}

// Update records a new VBE entry at the next position, given the entry's
// stream offset and its per-slice element sizes (stored as the entry's
// slice offsets). A stream offset lower than the previous entry's is
// rejected, so offsets are non-decreasing.
func (s *Segment) Update(streamOffset uint64, elementSizes []uint32) (position int64, err error) {
	position = s.StartPosition + int64(len(s.Entries))
	if len(s.Entries) > 0 {
		last := s.Entries[len(s.Entries)-1]
		if streamOffset < last.StreamOffset {
			return 0, &mxferrors.InconsistentError{Reason: "index offsets must be non-decreasing"}
		}
	}
	sliceOffsets := make([]uint32, len(elementSizes))
	copy(sliceOffsets, elementSizes)
	s.Entries = append(s.Entries, Entry{StreamOffset: streamOffset, SliceOffsets: sliceOffsets})
	s.markWindow(position, false)
	s.Duration = int64(len(s.Entries))
	return position, nil
}

// UpdateKeyFrameOffset sets an entry's key-frame offset and flags once
// its reference frame is known. keyFramePosition must reference an entry
// within temporalWindowSize positions of position, and that entry's
// flags must carry FlagReferenceFrame. The temporal offset is not
// touched; it arrives separately through UpdateTemporalOffset, since GOP
// reordering resolves the two at different times.
func (s *Segment) UpdateKeyFrameOffset(position int64, keyFrameOffset int8, flags uint8, keyFramePosition int64) error {
	idx := position - s.StartPosition
	if idx < 0 || int(idx) >= len(s.Entries) {
		return &mxferrors.OutOfRangeError{Position: position, Duration: s.Duration}
	}
	if position-keyFramePosition > temporalWindowSize || keyFramePosition > position {
		return &mxferrors.InconsistentError{Reason: "key frame offset points outside the 128-position window"}
	}
	refIdx := keyFramePosition - s.StartPosition
	if refIdx < 0 || int(refIdx) >= len(s.Entries) || s.Entries[refIdx].Flags&FlagReferenceFrame == 0 {
		return &mxferrors.InconsistentError{Reason: "key frame offset does not point at a reference frame"}
	}
	e := &s.Entries[idx]
	e.KeyFrameOffset = keyFrameOffset
	e.Flags = flags
	return nil
}

// SetEntryFields sets an entry's key-frame offset and flags directly,
// with no reference-frame check against another entry. Used by a writer
// for a frame that is itself the reference (key_frame_offset 0), where
// UpdateKeyFrameOffset's self-reference check would otherwise fail
// because the entry has not been marked a reference frame yet.
func (s *Segment) SetEntryFields(position int64, keyFrameOffset int8, flags uint8) error {
	idx := position - s.StartPosition
	if idx < 0 || int(idx) >= len(s.Entries) {
		return &mxferrors.OutOfRangeError{Position: position, Duration: s.Duration}
	}
	e := &s.Entries[idx]
	e.KeyFrameOffset = keyFrameOffset
	e.Flags = flags
	return nil
}

// UpdateTemporalOffset back-fills an entry's temporal offset once the
// frame displayed at that position has arrived in coded order, and marks
// the position filled in the sliding window CloseGOP verifies.
func (s *Segment) UpdateTemporalOffset(position int64, temporalOffset int8) error {
	idx := position - s.StartPosition
	if idx < 0 || int(idx) >= len(s.Entries) {
		return &mxferrors.OutOfRangeError{Position: position, Duration: s.Duration}
	}
	s.Entries[idx].TemporalOffset = temporalOffset
	s.markWindow(position, true)
	return nil
}

func (s *Segment) markWindow(position int64, filled bool) {
	if position < s.windowBase {
		return
	}
	slot := int((position - s.windowBase) % temporalWindowSize)
	s.window[slot] = filled
}

// CloseGOP verifies every slot in [gopStart, gopStart+length) has had its
// temporal offset filled. It returns an error (without mutating state)
// reporting that the GOP is incomplete; callers that tolerate this
// (writing nulls) should log and continue rather than abort the file.
func (s *Segment) CloseGOP(gopStart, length int64) error {
	if length > temporalWindowSize {
		return &mxferrors.InconsistentError{Reason: "GOP length exceeds the 128-entry temporal window"}
	}
	for p := gopStart; p < gopStart+length; p++ {
		idx := p - s.StartPosition
		if idx < 0 || int(idx) >= len(s.Entries) {
			return &mxferrors.InconsistentError{Reason: "GOP position has no index entry"}
		}
		slot := int((p - s.windowBase) % temporalWindowSize)
		if !s.window[slot] {
			return &mxferrors.InconsistentError{Reason: "GOP closed with unfilled temporal-offset slot"}
		}
	}
	return nil
}

// FinaliseDuration sets Duration to the number of entries recorded (VBE)
// or to an explicit value (CBE, where the caller tracks count
// separately), matching the finalisation-pass duration rewrite in the
// partition engine.
func (s *Segment) FinaliseDuration(cbeDuration int64) {
	if s.IsCBE() {
		s.Duration = cbeDuration
		return
	}
	s.Duration = int64(len(s.Entries))
}
