package index

import (
	"encoding/binary"

	"mxf/pkg/klv"
	"mxf/pkg/mxferrors"
)

// WriteSegment serialises s as a canonical index-table-segment KLV. Each
// entry carries SliceCount slice offsets (none when SliceCount is zero);
// PosTable entries are not written, whatever PosTableCount says.
func WriteSegment(w *klv.Writer, s *Segment, llenWidth int) error {
	body := marshalSegmentBody(s)
	if err := w.WriteKeyAndLength(klv.IndexTableSegmentKey, llenWidth, uint64(len(body))); err != nil {
		return err
	}
	return w.WriteValue(body)
}

func marshalSegmentBody(s *Segment) []byte {
	var buf []byte
	buf = appendUint32(buf, uint32(s.EditRate.Num))
	buf = appendUint32(buf, uint32(s.EditRate.Den))
	buf = appendUint64(buf, uint64(s.StartPosition))
	buf = appendUint64(buf, uint64(s.Duration))
	buf = appendUint32(buf, s.EditUnitByteCount)
	buf = appendUint32(buf, s.IndexSID)
	buf = appendUint32(buf, s.BodySID)
	buf = append(buf, s.SliceCount, s.PosTableCount)

	buf = appendUint32(buf, uint32(len(s.DeltaEntries)))
	for _, d := range s.DeltaEntries {
		buf = append(buf, byte(d.PosTableIndex), d.Slice)
		buf = appendUint32(buf, d.ElementDelta)
	}

	if s.IsCBE() {
		return buf
	}

	buf = appendUint32(buf, uint32(len(s.Entries)))
	for _, e := range s.Entries {
		buf = append(buf, byte(e.TemporalOffset), byte(e.KeyFrameOffset), e.Flags)
		buf = appendUint64(buf, e.StreamOffset)
		for i := uint8(0); i < s.SliceCount; i++ {
			var v uint32
			if int(i) < len(e.SliceOffsets) {
				v = e.SliceOffsets[i]
			}
			buf = appendUint32(buf, v)
		}
	}
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// ReadSegment reads an index-table-segment previously positioned at its
// key.
func ReadSegment(r *klv.Reader) (*Segment, error) {
	key, length, err := r.ReadKL(0)
	if err != nil {
		return nil, err
	}
	if key != klv.IndexTableSegmentKey {
		return nil, &mxferrors.InvalidKLVError{Offset: r.Tell(), Reason: "expected index table segment key"}
	}
	body, err := r.ReadValue(length)
	if err != nil {
		return nil, err
	}
	return unmarshalSegmentBody(body)
}

func unmarshalSegmentBody(body []byte) (*Segment, error) {
	const fixedHeader = 4 + 4 + 8 + 8 + 4 + 4 + 4 + 1 + 1 + 4
	if len(body) < fixedHeader {
		return nil, &mxferrors.InconsistentError{Reason: "index table segment body too short"}
	}
	pos := 0
	readU32 := func() uint32 {
		v := binary.BigEndian.Uint32(body[pos:])
		pos += 4
		return v
	}
	readU64 := func() uint64 {
		v := binary.BigEndian.Uint64(body[pos:])
		pos += 8
		return v
	}

	s := &Segment{}
	s.EditRate.Num = int32(readU32())
	s.EditRate.Den = int32(readU32())
	s.StartPosition = int64(readU64())
	s.Duration = int64(readU64())
	s.EditUnitByteCount = readU32()
	s.IndexSID = readU32()
	s.BodySID = readU32()
	s.SliceCount = body[pos]
	s.PosTableCount = body[pos+1]
	pos += 2

	deltaCount := readU32()
	s.DeltaEntries = make([]DeltaEntry, 0, deltaCount)
	for i := uint32(0); i < deltaCount; i++ {
		if pos+6 > len(body) {
			return nil, &mxferrors.InconsistentError{Reason: "delta entry array truncated"}
		}
		d := DeltaEntry{PosTableIndex: int8(body[pos]), Slice: body[pos+1]}
		pos += 2
		d.ElementDelta = readU32()
		s.DeltaEntries = append(s.DeltaEntries, d)
	}

	if s.IsCBE() {
		return s, nil
	}

	if pos+4 > len(body) {
		return nil, &mxferrors.InconsistentError{Reason: "entry array length truncated"}
	}
	entryCount := readU32()
	s.windowBase = s.StartPosition
	s.Entries = make([]Entry, 0, entryCount)
	for i := uint32(0); i < entryCount; i++ {
		if pos+3+8 > len(body) {
			return nil, &mxferrors.InconsistentError{Reason: "index entry truncated"}
		}
		e := Entry{
			TemporalOffset: int8(body[pos]),
			KeyFrameOffset: int8(body[pos+1]),
			Flags:          body[pos+2],
		}
		pos += 3
		e.StreamOffset = readU64()
		e.SliceOffsets = make([]uint32, s.SliceCount)
		for j := uint8(0); j < s.SliceCount; j++ {
			if pos+4 > len(body) {
				return nil, &mxferrors.InconsistentError{Reason: "slice offset truncated"}
			}
			e.SliceOffsets[j] = readU32()
		}
		s.Entries = append(s.Entries, e)
	}
	return s, nil
}

// Table chains multiple segments sharing one index_sid, checked
// monotonically at read: each segment's StartPosition must be >= the
// previous segment's StartPosition+Duration.
type Table struct {
	IndexSID uint32
	Segments []*Segment
}

// Append adds seg to the table, rejecting a non-monotonic chain.
func (t *Table) Append(seg *Segment) error {
	if seg.IndexSID != t.IndexSID && len(t.Segments) > 0 {
		return &mxferrors.InconsistentError{Reason: "segment index_sid does not match table"}
	}
	if len(t.Segments) > 0 {
		prev := t.Segments[len(t.Segments)-1]
		if seg.StartPosition < prev.StartPosition+prev.Duration {
			return &mxferrors.InconsistentError{Reason: "index segments are not monotonically chained"}
		}
	}
	if len(t.Segments) == 0 {
		t.IndexSID = seg.IndexSID
	}
	t.Segments = append(t.Segments, seg)
	return nil
}

// GetEditUnit finds the segment covering position and delegates to it.
func (t *Table) GetEditUnit(position int64) (offset uint64, size uint32, temporalOffset, keyFrameOffset int8, flags uint8, err error) {
	for _, seg := range t.Segments {
		if position >= seg.StartPosition && position < seg.StartPosition+seg.Duration {
			return seg.GetEditUnit(position)
		}
	}
	return 0, 0, 0, 0, 0, &mxferrors.OutOfRangeError{Position: position, Duration: 0}
}
