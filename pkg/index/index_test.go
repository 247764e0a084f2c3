package index

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"mxf/pkg/klv"
)

func TestCBEGetEditUnit(t *testing.T) {
	s := NewCBESegment(Rational{25, 1}, 1, 1, 7680)
	s.Duration = 250
	s.StartPosition = 0

	offset, size, to, kfo, flags, err := s.GetEditUnit(3)
	require.NoError(t, err)
	require.Equal(t, uint64(3*7680), offset)
	require.Equal(t, uint32(7680), size)
	require.Equal(t, int8(0), to)
	require.Equal(t, int8(0), kfo)
	require.Equal(t, uint8(0), flags)
}

func TestCBEOutOfRange(t *testing.T) {
	s := NewCBESegment(Rational{25, 1}, 1, 1, 7680)
	s.Duration = 10
	_, _, _, _, _, err := s.GetEditUnit(10)
	require.Error(t, err)
}

func TestVBEUpdateAndLookup(t *testing.T) {
	s := NewVBESegment(Rational{25, 1}, 2, 2, 0)
	pos0, err := s.Update(0, []uint32{1000})
	require.NoError(t, err)
	require.Equal(t, int64(0), pos0)

	_, err = s.Update(1000, []uint32{1200})
	require.NoError(t, err)

	offset, size, _, _, _, err := s.GetEditUnit(0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), offset)
	require.Equal(t, uint32(1000), size)
}

func TestVBERejectsDecreasingOffset(t *testing.T) {
	s := NewVBESegment(Rational{25, 1}, 2, 2, 0)
	_, err := s.Update(1000, nil)
	require.NoError(t, err)
	_, err = s.Update(500, nil)
	require.Error(t, err)
}

func TestKeyFrameOffsetAndGOPClose(t *testing.T) {
	s := NewVBESegment(Rational{25, 1}, 3, 3, 0)
	for i := 0; i < 3; i++ {
		_, err := s.Update(uint64(i*1000), nil)
		require.NoError(t, err)
	}
	// Position 0 is the reference (I) frame; positions 1 and 2 point back
	// at it.
	require.NoError(t, s.SetEntryFields(0, 0, FlagReferenceFrame|FlagSequenceHeader))
	require.NoError(t, s.UpdateKeyFrameOffset(1, -1, FlagBBidirectional, 0))
	require.NoError(t, s.UpdateKeyFrameOffset(2, -2, FlagPPrediction, 0))

	// Temporal offsets resolve separately as frames arrive in coded
	// order; every slot must be filled before the GOP may close.
	require.Error(t, s.CloseGOP(0, 3))
	require.NoError(t, s.UpdateTemporalOffset(0, 0))
	require.NoError(t, s.UpdateTemporalOffset(1, 1))
	require.NoError(t, s.UpdateTemporalOffset(2, -1))
	require.NoError(t, s.CloseGOP(0, 3))

	_, _, to, kfo, flags, err := s.GetEditUnit(1)
	require.NoError(t, err)
	require.Equal(t, int8(1), to)
	require.Equal(t, int8(-1), kfo)
	require.Equal(t, uint8(FlagBBidirectional), flags)
}

func TestCloseGOPFailsWhenSlotUnfilled(t *testing.T) {
	s := NewVBESegment(Rational{25, 1}, 3, 3, 0)
	_, err := s.Update(0, nil)
	require.NoError(t, err)
	require.Error(t, s.CloseGOP(0, 1))
}

func TestUpdateKeyFrameOffsetRejectsOutsideWindow(t *testing.T) {
	s := NewVBESegment(Rational{25, 1}, 3, 3, 0)
	_, err := s.Update(0, nil)
	require.NoError(t, err)
	err = s.UpdateKeyFrameOffset(0, -1, 0, -200)
	require.Error(t, err)
}

func TestUpdateKeyFrameOffsetRejectsNonReferenceTarget(t *testing.T) {
	s := NewVBESegment(Rational{25, 1}, 3, 3, 0)
	_, err := s.Update(0, nil)
	require.NoError(t, err)
	_, err = s.Update(1000, nil)
	require.NoError(t, err)
	// Position 0 was never marked a reference frame.
	require.Error(t, s.UpdateKeyFrameOffset(1, -1, FlagBBidirectional, 0))
}

func TestSegmentRoundTripCBE(t *testing.T) {
	s := NewCBESegment(Rational{25, 1}, 1, 1, 7680)
	s.Duration = 250

	var buf bytes.Buffer
	w := klv.NewWriter(&buf, 4)
	require.NoError(t, WriteSegment(w, s, 4))

	r, err := klv.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got, err := ReadSegment(r)
	require.NoError(t, err)
	require.Equal(t, s.EditUnitByteCount, got.EditUnitByteCount)
	require.Equal(t, s.Duration, got.Duration)
}

func TestSegmentRoundTripVBE(t *testing.T) {
	s := NewVBESegment(Rational{25, 1}, 2, 2, 0)
	s.SliceCount = 1
	_, err := s.Update(0, []uint32{100})
	require.NoError(t, err)
	_, err = s.Update(100, []uint32{120})
	require.NoError(t, err)
	s.FinaliseDuration(0)

	var buf bytes.Buffer
	w := klv.NewWriter(&buf, 4)
	require.NoError(t, WriteSegment(w, s, 4))

	r, err := klv.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got, err := ReadSegment(r)
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	require.Equal(t, uint64(0), got.Entries[0].StreamOffset)
	require.Equal(t, uint64(100), got.Entries[1].StreamOffset)
}

func TestTableRejectsNonMonotonicChain(t *testing.T) {
	tbl := &Table{}
	s1 := NewCBESegment(Rational{25, 1}, 1, 1, 100)
	s1.Duration = 10
	require.NoError(t, tbl.Append(s1))

	s2 := NewCBESegment(Rational{25, 1}, 1, 1, 100)
	s2.StartPosition = 5
	s2.Duration = 10
	require.Error(t, tbl.Append(s2))
}

func TestTableGetEditUnitAcrossSegments(t *testing.T) {
	tbl := &Table{}
	s1 := NewCBESegment(Rational{25, 1}, 1, 1, 100)
	s1.Duration = 10
	require.NoError(t, tbl.Append(s1))

	s2 := NewCBESegment(Rational{25, 1}, 1, 1, 100)
	s2.StartPosition = 10
	s2.Duration = 10
	require.NoError(t, tbl.Append(s2))

	offset, _, _, _, _, err := tbl.GetEditUnit(15)
	require.NoError(t, err)
	require.Equal(t, uint64(5*100), offset)
}
