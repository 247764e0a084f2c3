package essence

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"mxf/pkg/essencechunk"
	"mxf/pkg/index"
	"mxf/pkg/klv"
)

func buildClipWrappedFile(t *testing.T, editUnitSize int, count int) []byte {
	t.Helper()
	var buf bytes.Buffer
	for i := 0; i < count; i++ {
		buf.Write(bytes.Repeat([]byte{byte(i + 1)}, editUnitSize))
	}
	return buf.Bytes()
}

func newSeekable(b []byte) *bytes.Reader { return bytes.NewReader(b) }

func TestReadClipWrappedEditUnits(t *testing.T) {
	data := buildClipWrappedFile(t, 4, 3)
	src := newSeekable(data)

	seg := index.NewCBESegment(index.Rational{Num: 25, Den: 1}, 1, 1, 4)
	seg.Duration = 3
	tbl := &index.Table{}
	require.NoError(t, tbl.Append(seg))

	chunks := essencechunk.NewList(1)
	chunks.EnterPartition(1, 0)
	require.NoError(t, chunks.UpdateLastChunk(uint64(len(data))))

	tracks := []*Track{{Index: 0, Wrapping: WrappingClip}}
	r, err := NewReader(src, chunks, tbl, tracks)
	require.NoError(t, err)

	frames, err := r.Read(3)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	require.Equal(t, []byte{1, 1, 1, 1}, frames[0][0].Data)
	require.Equal(t, []byte{2, 2, 2, 2}, frames[1][0].Data)
	require.Equal(t, []byte{3, 3, 3, 3}, frames[2][0].Data)
}

func TestReadClipWrappedTrimsImageOffsets(t *testing.T) {
	data := buildClipWrappedFile(t, 10, 1)
	src := newSeekable(data)

	seg := index.NewCBESegment(index.Rational{Num: 25, Den: 1}, 1, 1, 10)
	seg.Duration = 1
	tbl := &index.Table{}
	require.NoError(t, tbl.Append(seg))

	chunks := essencechunk.NewList(1)
	chunks.EnterPartition(1, 0)
	require.NoError(t, chunks.UpdateLastChunk(uint64(len(data))))

	tracks := []*Track{{Index: 0, Wrapping: WrappingClip, ImageStartOffset: 2, ImageEndOffset: 3}}
	r, err := NewReader(src, chunks, tbl, tracks)
	require.NoError(t, err)

	frames, err := r.Read(1)
	require.NoError(t, err)
	require.Len(t, frames[0][0].Data, 5)
}

func TestReadFrameWrappedWalksKLVs(t *testing.T) {
	var buf bytes.Buffer
	w := klv.NewWriter(&buf, 4)
	trackKey := klv.Key{9}
	require.NoError(t, w.WriteKeyAndLength(trackKey, 4, 3))
	require.NoError(t, w.WriteValue([]byte("abc")))
	require.NoError(t, w.WriteKeyAndLength(trackKey, 4, 3))
	require.NoError(t, w.WriteValue([]byte("def")))

	src := newSeekable(buf.Bytes())
	chunks := essencechunk.NewList(1)
	tracks := []*Track{{Index: 0, Key: trackKey, Wrapping: WrappingFrame}}
	r, err := NewReader(src, chunks, nil, tracks)
	require.NoError(t, err)

	frames, err := r.Read(2)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), frames[0][0].Data)
	require.Equal(t, []byte("def"), frames[1][0].Data)
}

func TestReadOutOfRangeSetsBaseReadError(t *testing.T) {
	data := buildClipWrappedFile(t, 4, 1)
	src := newSeekable(data)

	seg := index.NewCBESegment(index.Rational{Num: 25, Den: 1}, 1, 1, 4)
	seg.Duration = 1
	tbl := &index.Table{}
	require.NoError(t, tbl.Append(seg))

	chunks := essencechunk.NewList(1)
	chunks.EnterPartition(1, 0)
	require.NoError(t, chunks.UpdateLastChunk(uint64(len(data))))

	tracks := []*Track{{Index: 0, Wrapping: WrappingClip}}
	r, err := NewReader(src, chunks, tbl, tracks)
	require.NoError(t, err)

	_, err = r.Read(5)
	require.Error(t, err)
	require.Error(t, r.BaseReadError())
}

func TestSetReadLimitsClampsPosition(t *testing.T) {
	data := buildClipWrappedFile(t, 4, 5)
	src := newSeekable(data)

	seg := index.NewCBESegment(index.Rational{Num: 25, Den: 1}, 1, 1, 4)
	seg.Duration = 5
	tbl := &index.Table{}
	require.NoError(t, tbl.Append(seg))

	chunks := essencechunk.NewList(1)
	chunks.EnterPartition(1, 0)
	require.NoError(t, chunks.UpdateLastChunk(uint64(len(data))))

	tracks := []*Track{{Index: 0, Wrapping: WrappingClip}}
	r, err := NewReader(src, chunks, tbl, tracks)
	require.NoError(t, err)
	r.SetReadLimits(1, 2)

	require.NoError(t, r.Seek(1))
	err = r.Seek(4)
	require.Error(t, err)
}
