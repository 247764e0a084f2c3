package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mxf/pkg/essence"
	"mxf/pkg/mxferrors"
)

// fakeSource is an in-memory FrameSource over fixed per-position payloads,
// for exercising GroupReader without an actual file.
type fakeSource struct {
	payloads [][]byte // one payload per edit unit, track 0 only
	position int64
}

func (f *fakeSource) Read(numSamples int) ([][]essence.Frame, error) {
	out := make([][]essence.Frame, 0, numSamples)
	for i := 0; i < numSamples; i++ {
		if int(f.position) >= len(f.payloads) {
			return out, &mxferrors.OutOfRangeError{Position: f.position, Duration: int64(len(f.payloads))}
		}
		out = append(out, []essence.Frame{{TrackIndex: 0, Position: f.position, Data: f.payloads[f.position]}})
		f.position++
	}
	return out, nil
}

func (f *fakeSource) Seek(position int64) error {
	f.position = position
	return nil
}

func TestGroupReaderConcatenatesInputsByteForByte(t *testing.T) {
	a := &fakeSource{payloads: [][]byte{[]byte("a0"), []byte("a1")}}
	b := &fakeSource{payloads: [][]byte{[]byte("b0")}}
	c := &fakeSource{payloads: [][]byte{[]byte("c0"), []byte("c1")}}

	group := &Group{Inputs: []*Input{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	trackIndices := IdentityTrackIndices(1, 3)

	gr, err := NewGroupReader(group, trackIndices, []FrameSource{a, b, c}, []int64{2, 1, 2})
	require.NoError(t, err)

	frames, err := gr.Read(5)
	require.NoError(t, err)
	require.Len(t, frames, 5)

	var joined []byte
	for _, fs := range frames {
		require.Len(t, fs, 1)
		joined = append(joined, fs[0].Data...)
	}
	require.Equal(t, "a0a1b0c0c1", string(joined))

	_, err = gr.Read(1)
	require.Error(t, err)
}

func TestGroupReaderSeekCrossesInputBoundary(t *testing.T) {
	a := &fakeSource{payloads: [][]byte{[]byte("a0"), []byte("a1")}}
	b := &fakeSource{payloads: [][]byte{[]byte("b0"), []byte("b1")}}

	group := &Group{Inputs: []*Input{{ID: "a"}, {ID: "b"}}}
	trackIndices := IdentityTrackIndices(1, 2)

	gr, err := NewGroupReader(group, trackIndices, []FrameSource{a, b}, []int64{2, 2})
	require.NoError(t, err)

	require.NoError(t, gr.Seek(3))
	frames, err := gr.Read(1)
	require.NoError(t, err)
	require.Equal(t, "b1", string(frames[0][0].Data))
}

func TestNewGroupReaderRejectsMismatchedInputCount(t *testing.T) {
	group := &Group{Inputs: []*Input{{ID: "a"}}}
	_, err := NewGroupReader(group, nil, []FrameSource{&fakeSource{}, &fakeSource{}}, []int64{1})
	require.Error(t, err)
}
