package partition

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"mxf/pkg/klv"
	"mxf/pkg/label"
	"mxf/pkg/mxfconfig"
)

// seekBuffer adapts a bytes.Buffer into an io.WriteSeeker for tests, since
// the production Writer always targets a real *os.File.
type seekBuffer struct {
	buf []byte
	pos int64
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		s.pos = offset
	case 1:
		s.pos += offset
	case 2:
		s.pos = int64(len(s.buf)) + offset
	}
	return s.pos, nil
}

func TestPackKeyEncodesKindAndStatus(t *testing.T) {
	p := &Pack{Kind: KindHeader, Status: StatusOpenIncomplete}
	k := p.Key()
	require.Equal(t, byte(KindHeader), k[13])
	require.Equal(t, byte(StatusOpenIncomplete), k[14])
}

func TestPackRoundTrip(t *testing.T) {
	p := &Pack{
		Kind:               KindHeader,
		Status:             StatusOpenIncomplete,
		KAGSize:            512,
		ThisPartition:      0,
		OperationalPattern: label.OP1a,
		EssenceContainers:  []label.UL{label.ECUncompressedPicture},
	}
	var buf bytes.Buffer
	w := klv.NewWriter(&buf, 4)
	require.NoError(t, WritePack(w, p, 4))

	r, err := klv.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got, err := ReadPack(r)
	require.NoError(t, err)
	require.Equal(t, p.KAGSize, got.KAGSize)
	require.Equal(t, p.OperationalPattern, got.OperationalPattern)
	require.Len(t, got.EssenceContainers, 1)
	require.Equal(t, p.EssenceContainers[0], got.EssenceContainers[0])
}

func TestRIPRoundTrip(t *testing.T) {
	rip := &RIP{Entries: []RIPEntry{{BodySID: 1, ThisPartition: 0}, {BodySID: 1, ThisPartition: 4096}}}
	var buf bytes.Buffer
	w := klv.NewWriter(&buf, 4)
	require.NoError(t, WriteRIP(w, rip))

	r, err := klv.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got, err := ReadRIP(r)
	require.NoError(t, err)
	require.Equal(t, rip.Entries, got.Entries)
}

func TestAlignToKAGNoOpWhenAligned(t *testing.T) {
	var buf bytes.Buffer
	w := klv.NewWriter(&buf, 4)
	require.NoError(t, AlignToKAG(w, klv.FillKeyCompliant, 512, 4))
	require.Equal(t, int64(0), w.Tell())
}

func TestAlignToKAGPadsToBoundary(t *testing.T) {
	var buf bytes.Buffer
	w := klv.NewWriter(&buf, 4)
	require.NoError(t, w.WriteValue(make([]byte, 10)))
	require.NoError(t, AlignToKAG(w, klv.FillKeyCompliant, 512, 4))
	require.Equal(t, int64(0), w.Tell()%512)
}

func TestWriterThreePassRoundTrip(t *testing.T) {
	sb := &seekBuffer{}
	profile := mxfconfig.DefaultProfile()
	profile.KAGSize = 512

	w := NewWriter(sb, profile)
	ecs := []label.UL{label.ECUncompressedPicture}

	require.NoError(t, w.WriteHeaderPartition(label.OP1a, ecs))
	require.NoError(t, w.ReserveHeaderMetadata(256))
	require.NoError(t, w.WriteBodyPartition(1, 1, ecs))

	bodyBytes := []byte("essence-data")
	require.NoError(t, w.KLV().WriteKeyAndLength(klv.FillKeyCompliant, 4, uint64(len(bodyBytes))))
	require.NoError(t, w.KLV().WriteValue(bodyBytes))
	require.NoError(t, w.Align())

	footerOffset := w.Tell()
	require.NoError(t, w.WriteFooterAndRIP(0))

	require.NoError(t, w.FinaliseHeaderMetadata(func(bw *klv.Writer) error {
		return bw.WriteValue([]byte("header-metadata-stub"))
	}))
	require.NoError(t, w.Finalise(uint64(footerOffset)))

	r, err := klv.NewReader(bytes.NewReader(sb.buf))
	require.NoError(t, err)
	header, err := ReadPack(r)
	require.NoError(t, err)
	require.Equal(t, StatusClosedComplete, header.Status)
	require.Equal(t, uint64(footerOffset), header.FooterPartition)
	require.Equal(t, uint64(256), header.HeaderByteCount)
}
