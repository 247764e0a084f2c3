package reader

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"mxf/pkg/contentpackage"
	"mxf/pkg/descriptor"
	"mxf/pkg/index"
	"mxf/pkg/mxfconfig"
	"mxf/pkg/mxferrors"
	"mxf/pkg/sequence"
	"mxf/pkg/writer"
)

// seekBuffer adapts an in-memory byte slice into an io.WriteSeeker for
// tests, mirroring pkg/writer's own test double since the production
// Writer always targets a real *os.File.
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

func testProfile() mxfconfig.Profile {
	p := mxfconfig.DefaultProfile()
	p.ReserveMinBytes = 4096
	p.Deterministic = true
	return p
}

// writeTwoTrackFile writes a three-frame picture+sound file and returns
// its bytes along with the per-track frames supplied to the writer.
func writeTwoTrackFile(t *testing.T) (fileBytes []byte, picFrames, sndFrames [][]byte) {
	t.Helper()
	out := &seekBuffer{}
	fw := writer.NewFileWriter(out, testProfile(), nil)

	picIdx, err := fw.AddTrack(writer.TrackSpec{
		DataDef:  sequence.DataDefPicture,
		EditRate: index.Rational{Num: 25, Den: 1},
		Descriptor: descriptor.Descriptor{
			EssenceType: descriptor.EssenceMPEG2LG422PHL1080i,
			SampleRate:  descriptor.Rational{Num: 25, Den: 1},
			Width:       1920,
			Height:      1080,
		},
		ContentPkg: contentpackage.RegisterConfig{},
	})
	require.NoError(t, err)

	sndIdx, err := fw.AddTrack(writer.TrackSpec{
		DataDef:  sequence.DataDefSound,
		EditRate: index.Rational{Num: 25, Den: 1},
		Descriptor: descriptor.Descriptor{
			EssenceType:       descriptor.EssencePCM,
			AudioSamplingRate: descriptor.Rational{Num: 48000, Den: 1},
			Channels:          2,
			QuantizationBits:  16,
		},
		ContentPkg: contentpackage.RegisterConfig{ConstantLen: true},
	})
	require.NoError(t, err)

	picFrames = [][]byte{
		{0x00, 0x00, 0x01, 0xB3, 0x00},
		{0x00, 0x00, 0x01, 0xB3, 0x01},
		{0x00, 0x00, 0x01, 0xB3, 0x02},
	}
	sndFrames = [][]byte{
		{0x01, 0x02, 0x03, 0x04},
		{0x05, 0x06, 0x07, 0x08},
		{0x09, 0x0A, 0x0B, 0x0C},
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, fw.WriteSamples(picIdx, picFrames[i], 1))
		require.NoError(t, fw.WriteSamples(sndIdx, sndFrames[i], 1))
	}
	require.NoError(t, fw.Close())
	return out.buf, picFrames, sndFrames
}

func TestOpenRoundTripsTwoTrackFile(t *testing.T) {
	fileBytes, picFrames, sndFrames := writeTwoTrackFile(t)

	fr, err := Open(bytes.NewReader(fileBytes), nil)
	require.NoError(t, err)

	tracks := fr.Tracks()
	require.Len(t, tracks, 2)
	require.Equal(t, sequence.DataDefPicture, tracks[0].DataDef)
	require.Equal(t, descriptor.EssenceMPEG2LG422PHL1080i, tracks[0].Descriptor.EssenceType)
	require.Equal(t, 1920, tracks[0].Descriptor.Width)
	require.Equal(t, 1080, tracks[0].Descriptor.Height)
	require.Equal(t, sequence.DataDefSound, tracks[1].DataDef)
	require.Equal(t, descriptor.EssencePCM, tracks[1].Descriptor.EssenceType)
	require.Equal(t, 2, tracks[1].Descriptor.Channels)
	require.Equal(t, int64(3), fr.Duration())

	er, err := fr.EssenceReader()
	require.NoError(t, err)

	frames, err := er.Read(3)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	for i := 0; i < 3; i++ {
		require.Len(t, frames[i], 2)
		require.Equal(t, picFrames[i], frames[i][0].Data)
		require.Equal(t, sndFrames[i], frames[i][1].Data)
	}
}

func TestOpenTruncatedFileWithoutFooter(t *testing.T) {
	out := &seekBuffer{}
	fw := writer.NewFileWriter(out, testProfile(), nil)

	picIdx, err := fw.AddTrack(writer.TrackSpec{
		DataDef:  sequence.DataDefPicture,
		EditRate: index.Rational{Num: 25, Den: 1},
		Descriptor: descriptor.Descriptor{
			EssenceType: descriptor.EssenceMPEG2LG422PHL1080i,
			SampleRate:  descriptor.Rational{Num: 25, Den: 1},
			Width:       1920,
			Height:      1080,
		},
		ContentPkg: contentpackage.RegisterConfig{},
	})
	require.NoError(t, err)

	var picFrames [][]byte
	for i := 0; i < 3; i++ {
		frame := bytes.Repeat([]byte{byte(i + 1)}, 2000)
		picFrames = append(picFrames, frame)
		require.NoError(t, fw.WriteSamples(picIdx, frame, 1))
	}
	require.NoError(t, fw.Close())

	// Cut inside the second content package and drop the footer and RIP
	// entirely.
	truncated := out.buf[:8000]

	fr, err := Open(bytes.NewReader(truncated), nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), fr.Duration())

	er, err := fr.EssenceReader()
	require.NoError(t, err)

	frames, err := er.Read(3)
	require.ErrorIs(t, err, mxferrors.ErrUnexpectedEOF)
	require.Len(t, frames, 1)
	require.Equal(t, picFrames[0], frames[0][0].Data)
}

func TestEssenceReaderSeekLandsOnIndexedPosition(t *testing.T) {
	fileBytes, picFrames, sndFrames := writeTwoTrackFile(t)

	fr, err := Open(bytes.NewReader(fileBytes), nil)
	require.NoError(t, err)
	er, err := fr.EssenceReader()
	require.NoError(t, err)

	require.NoError(t, er.Seek(2))
	frames, err := er.Read(1)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, picFrames[2], frames[0][0].Data)
	require.Equal(t, sndFrames[2], frames[0][1].Data)

	// Seeking twice to the same position reads the same bytes as seeking
	// once.
	require.NoError(t, er.Seek(1))
	require.NoError(t, er.Seek(1))
	frames, err = er.Read(1)
	require.NoError(t, err)
	require.Equal(t, picFrames[1], frames[0][0].Data)
	require.Equal(t, sndFrames[1], frames[0][1].Data)
}
