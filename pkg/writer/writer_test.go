package writer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mxf/pkg/codec/mpeg2lg"
	"mxf/pkg/contentpackage"
	"mxf/pkg/descriptor"
	"mxf/pkg/index"
	"mxf/pkg/mxfconfig"
	"mxf/pkg/mxflog"
	"mxf/pkg/sequence"
)

// seekBuffer adapts an in-memory byte slice into an io.WriteSeeker for
// tests, mirroring pkg/partition's test double since the production
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

func TestFileWriterTwoTracksProduceWellFormedPartitions(t *testing.T) {
	out := &seekBuffer{}
	fw := NewFileWriter(out, testProfile(), nil)

	picIdx, err := fw.AddTrack(TrackSpec{
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

	sndIdx, err := fw.AddTrack(TrackSpec{
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

	for i := 0; i < 3; i++ {
		require.NoError(t, fw.WriteSamples(picIdx, []byte{0x00, 0x00, 0x01, 0xB3, byte(i)}, 1))
		require.NoError(t, fw.WriteSamples(sndIdx, []byte{0x01, 0x02, 0x03, 0x04}, 1))
	}

	require.NoError(t, fw.Close())
	require.NoError(t, fw.Close()) // idempotent

	require.Greater(t, len(out.buf), 0)
	require.Equal(t, byte(0x06), out.buf[0])
}

// Coded order I(tr 0), P(tr 2), B(tr 1): dropping the B leaves display
// slot 1 unresolved.
var (
	gopFrameI = []byte{
		0x00, 0x00, 0x01, 0xB3, 0x78, 0x04, 0x38, 0x14, 0x00, 0x19, 0x00,
		0x00, 0x00, 0x01, 0xB8, 0x00, 0x00, 0x00, 0x40,
		0x00, 0x00, 0x01, 0x00, 0x00, 0x08,
	}
	gopFrameP = []byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x90}
	gopFrameB = []byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x58}
)

func writeGOPFrames(t *testing.T, frames [][]byte) []mxflog.Entry {
	t.Helper()
	var entries []mxflog.Entry
	logger := mxflog.NewLogger()
	logger.AddSink(mxflog.SinkFunc(func(e mxflog.Entry) { entries = append(entries, e) }))

	out := &seekBuffer{}
	fw := NewFileWriter(out, testProfile(), logger)
	idx, err := fw.AddTrack(TrackSpec{
		DataDef:  sequence.DataDefPicture,
		EditRate: index.Rational{Num: 25, Den: 1},
		Descriptor: descriptor.Descriptor{
			EssenceType: descriptor.EssenceMPEG2LG422PHL1080i,
			SampleRate:  descriptor.Rational{Num: 25, Den: 1},
			Width:       1920,
			Height:      1080,
		},
		Analyser:   mpeg2lg.NewAnalyser(false, nil),
		ContentPkg: contentpackage.RegisterConfig{},
	})
	require.NoError(t, err)

	for _, f := range frames {
		require.NoError(t, fw.WriteSamples(idx, f, 1))
	}
	require.NoError(t, fw.Close())
	return entries
}

func TestCompleteGOPClosesWithoutDiagnostics(t *testing.T) {
	entries := writeGOPFrames(t, [][]byte{gopFrameI, gopFrameP, gopFrameB})
	for _, e := range entries {
		require.NotEqual(t, "incomplete-index", e.Code, e.Message)
	}
}

func TestIncompleteGOPLogsUnfilledTemporalOffset(t *testing.T) {
	entries := writeGOPFrames(t, [][]byte{gopFrameI, gopFrameP})
	found := false
	for _, e := range entries {
		if e.Code == "incomplete-index" {
			found = true
		}
	}
	require.True(t, found)
}

func TestAddTrackAfterOpenFails(t *testing.T) {
	out := &seekBuffer{}
	fw := NewFileWriter(out, testProfile(), nil)

	idx, err := fw.AddTrack(TrackSpec{
		DataDef:  sequence.DataDefPicture,
		EditRate: index.Rational{Num: 25, Den: 1},
		Descriptor: descriptor.Descriptor{
			EssenceType: descriptor.EssenceMPEG2LG422PHL1080i,
			SampleRate:  descriptor.Rational{Num: 25, Den: 1},
		},
	})
	require.NoError(t, err)

	require.NoError(t, fw.WriteSamples(idx, []byte{0x00, 0x00, 0x01, 0xB3}, 1))

	_, err = fw.AddTrack(TrackSpec{DataDef: sequence.DataDefSound})
	require.Error(t, err)
}

func TestWriteSamplesOnUnregisteredTrackFails(t *testing.T) {
	out := &seekBuffer{}
	fw := NewFileWriter(out, testProfile(), nil)
	err := fw.WriteSamples(0, []byte{0x01}, 1)
	require.Error(t, err)
}
