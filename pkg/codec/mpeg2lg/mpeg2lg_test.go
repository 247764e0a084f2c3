package mpeg2lg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mxf/pkg/codec"
)

var frameI = []byte{0x00, 0x00, 0x01, 0xb3, 0x78, 0x04, 0x38, 0x14, 0x00, 0x19, 0x00, 0x00, 0x00, 0x01, 0xb8, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x01, 0x00, 0x00, 0x08}
var frameP = []byte{0x00, 0x00, 0x01, 0x00, 0x00, 0xd0}
var frameB = []byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x58}
var frameINoSeq = []byte{0x00, 0x00, 0x01, 0xb8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x08}

func TestAnalyseIFrame(t *testing.T) {
	a := NewAnalyser(false, nil)
	info, err := a.AnalyseFrame(frameI)
	require.NoError(t, err)
	require.Equal(t, codec.FrameTypeI, info.FrameType)
	require.True(t, info.SequenceHeader)
	require.True(t, info.ClosedGOP)
	require.True(t, info.Reference)
	require.Equal(t, uint8(flagReferenceFrame|flagSequenceHeader), info.Flags)
}

func TestAnalyseGOPSequence(t *testing.T) {
	// Coded order I(tr 0), P(tr 3), B(tr 1): the frame displayed at
	// position 1 is stored at position 2.
	a := NewAnalyser(false, nil)
	iInfo, err := a.AnalyseFrame(frameI)
	require.NoError(t, err)
	require.True(t, iInfo.GOPStart)
	require.True(t, iInfo.HaveTemporalOffset)
	require.Equal(t, int8(0), iInfo.TemporalOffset)

	pInfo, err := a.AnalyseFrame(frameP)
	require.NoError(t, err)
	require.Equal(t, codec.FrameTypeP, pInfo.FrameType)
	require.Equal(t, int8(-1), pInfo.KeyFrameOffset)
	// The P frame's own entry is unresolved until the frame displayed at
	// coded position 1 arrives.
	require.False(t, pInfo.HaveTemporalOffset)
	require.Equal(t, uint8(flagPPrediction|flagReferenceFrame), pInfo.Flags)

	bInfo, err := a.AnalyseFrame(frameB)
	require.NoError(t, err)
	require.Equal(t, codec.FrameTypeB, bInfo.FrameType)
	require.False(t, bInfo.Reference)
	require.Equal(t, int8(-2), bInfo.KeyFrameOffset)
	// The B frame displays at slot 1, resolving the entry at position 1.
	require.True(t, bInfo.HavePrevTemporalOffset)
	require.Equal(t, int64(1), bInfo.PrevTemporalOffsetAt)
	require.Equal(t, int8(1), bInfo.PrevTemporalOffset)
	require.Equal(t, uint8(flagBBidirectional), bInfo.Flags)
}

func TestAnalyseFrameWithoutPriorIFrameFlagsOutOfRange(t *testing.T) {
	a := NewAnalyser(false, nil)
	info, err := a.AnalyseFrame(frameP)
	require.NoError(t, err)
	require.Equal(t, uint8(flagOffsetOutOfRange), info.Flags)
}

func TestShimRejectsOpenGOPUnderRequireClosed(t *testing.T) {
	a := NewAnalyser(false, &ShimConfig{Name: "AS-10", RequireClosedGOP: true})
	_, err := a.AnalyseFrame(frameINoSeq)
	require.NoError(t, err)
	require.NotEmpty(t, a.Violations())
	require.Error(t, a.ShimError())
}

func TestShimLooseChecksSuppressesError(t *testing.T) {
	a := NewAnalyser(true, &ShimConfig{Name: "AS-10", RequireClosedGOP: true})
	_, err := a.AnalyseFrame(frameINoSeq)
	require.NoError(t, err)
	require.NotEmpty(t, a.Violations())
	require.NoError(t, a.ShimError())
}

func TestShimBitRateMismatchReportsViolation(t *testing.T) {
	// frameI's sequence header encodes 40 000 bit/s; the shim requires
	// 50 Mb/s within 1 Mb/s.
	shim := &ShimConfig{Name: "high_hd_2014", BitRate: 50_000_000, BitRateDelta: 1_000_000}

	a := NewAnalyser(false, shim)
	_, err := a.AnalyseFrame(frameI)
	require.NoError(t, err)
	require.NotEmpty(t, a.Violations())
	err = a.ShimError()
	require.Error(t, err)
	require.Contains(t, err.Error(), "is not equal")
	require.Contains(t, err.Error(), "to required")

	loose := NewAnalyser(true, shim)
	_, err = loose.AnalyseFrame(frameI)
	require.NoError(t, err)
	require.NotEmpty(t, loose.Violations())
	require.NoError(t, loose.ShimError())
}

func TestShimBitRateWithinDeltaPasses(t *testing.T) {
	shim := &ShimConfig{Name: "high_hd_2014", BitRate: 41_000, BitRateDelta: 2_000}
	a := NewAnalyser(false, shim)
	_, err := a.AnalyseFrame(frameI)
	require.NoError(t, err)
	require.NoError(t, a.ShimError())
}

func TestResetClearsState(t *testing.T) {
	a := NewAnalyser(false, nil)
	_, err := a.AnalyseFrame(frameI)
	require.NoError(t, err)
	a.Reset()
	info, err := a.AnalyseFrame(frameP)
	require.NoError(t, err)
	require.Equal(t, uint8(flagOffsetOutOfRange), info.Flags)
}

func TestAnalyseFrameRejectsMissingStartCode(t *testing.T) {
	a := NewAnalyser(false, nil)
	_, err := a.AnalyseFrame([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}
