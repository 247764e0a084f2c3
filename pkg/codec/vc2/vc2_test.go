package vc2

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildUnit(parseCode byte, payloadLen int, last bool) []byte {
	unit := make([]byte, 13+payloadLen)
	copy(unit[0:4], parseInfoPrefix[:])
	unit[4] = parseCode
	if !last {
		binary.BigEndian.PutUint32(unit[5:9], uint32(13+payloadLen))
	}
	return unit
}

func buildSequence(picture byte) []byte {
	var data []byte
	data = append(data, buildUnit(ParseCodeSequenceHeader, 4, false)...)
	data = append(data, buildUnit(picture, 8, false)...)
	data = append(data, buildUnit(ParseCodeEndOfSequence, 0, true)...)
	return data
}

func TestPassthroughAcceptsAnyBytes(t *testing.T) {
	a := NewAnalyser(ModePassthrough)
	info, err := a.AnalyseFrame([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	require.Equal(t, uint8(0), info.Flags)
}

func TestCompleteSequenceAcceptsHighQualityPicture(t *testing.T) {
	a := NewAnalyser(ModePictureOnlyCompleteSequences)
	info, err := a.AnalyseFrame(buildSequence(ParseCodeHighQualityPicture))
	require.NoError(t, err)
	require.True(t, info.SequenceHeader)
}

func TestCompleteSequenceAcceptsLowDelayPicture(t *testing.T) {
	a := NewAnalyser(ModePictureOnlyCompleteSequences)
	_, err := a.AnalyseFrame(buildSequence(ParseCodeLowDelayPicture))
	require.NoError(t, err)
}

func TestCompleteSequenceRejectsMissingEndOfSequence(t *testing.T) {
	a := NewAnalyser(ModePictureOnlyCompleteSequences)
	data := append(buildUnit(ParseCodeSequenceHeader, 4, false), buildUnit(ParseCodeHighQualityPicture, 8, true)...)
	_, err := a.AnalyseFrame(data)
	require.Error(t, err)
}

func TestCompleteSequenceRejectsMissingPicture(t *testing.T) {
	a := NewAnalyser(ModePictureOnlyCompleteSequences)
	data := append(buildUnit(ParseCodeSequenceHeader, 4, false), buildUnit(ParseCodeEndOfSequence, 0, true)...)
	_, err := a.AnalyseFrame(data)
	require.Error(t, err)
}

func TestCompleteSequenceRejectsBadPrefix(t *testing.T) {
	a := NewAnalyser(ModePictureOnlyCompleteSequences)
	data := buildSequence(ParseCodeHighQualityPicture)
	data[0] = 'X'
	_, err := a.AnalyseFrame(data)
	require.Error(t, err)
}
