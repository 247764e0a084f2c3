package mxflog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerFanout(t *testing.T) {
	logger := NewLogger()

	var a, b []Entry
	logger.AddSink(SinkFunc(func(e Entry) { a = append(a, e) }))
	logger.AddSink(SinkFunc(func(e Entry) { b = append(b, e) }))

	logger.Warn().Source("clip.mxf").Code("W-KAG").Msg("fill shorter than minimum")

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	require.Equal(t, LevelWarning, a[0].Level)
	require.Equal(t, "clip.mxf", a[0].SourceFile)
	require.Equal(t, "W-KAG", a[0].Code)
	require.Equal(t, "fill shorter than minimum", a[0].Message)
}

func TestLoggerMsgf(t *testing.T) {
	logger := NewLogger()

	var got Entry
	logger.AddSink(SinkFunc(func(e Entry) { got = e }))

	logger.Error().Code("E-EOF").Msgf("short read at offset %d", 128)

	require.Equal(t, "short read at offset 128", got.Message)
	require.Equal(t, LevelError, got.Level)
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "error", LevelError.String())
	require.Equal(t, "warning", LevelWarning.String())
	require.Equal(t, "info", LevelInfo.String())
	require.Equal(t, "debug", LevelDebug.String())
}

func TestNoLoggerEventIsNoop(t *testing.T) {
	var e *Event
	require.NotPanics(t, func() {
		e = &Event{level: LevelInfo}
		e.Msg("discarded")
	})
}
