// Package mxflog is the structured diagnostic sink shared by every MXF
// engine component.
package mxflog

// API inspired by zerolog https://github.com/rs/zerolog: a chained Event
// builder over a pluggable Sink.

import (
	"fmt"
	"sync"
)

// Level is a diagnostic severity. Higher values are less severe, matching
// ffmpeg's own log-level numbering so diagnostics from codec analysers
// (which mirror ffmpeg's conformance vocabulary) slot in unchanged.
type Level uint8

// Level hierarchy: Debug < Info < Warn < Error in severity terms, i.e.
// LevelError is the smallest numeric value.
const (
	LevelError   Level = 16
	LevelWarning Level = 24
	LevelInfo    Level = 32
	LevelDebug   Level = 48
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Entry is a single diagnostic, carrying the (level, source_file_id, code,
// message) tuple required by the error-handling design.
type Entry struct {
	Level      Level
	SourceFile string // source_file_id: the MXF file or stream this concerns.
	Code       string // stable machine-readable diagnostic code.
	Message    string
}

// Event is an in-progress diagnostic being built up field by field before
// being sent.
type Event struct {
	level  Level
	src    string
	code   string
	logger *Logger
}

// Source sets the diagnostic's source_file_id.
func (e *Event) Source(source string) *Event {
	e.src = source
	return e
}

// Code sets the diagnostic's stable machine-readable code.
func (e *Event) Code(code string) *Event {
	e.code = code
	return e
}

// Msg sends the Event with msg as the message field.
func (e *Event) Msg(msg string) {
	if e.logger == nil {
		return
	}
	e.logger.emit(Entry{
		Level:      e.level,
		SourceFile: e.src,
		Code:       e.code,
		Message:    msg,
	})
}

// Msgf sends the Event with a formatted message.
func (e *Event) Msgf(format string, v ...interface{}) {
	e.Msg(fmt.Sprintf(format, v...))
}

// Sink receives every Entry emitted through a Logger. Implementations must
// not block for long; the logger calls sinks synchronously and holds a
// lock while doing so.
type Sink interface {
	Log(Entry)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Entry)

// Log implements Sink.
func (f SinkFunc) Log(e Entry) { f(e) }

// Logger routes diagnostics to zero or more registered Sinks. There is no
// persisted state: per the engine's external-interfaces contract, nothing
// outside the target MXF file is written, so unlike the NVR ancestor this
// logger has no database-backed store — only an in-process fan-out.
type Logger struct {
	mu    sync.Mutex
	sinks []Sink
}

// NewLogger creates a Logger with no sinks attached.
func NewLogger() *Logger {
	return &Logger{}
}

// AddSink registers a Sink. Safe to call concurrently with logging.
func (l *Logger) AddSink(s Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

func (l *Logger) emit(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.sinks {
		s.Log(e)
	}
}

// Error starts an Entry at LevelError.
func (l *Logger) Error() *Event { return &Event{level: LevelError, logger: l} }

// Warn starts an Entry at LevelWarning.
func (l *Logger) Warn() *Event { return &Event{level: LevelWarning, logger: l} }

// Info starts an Entry at LevelInfo.
func (l *Logger) Info() *Event { return &Event{level: LevelInfo, logger: l} }

// Debug starts an Entry at LevelDebug.
func (l *Logger) Debug() *Event { return &Event{level: LevelDebug, logger: l} }
