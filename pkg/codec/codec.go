// Package codec defines the common interface every codec writer helper
// (mpeg2lg, vc2, avcintra, pictureheader) implements, so pkg/contentpackage
// and pkg/index depend only on the interface rather than any one codec's
// concrete analyser.
package codec

// FrameType classifies a coded picture in presentation-order terms.
type FrameType int

const (
	FrameTypeUnknown FrameType = iota
	FrameTypeI
	FrameTypeP
	FrameTypeB
)

// FrameInfo is what an Analyser extracts from one coded frame: enough to
// drive the index engine's temporal_offset/key_frame_offset/flags
// computation. Fields not meaningful to a given codec are left zero.
type FrameInfo struct {
	FrameType         FrameType
	TemporalReference int
	SequenceHeader    bool
	ClosedGOP         bool
	LowDelay          bool
	Reference         bool
	// GOPStart marks the first frame of a new GOP; the previous GOP's
	// index entries can be verified complete.
	GOPStart bool

	// KeyFrameOffset is the signed distance, in index positions, from
	// this frame to its reference frame (0 for a reference frame).
	KeyFrameOffset int8
	Flags          uint8

	// TemporalOffset is this frame's own index entry's temporal offset,
	// valid only when HaveTemporalOffset is set: with reordered GOPs it
	// becomes known only once the frame displayed at this coded position
	// has arrived.
	TemporalOffset     int8
	HaveTemporalOffset bool

	// PrevTemporalOffset carries a temporal offset for the earlier entry
	// at position PrevTemporalOffsetAt that only became resolvable with
	// this frame, valid when HavePrevTemporalOffset is set.
	PrevTemporalOffset     int8
	PrevTemporalOffsetAt   int64
	HavePrevTemporalOffset bool
}

// Analyser is implemented by every per-codec frame analyser.
type Analyser interface {
	// AnalyseFrame inspects one coded frame's bytes and returns what was
	// learned, updating any cross-frame state (GOP position, last
	// reference frame) the analyser keeps internally.
	AnalyseFrame(data []byte) (FrameInfo, error)
	// Reset clears cross-frame state, e.g. at the start of a new
	// essence track or after a discontinuity.
	Reset()
}
