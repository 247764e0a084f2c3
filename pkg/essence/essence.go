// Package essence implements the lazy, seekable per-track essence reader:
// clip-wrapped reads (one index lookup and seek per edit unit),
// frame-wrapped content-package walks,
// and the base_read_error recovery contract.
package essence

import (
	"io"

	"mxf/pkg/essencechunk"
	"mxf/pkg/index"
	"mxf/pkg/klv"
	"mxf/pkg/mxferrors"
)

// Wrapping is how a track's essence is laid out in the file.
type Wrapping int

const (
	WrappingClip Wrapping = iota
	WrappingFrame
)

// Track describes one essence track this reader serves.
type Track struct {
	Index              int
	Key                klv.Key
	EditUnitByteCount  uint32 // 0 for VBE (clip wrapping only ever applies to CBE tracks)
	ImageStartOffset   int
	ImageEndOffset     int
	Wrapping           Wrapping
}

// Frame is one track's payload for one edit-unit position.
type Frame struct {
	TrackIndex int
	Position   int64
	Data       []byte
}

// Reader reads essence for a set of tracks sharing one body stream.
type Reader struct {
	src    io.ReadSeeker
	kr     *klv.Reader
	chunks *essencechunk.List
	table  *index.Table
	tracks []*Track

	position int64
	filePos  int64
	lastKey  klv.Key

	startLimit    int64
	durationLimit int64
	limitsSet     bool

	firstElementKey    klv.Key
	firstElementKeySet bool
	lastBoundaryFilePos int64

	baseReadError error
}

// NewReader creates a reader over src for the given tracks, sharing one
// chunk list and index table.
func NewReader(src io.ReadSeeker, chunks *essencechunk.List, table *index.Table, tracks []*Track) (*Reader, error) {
	kr, err := klv.NewReader(src)
	if err != nil {
		return nil, err
	}
	return &Reader{src: src, kr: kr, chunks: chunks, table: table, tracks: tracks}, nil
}

// SetReadLimits stores the readable range [start, start+duration); Seek
// rejects positions outside it. The limits are used as given: they are
// not clamped to the range the index covers.
func (r *Reader) SetReadLimits(start, duration int64) {
	r.startLimit = start
	r.durationLimit = duration
	r.limitsSet = true
}

// BaseReadError returns the last reported base read error, if any.
func (r *Reader) BaseReadError() error { return r.baseReadError }

func (r *Reader) clampToLimits(position int64) (int64, error) {
	if !r.limitsSet {
		return position, nil
	}
	if position < r.startLimit || position >= r.startLimit+r.durationLimit {
		return 0, &mxferrors.OutOfRangeError{Position: position, Duration: r.durationLimit}
	}
	return position, nil
}

// Seek moves to position: directly via the index when the file position
// is known, otherwise from the last known content-package boundary,
// walking forward and updating the index opportunistically. Index stream
// offsets are logical essence-container offsets; they are routed through
// the chunk list to land on the physical file position.
func (r *Reader) Seek(position int64) error {
	if _, err := r.clampToLimits(position); err != nil {
		return err
	}
	if r.table != nil {
		if streamOffset, _, _, _, _, err := r.table.GetEditUnit(position); err == nil {
			filePos := int64(streamOffset)
			if r.chunks != nil {
				p, cerr := r.chunks.GetFilePosition(streamOffset)
				if cerr != nil {
					return cerr
				}
				filePos = int64(p)
			}
			if serr := r.kr.Seek(filePos); serr != nil {
				return serr
			}
			r.position = position
			r.filePos = filePos
			r.lastBoundaryFilePos = filePos
			r.firstElementKeySet = false
			return nil
		}
	}
	if err := r.kr.Seek(r.lastBoundaryFilePos); err != nil {
		return err
	}
	r.position = position
	r.filePos = r.lastBoundaryFilePos
	r.firstElementKeySet = false
	return nil
}

// Read produces one Frame per enabled track for each of numSamples edit
// units starting from the reader's current position, dispatching to the
// clip- or frame-wrapping strategy per track.
func (r *Reader) Read(numSamples int) ([][]Frame, error) {
	out := make([][]Frame, 0, numSamples)
	for i := 0; i < numSamples; i++ {
		frames, err := r.readOne()
		if err != nil {
			r.reportFailure(err)
			return out, err
		}
		out = append(out, frames)
		r.position++
	}
	return out, nil
}

func (r *Reader) readOne() ([]Frame, error) {
	var frames []Frame
	for _, t := range r.tracks {
		var f Frame
		var err error
		switch t.Wrapping {
		case WrappingClip:
			f, err = r.readClipWrapped(t)
		default:
			f, err = r.readFrameWrapped(t)
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// readClipWrapped reads one edit unit of a clip-wrapped (fixed-size)
// track by seeking directly to its offset, then trims the image
// start/end offsets in place.
func (r *Reader) readClipWrapped(t *Track) (Frame, error) {
	if r.table == nil {
		return Frame{}, &mxferrors.InconsistentError{Reason: "clip-wrapped read requires an index table"}
	}
	offset, size, _, _, _, err := r.table.GetEditUnit(r.position)
	if err != nil {
		return Frame{}, err
	}
	filePos, err := r.chunks.GetFilePosition(offset)
	if err != nil {
		return Frame{}, err
	}
	if err := r.kr.Seek(int64(filePos)); err != nil {
		return Frame{}, err
	}
	buf, err := r.kr.ReadValue(uint64(size))
	if err != nil {
		return Frame{}, err
	}
	buf = trimImageOffsets(buf, t.ImageStartOffset, t.ImageEndOffset)
	return Frame{TrackIndex: t.Index, Position: r.position, Data: buf}, nil
}

func trimImageOffsets(data []byte, start, end int) []byte {
	if start <= 0 && end <= 0 {
		return data
	}
	lo := start
	hi := len(data) - end
	if lo < 0 {
		lo = 0
	}
	if hi > len(data) {
		hi = len(data)
	}
	if hi < lo {
		return data[:0]
	}
	return data[lo:hi]
}

// readFrameWrapped walks KLVs from the current content-package file
// offset, copying bytes for t's essence key into its frame and skipping
// every other KLV alike (SDTI system-item metadata is not told apart or
// collected here; callers needing it walk r.kr themselves). A new content package is detected when the first element key
// learned on the first package recurs, or a partition pack key appears.
func (r *Reader) readFrameWrapped(t *Track) (Frame, error) {
	for {
		key, length, err := r.kr.ReadKL(0)
		if err != nil {
			return Frame{}, err
		}
		if isPartitionPackKey(key) {
			r.lastBoundaryFilePos = r.kr.Tell() - 16
			r.firstElementKeySet = false
			if err := r.kr.Skip(int64(length)); err != nil {
				return Frame{}, err
			}
			continue
		}
		if !r.firstElementKeySet {
			r.firstElementKey = key
			r.firstElementKeySet = true
			r.lastBoundaryFilePos = r.kr.Tell() - 16
		} else if key == r.firstElementKey {
			r.lastBoundaryFilePos = r.kr.Tell() - 16
		}

		if key == t.Key {
			value, err := r.kr.ReadValue(length)
			if err != nil {
				return Frame{}, err
			}
			r.lastKey = key
			return Frame{TrackIndex: t.Index, Position: r.position, Data: value}, nil
		}
		if err := r.kr.Skip(int64(length)); err != nil {
			return Frame{}, err
		}
	}
}

func isPartitionPackKey(key klv.Key) bool {
	for i := 0; i < len(klv.PartitionPackKeyPrefix); i++ {
		if key[i] != klv.PartitionPackKeyPrefix[i] {
			return false
		}
	}
	return true
}

// reportFailure sets base_read_error once per failure and resets position
// to the last known boundary so a subsequent Seek/Read can recover.
func (r *Reader) reportFailure(err error) {
	r.baseReadError = err
	_ = r.kr.Seek(r.lastBoundaryFilePos)
	r.firstElementKeySet = false
}
