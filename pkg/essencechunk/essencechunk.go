// Package essencechunk tracks the physical byte ranges a given essence
// stream occupies across a file's partitions and translates a logical,
// contiguous essence-byte offset into the physical file position it lives
// at.
package essencechunk

import "mxf/pkg/mxferrors"

// Chunk is one contiguous physical run of essence bytes for a single body
// stream, bounded by partition or key-change boundaries.
type Chunk struct {
	// FileStart is the physical file offset of this chunk's first
	// essence byte.
	FileStart uint64
	// LogicalStart is the logical, stream-relative offset of this
	// chunk's first essence byte (the sum of every earlier chunk's
	// size).
	LogicalStart uint64
	// Size is the chunk's length in bytes; 0 while still open.
	Size uint64
	open bool
}

// List accumulates a single body stream's chunks as a file is walked
// partition by partition.
type List struct {
	bodySID  uint32
	chunks   []*Chunk
	complete bool
}

// NewList creates a chunk list for the given body stream ID.
func NewList(bodySID uint32) *List {
	return &List{bodySID: bodySID}
}

// EnterPartition is called when a partition pack is encountered. If the
// partition's own body_sid matches this list's stream, firstEssenceOffset
// (the file position of the first essence key in the partition) opens a
// new chunk.
func (l *List) EnterPartition(partitionBodySID uint32, firstEssenceOffset uint64) {
	if partitionBodySID != l.bodySID {
		return
	}
	var logicalStart uint64
	if n := len(l.chunks); n > 0 {
		last := l.chunks[n-1]
		logicalStart = last.LogicalStart + last.Size
	}
	l.chunks = append(l.chunks, &Chunk{
		FileStart:    firstEssenceOffset,
		LogicalStart: logicalStart,
		open:         true,
	})
}

// UpdateLastChunk closes the most recently opened chunk, fixing its size
// from the physical end position. Called when the next partition pack, a
// key change, or the footer is encountered.
func (l *List) UpdateLastChunk(endFilePos uint64) error {
	if len(l.chunks) == 0 {
		return &mxferrors.InconsistentError{Reason: "update_last_chunk with no open chunk"}
	}
	last := l.chunks[len(l.chunks)-1]
	if !last.open {
		return nil
	}
	if endFilePos < last.FileStart {
		return &mxferrors.InconsistentError{Reason: "chunk end precedes its start"}
	}
	last.Size = endFilePos - last.FileStart
	last.open = false
	return nil
}

// MarkComplete records that the footer partition has been read, so
// GetFilePosition can trust it has seen every chunk.
func (l *List) MarkComplete() { l.complete = true }

// Complete reports whether the footer has been reached.
func (l *List) Complete() bool { return l.complete }

// TotalLength returns the stream's total known essence length so far.
func (l *List) TotalLength() uint64 {
	if len(l.chunks) == 0 {
		return 0
	}
	last := l.chunks[len(l.chunks)-1]
	return last.LogicalStart + last.Size
}

// GetFilePosition maps a logical essence byte offset (contiguous across
// every chunk, with inter-partition gaps removed) to the physical file
// position it corresponds to.
func (l *List) GetFilePosition(essenceOffset uint64) (uint64, error) {
	for _, c := range l.chunks {
		end := c.LogicalStart + c.Size
		if c.open {
			end = ^uint64(0) // an open chunk's upper bound is not yet known.
		}
		if essenceOffset >= c.LogicalStart && essenceOffset < end {
			return c.FileStart + (essenceOffset - c.LogicalStart), nil
		}
	}
	return 0, &mxferrors.OutOfRangeError{Position: int64(essenceOffset), Duration: int64(l.TotalLength())}
}

// Chunks returns the accumulated chunk list, for diagnostics and tests.
func (l *List) Chunks() []*Chunk { return l.chunks }
