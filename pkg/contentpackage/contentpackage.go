// Package contentpackage implements the content-package manager: per-track
// element buffering, the data → picture → sound ordering contract, and
// sample-sequence bookkeeping for non-integer audio-per-video ratios.
package contentpackage

import (
	"sort"

	"mxf/pkg/klv"
	"mxf/pkg/mxferrors"
)

// Kind orders elements within a content package: data, then picture, then
// sound, per the ordering contract.
type Kind int

const (
	KindData Kind = iota
	KindPicture
	KindSound
)

// RegisterConfig describes how an element's per-content-package sample
// count and padding are determined. Exactly one of SampleSequence being
// non-nil, ConstantLen, or MaxLen>0 is expected to apply; SampleSize
// additionally records the fixed per-sample byte size used for CBE
// pre-allocation.
type RegisterConfig struct {
	// SampleSize is the fixed byte size of one sample, 0 if variable
	// (VBE picture/sound).
	SampleSize int
	// SampleSequence is a repeating cycle of expected sample counts per
	// content package (e.g. the NTSC 1602/1601/1602/1601/1602 audio
	// cadence). nil means one sample per content package.
	SampleSequence []int
	// ConstantLen marks a frame-wrapped element (one write per content
	// package; ready as soon as any bytes arrive, matching clip-wrap
	// readiness) rather than one gated on a target sample count.
	ConstantLen bool
	// MaxLen, when non-zero, is the element's reserved payload size for
	// CBE pre-allocation: the manager pads short payloads with a fill
	// KLV within this reservation.
	MaxLen int
}

func (c RegisterConfig) expectedSamples(cpIndex int64) int {
	if len(c.SampleSequence) > 0 {
		return c.SampleSequence[int(cpIndex)%len(c.SampleSequence)]
	}
	return 1
}

type registration struct {
	trackIndex int
	kind       Kind
	key        klv.Key
	cfg        RegisterConfig
}

// ElementBuffer accumulates one track's payload for one content package.
type ElementBuffer struct {
	TrackIndex int
	Kind       Kind
	Key        klv.Key
	data       []byte
	samples    int
	ready      bool
}

// Bytes returns the buffered payload.
func (e *ElementBuffer) Bytes() []byte { return e.data }

// Samples returns the number of samples written so far.
func (e *ElementBuffer) Samples() int { return e.samples }

// Ready reports whether this element has reached its expected sample
// count (or, for ConstantLen elements, received any bytes at all).
func (e *ElementBuffer) Ready() bool { return e.ready }

// ContentPackage is one emitted content package's worth of per-track
// element buffers.
type ContentPackage struct {
	Index    int64
	elements map[int]*ElementBuffer
}

func newContentPackage(index int64, regs map[int]*registration) *ContentPackage {
	cp := &ContentPackage{Index: index, elements: make(map[int]*ElementBuffer, len(regs))}
	for idx, r := range regs {
		cp.elements[idx] = &ElementBuffer{TrackIndex: idx, Kind: r.kind, Key: r.key}
	}
	return cp
}

// Elements returns this content package's element buffers ordered data →
// picture → sound, then by track index within a kind.
func (cp *ContentPackage) Elements() []*ElementBuffer {
	out := make([]*ElementBuffer, 0, len(cp.elements))
	for _, e := range cp.elements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].TrackIndex < out[j].TrackIndex
	})
	return out
}

// Manager is the deque of in-flight content packages plus per-track
// registration and fill-position state.
type Manager struct {
	regs  map[int]*registration
	order []int

	deque      []*ContentPackage
	headIndex  int64
	nextFresh  int64
	trackAt    map[int]int64 // track_index -> content package index currently being filled
	soundTotal map[int64]int // content package index -> total samples across ready sound elements, for cross-check
	pool       []*ContentPackage
}

// NewManager creates an empty content-package manager.
func NewManager() *Manager {
	return &Manager{
		regs:       make(map[int]*registration),
		trackAt:    make(map[int]int64),
		soundTotal: make(map[int64]int),
	}
}

// RegisterElement records one track's element configuration, to be called
// during preparation before any WriteSamples call.
func (m *Manager) RegisterElement(trackIndex int, kind Kind, key klv.Key, cfg RegisterConfig) error {
	if _, exists := m.regs[trackIndex]; exists {
		return &mxferrors.InconsistentError{Reason: "track already registered"}
	}
	m.regs[trackIndex] = &registration{trackIndex: trackIndex, kind: kind, key: key, cfg: cfg}
	m.order = append(m.order, trackIndex)
	m.trackAt[trackIndex] = 0
	return nil
}

func (m *Manager) packageAt(index int64) *ContentPackage {
	for int64(len(m.deque))+m.headIndex <= index {
		var cp *ContentPackage
		if len(m.pool) > 0 {
			cp = m.pool[len(m.pool)-1]
			m.pool = m.pool[:len(m.pool)-1]
			cp.Index = m.headIndex + int64(len(m.deque))
			for idx := range cp.elements {
				delete(cp.elements, idx)
			}
			for idx, r := range m.regs {
				cp.elements[idx] = &ElementBuffer{TrackIndex: idx, Kind: r.kind, Key: r.key}
			}
		} else {
			cp = newContentPackage(m.headIndex+int64(len(m.deque)), m.regs)
		}
		m.deque = append(m.deque, cp)
	}
	return m.deque[index-m.headIndex]
}

// WriteSamples fills trackIndex's element in its currently-open content
// package with data, advancing that track's fill cursor to the next
// content package once the element becomes ready.
func (m *Manager) WriteSamples(trackIndex int, data []byte, numSamples int) error {
	reg, ok := m.regs[trackIndex]
	if !ok {
		return &mxferrors.InconsistentError{Reason: "write_samples on unregistered track"}
	}
	cpIndex := m.trackAt[trackIndex]
	cp := m.packageAt(cpIndex)
	eb := cp.elements[trackIndex]
	if eb.ready {
		return &mxferrors.InconsistentError{Reason: "write_samples on an already-ready element"}
	}
	eb.data = append(eb.data, data...)
	eb.samples += numSamples

	ready := reg.cfg.ConstantLen
	if !ready {
		ready = eb.samples >= reg.cfg.expectedSamples(cpIndex)
	}
	if !ready {
		return nil
	}
	eb.ready = true

	if reg.kind == KindSound {
		if total, seen := m.soundTotal[cpIndex]; seen {
			if total != eb.samples {
				return &mxferrors.InconsistentError{Reason: "sound elements disagree on sample count within a content package"}
			}
		} else {
			m.soundTotal[cpIndex] = eb.samples
		}
	}

	m.trackAt[trackIndex] = cpIndex + 1
	return nil
}

// HaveContentPackage reports whether every registered element of the head
// record is ready.
func (m *Manager) HaveContentPackage() bool {
	if len(m.deque) == 0 {
		return false
	}
	head := m.deque[0]
	for idx := range m.regs {
		eb, ok := head.elements[idx]
		if !ok || !eb.ready {
			return false
		}
	}
	return true
}

// WriteNextContentPackage emits the head record, advances position, and
// returns the freed record to the pool.
func (m *Manager) WriteNextContentPackage() (*ContentPackage, error) {
	if !m.HaveContentPackage() {
		return nil, &mxferrors.InconsistentError{Reason: "write_next_content_package called before the head record is ready"}
	}
	cp := m.deque[0]
	m.deque = m.deque[1:]
	delete(m.soundTotal, m.headIndex)
	m.headIndex++

	out := &ContentPackage{Index: cp.Index, elements: cp.elements}
	m.pool = append(m.pool, cp)
	return out, nil
}

// ReservedSize returns the KAG-aligned reserved payload size for a
// fixed-element-size (CBE) track given its MaxLen, so a caller can
// pre-compute the element's overall KLV size and pad with a fill KLV
// within the reservation when the actual payload is smaller.
func ReservedSize(cfg RegisterConfig, keyLen, llenWidth int, kagAlign func(int64) int64) int64 {
	if cfg.MaxLen == 0 {
		return 0
	}
	raw := int64(keyLen + llenWidth + cfg.MaxLen)
	return kagAlign(raw)
}
