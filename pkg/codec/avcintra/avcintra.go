// Package avcintra maintains a library of known per-sample AVC-Intra
// sequence/picture parameter-set prototypes indexed by (essence_type,
// sample_rate), detects common Avid variants by comparing rbsp
// stop-bit placement, and supplies missing SPS/PPS headers when a frame
// arrives without them. NAL scanning walks Annex-B start codes and reads
// SPS fields with an Exp-Golomb bit reader.
package avcintra

import (
	"bytes"

	"github.com/icza/bitio"

	"mxf/pkg/codec"
	"mxf/pkg/mxferrors"
)

const (
	nalTypeMask = 0x1F
	nalTypeSPS  = 7
	nalTypePPS  = 8
	nalTypeIDR  = 5
)

// Prototype is one known per-sample SPS/PPS pair for a given essence
// type and sample rate.
type Prototype struct {
	EssenceType string
	SampleRate  int64
	SPS         []byte
	PPS         []byte
}

type protoKey struct {
	essenceType string
	sampleRate  int64
}

// Library holds registered prototypes, keyed by (essence_type,
// sample_rate).
type Library struct {
	protos map[protoKey]Prototype
}

// NewLibrary creates an empty prototype library.
func NewLibrary() *Library {
	return &Library{protos: make(map[protoKey]Prototype)}
}

// Register adds or replaces a known prototype.
func (l *Library) Register(p Prototype) {
	l.protos[protoKey{p.EssenceType, p.SampleRate}] = p
}

// Lookup finds a registered prototype for the given essence type and
// sample rate.
func (l *Library) Lookup(essenceType string, sampleRate int64) (Prototype, bool) {
	p, ok := l.protos[protoKey{essenceType, sampleRate}]
	return p, ok
}

// ScanNALUnits splits an Annex-B byte stream into its NAL unit payloads
// (start codes removed).
func ScanNALUnits(data []byte) [][]byte {
	var starts []int
	for i := 0; i+2 < len(data); i++ {
		if data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			starts = append(starts, i+3)
		}
	}
	var units [][]byte
	for i, s := range starts {
		end := len(data)
		if i+1 < len(starts) {
			end = starts[i+1] - 3
		}
		if s < end {
			units = append(units, data[s:end])
		}
	}
	return units
}

// NALType returns a NAL unit's nal_unit_type.
func NALType(unit []byte) byte {
	if len(unit) == 0 {
		return 0
	}
	return unit[0] & nalTypeMask
}

// stopBitOffset locates the rbsp_trailing_bits marker (the final bit set
// to 1 followed by zero padding to the byte boundary) and returns its bit
// offset from the end of the payload. Avid's AVC-Intra variants are
// distinguished by where this stop bit falls relative to stock encoders.
func stopBitOffset(rbsp []byte) int {
	for i := len(rbsp) - 1; i >= 0; i-- {
		b := rbsp[i]
		if b == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if b&(1<<uint(bit)) != 0 {
				return (len(rbsp)-1-i)*8 + bit
			}
		}
	}
	return -1
}

// DetectVariant compares a frame's SPS stop-bit placement against a
// registered prototype's, returning true when they match (i.e. the frame
// was produced by the same Avid variant as the prototype).
func DetectVariant(frameSPS []byte, prototypeSPS []byte) bool {
	return stopBitOffset(frameSPS) == stopBitOffset(prototypeSPS)
}

// Analyser inspects AVC-Intra frames for SPS/PPS presence and supplies a
// registered prototype's headers when a frame arrives without them.
type Analyser struct {
	Library *Library
	// EssenceType and SampleRate select which prototype to consult when
	// headers must be supplied.
	EssenceType string
	SampleRate  int64
}

// NewAnalyser creates an analyser bound to one essence type/sample rate.
func NewAnalyser(lib *Library, essenceType string, sampleRate int64) *Analyser {
	return &Analyser{Library: lib, EssenceType: essenceType, SampleRate: sampleRate}
}

// Reset is a no-op: each AVC-Intra frame carries its own headers, there
// is no cross-frame GOP state.
func (a *Analyser) Reset() {}

// AnalyseFrame reports whether the frame carries its own SPS and marks
// it as an IDR reference picture, which AVC-Intra always is.
func (a *Analyser) AnalyseFrame(data []byte) (codec.FrameInfo, error) {
	units := ScanNALUnits(data)
	if len(units) == 0 {
		return codec.FrameInfo{}, &mxferrors.InconsistentError{Reason: "avcintra frame has no NAL units"}
	}
	info := codec.FrameInfo{FrameType: codec.FrameTypeI, Reference: true, HaveTemporalOffset: true}
	haveSlice := false
	for _, u := range units {
		switch NALType(u) {
		case nalTypeSPS:
			info.SequenceHeader = true
		case nalTypeIDR:
			haveSlice = true
		}
	}
	if !haveSlice {
		return codec.FrameInfo{}, &mxferrors.InconsistentError{Reason: "avcintra frame has no IDR slice"}
	}
	return info, nil
}

// SupplyHeaders prepends the registered prototype's SPS and PPS NAL
// units (with Annex B start codes) to frame when frame does not already
// carry its own SPS/PPS.
func (a *Analyser) SupplyHeaders(frame []byte) ([]byte, error) {
	units := ScanNALUnits(frame)
	for _, u := range units {
		if NALType(u) == nalTypeSPS {
			return frame, nil
		}
	}
	proto, ok := a.Library.Lookup(a.EssenceType, a.SampleRate)
	if !ok {
		return nil, &mxferrors.UnsupportedError{Reason: "no avcintra prototype registered for this essence type and sample rate"}
	}
	startCode := []byte{0, 0, 0, 1}
	var out []byte
	out = append(out, startCode...)
	out = append(out, proto.SPS...)
	out = append(out, startCode...)
	out = append(out, proto.PPS...)
	out = append(out, frame...)
	return out, nil
}

// ParseSPSProfile reads just enough of an SPS RBSP to confirm it parses
// as a sane bitstream, returning the profile and level indications; used
// when validating a newly-registered prototype and by the h264dump tool.
func ParseSPSProfile(rbsp []byte) (profileIDC int, levelIDC int, err error) {
	if len(rbsp) < 3 {
		return 0, 0, &mxferrors.InconsistentError{Reason: "avcintra sps too short"}
	}
	br := bitio.NewReader(bytes.NewReader(rbsp))
	profile, err := br.ReadBits(8)
	if err != nil {
		return 0, 0, err
	}
	if _, err := br.ReadBits(8); err != nil { // constraint flags + reserved
		return 0, 0, err
	}
	level, err := br.ReadBits(8)
	if err != nil {
		return 0, 0, err
	}
	return int(profile), int(level), nil
}
