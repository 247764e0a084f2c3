// Package vc2 implements the two VC-2 writer modes: passthrough (the
// input is taken as-is, no parsing) and picture-only + complete-sequences
// (each edit unit must be a complete VC-2 sequence: a sequence header
// first, at least one picture data unit, and an end-of-sequence unit last). Parse-unit scanning
// walks VC-2's 4-byte "BBCD" parse-info prefix the way an Annex-B scanner
// walks 3-byte NAL start codes.
package vc2

import (
	"encoding/binary"

	"mxf/pkg/codec"
	"mxf/pkg/mxferrors"
)

// Mode selects how a VC-2 essence track is written.
type Mode int

const (
	ModePassthrough Mode = iota
	ModePictureOnlyCompleteSequences
)

// Parse codes this helper recognises, per the VC-2 (SMPTE ST 2042) parse
// info structure.
const (
	ParseCodeSequenceHeader     = 0x00
	ParseCodeEndOfSequence      = 0x10
	ParseCodeLowDelayPicture    = 0xC8
	ParseCodeHighQualityPicture = 0xE8
)

var parseInfoPrefix = [4]byte{'B', 'B', 'C', 'D'}

// ParseUnit is one VC-2 parse-info-delimited unit.
type ParseUnit struct {
	ParseCode byte
	Payload   []byte
}

// Analyser validates or passes through VC-2 edit units depending on Mode.
type Analyser struct {
	Mode Mode
}

// NewAnalyser creates an analyser for the given mode.
func NewAnalyser(mode Mode) *Analyser { return &Analyser{Mode: mode} }

// Reset is a no-op: VC-2 edit units are self-contained, there is no
// cross-frame state to clear.
func (a *Analyser) Reset() {}

// AnalyseFrame validates data as a complete VC-2 sequence under
// ModePictureOnlyCompleteSequences, or accepts it unconditionally under
// ModePassthrough.
func (a *Analyser) AnalyseFrame(data []byte) (codec.FrameInfo, error) {
	if a.Mode == ModePassthrough {
		return codec.FrameInfo{}, nil
	}
	units, err := ScanParseUnits(data)
	if err != nil {
		return codec.FrameInfo{}, err
	}
	if err := validateCompleteSequence(units); err != nil {
		return codec.FrameInfo{}, err
	}
	info := codec.FrameInfo{FrameType: codec.FrameTypeI, Reference: true, SequenceHeader: true, HaveTemporalOffset: true}
	return info, nil
}

// ScanParseUnits splits a VC-2 stream into its parse-info-delimited
// units, following each header's next_parse_offset.
func ScanParseUnits(data []byte) ([]ParseUnit, error) {
	var units []ParseUnit
	pos := 0
	for pos < len(data) {
		if pos+13 > len(data) {
			return nil, &mxferrors.InconsistentError{Reason: "vc2 parse info header truncated"}
		}
		if data[pos] != parseInfoPrefix[0] || data[pos+1] != parseInfoPrefix[1] ||
			data[pos+2] != parseInfoPrefix[2] || data[pos+3] != parseInfoPrefix[3] {
			return nil, &mxferrors.InconsistentError{Reason: "vc2 parse info prefix mismatch"}
		}
		parseCode := data[pos+4]
		nextOffset := binary.BigEndian.Uint32(data[pos+5 : pos+9])

		unitEnd := len(data)
		if nextOffset != 0 {
			unitEnd = pos + int(nextOffset)
			if unitEnd > len(data) || unitEnd < pos+13 {
				return nil, &mxferrors.InconsistentError{Reason: "vc2 next_parse_offset out of range"}
			}
		}
		units = append(units, ParseUnit{ParseCode: parseCode, Payload: data[pos+13 : unitEnd]})

		if nextOffset == 0 {
			break
		}
		pos = unitEnd
	}
	return units, nil
}

func validateCompleteSequence(units []ParseUnit) error {
	if len(units) < 3 {
		return &mxferrors.InconsistentError{Reason: "vc2 sequence is missing required units"}
	}
	if units[0].ParseCode != ParseCodeSequenceHeader {
		return &mxferrors.InconsistentError{Reason: "vc2 sequence does not begin with a sequence header"}
	}
	last := units[len(units)-1]
	if last.ParseCode != ParseCodeEndOfSequence {
		return &mxferrors.InconsistentError{Reason: "vc2 sequence does not end with end_of_sequence"}
	}
	havePicture := false
	for _, u := range units[1 : len(units)-1] {
		if u.ParseCode == ParseCodeLowDelayPicture || u.ParseCode == ParseCodeHighQualityPicture {
			havePicture = true
		}
	}
	if !havePicture {
		return &mxferrors.InconsistentError{Reason: "vc2 sequence has no picture data unit"}
	}
	return nil
}
