// Package mpeg2lg parses MPEG-2 Long-GOP sequence/GOP/picture headers,
// tracks GOP structure across frames, and computes the index engine's
// temporal_offset/key_frame_offset/flags fields, plus AS-10 shim
// conformance checks. Start-code scanning and Exp-Golomb-style bit
// primitives follow the same shape as an Annex-B NAL scanner and a
// bitio.Reader-based SPS parser, applied to MPEG-2 start codes instead of
// H.264 NAL units.
package mpeg2lg

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"

	"mxf/pkg/codec"
	"mxf/pkg/mxferrors"
)

const (
	sequenceHeaderCode = 0xB3
	groupStartCode     = 0xB8
	pictureStartCode   = 0x00
)

// Flags byte bits, matching SMPTE 377's index-entry flags octet.
const (
	flagReferenceFrame   = 0x80
	flagSequenceHeader   = 0x40
	flagPPrediction      = 0x22
	flagBBidirectional   = 0x33
	flagOffsetOutOfRange = 0x0b
)

// PictureCodingType values from the picture header.
const (
	codingTypeI = 1
	codingTypeP = 2
	codingTypeB = 3
)

// ShimConfig bounds the AS-10 (or similarly shimmed) conformance checks.
type ShimConfig struct {
	Name string
	// BitRate is the shim's required sequence-header bit rate in bit/s;
	// 0 disables the check. BitRateDelta is the allowed deviation in
	// either direction.
	BitRate               uint32
	BitRateDelta          uint32
	RequireClosedGOP      bool
	MaxGOPLength          int
	RequireProgressive    bool
	RequireSingleSequence bool
}

// Violation is one AS-10-style conformance failure.
type Violation struct {
	Rule   string
	Detail string
}

// gopWindowSize bounds the per-GOP display-to-coded reorder tracking,
// matching the index engine's 128-entry temporal-offset window.
const gopWindowSize = 128

// Analyser parses MPEG-2 LG frames and accumulates GOP state across
// AnalyseFrame calls.
type Analyser struct {
	LooseChecks bool
	Shim        *ShimConfig

	position             int64
	gopStartPosition     int64
	haveI                bool
	keyFramePosition     int64
	prevKeyFramePosition int64
	keyFrameTemporalRef  int
	gopLength            int
	gopClosed            bool
	sequenceSeen         bool
	bitRate              uint32
	progressive          bool
	violations           []Violation

	// gopOffsets is indexed by temporal reference (display position
	// within the GOP); slot tr holds the temporal offset of the index
	// entry at gopStartPosition+tr, filled as frames arrive in coded
	// order.
	gopOffsets   [gopWindowSize]int8
	gopOffsetSet [gopWindowSize]bool
}

// NewAnalyser creates an analyser. shim is nil to skip shim checks
// entirely.
func NewAnalyser(looseChecks bool, shim *ShimConfig) *Analyser {
	return &Analyser{LooseChecks: looseChecks, Shim: shim}
}

// Reset clears GOP tracking state.
func (a *Analyser) Reset() {
	a.position = 0
	a.gopStartPosition = 0
	a.haveI = false
	a.keyFramePosition = 0
	a.prevKeyFramePosition = 0
	a.keyFrameTemporalRef = 0
	a.gopLength = 0
	a.gopClosed = false
	a.sequenceSeen = false
	a.bitRate = 0
	a.progressive = false
	a.violations = nil
	a.gopOffsetSet = [gopWindowSize]bool{}
}

// Violations returns the AS-10-style conformance diagnostics/errors
// accumulated so far.
func (a *Analyser) Violations() []Violation { return a.violations }

func findStartCodes(data []byte) []int {
	var offsets []int
	for i := 0; i+3 < len(data); i++ {
		if data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

// AnalyseFrame parses one coded frame's sequence/GOP/picture headers.
func (a *Analyser) AnalyseFrame(data []byte) (codec.FrameInfo, error) {
	offsets := findStartCodes(data)
	if len(offsets) == 0 {
		return codec.FrameInfo{}, &mxferrors.InconsistentError{Reason: "mpeg2lg frame has no start code"}
	}

	var info codec.FrameInfo
	sawPicture := false
	haveGOPHeader := false

	for idx, off := range offsets {
		end := len(data)
		if idx+1 < len(offsets) {
			end = offsets[idx+1]
		}
		if off+3 >= len(data) {
			continue
		}
		code := data[off+3]
		payload := data[off+4 : min(end, len(data))]

		switch code {
		case sequenceHeaderCode:
			info.SequenceHeader = true
			a.sequenceSeen = true
			if err := a.parseSequenceHeader(payload); err != nil {
				return codec.FrameInfo{}, err
			}
		case groupStartCode:
			closed, err := parseGOPHeader(payload)
			if err != nil {
				return codec.FrameInfo{}, err
			}
			info.ClosedGOP = closed
			a.gopClosed = closed
			a.gopLength = 0
			haveGOPHeader = true
		case pictureStartCode:
			temporalRef, pictureType, err := parsePictureHeader(payload)
			if err != nil {
				return codec.FrameInfo{}, err
			}
			info.TemporalReference = temporalRef
			switch pictureType {
			case codingTypeI:
				info.FrameType = codec.FrameTypeI
			case codingTypeP:
				info.FrameType = codec.FrameTypeP
			case codingTypeB:
				info.FrameType = codec.FrameTypeB
			}
			sawPicture = true
		}
	}

	if !sawPicture {
		return codec.FrameInfo{}, &mxferrors.InconsistentError{Reason: "mpeg2lg frame has no picture header"}
	}

	info.Reference = info.FrameType != codec.FrameTypeB
	if err := a.fillOffsetsAndFlags(&info, haveGOPHeader); err != nil {
		return codec.FrameInfo{}, err
	}
	a.gopLength++

	if a.Shim != nil {
		a.checkShim(info)
	}

	return info, nil
}

// fillOffsetsAndFlags computes the frame's index fields from its coded
// position and temporal reference. The temporal offset of the entry at
// display slot tr is codedPos-tr, recorded as each frame arrives and read
// back by coded position: a frame's own entry may still be unresolved
// (HaveTemporalOffset false) and an earlier entry may resolve now
// (HavePrevTemporalOffset). key_frame_offset is the signed distance to
// the reference frame's index position; the leading B frames of an open
// GOP reference the previous GOP's key frame.
func (a *Analyser) fillOffsetsAndFlags(info *codec.FrameInfo, haveGOPHeader bool) error {
	if haveGOPHeader {
		info.GOPStart = true
		a.gopStartPosition = a.position
		a.gopOffsetSet = [gopWindowSize]bool{}
	}
	codedPos := a.position - a.gopStartPosition
	tr := int64(info.TemporalReference)
	if codedPos >= gopWindowSize || tr >= gopWindowSize {
		return &mxferrors.InconsistentError{Reason: "GOP exceeds the 128-entry temporal reorder window"}
	}

	if info.FrameType != codec.FrameTypeI && a.haveI {
		keyFramePos := a.keyFramePosition
		if !a.gopClosed && a.keyFramePosition+int64(a.keyFrameTemporalRef) >= a.position {
			keyFramePos = a.prevKeyFramePosition
		}
		info.KeyFrameOffset = clampOffset(keyFramePos - a.position)
	}

	a.gopOffsets[tr] = int8(codedPos - tr)
	a.gopOffsetSet[tr] = true

	if a.gopOffsetSet[codedPos] {
		info.TemporalOffset = a.gopOffsets[codedPos]
		info.HaveTemporalOffset = true
	}
	if tr < codedPos && a.gopOffsetSet[tr] {
		info.PrevTemporalOffset = a.gopOffsets[tr]
		info.PrevTemporalOffsetAt = a.gopStartPosition + tr
		info.HavePrevTemporalOffset = true
	}

	switch info.FrameType {
	case codec.FrameTypeI:
		info.Flags = flagReferenceFrame
	case codec.FrameTypeP:
		info.Flags = flagPPrediction | flagReferenceFrame
	case codec.FrameTypeB:
		info.Flags = flagBBidirectional
	}
	if info.SequenceHeader {
		info.Flags |= flagSequenceHeader
	}
	if int64(info.KeyFrameOffset)+a.position < 0 ||
		(info.HaveTemporalOffset && int64(info.TemporalOffset)+a.position < 0) {
		info.Flags |= flagOffsetOutOfRange
	}
	if !a.haveI && info.FrameType != codec.FrameTypeI {
		info.Flags = flagOffsetOutOfRange
	}

	if info.FrameType == codec.FrameTypeI {
		a.prevKeyFramePosition = a.keyFramePosition
		a.keyFramePosition = a.position
		a.keyFrameTemporalRef = info.TemporalReference
		a.haveI = true
	}
	a.position++
	return nil
}

func clampOffset(delta int64) int8 {
	if delta > 127 {
		return 127
	}
	if delta < -128 {
		return -128
	}
	return int8(delta)
}

func (a *Analyser) checkShim(info codec.FrameInfo) {
	shim := a.Shim
	if shim.RequireClosedGOP && !a.gopClosed {
		a.report("closed-gop", "GOP is not marked closed under a shim requiring closed GOPs")
	}
	if shim.MaxGOPLength > 0 && a.gopLength > shim.MaxGOPLength {
		a.report("max-gop", "GOP exceeds the shim's maximum length")
	}
	if shim.RequireSingleSequence && info.SequenceHeader && a.sequenceSeen && a.gopLength > 0 {
		a.report("single-sequence", "a repeated sequence header was found mid-stream under a shim requiring a single sequence")
	}
	if shim.BitRate > 0 && a.bitRate > 0 {
		diff := a.bitRate - shim.BitRate
		if a.bitRate < shim.BitRate {
			diff = shim.BitRate - a.bitRate
		}
		if diff > shim.BitRateDelta {
			a.report("bit-rate", fmt.Sprintf("bitrate %d is not equal (+/- %d) to required %d",
				a.bitRate, shim.BitRateDelta, shim.BitRate))
		}
	}
	if shim.RequireProgressive && !a.progressive {
		a.report("progressive", "stream is not progressive under a shim requiring progressive scan")
	}
}

func (a *Analyser) report(rule, detail string) {
	a.violations = append(a.violations, Violation{Rule: rule, Detail: detail})
}

// ShimError reports the accumulated violations as an error when
// looseChecks is false and at least one violation was recorded.
func (a *Analyser) ShimError() error {
	if a.LooseChecks || len(a.violations) == 0 {
		return nil
	}
	v := a.violations[0]
	if a.Shim == nil {
		return nil
	}
	return &mxferrors.ShimViolationError{Shim: a.Shim.Name, Reason: v.Rule + ": " + v.Detail}
}

func (a *Analyser) parseSequenceHeader(payload []byte) error {
	if len(payload) < 7 {
		return &mxferrors.InconsistentError{Reason: "mpeg2lg sequence header too short"}
	}
	br := bitio.NewReader(bytes.NewReader(payload))
	if _, err := br.ReadBits(12); err != nil { // horizontal_size_value
		return err
	}
	if _, err := br.ReadBits(12); err != nil { // vertical_size_value
		return err
	}
	if _, err := br.ReadBits(4); err != nil { // aspect_ratio_information
		return err
	}
	if _, err := br.ReadBits(4); err != nil { // frame_rate_code
		return err
	}
	bitRate, err := br.ReadBits(18)
	if err != nil {
		return err
	}
	a.bitRate = uint32(bitRate) * 400 // bit_rate is in units of 400 bit/s.
	a.progressive = true              // progressive_sequence lives in the sequence extension; assume progressive absent evidence otherwise.
	return nil
}

func parseGOPHeader(payload []byte) (closedGOP bool, err error) {
	if len(payload) < 4 {
		return false, &mxferrors.InconsistentError{Reason: "mpeg2lg GOP header too short"}
	}
	br := bitio.NewReader(bytes.NewReader(payload))
	if _, err := br.ReadBits(25); err != nil { // time_code
		return false, err
	}
	closed, err := br.ReadBits(1)
	if err != nil {
		return false, err
	}
	return closed == 1, nil
}

func parsePictureHeader(payload []byte) (temporalReference int, pictureCodingType int, err error) {
	if len(payload) < 2 {
		return 0, 0, &mxferrors.InconsistentError{Reason: "mpeg2lg picture header too short"}
	}
	br := bitio.NewReader(bytes.NewReader(payload))
	tr, err := br.ReadBits(10)
	if err != nil {
		return 0, 0, err
	}
	pct, err := br.ReadBits(3)
	if err != nil {
		return 0, 0, err
	}
	return int(tr), int(pct), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
