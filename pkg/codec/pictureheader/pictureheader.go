// Package pictureheader parses just enough of JPEG 2000, VC-3 (DNxHD),
// and ProRes (RDD-36) frame headers to fill in the corresponding
// file-descriptor fields and compute sample sizes. Each of these codecs
// is intra-only and header-stamped per frame, so there is no GOP state
// to track; each parser is a fixed-field big-endian read off a byte
// slice.
package pictureheader

import (
	"encoding/binary"

	"mxf/pkg/codec"
	"mxf/pkg/mxferrors"
)

// Family identifies which header format a frame carries.
type Family int

const (
	FamilyJPEG2000 Family = iota
	FamilyVC3
	FamilyProRes
)

// Descriptor is the subset of file-descriptor fields this helper can
// derive directly from a frame's header.
type Descriptor struct {
	Family        Family
	StoredWidth   int
	StoredHeight  int
	ComponentBits int
	SampleSize    int
}

var (
	jp2Marker = []byte{0xFF, 0x4F, 0xFF, 0x51}
	proResTag = []byte{'i', 'c', 'p', 'f'}
)

// ParseJPEG2000 reads a codestream's SIZ marker segment (following the
// SOC/SIZ pair) to recover image dimensions and component bit depth.
func ParseJPEG2000(data []byte) (Descriptor, error) {
	if len(data) < 4 || data[0] != jp2Marker[0] || data[1] != jp2Marker[1] || data[2] != jp2Marker[2] || data[3] != jp2Marker[3] {
		return Descriptor{}, &mxferrors.InconsistentError{Reason: "jpeg2000 frame missing SOC/SIZ marker"}
	}
	if len(data) < 4+2+2+16+1 {
		return Descriptor{}, &mxferrors.InconsistentError{Reason: "jpeg2000 SIZ segment truncated"}
	}
	pos := 4
	pos += 2 + 2 // Lsiz, Rsiz
	xsiz := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	ysiz := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	pos += 8 // XOsiz, YOsiz
	pos += 8 // XTsiz, YTsiz
	pos += 8 // XTOsiz, YTOsiz
	if pos+1 > len(data) {
		return Descriptor{}, &mxferrors.InconsistentError{Reason: "jpeg2000 SIZ segment missing component count"}
	}
	pos += 2 // Csiz
	if pos+1 > len(data) {
		return Descriptor{}, &mxferrors.InconsistentError{Reason: "jpeg2000 SIZ segment missing Ssiz"}
	}
	ssiz := data[pos]
	bits := int(ssiz&0x7F) + 1

	return Descriptor{
		Family:        FamilyJPEG2000,
		StoredWidth:   int(xsiz),
		StoredHeight:  int(ysiz),
		ComponentBits: bits,
		SampleSize:    len(data),
	}, nil
}

// ParseVC3 reads a VC-3 (DNxHD) frame header to recover dimensions and
// bit depth. The header layout follows SMPTE VC-3's fixed 0x80-byte
// frame header; only the fields this helper needs are read.
func ParseVC3(data []byte) (Descriptor, error) {
	if len(data) < 0x2C {
		return Descriptor{}, &mxferrors.InconsistentError{Reason: "vc3 frame header truncated"}
	}
	if data[0] != 0x00 || data[1] != 0x00 || data[2] != 0x02 || data[3] != 0x80 {
		return Descriptor{}, &mxferrors.InconsistentError{Reason: "vc3 frame missing sync word"}
	}
	height := int(binary.BigEndian.Uint16(data[0x18:0x1A])) & 0x7FFF
	width := int(binary.BigEndian.Uint16(data[0x1A:0x1C])) & 0x7FFF
	bitDepthFlag := data[0x21] >> 1 & 0x3
	bits := 8
	switch bitDepthFlag {
	case 1:
		bits = 10
	case 2:
		bits = 12
	}
	return Descriptor{
		Family:        FamilyVC3,
		StoredWidth:   width,
		StoredHeight:  height,
		ComponentBits: bits,
		SampleSize:    len(data),
	}, nil
}

// ParseProRes reads a ProRes (RDD-36) frame header: a big-endian frame
// size (bytes 0-3), the "icpf" frame identifier (bytes 4-7), then the
// big-endian width and height (bytes 8-11) and the chroma/bit-depth flags
// byte (byte 12). No header-size field is read or skipped.
func ParseProRes(data []byte) (Descriptor, error) {
	if len(data) < 20 {
		return Descriptor{}, &mxferrors.InconsistentError{Reason: "prores frame header truncated"}
	}
	if data[4] != proResTag[0] || data[5] != proResTag[1] || data[6] != proResTag[2] || data[7] != proResTag[3] {
		return Descriptor{}, &mxferrors.InconsistentError{Reason: "prores frame missing icpf identifier"}
	}
	width := int(binary.BigEndian.Uint16(data[8:10]))
	height := int(binary.BigEndian.Uint16(data[10:12]))
	chromaAndBits := data[12]
	bits := 10
	if chromaAndBits&0x0F == 2 {
		bits = 12
	}
	return Descriptor{
		Family:        FamilyProRes,
		StoredWidth:   width,
		StoredHeight:  height,
		ComponentBits: bits,
		SampleSize:    len(data),
	}, nil
}

// Analyser adapts one of the three header parsers to the codec.Analyser
// interface, so the index engine can treat them like any other
// intra-only picture codec.
type Analyser struct {
	Family Family
}

// NewAnalyser creates an analyser for one header family.
func NewAnalyser(family Family) *Analyser { return &Analyser{Family: family} }

// Reset is a no-op: every frame is self-contained.
func (a *Analyser) Reset() {}

// AnalyseFrame parses the frame's header and reports it as an
// intra-only reference picture.
func (a *Analyser) AnalyseFrame(data []byte) (codec.FrameInfo, error) {
	var err error
	switch a.Family {
	case FamilyJPEG2000:
		_, err = ParseJPEG2000(data)
	case FamilyVC3:
		_, err = ParseVC3(data)
	case FamilyProRes:
		_, err = ParseProRes(data)
	}
	if err != nil {
		return codec.FrameInfo{}, err
	}
	return codec.FrameInfo{FrameType: codec.FrameTypeI, Reference: true, SequenceHeader: true, HaveTemporalOffset: true}, nil
}
