// Package descriptor translates codec bitstream attributes to and from
// MXF file-descriptor sets, and chooses the essence-container label and
// wrapping for each supported essence type.
package descriptor

import (
	"mxf/pkg/label"
	"mxf/pkg/metadata"
	"mxf/pkg/mxfconfig"
	"mxf/pkg/mxferrors"
)

// EssenceType enumerates the codec/profile combinations this engine
// recognises. Each variant disambiguates on the minimal set of
// descriptor properties documented against its row in essenceTable.
type EssenceType int

// Supported essence types.
const (
	EssenceUnknown EssenceType = iota
	EssenceUncompressedSD
	EssenceUncompressedHD
	EssenceDV25_525_60
	EssenceDV25_625_50
	EssenceDV50
	EssenceDV100
	EssenceD10_30
	EssenceD10_40
	EssenceD10_50
	EssenceMPEG2LG422PHL1080i
	EssenceMPEG2LG422PHL1080p
	EssenceMPEG2LG422PHL720p
	EssenceMPEG2LGMPHL
	EssenceAVCIntra50_1080i
	EssenceAVCIntra50_1080p
	EssenceAVCIntra50_720p
	EssenceAVCIntra100_1080i
	EssenceAVCIntra100_1080p
	EssenceAVCIntra100_720p
	EssenceAVCHighProfile
	EssenceVC2LowDelay
	EssenceVC2HighDelay
	EssenceVC3DNxHD
	EssenceJ2CBroadcast
	EssenceProRes422
	EssenceProRes422HQ
	EssenceProRes4444
	EssenceRDD9MPEG2
	EssencePCM
	EssenceAES3
	EssenceAlaw
)

// FrameLayout mirrors the MXF FrameLayoutType enumeration.
type FrameLayout uint8

// Frame layouts.
const (
	LayoutFullFrame FrameLayout = iota
	LayoutSeparateFields
	LayoutMixedFields
	LayoutSegmentedFrame
)

// Rational is a numerator/denominator pair (edit rate, aspect ratio, …).
type Rational struct {
	Num int32
	Den int32
}

// Descriptor is the tagged set of properties the engine moves between a
// codec analyser and an MXF file-descriptor set: common fields are
// hoisted here and variant-specific behaviour is a switch over
// EssenceType rather than a type hierarchy.
type Descriptor struct {
	EssenceType EssenceType

	SampleRate   Rational
	FrameLayout  FrameLayout
	Width        int
	Height       int
	AspectRatio  Rational
	ComponentDepth int
	HorizSubsampling int
	VertSubsampling  int

	ImageStartOffsetBytes int
	ImageEndOffsetBytes   int
	ImageAlignmentOffset  int

	AudioSamplingRate Rational
	Channels          int
	QuantizationBits  int
	BlockAlign        int

	AvidResolutionID int
}

type essenceRow struct {
	essenceType EssenceType
	ec          label.UL
	wrapping    label.Wrapping
	frameWrapped bool
	width, height int
	frameLayout   FrameLayout
	avidResolutionID int
}

var essenceTable = []essenceRow{
	{EssenceUncompressedSD, label.ECUncompressedPicture, label.WrappingFrame, true, 720, 486, LayoutSeparateFields, 0},
	{EssenceUncompressedHD, label.ECUncompressedPicture, label.WrappingFrame, true, 1920, 1080, LayoutSeparateFields, 0},
	{EssenceDV25_525_60, label.ECDVBased25_525_60, label.WrappingFrame, true, 720, 480, LayoutSeparateFields, 0},
	{EssenceDV25_625_50, label.ECDVBased25_625_50, label.WrappingFrame, true, 720, 576, LayoutSeparateFields, 0},
	{EssenceDV50, label.ECDVBased50, label.WrappingFrame, true, 720, 576, LayoutSeparateFields, 0},
	{EssenceDV100, label.ECDVBased100, label.WrappingFrame, true, 1280, 1080, LayoutSeparateFields, 0},
	{EssenceD10_30, label.ECD10_30, label.WrappingFrame, true, 720, 608, LayoutSeparateFields, 0},
	{EssenceD10_40, label.ECD10_40, label.WrappingFrame, true, 720, 608, LayoutSeparateFields, 0},
	{EssenceD10_50, label.ECD10_50, label.WrappingFrame, true, 720, 608, LayoutSeparateFields, 0},
	{EssenceMPEG2LG422PHL1080i, label.ECMPEG2LG422PHL, label.WrappingFrame, true, 1920, 1080, LayoutSeparateFields, 0},
	{EssenceMPEG2LG422PHL1080p, label.ECMPEG2LG422PHL, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceMPEG2LG422PHL720p, label.ECMPEG2LG422PHL, label.WrappingFrame, true, 1280, 720, LayoutFullFrame, 0},
	{EssenceMPEG2LGMPHL, label.ECMPEG2LGMPHL, label.WrappingFrame, true, 1920, 1080, LayoutSeparateFields, 0},
	{EssenceAVCIntra50_1080i, label.ECAVCIntra50, label.WrappingFrame, true, 1920, 1080, LayoutSeparateFields, 0},
	{EssenceAVCIntra50_1080p, label.ECAVCIntra50, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceAVCIntra50_720p, label.ECAVCIntra50, label.WrappingFrame, true, 1280, 720, LayoutFullFrame, 0},
	{EssenceAVCIntra100_1080i, label.ECAVCIntra100, label.WrappingFrame, true, 1920, 1080, LayoutSeparateFields, 0},
	{EssenceAVCIntra100_1080p, label.ECAVCIntra100, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceAVCIntra100_720p, label.ECAVCIntra100, label.WrappingFrame, true, 1280, 720, LayoutFullFrame, 0},
	{EssenceAVCHighProfile, label.ECAVCHighProfile, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceVC2LowDelay, label.ECVC2, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceVC2HighDelay, label.ECVC2, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceVC3DNxHD, label.ECVC3DNxHD, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 1237},
	{EssenceJ2CBroadcast, label.ECJPEG2000, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceProRes422, label.ECProRes422, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceProRes422HQ, label.ECProRes422, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceProRes4444, label.ECProRes4444, label.WrappingFrame, true, 1920, 1080, LayoutFullFrame, 0},
	{EssenceRDD9MPEG2, label.ECRDD9MPEG2, label.WrappingFrame, true, 1920, 1080, LayoutSeparateFields, 0},
	{EssencePCM, label.ECBWFFrameWrapped, label.WrappingFrame, true, 0, 0, LayoutFullFrame, 0},
	{EssenceAES3, label.ECAES3FrameWrapped, label.WrappingFrame, true, 0, 0, LayoutFullFrame, 0},
	{EssenceAlaw, label.ECAlawFrameWrapped, label.WrappingFrame, true, 0, 0, LayoutFullFrame, 0},
}

func rowFor(e EssenceType) (essenceRow, bool) {
	for _, r := range essenceTable {
		if r.essenceType == e {
			return r, true
		}
	}
	return essenceRow{}, false
}

// EssenceContainerUL returns the essence-container label for an essence
// type. Clip-wrapped PCM uses the clip-wrapped BWF label instead of the
// frame-wrapped default; flavour does not change the label chosen.
func EssenceContainerUL(e EssenceType, flavour mxfconfig.Flavour, clipWrapped bool) (label.UL, error) {
	row, ok := rowFor(e)
	if !ok {
		return label.UL{}, &mxferrors.UnsupportedError{Reason: "unknown essence type"}
	}
	if e == EssencePCM && clipWrapped {
		return label.ECBWFClipWrapped, nil
	}
	return row.ec, nil
}

// SampleSize returns the fixed byte size of one audio sample across all
// channels (BlockAlign, or channels × bytes per quantization step) for
// essence types with a constant sample size (PCM, A-law, AES-3), or 0 to
// indicate VBE (the caller must compute size per-frame from the codec
// analyser). It is not multiplied by the samples per edit unit.
func SampleSize(d Descriptor) int {
	switch d.EssenceType {
	case EssencePCM, EssenceAES3, EssenceAlaw:
		if d.BlockAlign > 0 {
			return d.BlockAlign
		}
		return d.Channels * ((d.QuantizationBits + 7) / 8)
	default:
		return 0
	}
}

// EditRate returns the descriptor's edit rate as (numerator, denominator).
func EditRate(d Descriptor) (int32, int32) {
	return d.SampleRate.Num, d.SampleRate.Den
}

// ImageStartOffset returns the number of leading bytes within a picture
// sample to skip (e.g. Avid alpha channel padding).
func ImageStartOffset(d Descriptor) int { return d.ImageStartOffsetBytes }

// ImageEndOffset returns the number of trailing bytes within a picture
// sample to discard. Per the Avid legacy-quirks open question, a non-zero
// ImageAlignmentOffset with ImageEndOffsetBytes unset is itself taken as
// evidence of a trailing offset equal to the alignment value, narrowly
// under Avid flavour only.
func ImageEndOffset(d Descriptor, flavour mxfconfig.Flavour) int {
	if d.ImageEndOffsetBytes != 0 {
		return d.ImageEndOffsetBytes
	}
	if flavour == mxfconfig.FlavourAvid && d.ImageAlignmentOffset != 0 {
		return d.ImageAlignmentOffset
	}
	return 0
}

// CreateFileDescriptor emits a new descriptor set populated from d,
// choosing CDCIDescriptor for picture essence and WaveAudioDescriptor /
// GenericSoundDescriptor for sound.
func CreateFileDescriptor(h *metadata.HeaderMetadata, d Descriptor) (*metadata.Set, error) {
	row, ok := rowFor(d.EssenceType)
	if !ok {
		return nil, &mxferrors.UnsupportedError{Reason: "unknown essence type"}
	}

	var class metadata.ClassUL
	switch {
	case row.ec == label.ECBWFFrameWrapped || row.ec == label.ECBWFClipWrapped:
		class = metadata.ClassWaveAudioDescriptor
	case row.ec == label.ECAES3FrameWrapped || row.ec == label.ECAlawFrameWrapped:
		class = metadata.ClassGenericSoundDescriptor
	default:
		class = metadata.ClassCDCIDescriptor
	}

	set := h.NewSet(class)
	if err := populateDescriptor(set, d, row); err != nil {
		return nil, err
	}
	return set, nil
}

// UpdateFileDescriptor re-populates an existing descriptor set after
// properties change (e.g. once a codec analyser has observed the first
// frame and can supply width/height the caller didn't know up front).
func UpdateFileDescriptor(set *metadata.Set, d Descriptor) error {
	row, ok := rowFor(d.EssenceType)
	if !ok {
		return &mxferrors.UnsupportedError{Reason: "unknown essence type"}
	}
	return populateDescriptor(set, d, row)
}

func populateDescriptor(set *metadata.Set, d Descriptor, row essenceRow) error {
	set.SetRational(itemSampleRate, d.SampleRate.Num, d.SampleRate.Den)
	set.SetRaw(itemEssenceContainer, row.ec[:])
	set.SetUint8(itemFrameLayout, uint8(d.FrameLayout))

	if row.width > 0 {
		set.SetUint32(itemStoredWidth, uint32(d.Width))
		set.SetUint32(itemStoredHeight, uint32(d.Height))
		set.SetRational(itemAspectRatio, d.AspectRatio.Num, d.AspectRatio.Den)
		set.SetUint8(itemComponentDepth, uint8(d.ComponentDepth))
		set.SetUint32(itemHorizSubsampling, uint32(d.HorizSubsampling))
		set.SetUint32(itemVertSubsampling, uint32(d.VertSubsampling))
		if d.ImageStartOffsetBytes != 0 {
			set.SetUint32(itemImageStartOffset, uint32(d.ImageStartOffsetBytes))
		}
		if d.ImageEndOffsetBytes != 0 {
			set.SetUint32(itemImageEndOffset, uint32(d.ImageEndOffsetBytes))
		}
		if d.ImageAlignmentOffset != 0 {
			set.SetUint32(itemImageAlignmentOffset, uint32(d.ImageAlignmentOffset))
		}
	} else {
		set.SetRational(itemAudioSamplingRate, d.AudioSamplingRate.Num, d.AudioSamplingRate.Den)
		set.SetUint32(itemChannelCount, uint32(d.Channels))
		set.SetUint32(itemQuantizationBits, uint32(d.QuantizationBits))
		set.SetUint32(itemBlockAlign, uint32(d.BlockAlign))
	}
	if d.AvidResolutionID != 0 {
		set.SetUint32(itemAvidResolutionID, uint32(d.AvidResolutionID))
	}
	return nil
}

// InferFromDescriptor is the inverse of CreateFileDescriptor: given an
// existing descriptor set, return the EssenceType it matches, or
// EssenceUnknown. The match is performed over the minimal set of
// properties that disambiguate a variant (essence-container label plus,
// where the label alone is ambiguous, width/height/frame-layout), exactly
// as the table-driven contract requires.
func InferFromDescriptor(set *metadata.Set) (EssenceType, error) {
	ecRaw, ok := set.GetRaw(itemEssenceContainer)
	if !ok || len(ecRaw) != 16 {
		return EssenceUnknown, &mxferrors.InconsistentError{Reason: "descriptor is missing essence container"}
	}
	var ec label.UL
	copy(ec[:], ecRaw)

	width, _ := set.GetUint32(itemStoredWidth)
	height, _ := set.GetUint32(itemStoredHeight)
	layout, _ := set.GetUint8(itemFrameLayout)

	var best EssenceType
	for _, row := range essenceTable {
		if !row.ec.EqualModRegistryVersion(ec) {
			continue
		}
		if row.width == 0 {
			return row.essenceType, nil // sound: label alone disambiguates.
		}
		if int(width) == row.width && int(height) == row.height && FrameLayout(layout) == row.frameLayout {
			return row.essenceType, nil
		}
		if best == EssenceUnknown {
			best = row.essenceType // fall back to a label-only match.
		}
	}
	if best != EssenceUnknown {
		return best, nil
	}
	return EssenceUnknown, nil
}

// DescriptorFromSet rebuilds a Descriptor from a file-descriptor set,
// inferring EssenceType via InferFromDescriptor and reading back every
// field populateDescriptor writes.
func DescriptorFromSet(set *metadata.Set) (Descriptor, error) {
	essenceType, err := InferFromDescriptor(set)
	if err != nil {
		return Descriptor{}, err
	}

	var d Descriptor
	d.EssenceType = essenceType
	d.SampleRate.Num, d.SampleRate.Den, _ = set.GetRational(itemSampleRate)
	layout, _ := set.GetUint8(itemFrameLayout)
	d.FrameLayout = FrameLayout(layout)

	if row, ok := rowFor(essenceType); ok && row.width > 0 {
		w, _ := set.GetUint32(itemStoredWidth)
		h, _ := set.GetUint32(itemStoredHeight)
		d.Width, d.Height = int(w), int(h)
		d.AspectRatio.Num, d.AspectRatio.Den, _ = set.GetRational(itemAspectRatio)
		depth, _ := set.GetUint8(itemComponentDepth)
		d.ComponentDepth = int(depth)
		horiz, _ := set.GetUint32(itemHorizSubsampling)
		vert, _ := set.GetUint32(itemVertSubsampling)
		d.HorizSubsampling, d.VertSubsampling = int(horiz), int(vert)
		start, _ := set.GetUint32(itemImageStartOffset)
		end, _ := set.GetUint32(itemImageEndOffset)
		align, _ := set.GetUint32(itemImageAlignmentOffset)
		d.ImageStartOffsetBytes, d.ImageEndOffsetBytes, d.ImageAlignmentOffset = int(start), int(end), int(align)
	} else {
		d.AudioSamplingRate.Num, d.AudioSamplingRate.Den, _ = set.GetRational(itemAudioSamplingRate)
		channels, _ := set.GetUint32(itemChannelCount)
		bits, _ := set.GetUint32(itemQuantizationBits)
		block, _ := set.GetUint32(itemBlockAlign)
		d.Channels, d.QuantizationBits, d.BlockAlign = int(channels), int(bits), int(block)
	}
	avid, _ := set.GetUint32(itemAvidResolutionID)
	d.AvidResolutionID = int(avid)
	return d, nil
}
