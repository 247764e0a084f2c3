package metadata

import "mxf/pkg/klv"

// ClassUL identifies the class (set type) of a header-metadata set.
type ClassUL = klv.Key

func cul(b ...byte) ClassUL {
	var k ClassUL
	copy(k[:], b)
	return k
}

// Well-known item ULs, shared by every class.
var (
	ItemInstanceUID = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x15, 0x02, 0x00, 0x00, 0x00, 0x00) // 3C0A
)

// Item ULs for the package/track/component graph (Preface through
// EssenceContainerData), shared by the writer that builds this graph and
// the reader that walks it back.
var (
	ItemContentStorage       = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x04, 0x06, 0x01, 0x00, 0x00)
	ItemPackages             = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x04, 0x01, 0x01, 0x00, 0x00)
	ItemEssenceContainerData = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x04, 0x01, 0x02, 0x00, 0x00)
	ItemPackageTracks        = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x04, 0x06, 0x03, 0x00, 0x00)
	ItemTrackID              = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x07, 0x01, 0x02, 0x00, 0x00, 0x00)
	ItemTrackNumber          = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x01, 0x01, 0x07, 0x01, 0x01, 0x00, 0x00, 0x00)
	ItemEditRate             = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x01, 0x03, 0x01, 0x01, 0x00, 0x00, 0x00)
	ItemOrigin               = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x07, 0x02, 0x01, 0x03, 0x01, 0x00, 0x00, 0x00)
	ItemSequence             = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x02, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00)
	ItemDataDefinition       = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x01, 0x03, 0x01, 0x00, 0x00, 0x00, 0x00)
	ItemDuration             = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x07, 0x02, 0x02, 0x01, 0x01, 0x03, 0x00, 0x00)
	ItemSourceClipStartPos   = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x07, 0x02, 0x01, 0x03, 0x03, 0x00, 0x00, 0x00)
	ItemSourceClipSourceID   = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x03, 0x01, 0x00, 0x00, 0x00)
	ItemSourceClipSourceTrack = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x03, 0x02, 0x00, 0x00, 0x00)
	ItemDescriptor           = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x04, 0x02, 0x03, 0x00, 0x00)
	ItemEssenceDataLinkedPkg = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x04, 0x01, 0x03, 0x00, 0x00)
	ItemEssenceDataBodySID   = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x04, 0x01, 0x04, 0x00, 0x00)
	ItemEssenceDataIndexSID  = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x04, 0x01, 0x06, 0x00, 0x00)
	ItemSubDescriptors       = cul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x06, 0x01, 0x01, 0x04, 0x02, 0x06, 0x00, 0x00)
)

// Class ULs for the package/track/component graph.
var (
	ClassPreface              = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x2F, 0x00)
	ClassIdentification       = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x30, 0x00)
	ClassContentStorage       = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x18, 0x00)
	ClassEssenceContainerData = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x23, 0x00)
	ClassMaterialPackage      = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x36, 0x00)
	ClassSourcePackage        = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x37, 0x00)
	ClassTrack                = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x3B, 0x00)
	ClassSequence             = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x0F, 0x00)
	ClassSourceClip           = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x11, 0x00)
	ClassTimecodeComponent    = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x14, 0x00)
	ClassFiller               = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x09, 0x00)
	ClassDMSegment            = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x41, 0x00)
	ClassNestedScope          = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x0B, 0x00)
	ClassEssenceData          = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x23, 0x01)
	ClassFileDescriptor       = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x25, 0x00)
	ClassMultipleDescriptor   = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x44, 0x00)
	ClassCDCIDescriptor       = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x28, 0x00)
	ClassRGBADescriptor       = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x29, 0x00)
	ClassWaveAudioDescriptor  = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x48, 0x00)
	ClassGenericSoundDescriptor = cul(0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x42, 0x00)
)

// ClassName returns a human-readable name for well-known classes, or
// "Unknown" otherwise. Used only for diagnostics.
func ClassName(c ClassUL) string {
	switch c {
	case ClassPreface:
		return "Preface"
	case ClassIdentification:
		return "Identification"
	case ClassContentStorage:
		return "ContentStorage"
	case ClassEssenceContainerData:
		return "EssenceContainerData"
	case ClassMaterialPackage:
		return "MaterialPackage"
	case ClassSourcePackage:
		return "SourcePackage"
	case ClassTrack:
		return "Track"
	case ClassSequence:
		return "Sequence"
	case ClassSourceClip:
		return "SourceClip"
	case ClassTimecodeComponent:
		return "TimecodeComponent"
	case ClassFiller:
		return "Filler"
	case ClassDMSegment:
		return "DMSegment"
	case ClassNestedScope:
		return "NestedScope"
	case ClassEssenceData:
		return "EssenceData"
	case ClassFileDescriptor:
		return "FileDescriptor"
	case ClassMultipleDescriptor:
		return "MultipleDescriptor"
	case ClassCDCIDescriptor:
		return "CDCIDescriptor"
	case ClassRGBADescriptor:
		return "RGBADescriptor"
	case ClassWaveAudioDescriptor:
		return "WaveAudioDescriptor"
	case ClassGenericSoundDescriptor:
		return "GenericSoundDescriptor"
	default:
		return "Unknown"
	}
}
