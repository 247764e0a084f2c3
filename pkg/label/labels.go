// Package label is the canonical Universal Label registry: essence
// container labels, picture/sound coding labels, operational patterns,
// data-definition labels, and the predicates used to classify them. It is
// pure data plus classifier functions, mirroring the fixed [4]byte
// BoxType + Type() constant-table pattern this codebase used for ISOBMFF
// boxes, generalised here to 16-byte Universal Labels.
package label

import "mxf/pkg/klv"

// UL is a Universal Label. It is exactly klv.Key; the distinct name
// documents intent at call sites that only ever deal in labels, not
// arbitrary set keys.
type UL = klv.Key

func ul(b ...byte) UL {
	var k UL
	copy(k[:], b)
	return k
}

// Operational pattern labels.
var (
	OP1a   = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x02, 0x01, 0x01, 0x01, 0x01, 0x00)
	OP1b   = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x02, 0x01, 0x01, 0x01, 0x02, 0x00)
	OPAtom = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x02, 0x01, 0x10, 0x01, 0x01, 0x00)
)

// Essence-container family, orthogonal to the exact codec.
type Family uint8

// Families.
const (
	FamilyUnknown Family = iota
	FamilyPicture
	FamilySound
	FamilyData
)

// Wrapping describes how edit units are packaged into KLVs.
type Wrapping uint8

// Wrappings.
const (
	WrappingUnknown Wrapping = iota
	WrappingFrame
	WrappingClip
	WrappingCustom
)

type ecEntry struct {
	ul       UL
	name     string
	family   Family
	wrapping Wrapping
}

// Essence container labels. Byte 14 conventionally distinguishes
// frame-wrapped (0x01-0x0F range used here as 0x01/0x02) from
// clip-wrapped (0x02) within a family in real registries; this table
// treats that distinction as data, not as something callers re-derive.
var (
	ECUncompressedPicture = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x01, 0x01, 0x00)
	ECDVBased25_525_60    = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x02, 0x40, 0x00)
	ECDVBased25_625_50    = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x02, 0x41, 0x00)
	ECDVBased50           = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x02, 0x50, 0x00)
	ECDVBased100          = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x02, 0x60, 0x00)
	ECD10_30              = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x04, 0x01, 0x00)
	ECD10_40              = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x04, 0x02, 0x00)
	ECD10_50              = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x04, 0x03, 0x00)
	ECMPEG2LG422PHL       = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x05, 0x05, 0x00)
	ECMPEG2LGMPHL         = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x05, 0x01, 0x00)
	ECAVCIntra50          = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x07, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x10, 0x60, 0x01)
	ECAVCIntra100         = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x07, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x10, 0x60, 0x02)
	ECAVCHighProfile      = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x0A, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x11, 0x01, 0x00)
	ECVC2                 = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x0A, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x1B, 0x01, 0x00)
	ECVC3DNxHD            = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x0A, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x1C, 0x01, 0x00)
	ECJPEG2000            = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x09, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x0C, 0x01, 0x00)
	ECProRes422           = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x0A, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x1D, 0x01, 0x00)
	ECProRes4444          = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x0A, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x1D, 0x02, 0x00)
	ECRDD9MPEG2           = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x08, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x1E, 0x01, 0x00)
	ECBWFFrameWrapped     = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x06, 0x01, 0x00)
	ECBWFClipWrapped      = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x06, 0x02, 0x00)
	ECAES3FrameWrapped    = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x07, 0x01, 0x00)
	ECAlawFrameWrapped    = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01, 0x02, 0x08, 0x01, 0x00)
)

var ecTable = []ecEntry{
	{ECUncompressedPicture, "Uncompressed Picture", FamilyPicture, WrappingFrame},
	{ECDVBased25_525_60, "DV Based 25Mbps 525/60", FamilyPicture, WrappingFrame},
	{ECDVBased25_625_50, "DV Based 25Mbps 625/50", FamilyPicture, WrappingFrame},
	{ECDVBased50, "DV Based 50Mbps", FamilyPicture, WrappingFrame},
	{ECDVBased100, "DV Based 100Mbps", FamilyPicture, WrappingFrame},
	{ECD10_30, "D-10 30Mbps (IMX30)", FamilyPicture, WrappingFrame},
	{ECD10_40, "D-10 40Mbps (IMX40)", FamilyPicture, WrappingFrame},
	{ECD10_50, "D-10 50Mbps (IMX50)", FamilyPicture, WrappingFrame},
	{ECMPEG2LG422PHL, "MPEG-2 Long GOP 422P@HL", FamilyPicture, WrappingFrame},
	{ECMPEG2LGMPHL, "MPEG-2 Long GOP MP@HL", FamilyPicture, WrappingFrame},
	{ECAVCIntra50, "AVC-Intra 50", FamilyPicture, WrappingFrame},
	{ECAVCIntra100, "AVC-Intra 100", FamilyPicture, WrappingFrame},
	{ECAVCHighProfile, "AVC High Profile", FamilyPicture, WrappingFrame},
	{ECVC2, "VC-2", FamilyPicture, WrappingFrame},
	{ECVC3DNxHD, "VC-3 / DNxHD", FamilyPicture, WrappingFrame},
	{ECJPEG2000, "JPEG 2000 (J2C)", FamilyPicture, WrappingFrame},
	{ECProRes422, "Apple ProRes 422", FamilyPicture, WrappingFrame},
	{ECProRes4444, "Apple ProRes 4444", FamilyPicture, WrappingFrame},
	{ECRDD9MPEG2, "RDD-9 MPEG-2", FamilyPicture, WrappingFrame},
	{ECBWFFrameWrapped, "BWF/PCM frame-wrapped", FamilySound, WrappingFrame},
	{ECBWFClipWrapped, "BWF/PCM clip-wrapped", FamilySound, WrappingClip},
	{ECAES3FrameWrapped, "AES-3 frame-wrapped", FamilySound, WrappingFrame},
	{ECAlawFrameWrapped, "A-law frame-wrapped", FamilySound, WrappingFrame},
}

// Lookup returns the registry entry for ul, comparing modulo the registry
// version octet (byte 7), and whether it was found.
func Lookup(u UL) (name string, family Family, wrapping Wrapping, ok bool) {
	for _, e := range ecTable {
		if e.ul.EqualModRegistryVersion(u) {
			return e.name, e.family, e.wrapping, true
		}
	}
	return "", FamilyUnknown, WrappingUnknown, false
}

// ClassifyEssenceContainer reduces an essence container label to the
// (Family, Wrapping) pair that pkg/descriptor and pkg/contentpackage act
// on, without callers re-deriving it from raw label bytes.
func ClassifyEssenceContainer(u UL) (Family, Wrapping) {
	_, family, wrapping, _ := Lookup(u)
	return family, wrapping
}

// IsGenericContainerLabel reports whether u is one of the generic
// container essence-container labels in the registry (as opposed to an
// operational pattern or data-definition label).
func IsGenericContainerLabel(u UL) bool {
	_, _, _, ok := Lookup(u)
	return ok
}

// IsMPEGVideoEC reports whether u is an MPEG-2 Long GOP essence container.
func IsMPEGVideoEC(u UL) bool {
	return u.EqualModRegistryVersion(ECMPEG2LG422PHL) || u.EqualModRegistryVersion(ECMPEG2LGMPHL) ||
		u.EqualModRegistryVersion(ECRDD9MPEG2)
}

// IsAVCEC reports whether u is an AVC-Intra or AVC high-profile container.
func IsAVCEC(u UL) bool {
	return u.EqualModRegistryVersion(ECAVCIntra50) || u.EqualModRegistryVersion(ECAVCIntra100) ||
		u.EqualModRegistryVersion(ECAVCHighProfile)
}

// IsJPEG2000EC reports whether u is the J2C essence container.
func IsJPEG2000EC(u UL) bool { return u.EqualModRegistryVersion(ECJPEG2000) }

// IsVC2EC reports whether u is the VC-2 essence container.
func IsVC2EC(u UL) bool { return u.EqualModRegistryVersion(ECVC2) }

// IsVC3EC reports whether u is the VC-3/DNxHD essence container.
func IsVC3EC(u UL) bool { return u.EqualModRegistryVersion(ECVC3DNxHD) }

// IsProResEC reports whether u is a ProRes essence container.
func IsProResEC(u UL) bool {
	return u.EqualModRegistryVersion(ECProRes422) || u.EqualModRegistryVersion(ECProRes4444)
}

// IsUncompressedEC reports whether u is the uncompressed picture
// essence container.
func IsUncompressedEC(u UL) bool { return u.EqualModRegistryVersion(ECUncompressedPicture) }

// IsDVEC reports whether u is any DV-based essence container.
func IsDVEC(u UL) bool {
	return u.EqualModRegistryVersion(ECDVBased25_525_60) || u.EqualModRegistryVersion(ECDVBased25_625_50) ||
		u.EqualModRegistryVersion(ECDVBased50) || u.EqualModRegistryVersion(ECDVBased100)
}

// IsD10EC reports whether u is a D-10 (IMX) essence container.
func IsD10EC(u UL) bool {
	return u.EqualModRegistryVersion(ECD10_30) || u.EqualModRegistryVersion(ECD10_40) ||
		u.EqualModRegistryVersion(ECD10_50)
}

// IsPCMEC reports whether u is a PCM/BWF essence container, frame- or
// clip-wrapped.
func IsPCMEC(u UL) bool {
	return u.EqualModRegistryVersion(ECBWFFrameWrapped) || u.EqualModRegistryVersion(ECBWFClipWrapped)
}

// IsAES3EC reports whether u is the AES-3 essence container.
func IsAES3EC(u UL) bool { return u.EqualModRegistryVersion(ECAES3FrameWrapped) }

// IsAlawEC reports whether u is the A-law essence container.
func IsAlawEC(u UL) bool { return u.EqualModRegistryVersion(ECAlawFrameWrapped) }
