package label

// DDefEnum is the reduced tagged enum that mxf_get_ddef_enum collapses the
// many data-definition label variants (current and legacy) down to.
type DDefEnum uint8

// DDefEnum values.
const (
	DDefUnknown DDefEnum = iota
	DDefPicture
	DDefSound
	DDefTimecode
	DDefData
	DDefDescriptiveMetadata
)

func (d DDefEnum) String() string {
	switch d {
	case DDefPicture:
		return "Picture"
	case DDefSound:
		return "Sound"
	case DDefTimecode:
		return "Timecode"
	case DDefData:
		return "Data"
	case DDefDescriptiveMetadata:
		return "DescriptiveMetadata"
	default:
		return "Unknown"
	}
}

// Data-definition labels, current registry plus the legacy variants some
// older files still carry.
var (
	DDefPictureUL     = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x01, 0x01, 0x00, 0x00, 0x00)
	DDefSoundUL       = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x01, 0x02, 0x00, 0x00, 0x00)
	DDefTimecodeUL    = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x01, 0x03, 0x00, 0x00, 0x00)
	DDefDataUL        = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x01, 0x04, 0x00, 0x00, 0x00)
	DDefDescMetaUL    = ul(0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x10, 0x00, 0x00, 0x00, 0x00)
	legacyPictureUL   = ul(0x80, 0x7D, 0x00, 0x60, 0x01, 0x02, 0x01, 0x01, 0x01, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00)
	legacySoundUL     = ul(0x80, 0x7D, 0x00, 0x60, 0x01, 0x02, 0x01, 0x01, 0x01, 0x01, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00)
	legacyTimecodeUL  = ul(0x80, 0x7D, 0x00, 0x60, 0x01, 0x02, 0x01, 0x01, 0x01, 0x01, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00)
)

// GetDDefEnum reduces a data-definition label to its DDefEnum, collapsing
// legacy variants onto the same value as their current-registry
// equivalent.
func GetDDefEnum(u UL) DDefEnum {
	switch {
	case u.EqualModRegistryVersion(DDefPictureUL), u.EqualModRegistryVersion(legacyPictureUL):
		return DDefPicture
	case u.EqualModRegistryVersion(DDefSoundUL), u.EqualModRegistryVersion(legacySoundUL):
		return DDefSound
	case u.EqualModRegistryVersion(DDefTimecodeUL), u.EqualModRegistryVersion(legacyTimecodeUL):
		return DDefTimecode
	case u.EqualModRegistryVersion(DDefDataUL):
		return DDefData
	case u.EqualModRegistryVersion(DDefDescMetaUL):
		return DDefDescriptiveMetadata
	default:
		return DDefUnknown
	}
}
