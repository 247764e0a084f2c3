package descriptor

import "mxf/pkg/klv"

func iul(b ...byte) klv.Key {
	var k klv.Key
	copy(k[:], b)
	return k
}

// Item ULs for the file-descriptor properties this package populates.
// Only the properties the engine itself reads or writes are named; a
// full baseline-registry data dictionary is out of scope.
var (
	itemSampleRate            = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x06, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00)
	itemEssenceContainer      = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x06, 0x01, 0x01, 0x00, 0x00, 0x00, 0x01)
	itemFrameLayout           = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x01, 0x03, 0x01, 0x04, 0x00, 0x00, 0x00)
	itemStoredWidth           = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x01, 0x05, 0x02, 0x00, 0x00, 0x00, 0x00)
	itemStoredHeight          = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x01, 0x05, 0x02, 0x01, 0x00, 0x00, 0x00)
	itemAspectRatio           = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x01, 0x03, 0x01, 0x06, 0x00, 0x00, 0x00)
	itemComponentDepth        = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x01, 0x05, 0x03, 0x0A, 0x00, 0x00, 0x00)
	itemHorizSubsampling      = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x04, 0x01, 0x05, 0x01, 0x05, 0x00, 0x00, 0x00)
	itemVertSubsampling       = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x05, 0x04, 0x01, 0x05, 0x01, 0x10, 0x00, 0x00, 0x00)
	itemPictureEssenceCoding  = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x04, 0x01, 0x06, 0x01, 0x00, 0x00, 0x00, 0x00)
	itemImageStartOffset      = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x06, 0x04, 0x01, 0x03, 0x02, 0x08, 0x00, 0x00, 0x00)
	itemImageEndOffset        = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x06, 0x04, 0x01, 0x03, 0x02, 0x09, 0x00, 0x00, 0x00)
	itemImageAlignmentOffset  = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x06, 0x04, 0x01, 0x03, 0x02, 0x0A, 0x00, 0x00, 0x00)
	itemAudioSamplingRate     = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x02, 0x03, 0x01, 0x01, 0x00, 0x00, 0x00)
	itemChannelCount          = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x02, 0x01, 0x01, 0x04, 0x00, 0x00, 0x00)
	itemQuantizationBits      = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x02, 0x03, 0x03, 0x04, 0x00, 0x00, 0x00)
	itemBlockAlign            = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x01, 0x04, 0x02, 0x03, 0x02, 0x01, 0x00, 0x00, 0x00)
	itemAvidResolutionID      = iul(0x06, 0x0E, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x02, 0x04, 0x01, 0x05, 0x0B, 0x04, 0x00, 0x00, 0x00)
)
