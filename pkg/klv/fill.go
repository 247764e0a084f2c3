package klv

import "mxf/pkg/mxferrors"

// FillKeyOverhead is the minimal overhead (key + 1-byte short-form BER
// length) of a fill KLV with an empty value.
const FillKeyOverhead = 16 + 1

// WriteFill writes a KLV fill item (key + length + zero-valued padding)
// whose total marshaled size is exactly targetLen bytes. key should be
// FillKeyCompliant or FillKeyLegacy depending on flavour. targetLen must
// be large enough to hold the key, a length field of at least minLLen
// bytes, and the fill itself can always be rewritten in place later
// because its own length uses minLLen bytes minimum.
func (w *Writer) WriteFill(key Key, targetLen int, minLLen int) error {
	if minLLen < 1 {
		minLLen = 1
	}
	llenWidth := minLLen
	valueLen := targetLen - 16 - llenWidth
	for valueLen < 0 && llenWidth > 1 {
		llenWidth--
		valueLen = targetLen - 16 - llenWidth
	}
	if valueLen < 0 {
		return &mxferrors.UnsupportedError{
			Reason: "target fill length is smaller than the minimum KLV overhead",
		}
	}
	// A longer value may require widening the length field again.
	if needed := MinBERWidth(uint64(valueLen)); needed > llenWidth {
		llenWidth = needed
		valueLen = targetLen - 16 - llenWidth
		if valueLen < 0 {
			return &mxferrors.UnsupportedError{
				Reason: "target fill length cannot accommodate its own BER length field",
			}
		}
	}

	if err := w.WriteKeyAndLength(key, llenWidth, uint64(valueLen)); err != nil {
		return err
	}
	if valueLen == 0 {
		return nil
	}
	return w.WriteValue(make([]byte, valueLen))
}

// PaddingToAlign returns the number of bytes needed to advance offset to
// the next multiple of kagSize (0 if already aligned).
func PaddingToAlign(offset int64, kagSize int64) int64 {
	if kagSize <= 1 {
		return 0
	}
	rem := offset % kagSize
	if rem == 0 {
		return 0
	}
	return kagSize - rem
}
