package klv

import "mxf/pkg/mxferrors"

// MaxBERLength is the largest length width this package will decode; BER
// in principle allows up to 127 length octets, but no MXF file needs more
// than 8.
const MaxBERLength = 8

// EncodeBERLength returns the BER encoding of length using exactly width
// bytes. width == 1 requires length < 128 (short form); width > 1 produces
// long form, zero-padded to width-1 value octets.
func EncodeBERLength(length uint64, width int) ([]byte, error) {
	if width == 1 {
		if length >= 0x80 {
			return nil, &mxferrors.UnsupportedError{
				Reason: "length does not fit in a 1-byte BER short form",
			}
		}
		return []byte{byte(length)}, nil
	}

	valueWidth := width - 1
	if valueWidth < 1 || valueWidth > MaxBERLength {
		return nil, &mxferrors.UnsupportedError{Reason: "invalid BER length width"}
	}
	if valueWidth < 8 && length >= (uint64(1)<<(uint(valueWidth)*8)) {
		return nil, &mxferrors.UnsupportedError{
			Reason: "length does not fit in the requested BER width",
		}
	}

	out := make([]byte, width)
	out[0] = 0x80 | byte(valueWidth)
	for i := 0; i < valueWidth; i++ {
		shift := uint(valueWidth-1-i) * 8
		out[1+i] = byte(length >> shift)
	}
	return out, nil
}

// MinBERWidth returns the smallest BER width that can hold length.
func MinBERWidth(length uint64) int {
	if length < 0x80 {
		return 1
	}
	width := 1
	for v := length; v > 0; v >>= 8 {
		width++
	}
	return width
}
