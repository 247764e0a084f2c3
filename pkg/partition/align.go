package partition

import "mxf/pkg/klv"

// AlignToKAG inserts a fill KLV, if necessary, so the next top-level KLV
// starts at a multiple of kagSize. fillKey is the compliant or legacy
// fill key depending on flavour; minLLen is the writer's fixed BER length
// width so the fill itself stays rewritable.
func AlignToKAG(w *klv.Writer, fillKey klv.Key, kagSize int64, minLLen int) error {
	if kagSize <= 1 {
		return nil
	}
	pos := w.Tell()
	pad := klv.PaddingToAlign(pos, kagSize)
	if pad == 0 {
		return nil
	}
	return w.WriteFill(fillKey, int(pad), minLLen)
}
