package partition

import (
	"mxf/pkg/klv"
	"mxf/pkg/mxferrors"
)

// RIPEntry is one (body_sid, partition offset) pair.
type RIPEntry struct {
	BodySID       uint32
	ThisPartition uint64
}

// RIP is the Random Index Pack: a final directory of every partition in
// the file, terminated by the RIP's own length so a reader can find it
// by seeking to (file length - last 4 bytes).
type RIP struct {
	Entries []RIPEntry
}

// WriteRIP serialises the RIP: key, length, (body_sid, offset) pairs,
// then its own total length as a trailing uint32, per SMPTE 377's
// "read the last 4 bytes to find the RIP" convention.
func WriteRIP(w *klv.Writer, rip *RIP) error {
	valueLen := uint64(len(rip.Entries)*12 + 4)
	start := w.Tell()
	if err := w.WriteKeyAndLength(klv.RandomIndexPackKey, 0, valueLen); err != nil {
		return err
	}
	for _, e := range rip.Entries {
		if err := w.WriteUint32(e.BodySID); err != nil {
			return err
		}
		if err := w.WriteUint64(e.ThisPartition); err != nil {
			return err
		}
	}
	total := uint32(w.Tell() - start + 4)
	return w.WriteUint32(total)
}

// ReadRIP reads a RIP previously positioned at its key. It validates that
// the RIP's declared length is consistent with an integral number of
// 12-byte (body_sid, offset) entries plus its own 4-byte trailing length
// field.
func ReadRIP(r *klv.Reader) (*RIP, error) {
	key, length, err := r.ReadKL(0)
	if err != nil {
		return nil, err
	}
	if key != klv.RandomIndexPackKey {
		return nil, &mxferrors.InvalidKLVError{Offset: r.Tell(), Reason: "expected random index pack key"}
	}
	if length < 4 || (length-4)%12 != 0 {
		return nil, &mxferrors.InconsistentError{Reason: "random index pack length is not a whole number of entries"}
	}
	count := (length - 4) / 12
	rip := &RIP{Entries: make([]RIPEntry, 0, count)}
	for i := uint64(0); i < count; i++ {
		bodySID, err := r.ReadValue(4)
		if err != nil {
			return nil, err
		}
		offset, err := r.ReadValue(8)
		if err != nil {
			return nil, err
		}
		rip.Entries = append(rip.Entries, RIPEntry{
			BodySID:       be32(bodySID),
			ThisPartition: be64(offset),
		})
	}
	if _, err := r.ReadValue(4); err != nil { // trailing total-length field.
		return nil, err
	}
	return rip, nil
}
