package partition

import (
	"bytes"
	"io"

	"mxf/pkg/klv"
	"mxf/pkg/label"
	"mxf/pkg/mxfconfig"
	"mxf/pkg/mxferrors"
)

// trackedPack remembers where a partition pack was written, its fixed
// llenWidth, and a pointer to the in-memory copy, so the finalise pass
// can patch status/footer_partition/byte-count fields without
// re-serialising the pack or shifting any following byte.
type trackedPack struct {
	pack      *Pack
	offset    int64
	llenWidth int
}

// Writer drives the three-pass partition layout: streaming write, footer,
// finalise. All KLVs the caller writes through KLV() become part of the
// single continuous byte stream this Writer tracks; KAG alignment is the
// caller's responsibility after each top-level KLV via Align.
type Writer struct {
	out     io.WriteSeeker
	kw      *klv.Writer
	profile mxfconfig.Profile
	fillKey klv.Key

	tracked []trackedPack
	rip     RIP

	headerMetaOffset  int64
	headerMetaReserve int64
}

// NewWriter creates a Writer over out, choosing the compliant or legacy
// KLV fill key by flavour.
func NewWriter(out io.WriteSeeker, profile mxfconfig.Profile) *Writer {
	fillKey := klv.FillKeyCompliant
	if profile.Flavour == mxfconfig.FlavourAvid {
		fillKey = klv.FillKeyLegacy
	}
	return &Writer{
		out:     out,
		kw:      klv.NewWriter(out, profile.MinLLen),
		profile: profile,
		fillKey: fillKey,
	}
}

// KLV exposes the underlying KLV writer for callers (header metadata,
// index segments, content packages) that write directly into the
// partition's byte stream.
func (w *Writer) KLV() *klv.Writer { return w.kw }

// Align inserts a KAG-aligning fill KLV after the caller's last top-level
// write.
func (w *Writer) Align() error {
	return AlignToKAG(w.kw, w.fillKey, int64(w.profile.KAGSize), w.profile.MinLLen)
}

func (w *Writer) writePack(p *Pack) error {
	offset := w.kw.Tell()
	if err := WritePack(w.kw, p, w.profile.MinLLen); err != nil {
		return err
	}
	w.tracked = append(w.tracked, trackedPack{pack: p, offset: offset, llenWidth: w.profile.MinLLen})
	w.rip.Entries = append(w.rip.Entries, RIPEntry{BodySID: p.BodySID, ThisPartition: uint64(offset)})
	return w.Align()
}

// WriteHeaderPartition emits the header partition pack at offset 0 with
// status OpenIncomplete.
func (w *Writer) WriteHeaderPartition(op label.UL, ecs []label.UL) error {
	if w.kw.Tell() != 0 {
		return &mxferrors.InconsistentError{Reason: "header partition must be the first thing written"}
	}
	p := &Pack{
		Kind:               KindHeader,
		Status:             StatusOpenIncomplete,
		KAGSize:            uint32(w.profile.KAGSize),
		ThisPartition:      0,
		OperationalPattern: op,
		EssenceContainers:  ecs,
	}
	return w.writePack(p)
}

// ReserveHeaderMetadata reserves reserveBytes immediately after the
// header partition pack for header metadata that will be written for
// real during Finalise, once the writer knows final durations.
func (w *Writer) ReserveHeaderMetadata(reserveBytes int) error {
	w.headerMetaOffset = w.kw.Tell()
	w.headerMetaReserve = int64(reserveBytes)
	return w.kw.WriteFill(w.fillKey, reserveBytes, w.profile.MinLLen)
}

// WriteBodyPartition emits a body partition pack at the current offset.
func (w *Writer) WriteBodyPartition(indexSID, bodySID uint32, ecs []label.UL) error {
	this := w.kw.Tell()
	var prev uint64
	if len(w.tracked) > 0 {
		prev = uint64(w.tracked[len(w.tracked)-1].offset)
	}
	p := &Pack{
		Kind:              KindBody,
		Status:            StatusOpenIncomplete,
		KAGSize:           uint32(w.profile.KAGSize),
		ThisPartition:     uint64(this),
		PreviousPartition: prev,
		IndexSID:          indexSID,
		BodySID:           bodySID,
		EssenceContainers: ecs,
	}
	return w.writePack(p)
}

// WriteFooterAndRIP emits the footer partition pack (ClosedComplete) and
// the Random Index Pack, the second of the three write passes.
func (w *Writer) WriteFooterAndRIP(indexSID uint32) error {
	this := w.kw.Tell()
	var prev uint64
	if len(w.tracked) > 0 {
		prev = uint64(w.tracked[len(w.tracked)-1].offset)
	}
	p := &Pack{
		Kind:              KindFooter,
		Status:            StatusClosedComplete,
		KAGSize:           uint32(w.profile.KAGSize),
		ThisPartition:     uint64(this),
		PreviousPartition: prev,
		FooterPartition:   uint64(this),
		IndexSID:          indexSID,
	}
	if err := w.writePack(p); err != nil {
		return err
	}
	return WriteRIP(w.kw, &w.rip)
}

func (w *Writer) writeAt(offset int64, p []byte) error {
	if _, err := w.out.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	_, err := w.out.Write(p)
	return err
}

func (w *Writer) restorePosition() error {
	_, err := w.out.Seek(w.kw.Tell(), io.SeekStart)
	return err
}

// FinaliseHeaderMetadata writes the real header metadata (primer pack
// plus sets) into the space ReserveHeaderMetadata set aside, padding the
// remainder with a fill KLV so the reserved region is exactly filled, and
// patches header_byte_count in the header partition pack to match.
func (w *Writer) FinaliseHeaderMetadata(write func(*klv.Writer) error) error {
	var buf bytes.Buffer
	bw := klv.NewWriter(&buf, w.profile.MinLLen)
	if err := write(bw); err != nil {
		return err
	}
	remaining := w.headerMetaReserve - int64(buf.Len())
	if remaining < 0 {
		return &mxferrors.UnsupportedError{Reason: "header metadata exceeds reserved space"}
	}
	if remaining > 0 {
		if err := bw.WriteFill(w.fillKey, int(remaining), w.profile.MinLLen); err != nil {
			return err
		}
	}
	if int64(buf.Len()) != w.headerMetaReserve {
		return &mxferrors.InconsistentError{Reason: "header metadata did not exactly fill its reservation"}
	}

	if err := w.writeAt(w.headerMetaOffset, buf.Bytes()); err != nil {
		return err
	}
	if err := w.restorePosition(); err != nil {
		return err
	}

	return w.patchUint64(w.tracked[0], offHeaderByteCount, uint64(w.headerMetaReserve))
}

func (w *Writer) patchUint64(tp trackedPack, fieldOffset int, value uint64) error {
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(value)
		value >>= 8
	}
	offset := tp.offset + 16 + int64(tp.llenWidth) + int64(fieldOffset)
	if err := w.writeAt(offset, buf[:]); err != nil {
		return err
	}
	return w.restorePosition()
}

func (w *Writer) patchStatus(tp trackedPack, status Status) error {
	var keyBuf [16]byte
	key := tp.pack.Key()
	copy(keyBuf[:], key[:])
	keyBuf[14] = byte(status)
	if err := w.writeAt(tp.offset, keyBuf[:]); err != nil {
		return err
	}
	return w.restorePosition()
}

// Finalise closes out the file: every tracked partition's footer_partition
// field is set to the footer partition's offset, and header/body statuses
// move from OpenIncomplete/OpenComplete to ClosedComplete. No partition's
// index_byte_count is patched. Index segment duration rewriting (CBE
// finalisation) is the caller's responsibility via PatchBytes, since
// only the index engine knows the segment's own internal layout.
func (w *Writer) Finalise(footerOffset uint64) error {
	for _, tp := range w.tracked {
		if err := w.patchUint64(tp, offFooterPartition, footerOffset); err != nil {
			return err
		}
		switch tp.pack.Status {
		case StatusOpenIncomplete, StatusOpenComplete:
			if err := w.patchStatus(tp, StatusClosedComplete); err != nil {
				return err
			}
		}
	}
	return nil
}

// PatchBytes exposes the finalise-pass seek/write/restore primitive for
// other components (the index engine rewriting a CBE segment's final
// duration field) that need to patch a fixed-width field in place after
// the fact.
func (w *Writer) PatchBytes(offset int64, data []byte) error {
	if err := w.writeAt(offset, data); err != nil {
		return err
	}
	return w.restorePosition()
}

// HeaderPackOffset returns the absolute offset of the header partition
// pack, 0 in a well-formed file.
func (w *Writer) HeaderPackOffset() int64 {
	if len(w.tracked) == 0 {
		return 0
	}
	return w.tracked[0].offset
}

// Tell returns the writer's current absolute byte position.
func (w *Writer) Tell() int64 { return w.kw.Tell() }
