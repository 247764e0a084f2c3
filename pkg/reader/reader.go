// Package reader ties the lower-level engine components into the
// top-level read path: open a partitioned MXF file, recover its header
// metadata and index table, walk the package/track graph back into
// descriptors, and hand the result to pkg/essence for sample access.
package reader

import (
	"io"

	"mxf/pkg/descriptor"
	"mxf/pkg/essence"
	"mxf/pkg/essencechunk"
	"mxf/pkg/index"
	"mxf/pkg/klv"
	"mxf/pkg/label"
	"mxf/pkg/metadata"
	"mxf/pkg/mxferrors"
	"mxf/pkg/mxflog"
	"mxf/pkg/partition"
	"mxf/pkg/sequence"
)

// Track describes one essence track recovered from a file's header
// metadata, in the same order a FileWriter's AddTrack calls registered
// them.
type Track struct {
	Index      int
	ID         int
	DataDef    sequence.DataDef
	EditRate   index.Rational
	Duration   int64
	Descriptor descriptor.Descriptor
}

// FileReader is the top-level read-path orchestrator for one input file.
// It supports exactly the layout pkg/writer.FileWriter produces: one
// header partition, one body partition, a footer, and a trailing Random
// Index Pack, every essence element frame-wrapped.
type FileReader struct {
	src io.ReadSeeker
	kr  *klv.Reader
	log *mxflog.Logger

	hm     *metadata.HeaderMetadata
	table  *index.Table
	chunks *essencechunk.List

	headerPack *partition.Pack
	bodyPack   *partition.Pack

	tracks []Track
}

// Open reads src's header partition, header metadata, index table, and
// random index pack, and resolves the package graph into a Track list.
// src must be positioned so that Seek(0, io.SeekStart) reaches the first
// byte of the file. logger may be nil.
func Open(src io.ReadSeeker, logger *mxflog.Logger) (*FileReader, error) {
	if logger == nil {
		logger = mxflog.NewLogger()
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	kr, err := klv.NewReader(src)
	if err != nil {
		return nil, err
	}

	fr := &FileReader{src: src, kr: kr, log: logger, hm: metadata.NewHeaderMetadata(false)}

	if err := fr.readHeaderPartition(); err != nil {
		return nil, err
	}
	if err := fr.readBodyPartitionAndRIP(); err != nil {
		return nil, err
	}
	if err := fr.buildTracks(); err != nil {
		return nil, err
	}
	return fr, nil
}

// readHeaderPartition reads the header partition pack, the primer pack,
// every header-metadata set, and the embedded index-table segment: C6
// (partition pack), C3 (primer/header metadata), C5 (index table).
func (fr *FileReader) readHeaderPartition() error {
	headerPack, err := partition.ReadPack(fr.kr)
	if err != nil {
		return err
	}
	fr.headerPack = headerPack

	if err := skipOptionalFill(fr.kr); err != nil {
		return err
	}
	blobStart := fr.kr.Tell()

	primer, err := metadata.ReadPrimerPack(fr.kr)
	if err != nil {
		return err
	}

	blobEnd := blobStart + int64(headerPack.HeaderByteCount)
	remaining := blobEnd - fr.kr.Tell()
	if remaining < 0 {
		return &mxferrors.InconsistentError{Reason: "header byte count is shorter than the primer pack alone"}
	}
	if err := fr.hm.ReadSets(fr.kr, primer, remaining, nil); err != nil {
		return err
	}

	seg, err := index.ReadSegment(fr.kr)
	if err != nil {
		return err
	}
	fr.table = &index.Table{}
	if err := fr.table.Append(seg); err != nil {
		return err
	}

	return fr.kr.Seek(blobEnd)
}

// readBodyPartitionAndRIP reads the body partition pack, then the trailing
// Random Index Pack, to build the essence chunk list: C6 (body partition
// and random index pack), C8 (essence chunk tracking). Only a single body
// partition is supported, matching what pkg/writer.FileWriter ever
// produces.
func (fr *FileReader) readBodyPartitionAndRIP() error {
	bodyPack, err := partition.ReadPack(fr.kr)
	if err != nil {
		return err
	}
	fr.bodyPack = bodyPack

	if err := skipOptionalFill(fr.kr); err != nil {
		return err
	}
	bodyDataStart := fr.kr.Tell()

	fr.chunks = essencechunk.NewList(bodyPack.BodySID)
	fr.chunks.EnterPartition(bodyPack.BodySID, uint64(bodyDataStart))

	footerOffset, err := fr.readFooterOffsetFromRIP()
	if err != nil {
		// A truncated or still-open file has no usable footer/RIP. The
		// essence chunk is left open so reads walk forward until the
		// source ends.
		fr.log.Warn().Code("missing-footer").Msgf("no usable random index pack: %v", err)
	} else {
		if err := fr.chunks.UpdateLastChunk(footerOffset); err != nil {
			return err
		}
		fr.chunks.MarkComplete()
	}

	return fr.kr.Seek(bodyDataStart)
}

// readFooterOffsetFromRIP locates the Random Index Pack via the file's
// trailing length field and returns the footer partition's offset, the
// last entry the writer appends.
func (fr *FileReader) readFooterOffsetFromRIP() (uint64, error) {
	fileLen, err := fr.src.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if fileLen < 4 {
		return 0, &mxferrors.InconsistentError{Reason: "file too short to carry a random index pack"}
	}
	if err := fr.kr.Seek(fileLen - 4); err != nil {
		return 0, err
	}
	trailer, err := fr.kr.ReadValue(4)
	if err != nil {
		return 0, err
	}
	total := uint32(trailer[0])<<24 | uint32(trailer[1])<<16 | uint32(trailer[2])<<8 | uint32(trailer[3])
	ripStart := fileLen - int64(total)
	if ripStart < 0 {
		return 0, &mxferrors.InconsistentError{Reason: "random index pack length exceeds the file"}
	}
	if err := fr.kr.Seek(ripStart); err != nil {
		return 0, err
	}
	rip, err := partition.ReadRIP(fr.kr)
	if err != nil {
		return 0, err
	}
	if len(rip.Entries) == 0 {
		return 0, &mxferrors.InconsistentError{Reason: "random index pack has no entries"}
	}
	return rip.Entries[len(rip.Entries)-1].ThisPartition, nil
}

// skipOptionalFill skips a single KAG-alignment fill KLV if one is
// present at the reader's current position, leaving the reader untouched
// otherwise.
func skipOptionalFill(r *klv.Reader) error {
	pos := r.Tell()
	key, length, err := r.ReadKL(0)
	if err != nil {
		return err
	}
	if key == klv.FillKeyCompliant || key == klv.FillKeyLegacy {
		return r.Skip(int64(length))
	}
	return r.Seek(pos)
}

// buildTracks walks the Preface -> ContentStorage -> SourcePackage ->
// Track -> Sequence graph plus the source package's descriptor (direct or
// a MultipleDescriptor's sub-descriptors) into fr.tracks: C3 (package
// graph), C10's prerequisite per-track metadata.
func (fr *FileReader) buildTracks() error {
	preface, ok := fr.hm.Root()
	if !ok {
		return &mxferrors.InconsistentError{Reason: "header metadata has no preface"}
	}
	storage, ok := fr.hm.GetStrongRef(preface, metadata.ItemContentStorage)
	if !ok {
		return &mxferrors.InconsistentError{Reason: "preface has no content storage"}
	}
	packages, ok := fr.hm.GetStrongRefArray(storage, metadata.ItemPackages)
	if !ok {
		return &mxferrors.InconsistentError{Reason: "content storage has no packages"}
	}

	var sourcePackage *metadata.Set
	for _, p := range packages {
		if p.Class == metadata.ClassSourcePackage {
			sourcePackage = p
			break
		}
	}
	if sourcePackage == nil {
		return &mxferrors.InconsistentError{Reason: "content storage has no source package"}
	}

	sourceTracks, ok := fr.hm.GetStrongRefArray(sourcePackage, metadata.ItemPackageTracks)
	if !ok {
		return &mxferrors.InconsistentError{Reason: "source package has no tracks"}
	}

	descSets, err := fr.resolveDescriptors(sourcePackage)
	if err != nil {
		return err
	}

	for i, t := range sourceTracks {
		trackID, _ := t.GetUint32(metadata.ItemTrackID)
		rateNum, rateDen, _ := t.GetRational(metadata.ItemEditRate)

		var duration int64
		var dataDef sequence.DataDef
		if seq, ok := fr.hm.GetStrongRef(t, metadata.ItemSequence); ok {
			duration, _ = seq.GetInt64(metadata.ItemDuration)
			if raw, ok := seq.GetRaw(metadata.ItemDataDefinition); ok {
				var ddefUL label.UL
				copy(ddefUL[:], raw)
				dataDef = dataDefFromLabel(label.GetDDefEnum(ddefUL))
			}
		}

		var d descriptor.Descriptor
		if i < len(descSets) {
			d, err = descriptor.DescriptorFromSet(descSets[i])
			if err != nil {
				return err
			}
		}

		fr.tracks = append(fr.tracks, Track{
			Index:      i,
			ID:         int(trackID),
			DataDef:    dataDef,
			EditRate:   index.Rational{Num: rateNum, Den: rateDen},
			Duration:   duration,
			Descriptor: d,
		})
	}
	return nil
}

// resolveDescriptors returns the source package's descriptor sets in
// track order: the sub-descriptors of a MultipleDescriptor, or a single
// direct descriptor's set wrapped alone.
func (fr *FileReader) resolveDescriptors(sourcePackage *metadata.Set) ([]*metadata.Set, error) {
	descSet, ok := fr.hm.GetStrongRef(sourcePackage, metadata.ItemDescriptor)
	if !ok {
		return nil, nil
	}
	if descSet.Class == metadata.ClassMultipleDescriptor {
		subs, ok := fr.hm.GetStrongRefArray(descSet, metadata.ItemSubDescriptors)
		if !ok {
			return nil, &mxferrors.InconsistentError{Reason: "multiple descriptor has no sub-descriptors"}
		}
		return subs, nil
	}
	return []*metadata.Set{descSet}, nil
}

func dataDefFromLabel(e label.DDefEnum) sequence.DataDef {
	switch e {
	case label.DDefPicture:
		return sequence.DataDefPicture
	case label.DDefSound:
		return sequence.DataDefSound
	case label.DDefTimecode:
		return sequence.DataDefTimecode
	default:
		return sequence.DataDefData
	}
}

// Tracks returns the recovered tracks, in AddTrack order.
func (fr *FileReader) Tracks() []Track {
	out := make([]Track, len(fr.tracks))
	copy(out, fr.tracks)
	return out
}

// Duration returns the recovered index table's total edit-unit count.
func (fr *FileReader) Duration() int64 {
	var total int64
	for _, seg := range fr.table.Segments {
		total += seg.Duration
	}
	return total
}

func itemDesignatorFor(dd sequence.DataDef) byte {
	switch dd {
	case sequence.DataDefPicture:
		return 0x05
	case sequence.DataDefSound:
		return 0x06
	default:
		return 0x07
	}
}

// EssenceReader builds a pkg/essence.Reader over every recovered track,
// positioned at the start of the essence stream: C9 (essence reader
// construction).
func (fr *FileReader) EssenceReader() (*essence.Reader, error) {
	ets := make([]*essence.Track, 0, len(fr.tracks))
	for _, t := range fr.tracks {
		key := klv.GenericContainerElementKey(itemDesignatorFor(t.DataDef), uint8(t.ID))
		ets = append(ets, &essence.Track{
			Index:            t.Index,
			Key:              key,
			Wrapping:         essence.WrappingFrame,
			ImageStartOffset: t.Descriptor.ImageStartOffsetBytes,
			ImageEndOffset:   t.Descriptor.ImageEndOffsetBytes,
		})
	}
	r, err := essence.NewReader(fr.src, fr.chunks, fr.table, ets)
	if err != nil {
		return nil, err
	}
	r.SetReadLimits(0, fr.Duration())
	return r, nil
}
