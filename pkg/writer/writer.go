// Package writer ties together the lower-level engine components into the
// top-level write path: register tracks, accept samples in supply order,
// and assemble them into content packages, an index table, and header
// metadata at Close, writing a three-pass partitioned MXF file via
// pkg/partition.Writer.
package writer

import (
	"io"

	"mxf/pkg/codec"
	"mxf/pkg/contentpackage"
	"mxf/pkg/descriptor"
	"mxf/pkg/essencechunk"
	"mxf/pkg/index"
	"mxf/pkg/klv"
	"mxf/pkg/label"
	"mxf/pkg/metadata"
	"mxf/pkg/mxfconfig"
	"mxf/pkg/mxferrors"
	"mxf/pkg/mxflog"
	"mxf/pkg/partition"
	"mxf/pkg/sequence"
)

const (
	defaultBodySID  uint32 = 1
	defaultIndexSID uint32 = 2
)

// TrackSpec describes one essence track a caller registers before
// writing any samples.
type TrackSpec struct {
	DataDef     sequence.DataDef
	EditRate    index.Rational
	Descriptor  descriptor.Descriptor
	Analyser    codec.Analyser // nil if this track needs no per-frame analysis (e.g. PCM audio).
	ContentPkg  contentpackage.RegisterConfig
	ClipWrapped bool
}

type trackState struct {
	index      int
	spec       TrackSpec
	key        klv.Key
	descSet    *metadata.Set
	nextCPIndex int64
}

// FileWriter is the top-level write-path orchestrator for one output
// file.
type FileWriter struct {
	out     io.WriteSeeker
	profile mxfconfig.Profile
	log     *mxflog.Logger

	pw     *partition.Writer
	hm     *metadata.HeaderMetadata
	cpm    *contentpackage.Manager
	chunks *essencechunk.List
	seg    *index.Segment

	tracks  []*trackState
	bodySID uint32

	essenceStreamOffset int64
	gopStart            int64
	gopTracking         bool
	opened              bool
	closed              bool
}

// NewFileWriter creates a writer over out. logger may be nil.
func NewFileWriter(out io.WriteSeeker, profile mxfconfig.Profile, logger *mxflog.Logger) *FileWriter {
	if logger == nil {
		logger = mxflog.NewLogger()
	}
	return &FileWriter{
		out:     out,
		profile: profile,
		log:     logger,
		pw:      partition.NewWriter(out, profile),
		hm:      metadata.NewHeaderMetadata(profile.Deterministic),
		cpm:     contentpackage.NewManager(),
		chunks:  essencechunk.NewList(defaultBodySID),
		bodySID: defaultBodySID,
	}
}

// AddTrack registers a track and returns its zero-based track index; its
// track ID and generic-container element number are that index plus one.
func (fw *FileWriter) AddTrack(spec TrackSpec) (int, error) {
	if fw.opened {
		return 0, &mxferrors.UnsupportedError{Reason: "tracks must be registered before the first WriteSamples call"}
	}
	idx := len(fw.tracks)
	kind := contentPackageKind(spec.DataDef)
	key := genericContainerElementKey(kind, uint8(idx+1))

	if err := fw.cpm.RegisterElement(idx, kind, key, spec.ContentPkg); err != nil {
		return 0, err
	}

	descSet, err := descriptor.CreateFileDescriptor(fw.hm, spec.Descriptor)
	if err != nil {
		return 0, err
	}

	fw.tracks = append(fw.tracks, &trackState{index: idx, spec: spec, key: key, descSet: descSet})
	return idx, nil
}

func contentPackageKind(d sequence.DataDef) contentpackage.Kind {
	switch d {
	case sequence.DataDefPicture:
		return contentpackage.KindPicture
	case sequence.DataDefSound:
		return contentpackage.KindSound
	default:
		return contentpackage.KindData
	}
}

// genericContainerElementKey builds a generic-container essence-element
// key for kind and elementNumber.
func genericContainerElementKey(kind contentpackage.Kind, elementNumber uint8) klv.Key {
	var itemDesignator byte
	switch kind {
	case contentpackage.KindPicture:
		itemDesignator = 0x05
	case contentpackage.KindSound:
		itemDesignator = 0x06
	default:
		itemDesignator = 0x07
	}
	return klv.GenericContainerElementKey(itemDesignator, elementNumber)
}

// ensureOpen writes the header partition and reserves header-metadata
// space on first use, matching the three-pass writer's deferred-open
// behaviour.
func (fw *FileWriter) ensureOpen() error {
	if fw.opened {
		return nil
	}
	ecs := fw.essenceContainerLabels()
	if err := fw.pw.WriteHeaderPartition(label.OP1a, ecs); err != nil {
		return err
	}
	if err := fw.pw.ReserveHeaderMetadata(fw.profile.ReserveMinBytes); err != nil {
		return err
	}
	if err := fw.pw.WriteBodyPartition(defaultIndexSID, fw.bodySID, ecs); err != nil {
		return err
	}

	var editRate index.Rational
	if len(fw.tracks) > 0 {
		editRate = fw.tracks[0].spec.EditRate
	}
	fw.seg = index.NewVBESegment(editRate, defaultIndexSID, fw.bodySID, 0)
	fw.chunks.EnterPartition(fw.bodySID, uint64(fw.pw.Tell()))
	fw.opened = true
	return nil
}

func (fw *FileWriter) essenceContainerLabels() []label.UL {
	seen := make(map[klv.Key]bool)
	var out []label.UL
	for _, t := range fw.tracks {
		ul, err := descriptor.EssenceContainerUL(t.spec.Descriptor.EssenceType, fw.profile.Flavour, t.spec.ClipWrapped)
		if err != nil {
			continue
		}
		if !seen[ul] {
			seen[ul] = true
			out = append(out, ul)
		}
	}
	return out
}

// WriteSamples appends numSamples worth of data for trackIndex's current
// element, flushing every content package that becomes ready as a
// result.
func (fw *FileWriter) WriteSamples(trackIndex int, data []byte, numSamples int) error {
	if trackIndex < 0 || trackIndex >= len(fw.tracks) {
		return &mxferrors.InconsistentError{Reason: "write_samples on unregistered track"}
	}
	if err := fw.ensureOpen(); err != nil {
		return err
	}
	if err := fw.cpm.WriteSamples(trackIndex, data, numSamples); err != nil {
		return err
	}
	for fw.cpm.HaveContentPackage() {
		cp, err := fw.cpm.WriteNextContentPackage()
		if err != nil {
			return err
		}
		if err := fw.flushContentPackage(cp); err != nil {
			return err
		}
	}
	return nil
}

func (fw *FileWriter) flushContentPackage(cp *contentpackage.ContentPackage) error {
	startOffset := fw.essenceStreamOffset
	var elementSizes []uint32
	var primaryInfo codec.FrameInfo
	haveInfo := false

	for _, el := range cp.Elements() {
		payload := el.Bytes()
		t := fw.tracks[el.TrackIndex]
		if t.spec.Analyser != nil {
			info, err := t.spec.Analyser.AnalyseFrame(payload)
			if err != nil {
				return err
			}
			primaryInfo = info
			haveInfo = true
		}
		// Index stream offsets count the full essence-container stream,
		// KLV key and length bytes included, so the chunk list can map a
		// logical offset straight to a physical file position.
		before := fw.pw.Tell()
		if err := fw.pw.KLV().WriteKeyAndLength(el.Key, 0, uint64(len(payload))); err != nil {
			return err
		}
		if err := fw.pw.KLV().WriteValue(payload); err != nil {
			return err
		}
		elementSizes = append(elementSizes, uint32(fw.pw.Tell()-before))
		fw.essenceStreamOffset += fw.pw.Tell() - before
	}

	position, err := fw.seg.Update(uint64(startOffset), elementSizes)
	if err != nil {
		return err
	}
	if haveInfo {
		if primaryInfo.GOPStart {
			fw.closeGOP(position)
			fw.gopStart = position
			fw.gopTracking = true
		}
		if primaryInfo.KeyFrameOffset == 0 {
			if err := fw.seg.SetEntryFields(position, 0, primaryInfo.Flags); err != nil {
				return err
			}
		} else {
			keyFramePosition := position + int64(primaryInfo.KeyFrameOffset)
			if err := fw.seg.UpdateKeyFrameOffset(position, primaryInfo.KeyFrameOffset, primaryInfo.Flags, keyFramePosition); err != nil {
				return err
			}
		}
		if primaryInfo.HavePrevTemporalOffset {
			if err := fw.seg.UpdateTemporalOffset(primaryInfo.PrevTemporalOffsetAt, primaryInfo.PrevTemporalOffset); err != nil {
				return err
			}
		}
		if primaryInfo.HaveTemporalOffset {
			if err := fw.seg.UpdateTemporalOffset(position, primaryInfo.TemporalOffset); err != nil {
				return err
			}
		}
	}
	return nil
}

// closeGOP verifies the GOP ending just before end has every
// temporal-offset slot filled. An incomplete GOP is logged and its
// unresolved entries stay null rather than aborting the file.
func (fw *FileWriter) closeGOP(end int64) {
	if !fw.gopTracking || end <= fw.gopStart {
		return
	}
	if err := fw.seg.CloseGOP(fw.gopStart, end-fw.gopStart); err != nil {
		fw.log.Warn().Code("incomplete-index").Msgf("incomplete temporal offset data in index table: %v", err)
	}
}

// Close finalises the file: any remaining ready content packages are
// flushed, the essence chunk is closed, the footer and RIP are written,
// and the header metadata (package graph plus the index table segment)
// is serialised into the reserved header-metadata space.
func (fw *FileWriter) Close() error {
	if fw.closed {
		return nil
	}
	if err := fw.ensureOpen(); err != nil {
		return err
	}
	for fw.cpm.HaveContentPackage() {
		cp, err := fw.cpm.WriteNextContentPackage()
		if err != nil {
			return err
		}
		if err := fw.flushContentPackage(cp); err != nil {
			return err
		}
	}

	if err := fw.chunks.UpdateLastChunk(uint64(fw.pw.Tell())); err != nil {
		return err
	}
	fw.chunks.MarkComplete()
	fw.seg.FinaliseDuration(0)
	fw.closeGOP(fw.seg.Duration)

	if err := fw.pw.Align(); err != nil {
		return err
	}
	footerOffset := fw.pw.Tell()
	if err := fw.pw.WriteFooterAndRIP(defaultIndexSID); err != nil {
		return err
	}

	var trackSpecs []trackGraphSpec
	for _, t := range fw.tracks {
		trackSpecs = append(trackSpecs, trackGraphSpec{
			id:          t.index + 1,
			dataDef:     dataDefLabel(t.spec.DataDef),
			editRateNum: t.spec.EditRate.Num,
			editRateDen: t.spec.EditRate.Den,
			duration:    fw.seg.Duration,
			descriptor:  t.descSet,
		})
	}
	if _, err := buildPackageGraph(fw.hm, trackSpecs, fw.bodySID, defaultIndexSID); err != nil {
		return err
	}

	primer := metadata.NewPrimer()
	for _, s := range fw.hm.Sets() {
		for _, item := range s.Items() {
			primer.TagFor(item)
		}
	}

	if err := fw.pw.FinaliseHeaderMetadata(func(w *klv.Writer) error {
		entries := primer.Entries()
		if err := metadata.WritePrimerPack(w, entries, fw.profile.MinLLen); err != nil {
			return err
		}
		if err := fw.hm.WriteAll(w, primer, fw.profile.MinLLen); err != nil {
			return err
		}
		return index.WriteSegment(w, fw.seg, fw.profile.MinLLen)
	}); err != nil {
		return err
	}

	if err := fw.pw.Finalise(uint64(footerOffset)); err != nil {
		return err
	}

	fw.closed = true
	return nil
}

func dataDefLabel(d sequence.DataDef) klv.Key {
	switch d {
	case sequence.DataDefPicture:
		return label.DDefPictureUL
	case sequence.DataDefSound:
		return label.DDefSoundUL
	case sequence.DataDefTimecode:
		return label.DDefTimecodeUL
	default:
		return label.DDefDataUL
	}
}
