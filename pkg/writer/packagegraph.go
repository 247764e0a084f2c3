// packagegraph builds the package/track/component header-metadata graph
// (Preface, ContentStorage, Material/Source packages, Tracks, Sequences,
// SourceClips, EssenceContainerData) a FileWriter emits at Close, reusing
// the arena-of-sets primitives pkg/metadata exposes for the ordinary
// read/write path.
package writer

import (
	"github.com/google/uuid"

	"mxf/pkg/klv"
	"mxf/pkg/metadata"
)

// trackGraphSpec is the minimal information packagegraph needs per track.
type trackGraphSpec struct {
	id          int
	dataDef     klv.Key
	editRateNum int32
	editRateDen int32
	duration    int64
	descriptor  *metadata.Set
}

// buildPackageGraph allocates the Preface → ContentStorage → (Material
// Package, Source Package) → Track → Sequence → SourceClip forest, and a
// parallel EssenceContainerData set linking the source package to bodySID
// and indexSID, the way a single-file, single-package OP-1a writer's
// header metadata is shaped.
func buildPackageGraph(hm *metadata.HeaderMetadata, tracks []trackGraphSpec, bodySID, indexSID uint32) (*metadata.Set, error) {
	preface := hm.NewSet(metadata.ClassPreface)
	storage := hm.NewSet(metadata.ClassContentStorage)
	if err := hm.SetStrongRef(preface, metadata.ItemContentStorage, storage); err != nil {
		return nil, err
	}

	materialPackage := hm.NewSet(metadata.ClassMaterialPackage)
	sourcePackage := hm.NewSet(metadata.ClassSourcePackage)

	var materialTracks, sourceTracks []*metadata.Set
	var descriptors []*metadata.Set
	for _, t := range tracks {
		mTrack, sTrack, err := buildTrackPair(hm, t, sourcePackage.InstanceUID)
		if err != nil {
			return nil, err
		}
		materialTracks = append(materialTracks, mTrack)
		sourceTracks = append(sourceTracks, sTrack)
		if t.descriptor != nil {
			descriptors = append(descriptors, t.descriptor)
		}
	}

	if err := hm.SetStrongRefArray(materialPackage, metadata.ItemPackageTracks, materialTracks); err != nil {
		return nil, err
	}
	if err := hm.SetStrongRefArray(sourcePackage, metadata.ItemPackageTracks, sourceTracks); err != nil {
		return nil, err
	}
	if err := attachDescriptors(hm, sourcePackage, descriptors); err != nil {
		return nil, err
	}

	if err := hm.SetStrongRefArray(storage, metadata.ItemPackages, []*metadata.Set{materialPackage, sourcePackage}); err != nil {
		return nil, err
	}

	essenceData := hm.NewSet(metadata.ClassEssenceContainerData)
	hm.SetWeakRef(essenceData, metadata.ItemEssenceDataLinkedPkg, sourcePackage)
	essenceData.SetUint32(metadata.ItemEssenceDataBodySID, bodySID)
	essenceData.SetUint32(metadata.ItemEssenceDataIndexSID, indexSID)
	if err := hm.SetStrongRefArray(storage, metadata.ItemEssenceContainerData, []*metadata.Set{essenceData}); err != nil {
		return nil, err
	}

	return preface, nil
}

func buildTrackPair(hm *metadata.HeaderMetadata, t trackGraphSpec, sourcePackageID uuid.UUID) (materialTrack, sourceTrack *metadata.Set, err error) {
	mSeq := hm.NewSet(metadata.ClassSequence)
	mSeq.SetRaw(metadata.ItemDataDefinition, t.dataDef[:])
	mSeq.SetInt64(metadata.ItemDuration, t.duration)

	sourceClip := hm.NewSet(metadata.ClassSourceClip)
	sourceClip.SetRaw(metadata.ItemDataDefinition, t.dataDef[:])
	sourceClip.SetInt64(metadata.ItemDuration, t.duration)
	sourceClip.SetInt64(metadata.ItemSourceClipStartPos, 0)
	sourceClip.SetRaw(metadata.ItemSourceClipSourceID, sourcePackageID[:])
	sourceClip.SetUint32(metadata.ItemSourceClipSourceTrack, uint32(t.id))

	sSeq := hm.NewSet(metadata.ClassSequence)
	sSeq.SetRaw(metadata.ItemDataDefinition, t.dataDef[:])
	sSeq.SetInt64(metadata.ItemDuration, t.duration)
	if err := hm.SetStrongRef(sSeq, metadata.ItemSequence, sourceClip); err != nil {
		return nil, nil, err
	}

	materialTrack = hm.NewSet(metadata.ClassTrack)
	materialTrack.SetUint32(metadata.ItemTrackID, uint32(t.id))
	materialTrack.SetRational(metadata.ItemEditRate, t.editRateNum, t.editRateDen)
	materialTrack.SetInt64(metadata.ItemOrigin, 0)
	if err := hm.SetStrongRef(materialTrack, metadata.ItemSequence, mSeq); err != nil {
		return nil, nil, err
	}

	sourceTrack = hm.NewSet(metadata.ClassTrack)
	sourceTrack.SetUint32(metadata.ItemTrackID, uint32(t.id))
	sourceTrack.SetUint32(metadata.ItemTrackNumber, uint32(t.id))
	sourceTrack.SetRational(metadata.ItemEditRate, t.editRateNum, t.editRateDen)
	sourceTrack.SetInt64(metadata.ItemOrigin, 0)
	if err := hm.SetStrongRef(sourceTrack, metadata.ItemSequence, sSeq); err != nil {
		return nil, nil, err
	}

	return materialTrack, sourceTrack, nil
}

// attachDescriptors links descriptors to the source package: a lone
// descriptor is linked directly, more than one is wrapped in a
// MultipleDescriptor, matching how a multi-essence OP-1a file describes
// its tracks.
func attachDescriptors(hm *metadata.HeaderMetadata, sourcePackage *metadata.Set, descriptors []*metadata.Set) error {
	switch len(descriptors) {
	case 0:
		return nil
	case 1:
		return hm.SetStrongRef(sourcePackage, metadata.ItemDescriptor, descriptors[0])
	default:
		multi := hm.NewSet(metadata.ClassMultipleDescriptor)
		if err := hm.SetStrongRefArray(multi, metadata.ItemSubDescriptors, descriptors); err != nil {
			return err
		}
		return hm.SetStrongRef(sourcePackage, metadata.ItemDescriptor, multi)
	}
}
