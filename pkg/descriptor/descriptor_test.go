package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mxf/pkg/metadata"
	"mxf/pkg/mxfconfig"
)

func TestEssenceContainerULClipWrappedPCM(t *testing.T) {
	ul, err := EssenceContainerUL(EssencePCM, mxfconfig.FlavourSMPTE, true)
	require.NoError(t, err)
	require.True(t, ul.EqualModRegistryVersion(ul))

	frameUL, err := EssenceContainerUL(EssencePCM, mxfconfig.FlavourSMPTE, false)
	require.NoError(t, err)
	require.NotEqual(t, ul, frameUL)
}

func TestEssenceContainerULUnknown(t *testing.T) {
	_, err := EssenceContainerUL(EssenceType(999), mxfconfig.FlavourSMPTE, false)
	require.Error(t, err)
}

func TestSampleSizePCM(t *testing.T) {
	d := Descriptor{EssenceType: EssencePCM, Channels: 2, QuantizationBits: 16}
	require.Equal(t, 4, SampleSize(d))
}

func TestSampleSizeVBE(t *testing.T) {
	d := Descriptor{EssenceType: EssenceMPEG2LG422PHL1080i}
	require.Equal(t, 0, SampleSize(d))
}

func TestImageEndOffsetAvidQuirk(t *testing.T) {
	d := Descriptor{ImageAlignmentOffset: 16}
	require.Equal(t, 16, ImageEndOffset(d, mxfconfig.FlavourAvid))
	require.Equal(t, 0, ImageEndOffset(d, mxfconfig.FlavourSMPTE))
}

func TestCreateAndInferFileDescriptorRoundTrip(t *testing.T) {
	h := metadata.NewHeaderMetadata(true)
	d := Descriptor{
		EssenceType:      EssenceMPEG2LG422PHL1080i,
		SampleRate:       Rational{25, 1},
		FrameLayout:      LayoutSeparateFields,
		Width:            1920,
		Height:           1080,
		AspectRatio:      Rational{16, 9},
		ComponentDepth:   8,
		HorizSubsampling: 2,
		VertSubsampling:  1,
	}
	set, err := CreateFileDescriptor(h, d)
	require.NoError(t, err)
	require.Equal(t, metadata.ClassCDCIDescriptor, set.Class)

	got, err := InferFromDescriptor(set)
	require.NoError(t, err)
	require.Equal(t, EssenceMPEG2LG422PHL1080i, got)
}

func TestInferFromDescriptorMissingEssenceContainer(t *testing.T) {
	h := metadata.NewHeaderMetadata(true)
	set := h.NewSet(metadata.ClassCDCIDescriptor)
	_, err := InferFromDescriptor(set)
	require.Error(t, err)
}
