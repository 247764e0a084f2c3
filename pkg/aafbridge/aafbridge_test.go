package aafbridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLocatorPlainFilepathPassesThrough(t *testing.T) {
	p, err := ResolveLocator("/mnt/media/clip001.mxf", BridgeConfig{})
	require.NoError(t, err)
	require.Equal(t, "/mnt/media/clip001.mxf", p)
}

func TestResolveLocatorFileURIStripsSchemeAndHost(t *testing.T) {
	p, err := ResolveLocator("file:///mnt/media/clip001.mxf", BridgeConfig{})
	require.NoError(t, err)
	require.Equal(t, "/mnt/media/clip001.mxf", p)
}

func TestResolveLocatorPercentDecodesPath(t *testing.T) {
	p, err := ResolveLocator("file:///mnt/media/My%20Clip.mxf", BridgeConfig{})
	require.NoError(t, err)
	require.Equal(t, "/mnt/media/My Clip.mxf", p)
}

func TestResolveLocatorRejectsUnsupportedScheme(t *testing.T) {
	_, err := ResolveLocator("http://example.com/clip001.mxf", BridgeConfig{})
	require.Error(t, err)
}

func TestResolveLocatorRejectsEmptyURI(t *testing.T) {
	_, err := ResolveLocator("", BridgeConfig{})
	require.Error(t, err)
}

func TestResolveLocatorOmitsWindowsDriveColonWithLeadingSlash(t *testing.T) {
	p, err := ResolveLocator("file:///C:/Media/clip001.mxf", BridgeConfig{OmitDriveColon: true})
	require.NoError(t, err)
	require.Equal(t, "/C/Media/clip001.mxf", p)
}

func TestResolveLocatorAppliesFilepathPrefix(t *testing.T) {
	p, err := ResolveLocator("/clip001.mxf", BridgeConfig{FilepathPrefix: "/staging"})
	require.NoError(t, err)
	require.Equal(t, "/staging/clip001.mxf", p)
}

func TestOmitDriveColonLeavesNonDrivePathsUntouched(t *testing.T) {
	require.Equal(t, "/mnt/media/clip.mxf", omitDriveColon("/mnt/media/clip.mxf"))
}

func TestOmitDriveColonHandlesBareDriveForm(t *testing.T) {
	require.Equal(t, "Cfoo.mxf", omitDriveColon("C:foo.mxf"))
}
