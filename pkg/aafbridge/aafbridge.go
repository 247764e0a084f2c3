// Package aafbridge resolves the essence-locator URIs an Avid AAF
// composition carries into filesystem paths, grounded on
// avidp2transfer.cpp's unescapeURI/wcsconvertURLtoFilepath/rewriteFilepath
// chain, reimplemented on net/url's scheme/host parsing instead of the
// original's hand-rolled character walker.
package aafbridge

import (
	"net/url"
	"strings"

	"mxf/pkg/mxferrors"
)

// BridgeConfig modulates how a resolved path is rewritten, per-deployment.
type BridgeConfig struct {
	// OmitDriveColon drops the colon after a Windows drive letter
	// (legacy P2 transfer quirk: "/X:/..." becomes "/X/...").
	OmitDriveColon bool
	// FilepathPrefix is prepended to every resolved path, e.g. to
	// relocate a transfer's MXF inputs under a staging directory.
	FilepathPrefix string
}

// ResolveLocator converts one essence-descriptor locator URI into a
// filesystem path. A locator with no "scheme://" prefix is assumed to
// already be a plain filepath and is returned unmodified (aside from the
// configured prefix/drive-colon rewrite), matching wcsconvertURLtoFilepath's
// "invalid URL is returned unmodified" contract. A URI with any scheme
// other than "file" is rejected as unsupported.
func ResolveLocator(uri string, cfg BridgeConfig) (string, error) {
	if uri == "" {
		return "", &mxferrors.InconsistentError{Reason: "locator URI is empty"}
	}

	path := uri
	if looksLikeFileURI(uri) || strings.Contains(uri, "://") {
		u, err := url.Parse(uri)
		if err != nil {
			return "", &mxferrors.InconsistentError{Reason: "locator URI could not be parsed: " + err.Error()}
		}
		if u.Scheme != "file" {
			return "", &mxferrors.UnsupportedError{Reason: "locator scheme " + u.Scheme + " is not supported"}
		}
		path = u.Path
		if path == "" {
			path = u.Opaque
		}
	}

	return rewriteFilepath(path, cfg), nil
}

// looksLikeFileURI reports whether uri carries an explicit "file://"
// scheme prefix (case-insensitively, per RFC 1738's "scheme is in lower
// case; interpreters should use case-ignore").
func looksLikeFileURI(uri string) bool {
	return len(uri) >= 7 && strings.EqualFold(uri[:7], "file://")
}

// rewriteFilepath applies the Windows drive-colon quirk and the
// configured path prefix, matching AvidP2Transfer::rewriteFilepath.
func rewriteFilepath(path string, cfg BridgeConfig) string {
	if cfg.OmitDriveColon {
		path = omitDriveColon(path)
	}
	if cfg.FilepathPrefix != "" {
		return cfg.FilepathPrefix + path
	}
	return path
}

// omitDriveColon removes the character at index 2 of a "/X:" path or
// index 1 of an "X:" path, scanning only the first three characters the
// way the original's bounded loop (i < 3) does. Mirrored exactly from
// rewriteFilepath, including its asymmetry: the "X:" branch only checks
// that fp[0] is a letter, not that fp[1] is actually a colon.
func omitDriveColon(path string) string {
	limit := 3
	if len(path) < limit {
		limit = len(path)
	}
	for i := 0; i < limit; i++ {
		c := path[i]
		if c == '/' {
			if i != 0 {
				break
			}
			continue
		}
		if (c == ':' && i == 2 && path[0] == '/' && isAlpha(path[i-1])) || (i == 1 && isAlpha(path[0])) {
			return path[:i] + path[i+1:]
		}
	}
	return path
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
