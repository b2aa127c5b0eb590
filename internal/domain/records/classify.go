package records

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Classify maps a file name to its analysis strategy. The decision is purely
// syntactic on the extension, never on the bytes: the same payload under a
// different name classifies differently, and nothing untrusted is read before
// the routing decision is made.
func Classify(fileName string) ContentKind {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpeg", ".jpg", ".png":
		return KindImage
	default:
		return KindText
	}
}

// ImageMIME returns the MIME type for an image file name. It only accepts the
// closed extension set Classify routes to KindImage; anything else reaching
// this point is a programming error upstream.
func ImageMIME(fileName string) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpeg", ".jpg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	default:
		return "", fmt.Errorf("unsupported image type: %s", filepath.Ext(fileName))
	}
}
