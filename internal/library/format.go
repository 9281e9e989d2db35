package library

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/sinkmuzik/internal/shared"
)

// losslessExtensions lists the extensions treated as lossless. m4a is usually AAC but is kept here
// so ALAC libraries are transcoded.
var losslessExtensions = map[string]bool{
	"flac": true,
	"wav":  true,
	"aiff": true,
	"m4a":  true,
}

// IsLossless reports whether ext (with or without its leading dot, in any case) denotes a lossless format.
func IsLossless(ext string) bool {
	return losslessExtensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// ClassifyPath classifies the file at path by its extension.
//
// A path without an extension fails with [shared.ErrUnknownExtension].
func ClassifyPath(path string) (bool, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return false, fmt.Errorf("%w: %s", shared.ErrUnknownExtension, path)
	}
	return IsLossless(ext), nil
}
