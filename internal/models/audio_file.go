package models

import (
	"path/filepath"
	"strings"
)

// AudioFile is one discovered input file and the place it will take in the library.
//
// Stem is the destination path without an extension and is fixed once the file is constructed,
// so the destination directory never moves; only Extension changes when the operation is decided.
type AudioFile struct {
	Source    string // Absolute path of the original file
	Stem      string // Destination path without extension
	Extension string // Destination extension, no leading dot
	Lossless  bool   // Derived once from the source extension
	Converted bool   // Set by the operation that ran
	Size      int64  // Source size in bytes at discovery time
}

// NewAudioFile builds an [AudioFile] whose destination is stem.ext.
func NewAudioFile(source, stem, ext string, lossless bool) *AudioFile {
	return &AudioFile{
		Source:    source,
		Stem:      stem,
		Extension: strings.TrimPrefix(ext, "."),
		Lossless:  lossless,
	}
}

// Destination returns the full destination path for the current extension.
func (f *AudioFile) Destination() string {
	return f.DestinationAs(f.Extension)
}

// DestinationAs returns the destination path the file would take with ext, without changing the file.
func (f *AudioFile) DestinationAs(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return f.Stem
	}
	return f.Stem + "." + ext
}

// SourceExtension returns the source extension without its leading dot.
func (f *AudioFile) SourceExtension() string {
	return strings.TrimPrefix(filepath.Ext(f.Source), ".")
}
