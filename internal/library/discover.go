package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/shared"
)

// SkippedFile is a discovered file that could not be turned into an [models.AudioFile].
type SkippedFile struct {
	Path   string
	Reason error
}

// Discovery is the outcome of walking a source directory.
type Discovery struct {
	Files   []*models.AudioFile // Files that will be processed, in lexical order of their source path
	Skipped []SkippedFile       // Files excluded for lacking tags or an extension
}

// TotalSize sums the source sizes of the discovered files, in bytes.
func (d *Discovery) TotalSize() int64 {
	var n int64
	for _, f := range d.Files {
		n += f.Size
	}
	return n
}

// NewAudioFile builds the [models.AudioFile] for the file at path.
//
// Its destination is the rendered template under cfg.StoragePath, with the profile's target
// extension as the planned output.
func NewAudioFile(path string, cfg *shared.Config, profile *shared.EncoderProfile) (*models.AudioFile, error) {
	source, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrIO, path, err)
	}

	lossless, err := ClassifyPath(source)
	if err != nil {
		return nil, err
	}

	stem, err := ResolveDestination(cfg.StoragePath, cfg.MusicFilesTemplate, source)
	if err != nil {
		return nil, err
	}

	file := models.NewAudioFile(source, stem, profile.Extension, lossless)
	if info, err := os.Stat(source); err == nil {
		file.Size = info.Size()
	}
	return file, nil
}

// Discover walks root in a single goroutine and constructs an [models.AudioFile] for every regular file.
//
// Files that fail construction are collected in [Discovery.Skipped] and never fail the walk.
// An error from the walk itself (an unreadable root, for example) is returned as is.
func Discover(root string, cfg *shared.Config, profile *shared.EncoderProfile) (*Discovery, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: source directory: %v", shared.ErrInvalidArgument, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, root)
	}

	d := &Discovery{}
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		file, err := NewAudioFile(path, cfg, profile)
		if err != nil {
			d.Skipped = append(d.Skipped, SkippedFile{Path: path, Reason: err})
			return nil
		}
		d.Files = append(d.Files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return d, nil
}
