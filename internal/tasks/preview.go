package tasks

import (
	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/shared"
)

// PreviewEntry is one planned source to destination mapping.
type PreviewEntry struct {
	Source      string
	Destination string
	SizeMB      int64 // Source size in whole megabytes
}

// PreviewResult summarizes what a sync would do.
type PreviewResult struct {
	Entries []PreviewEntry
	Count   int
	SizeMB  int64 // Sum of entry sizes, or 0 when the policy may transcode
	Skipped int   // Files excluded before the batch, set by the caller
}

// Preview lists where each file would be written under the encoder profile's extension.
//
// Nothing is written and the files are not modified. Sizes are only summed under
// [models.ConvertNone], since the size of a transcoded file is unknown beforehand.
func (e *Engine) Preview(files []*models.AudioFile) *PreviewResult {
	result := &PreviewResult{
		Entries: make([]PreviewEntry, 0, len(files)),
		Count:   len(files),
	}

	for _, f := range files {
		entry := PreviewEntry{
			Source:      f.Source,
			Destination: f.DestinationAs(e.profile.Extension),
			SizeMB:      shared.BytesToMB(f.Size),
		}
		result.Entries = append(result.Entries, entry)

		if e.policy == models.ConvertNone {
			result.SizeMB += entry.SizeMB
		}
	}
	return result
}
