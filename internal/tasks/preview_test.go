package tasks

import (
	"path/filepath"
	"testing"

	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/shared"
)

const mb = 1024 * 1024

func previewFiles(root string) []*models.AudioFile {
	sizes := []int64{1 * mb, 2 * mb, 3*mb + mb/2}
	files := make([]*models.AudioFile, 0, len(sizes))
	for i, size := range sizes {
		name := string(rune('a' + i))
		f := models.NewAudioFile(filepath.Join(root, "src", name+".flac"), filepath.Join(root, "library", name), "opus", true)
		f.Size = size
		files = append(files, f)
	}
	return files
}

func TestEngine_Preview(t *testing.T) {
	profile := &shared.EncoderProfile{Extension: "opus", Encoder: "ffmpeg", CommandLine: "<inputfile> <outputfile>"}

	tests := []struct {
		policy models.Policy
		size   int64
	}{
		{models.ConvertNone, 6},
		{models.ConvertAll, 0},
		{models.ConvertIfExtDiffers, 0},
		{models.ConvertOnlyIfLossless, 0},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			root := t.TempDir()
			files := previewFiles(root)
			engine := newTestEngine(tt.policy, profile)

			result := engine.Preview(files)
			if result.Count != 3 {
				t.Errorf("Count = %d, want 3", result.Count)
			}
			if result.SizeMB != tt.size {
				t.Errorf("SizeMB = %d, want %d", result.SizeMB, tt.size)
			}
			if len(result.Entries) != 3 {
				t.Fatalf("len(Entries) = %d, want 3", len(result.Entries))
			}
			for i, entry := range result.Entries {
				if want := files[i].Stem + ".opus"; entry.Destination != want {
					t.Errorf("entry %d destination = %q, want %q", i, entry.Destination, want)
				}
			}
		})
	}
}

func TestEngine_Preview_DoesNotMutate(t *testing.T) {
	root := t.TempDir()
	files := previewFiles(root)
	for _, f := range files {
		f.Extension = "flac"
	}
	engine := newTestEngine(models.ConvertNone, &shared.EncoderProfile{Extension: "opus"})

	result := engine.Preview(files)

	for i, f := range files {
		if f.Extension != "flac" || f.Converted {
			t.Errorf("file %d was modified: ext=%q converted=%v", i, f.Extension, f.Converted)
		}
		if result.Entries[i].Destination != f.Stem+".opus" {
			t.Errorf("entry %d destination = %q", i, result.Entries[i].Destination)
		}
	}
	if result.Entries[2].SizeMB != 3 {
		t.Errorf("sizes must be truncated to whole megabytes, got %d", result.Entries[2].SizeMB)
	}
}
