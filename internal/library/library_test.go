package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/sinkmuzik/internal/shared"
	tu "github.com/desertthunder/sinkmuzik/internal/testing"
)

func TestIsLossless(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{"flac", true},
		{"FLAC", true},
		{".flac", true},
		{"wav", true},
		{"WaV", true},
		{"aiff", true},
		{"m4a", true},
		{"M4A", true},
		{"mp3", false},
		{"ogg", false},
		{"opus", false},
		{"xyz", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := IsLossless(tt.ext); got != tt.want {
				t.Errorf("IsLossless(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestClassifyPath(t *testing.T) {
	t.Run("lossless", func(t *testing.T) {
		got, err := ClassifyPath("/music/a/song.Flac")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Error("expected .Flac to be lossless")
		}
	})

	t.Run("lossy", func(t *testing.T) {
		got, err := ClassifyPath("/music/a/song.mp3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got {
			t.Error("expected .mp3 to be lossy")
		}
	})

	for _, path := range []string{"/music/a/song", "/music/a/song."} {
		t.Run("no extension "+path, func(t *testing.T) {
			_, err := ClassifyPath(path)
			if !errors.Is(err, shared.ErrUnknownExtension) {
				t.Errorf("expected ErrUnknownExtension, got %v", err)
			}
		})
	}
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		fields   map[string]string
		want     string
	}{
		{
			name:     "all keys present",
			template: "<artist>/<title>",
			fields:   map[string]string{"artist": "A", "title": "B"},
			want:     "A/B",
		},
		{
			name:     "absent key stays literal",
			template: "<artist>/<missing>",
			fields:   map[string]string{"artist": "A"},
			want:     "A/<missing>",
		},
		{
			name:     "key case is folded",
			template: "<artist> - <title>",
			fields:   map[string]string{"ARTIST": "A", "Title": "B"},
			want:     "A - B",
		},
		{
			name:     "repeated placeholder",
			template: "<album>/<album>",
			fields:   map[string]string{"album": "X"},
			want:     "X/X",
		},
		{
			name:     "value inserted literally",
			template: "<title>",
			fields:   map[string]string{"title": "Track: 01 / Intro"},
			want:     "Track: 01 / Intro",
		},
		{
			name:     "no fields",
			template: "<artist>/<title>",
			fields:   nil,
			want:     "<artist>/<title>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderTemplate(tt.template, tt.fields); got != tt.want {
				t.Errorf("RenderTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadMetadata(t *testing.T) {
	dir := t.TempDir()

	t.Run("vorbis comments", func(t *testing.T) {
		path := tu.WriteFLAC(t, filepath.Join(dir, "tagged.flac"), "ARTIST=A", "TITLE=B", "MOOD=calm")

		fields, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]string{"artist": "A", "title": "B", "mood": "calm"}
		for k, v := range want {
			if fields[k] != v {
				t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
			}
		}
		if _, ok := fields["vendor"]; ok {
			t.Error("vendor string should not be exposed as a field")
		}
	})

	t.Run("wav list info", func(t *testing.T) {
		path := tu.WriteBytes(t, filepath.Join(dir, "info.wav"), tu.WAVBytes(nil,
			"IART=Artist", "INAM=Title", "IPRD=Album", "ITRK=3/12", "ICRD=2019-04-01", "IGNR=Jazz"))

		fields, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]string{
			"artist": "Artist",
			"title":  "Title",
			"album":  "Album",
			"track":  "3",
			"year":   "2019",
			"genre":  "Jazz",
		}
		for k, v := range want {
			if fields[k] != v {
				t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
			}
		}
	})

	t.Run("wav id3 chunk wins over info", func(t *testing.T) {
		id3 := tu.ID3v2Bytes("TIT2=From ID3", "TPE1=ID3 Artist")
		path := tu.WriteBytes(t, filepath.Join(dir, "both.wav"), tu.WAVBytes(id3, "INAM=From INFO", "IPRD=Info Album"))

		fields, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fields["title"] != "From ID3" {
			t.Errorf("title = %q, want the ID3 value", fields["title"])
		}
		if fields["artist"] != "ID3 Artist" {
			t.Errorf("artist = %q, want %q", fields["artist"], "ID3 Artist")
		}
		if fields["album"] != "Info Album" {
			t.Errorf("album = %q, want INFO to fill the gap", fields["album"])
		}
	})

	t.Run("aiff id3 chunk", func(t *testing.T) {
		id3 := tu.ID3v2Bytes("TIT2=Song", "TPE1=Band", "TALB=Record")
		path := tu.WriteBytes(t, filepath.Join(dir, "tagged.aiff"), tu.AIFFBytes(id3))

		fields, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]string{"title": "Song", "artist": "Band", "album": "Record"}
		for k, v := range want {
			if fields[k] != v {
				t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
			}
		}
	})

	t.Run("aiff text chunks", func(t *testing.T) {
		path := tu.WriteBytes(t, filepath.Join(dir, "text.aiff"), tu.AIFFBytes(nil, "NAME=Odd", "AUTH=Someone"))

		fields, err := ReadMetadata(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fields["title"] != "Odd" || fields["artist"] != "Someone" {
			t.Errorf("unexpected fields %v", fields)
		}
	})

	t.Run("untagged containers", func(t *testing.T) {
		for name, data := range map[string][]byte{
			"bare.wav":  tu.WAVBytes(nil),
			"bare.aiff": tu.AIFFBytes(nil),
		} {
			path := tu.WriteBytes(t, filepath.Join(dir, name), data)
			if _, err := ReadMetadata(path); !errors.Is(err, shared.ErrNoMetadata) {
				t.Errorf("%s: expected ErrNoMetadata, got %v", name, err)
			}
		}
	})

	t.Run("no fields", func(t *testing.T) {
		path := tu.WriteFLAC(t, filepath.Join(dir, "bare.flac"))

		_, err := ReadMetadata(path)
		if !errors.Is(err, shared.ErrNoMetadata) {
			t.Errorf("expected ErrNoMetadata, got %v", err)
		}
	})

	t.Run("not audio", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(path, []byte("just some text, nothing else"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := ReadMetadata(path)
		if !errors.Is(err, shared.ErrNoMetadata) {
			t.Errorf("expected ErrNoMetadata, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadMetadata(filepath.Join(dir, "nope.flac"))
		if !errors.Is(err, shared.ErrNoMetadata) {
			t.Errorf("expected ErrNoMetadata, got %v", err)
		}
	})
}

func TestResolveDestination(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "library")
	path := tu.WriteFLAC(t, filepath.Join(dir, "in.flac"), "ARTIST=A", "TITLE=B")

	got, err := ResolveDestination(root, "<artist>/<title>", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(root, "A", "B"); got != want {
		t.Errorf("ResolveDestination() = %q, want %q", got, want)
	}

	got, err = ResolveDestination(root, "<artist>/<missing>", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(root, "A", "<missing>"); got != want {
		t.Errorf("ResolveDestination() = %q, want %q", got, want)
	}

	t.Run("slash in value nests under root", func(t *testing.T) {
		path := tu.WriteFLAC(t, filepath.Join(dir, "acdc.flac"), "ARTIST=AC/DC", "TITLE=T.N.T.")
		got, err := ResolveDestination(root, "<artist>/<title>", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := filepath.Join(root, "AC", "DC", "T.N.T."); got != want {
			t.Errorf("ResolveDestination() = %q, want %q", got, want)
		}
	})

	escapes := []struct {
		name     string
		template string
		tags     []string
	}{
		{"parent traversal", "<artist>/<title>", []string{"ARTIST=../../etc", "TITLE=passwd"}},
		{"single parent", "<artist>", []string{"ARTIST=..", "TITLE=x"}},
		{"resolves to root", "<artist>/<title>", []string{"ARTIST=.", "TITLE=."}},
	}
	for _, tt := range escapes {
		t.Run(tt.name, func(t *testing.T) {
			path := tu.WriteFLAC(t, filepath.Join(t.TempDir(), "in.flac"), tt.tags...)
			got, err := ResolveDestination(root, tt.template, path)
			if !errors.Is(err, shared.ErrOutsideLibrary) {
				t.Fatalf("expected ErrOutsideLibrary, got %q, %v", got, err)
			}
		})
	}
}

func TestNewAudioFile(t *testing.T) {
	dir := t.TempDir()
	cfg := tu.TestConfig(dir)
	profile := &shared.EncoderProfile{Name: "opus", Extension: "opus", Encoder: "true", CommandLine: "<inputfile> <outputfile>"}

	path := tu.WriteFLAC(t, filepath.Join(dir, "src", "in.flac"), "ARTIST=A", "TITLE=B")
	file, err := NewAudioFile(path, cfg, profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !filepath.IsAbs(file.Source) {
		t.Errorf("source should be absolute, got %q", file.Source)
	}
	if !file.Lossless {
		t.Error("flac source should be lossless")
	}
	if file.Converted {
		t.Error("a new file should not be marked converted")
	}
	if want := filepath.Join(cfg.StoragePath, "A", "B.opus"); file.Destination() != want {
		t.Errorf("Destination() = %q, want %q", file.Destination(), want)
	}
	if file.Size == 0 {
		t.Error("size should be recorded")
	}

	t.Run("dotted title keeps directory", func(t *testing.T) {
		path := tu.WriteFLAC(t, filepath.Join(dir, "src", "dots.mp3"), "ARTIST=A", "TITLE=Vol. 2")
		file, err := NewAudioFile(path, cfg, profile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := filepath.Join(cfg.StoragePath, "A", "Vol. 2.opus"); file.Destination() != want {
			t.Errorf("Destination() = %q, want %q", file.Destination(), want)
		}
		if file.Lossless {
			t.Error("mp3 source should be lossy")
		}
	})

	t.Run("no extension", func(t *testing.T) {
		path := tu.WriteFLAC(t, filepath.Join(dir, "src", "noext"), "ARTIST=A")
		_, err := NewAudioFile(path, cfg, profile)
		if !errors.Is(err, shared.ErrUnknownExtension) {
			t.Errorf("expected ErrUnknownExtension, got %v", err)
		}
	})
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	cfg := tu.TestConfig(dir)
	profile := &shared.EncoderProfile{Name: "opus", Extension: "opus", Encoder: "true", CommandLine: "<inputfile> <outputfile>"}

	tu.WriteFLAC(t, filepath.Join(src, "a.flac"), "ARTIST=A", "TITLE=One")
	tu.WriteFLAC(t, filepath.Join(src, "nested", "b.mp3"), "ARTIST=B", "TITLE=Two")
	tu.WriteBytes(t, filepath.Join(src, "nested", "deeper", "c.wav"), tu.WAVBytes(nil, "IART=C", "INAM=Three"))
	tu.WriteBytes(t, filepath.Join(src, "e.aiff"), tu.AIFFBytes(tu.ID3v2Bytes("TPE1=E", "TIT2=Five")))
	tu.WriteFLAC(t, filepath.Join(src, "bare.flac"))
	tu.WriteFLAC(t, filepath.Join(src, "noext"), "ARTIST=D")

	d, err := Discover(src, cfg, profile)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	if len(d.Files) != 4 {
		t.Fatalf("expected 4 files, got %d", len(d.Files))
	}
	if len(d.Skipped) != 2 {
		t.Fatalf("expected 2 skipped files, got %d", len(d.Skipped))
	}

	for _, f := range d.Files {
		switch filepath.Base(f.Source) {
		case "bare.flac":
			t.Error("file without metadata should not be in the batch")
		case "c.wav":
			if want := filepath.Join(cfg.StoragePath, "C", "Three.opus"); f.Destination() != want || !f.Lossless {
				t.Errorf("c.wav: destination %q lossless %v, want %q and lossless", f.Destination(), f.Lossless, want)
			}
		case "e.aiff":
			if want := filepath.Join(cfg.StoragePath, "E", "Five.opus"); f.Destination() != want || !f.Lossless {
				t.Errorf("e.aiff: destination %q lossless %v, want %q and lossless", f.Destination(), f.Lossless, want)
			}
		}
	}

	reasons := map[string]error{}
	for _, s := range d.Skipped {
		reasons[filepath.Base(s.Path)] = s.Reason
	}
	if !errors.Is(reasons["bare.flac"], shared.ErrNoMetadata) {
		t.Errorf("bare.flac: expected ErrNoMetadata, got %v", reasons["bare.flac"])
	}
	if !errors.Is(reasons["noext"], shared.ErrUnknownExtension) {
		t.Errorf("noext: expected ErrUnknownExtension, got %v", reasons["noext"])
	}

	if d.TotalSize() <= 0 {
		t.Error("expected a positive total size")
	}

	t.Run("missing root", func(t *testing.T) {
		_, err := Discover(filepath.Join(dir, "absent"), cfg, profile)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		_, err := Discover(filepath.Join(src, "a.flac"), cfg, profile)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestLockLibrary(t *testing.T) {
	t.Run("CreatesRootAndLocks", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "new", "library")

		lock, err := LockLibrary(root)
		if err != nil {
			t.Fatalf("LockLibrary failed: %v", err)
		}
		defer lock.Unlock()

		tu.AssertDirExists(t, root)
		tu.AssertFileExists(t, filepath.Join(root, LockFileName))
		if lock.Path() != filepath.Join(root, LockFileName) {
			t.Errorf("unexpected lock path %s", lock.Path())
		}
	})

	t.Run("SecondLockFails", func(t *testing.T) {
		root := t.TempDir()

		first, err := LockLibrary(root)
		if err != nil {
			t.Fatalf("LockLibrary failed: %v", err)
		}

		if _, err := LockLibrary(root); !errors.Is(err, shared.ErrLocked) {
			t.Fatalf("expected ErrLocked while held, got %v", err)
		}

		if err := first.Unlock(); err != nil {
			t.Fatalf("Unlock failed: %v", err)
		}

		again, err := LockLibrary(root)
		if err != nil {
			t.Fatalf("expected lock after release, got %v", err)
		}
		again.Unlock()
	})

	t.Run("RootIsAFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LockLibrary(path); !errors.Is(err, shared.ErrIO) {
			t.Errorf("expected ErrIO, got %v", err)
		}
	})
}
