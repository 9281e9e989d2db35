package library

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/sinkmuzik/internal/shared"
	"github.com/dhowden/tag"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReadMetadata reads the tags embedded in the file at path into a map keyed by lowercase field name.
//
// The normalized fields (title, artist, album, album_artist, composer, genre, year, track, disc)
// come first; any other textual tag from the container is added under its own lowercased name.
// WAV and AIFF files are read from their embedded ID3 chunk, WAV LIST/INFO entries, and AIFF text
// chunks, falling back to a trailing ID3v1 tag.
// A file that cannot be read, has no tag container, or exposes no fields fails with
// [shared.ErrNoMetadata].
func ReadMetadata(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrNoMetadata, path, err)
	}
	defer f.Close()

	if kind := sniffContainer(f); kind != notContainer {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrNoMetadata, path, err)
		}
		if fields := readContainerFields(f, info.Size(), kind); len(fields) > 0 {
			return fields, nil
		}
	}

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrNoMetadata, path, err)
	}

	fields := metadataFields(m)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoMetadata, path)
	}
	return fields, nil
}

func metadataFields(m tag.Metadata) map[string]string {
	fields := make(map[string]string)
	put := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}

	put("title", m.Title())
	put("artist", m.Artist())
	put("album", m.Album())
	put("album_artist", m.AlbumArtist())
	put("composer", m.Composer())
	put("genre", m.Genre())
	if y := m.Year(); y != 0 {
		fields["year"] = strconv.Itoa(y)
	}
	if n, _ := m.Track(); n != 0 {
		fields["track"] = strconv.Itoa(n)
	}
	if n, _ := m.Disc(); n != 0 {
		fields["disc"] = strconv.Itoa(n)
	}

	raw := m.Raw()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lower := cases.Lower(language.Und)
	for _, k := range keys {
		key := lower.String(k)
		if key == "vendor" {
			continue
		}
		if _, ok := fields[key]; ok {
			continue
		}
		if s, ok := raw[k].(string); ok {
			put(key, s)
		}
	}
	return fields
}

// RenderTemplate replaces every "<key>" in template with the value of key from fields.
//
// Keys are matched in their lowercased form and handled in sorted order. Values are inserted
// literally. Placeholders naming a key that is absent from fields are left untouched.
func RenderTemplate(template string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lower := cases.Lower(language.Und)
	out := template
	for _, k := range keys {
		out = strings.ReplaceAll(out, "<"+lower.String(k)+">", fields[k])
	}
	return out
}

// ResolveDestination reads the tags of the file at path and joins the rendered template onto root.
//
// The result has no extension of its own; the caller appends the one chosen for the file. Tag
// values that would place it at or above root, such as "../x", fail with [shared.ErrOutsideLibrary].
func ResolveDestination(root, template, path string) (string, error) {
	fields, err := ReadMetadata(path)
	if err != nil {
		return "", err
	}

	stem := filepath.Join(root, RenderTemplate(template, fields))
	if rel, err := filepath.Rel(root, stem); err != nil || rel == "." || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", shared.ErrOutsideLibrary, stem)
	}
	return stem, nil
}
