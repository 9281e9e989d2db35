package library

import (
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
)

// maxTextChunk bounds how much of an AIFF text chunk is read.
const maxTextChunk = 64 << 10

// container identifies an interchange-file container by its 12-byte header.
type container int

const (
	notContainer container = iota
	riffWave
	formAIFF
)

func sniffContainer(r io.ReaderAt) container {
	header := make([]byte, 12)
	if _, err := r.ReadAt(header, 0); err != nil {
		return notContainer
	}
	switch {
	case string(header[0:4]) == "RIFF" && string(header[8:12]) == "WAVE":
		return riffWave
	case string(header[0:4]) == "FORM" && (string(header[8:12]) == "AIFF" || string(header[8:12]) == "AIFC"):
		return formAIFF
	}
	return notContainer
}

// chunk is one top-level chunk of a RIFF or FORM container.
type chunk struct {
	id   string
	data *io.SectionReader
}

// walkChunks calls fn for every top-level chunk after the 12-byte container header.
//
// RIFF sizes are little endian and FORM sizes big endian; both pad odd-sized chunks to an even
// length. Walking stops quietly at the first truncated header or a chunk running past size.
func walkChunks(r io.ReaderAt, size int64, order binary.ByteOrder, fn func(c chunk)) {
	header := make([]byte, 8)
	for off := int64(12); off+8 <= size; {
		if _, err := r.ReadAt(header, off); err != nil {
			return
		}
		n := int64(order.Uint32(header[4:8]))
		start := off + 8
		if start+n > size {
			return
		}
		fn(chunk{id: string(header[0:4]), data: io.NewSectionReader(r, start, n)})
		off = start + n + n%2
	}
}

// readContainerFields collects the tags of a WAV or AIFF file.
//
// An embedded ID3v2 chunk ("id3 " or "ID3 ") is read first; WAV LIST/INFO entries and AIFF
// text chunks fill in any field it lacks.
func readContainerFields(r io.ReaderAt, size int64, kind container) map[string]string {
	order := binary.ByteOrder(binary.LittleEndian)
	if kind == formAIFF {
		order = binary.BigEndian
	}

	fields := make(map[string]string)
	merge := func(k, v string) {
		v = strings.TrimSpace(strings.TrimRight(v, "\x00"))
		if v == "" {
			return
		}
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}

	text := map[string]string{}
	walkChunks(r, size, order, func(c chunk) {
		switch c.id {
		case "id3 ", "ID3 ":
			if m, err := tag.ReadID3v2Tags(c.data); err == nil {
				for k, v := range metadataFields(m) {
					merge(k, v)
				}
			}
		case "NAME", "AUTH", "ANNO", "(c) ":
			if kind != formAIFF || c.data.Size() > maxTextChunk {
				return
			}
			b, err := io.ReadAll(c.data)
			if err == nil {
				text[c.id] = string(b)
			}
		}
	})

	switch kind {
	case riffWave:
		for k, v := range readWAVInfo(io.NewSectionReader(r, 0, size)) {
			merge(k, v)
		}
	case formAIFF:
		merge("title", text["NAME"])
		merge("artist", text["AUTH"])
		merge("comment", text["ANNO"])
		merge("copyright", text["(c) "])
	}
	return fields
}

// readWAVInfo reads the LIST/INFO entries of a WAV stream under their common field names.
func readWAVInfo(r io.ReadSeeker) map[string]string {
	d := wav.NewDecoder(r)
	d.ReadMetadata()
	if d.Metadata == nil {
		return nil
	}

	m := d.Metadata
	fields := map[string]string{
		"title":      m.Title,
		"artist":     m.Artist,
		"album":      m.Product,
		"genre":      m.Genre,
		"comment":    m.Comments,
		"copyright":  m.Copyright,
		"engineer":   m.Engineer,
		"technician": m.Technician,
		"keywords":   m.Keywords,
		"medium":     m.Medium,
		"subject":    m.Subject,
		"source":     m.Source,
		"location":   m.Location,
		"date":       m.CreationDate,
	}
	if n := leadingInt(m.TrackNbr); n > 0 {
		fields["track"] = strconv.Itoa(n)
	}
	if y := m.CreationDate; len(y) >= 4 && leadingInt(y[:4]) >= 1000 {
		fields["year"] = y[:4]
	}
	return fields
}

// leadingInt parses the digits at the start of s, so "3/12" yields 3. It returns 0 when there are none.
func leadingInt(s string) int {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

