// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/sinkmuzik/internal/shared"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// FLACBytes builds a minimal FLAC stream carrying the given "KEY=VALUE" vorbis comments.
//
// With no comments the stream holds only an empty STREAMINFO block, so it has no tags at all.
func FLACBytes(comments ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("fLaC")

	if len(comments) == 0 {
		buf.Write([]byte{0x80, 0, 0, 34})
		buf.Write(make([]byte, 34))
		return buf.Bytes()
	}

	var block bytes.Buffer
	vendor := "sinkmuzik test"
	binary.Write(&block, binary.LittleEndian, uint32(len(vendor)))
	block.WriteString(vendor)
	binary.Write(&block, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		binary.Write(&block, binary.LittleEndian, uint32(len(c)))
		block.WriteString(c)
	}

	n := block.Len()
	buf.Write([]byte{0x84, byte(n >> 16), byte(n >> 8), byte(n)})
	buf.Write(block.Bytes())
	return buf.Bytes()
}

// WriteFLAC writes a tagged FLAC stream to path, creating parent directories.
//
// The extension of path is not checked, so the same bytes can stand in for any format.
func WriteFLAC(t *testing.T, path string, comments ...string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, FLACBytes(comments...), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// ID3v2Bytes builds an ID3v2.3 tag holding the given "FRAME=value" text frames, e.g. "TIT2=Title".
func ID3v2Bytes(frames ...string) []byte {
	var body bytes.Buffer
	for _, f := range frames {
		id, value, _ := strings.Cut(f, "=")
		body.WriteString(id)
		binary.Write(&body, binary.BigEndian, uint32(len(value)+1))
		body.Write([]byte{0, 0, 0})
		body.WriteString(value)
	}
	body.Write(make([]byte, 16))

	n := body.Len()
	var buf bytes.Buffer
	buf.WriteString("ID3")
	buf.Write([]byte{3, 0, 0, byte(n >> 21 & 0x7f), byte(n >> 14 & 0x7f), byte(n >> 7 & 0x7f), byte(n & 0x7f)})
	buf.Write(body.Bytes())
	return buf.Bytes()
}

// chunkBytes encodes one RIFF or FORM chunk, padded to an even length.
func chunkBytes(order binary.ByteOrder, id string, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	binary.Write(&buf, order, uint32(len(data)))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// WAVBytes builds a short 16-bit mono PCM WAV stream.
//
// Each "ID=value" entry (e.g. "IART=Artist") goes into a LIST/INFO chunk after the samples, and
// id3, when not empty, is embedded as an "id3 " chunk.
func WAVBytes(id3 []byte, info ...string) []byte {
	le := binary.LittleEndian

	var format bytes.Buffer
	for _, v := range []any{uint16(1), uint16(1), uint32(44100), uint32(88200), uint16(2), uint16(16)} {
		binary.Write(&format, le, v)
	}

	var body bytes.Buffer
	body.WriteString("WAVE")
	body.Write(chunkBytes(le, "fmt ", format.Bytes()))
	body.Write(chunkBytes(le, "data", make([]byte, 8)))

	if len(info) > 0 {
		var list bytes.Buffer
		list.WriteString("INFO")
		for _, e := range info {
			id, value, _ := strings.Cut(e, "=")
			list.Write(chunkBytes(le, id, append([]byte(value), 0)))
		}
		body.Write(chunkBytes(le, "LIST", list.Bytes()))
	}
	if len(id3) > 0 {
		body.Write(chunkBytes(le, "id3 ", id3))
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, le, uint32(body.Len()))
	buf.Write(body.Bytes())
	return buf.Bytes()
}

// AIFFBytes builds a minimal AIFF stream with "ID=value" text chunks (NAME, AUTH, ANNO) and, when
// id3 is not empty, an "ID3 " chunk.
func AIFFBytes(id3 []byte, text ...string) []byte {
	be := binary.BigEndian

	var comm bytes.Buffer
	binary.Write(&comm, be, uint16(1))
	binary.Write(&comm, be, uint32(0))
	binary.Write(&comm, be, uint16(16))
	comm.Write([]byte{0x40, 0x0e, 0xac, 0x44, 0, 0, 0, 0, 0, 0})

	var body bytes.Buffer
	body.WriteString("AIFF")
	body.Write(chunkBytes(be, "COMM", comm.Bytes()))
	for _, e := range text {
		id, value, _ := strings.Cut(e, "=")
		body.Write(chunkBytes(be, id, []byte(value)))
	}
	body.Write(chunkBytes(be, "SSND", make([]byte, 8)))
	if len(id3) > 0 {
		body.Write(chunkBytes(be, "ID3 ", id3))
	}

	var buf bytes.Buffer
	buf.WriteString("FORM")
	binary.Write(&buf, be, uint32(body.Len()))
	buf.Write(body.Bytes())
	return buf.Bytes()
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// PadFile grows the file at path to size bytes with trailing zeros.
func PadFile(t *testing.T, path string, size int64) {
	t.Helper()
	if err := os.Truncate(path, size); err != nil {
		t.Fatalf("Failed to pad %s to %d bytes: %v", path, size, err)
	}
}

// WriteScript writes an executable shell script to dir/name and returns its path.
//
// The calling test is skipped when no sh is available.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("Failed to write script %s: %v", path, err)
	}
	return path
}

// CopyEncoder returns an encoder profile whose "encoder" copies its input to its output,
// failing for any input file whose name contains "bad".
func CopyEncoder(t *testing.T, dir string) *shared.EncoderProfile {
	t.Helper()
	script := WriteScript(t, dir, "fake-encoder.sh", `case "$(basename "$1")" in
*bad*) echo "cannot encode $1" >&2; exit 1 ;;
esac
cp "$1" "$2"`)
	return &shared.EncoderProfile{
		Name:        "opus",
		Extension:   "opus",
		Encoder:     script,
		CommandLine: "<inputfile> <outputfile>",
	}
}

// TestConfig returns a valid config whose library lives under dir/library.
func TestConfig(dir string) *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.StoragePath = filepath.Join(dir, "library")
	cfg.EncodersDir = filepath.Join(dir, "encoders")
	cfg.MusicFilesTemplate = "<artist>/<title>"
	cfg.Log.Path = ""
	cfg.History.Path = ""
	return cfg
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

// AssertFileNotEmpty fails the test unless path is a regular file with content.
func AssertFileNotEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("File does not exist: %s", path)
		return
	}
	if info.Size() == 0 {
		t.Errorf("File is empty: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
