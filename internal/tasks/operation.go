package tasks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/shared"
)

// stderrTail bounds how much encoder stderr is attached to an error.
const stderrTail = 512

// Copy copies file byte for byte to its destination, keeping the source extension.
//
// The bytes are written to "<destination>.part" and renamed into place once complete, so an
// interrupted copy never leaves a truncated file under the final name. Failures wrap [shared.ErrIO].
func Copy(ctx context.Context, file *models.AudioFile) error {
	file.Extension = file.SourceExtension()
	file.Converted = false
	dst := file.Destination()

	if err := ensureParent(dst); err != nil {
		return err
	}

	in, err := os.Open(file.Source)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", shared.ErrIO, file.Source, err)
	}
	defer in.Close()

	part := dst + ".part"
	out, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", shared.ErrIO, part, err)
	}

	if _, err := io.Copy(out, &ctxReader{ctx: ctx, r: in}); err != nil {
		out.Close()
		os.Remove(part)
		return fmt.Errorf("%w: failed to copy %s: %v", shared.ErrIO, file.Source, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(part)
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrIO, part, err)
	}
	if err := os.Rename(part, dst); err != nil {
		os.Remove(part)
		return fmt.Errorf("%w: failed to move %s into place: %v", shared.ErrIO, dst, err)
	}
	return nil
}

// Transcode runs the profile's encoder to write file under the profile's extension and returns its stdout.
//
// The encoder writes to "<stem>.part.<ext>", which keeps the target extension for encoders that pick
// their container from it, and the result is renamed over the destination only on success. A file
// already at the destination survives any failure. Success is decided by the exit status alone.
// A spawn failure, a non-zero exit, or a cancelled ctx wraps [shared.ErrEncode] along with the tail
// of the encoder's stderr.
func Transcode(ctx context.Context, file *models.AudioFile, profile *shared.EncoderProfile) ([]byte, error) {
	file.Extension = profile.Extension
	file.Converted = true
	dst := file.Destination()
	part := partialPath(file)

	if err := ensureParent(dst); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, profile.Encoder, profile.Args(file.Source, part)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		os.Remove(part)

		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		if tail := tailOf(stderr.String(), stderrTail); tail != "" {
			return stdout.Bytes(), fmt.Errorf("%w: %s failed on %s: %v: %s", shared.ErrEncode, profile.Encoder, file.Source, err, tail)
		}
		return stdout.Bytes(), fmt.Errorf("%w: %s failed on %s: %v", shared.ErrEncode, profile.Encoder, file.Source, err)
	}

	if err := os.Rename(part, dst); err != nil {
		os.Remove(part)
		return stdout.Bytes(), fmt.Errorf("%w: %s exited cleanly but left no output for %s: %v", shared.ErrEncode, profile.Encoder, file.Source, err)
	}
	return stdout.Bytes(), nil
}

// partialPath is where the encoder writes before the output is moved into place.
func partialPath(file *models.AudioFile) string {
	return file.DestinationAs("part." + file.Extension)
}

// Apply decides the operation for file under the engine's policy and runs it.
//
// The configured timeout, when set, bounds the operation. Transcodes wait on the spawn limiter first.
func (e *Engine) Apply(ctx context.Context, file *models.AudioFile) (models.Decision, error) {
	decision := models.Decide(e.policy, file)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	logger := shared.WithLogger(e.logger, "file", file.Source)

	if decision == models.CopyVerbatim {
		err := Copy(ctx, file)
		if err == nil {
			logger.Debug("copied", "destination", file.Destination())
		}
		return decision, err
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return decision, fmt.Errorf("%w: %s not started: %v", shared.ErrEncode, file.Source, err)
		}
	}

	stdout, err := Transcode(ctx, file, e.profile)
	if len(stdout) > 0 {
		logger.Debug("encoder output", "stdout", strings.TrimSpace(string(stdout)))
	}
	if err == nil {
		logger.Debug("transcoded", "destination", file.Destination())
	}
	return decision, err
}

func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory for %s: %v", shared.ErrIO, path, err)
	}
	return nil
}

// tailOf returns at most the last n bytes of s, trimmed, cut at a line start when possible.
func tailOf(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	s = s[len(s)-n:]
	if i := strings.IndexByte(s, '\n'); i >= 0 && i < len(s)-1 {
		s = s[i+1:]
	}
	return s
}

// ctxReader stops a copy once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
