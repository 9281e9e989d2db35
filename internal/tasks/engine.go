// package tasks implements the sync and preview operations over a discovered batch of files.
//
// The core abstraction is Engine, which owns the read-only configuration shared by every worker.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/shared"
	"golang.org/x/time/rate"
)

// Recorder receives each file outcome as the batch completes it.
//
// Implementations are called from a single goroutine.
type Recorder interface {
	RecordOutcome(source, destination string, decision models.Decision, err error, elapsed time.Duration) error
}

// Engine runs file operations with the policy and encoder profile of one run.
type Engine struct {
	policy   models.Policy
	profile  *shared.EncoderProfile
	workers  int
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *log.Logger
	recorder Recorder
}

// NewEngine creates an Engine from the loaded config and encoder profile.
//
// A nil logger falls back to [shared.NewLogger] on stderr.
func NewEngine(cfg *shared.Config, profile *shared.EncoderProfile, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	e := &Engine{
		policy:  cfg.Convert,
		profile: profile,
		workers: cfg.Workers,
		timeout: cfg.Timeout.Duration,
		logger:  logger,
	}
	if cfg.SpawnRate > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.SpawnRate), 1)
	}
	return e
}

// SetLogger replaces the engine's logger. A nil l is ignored.
func (e *Engine) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetRecorder attaches r to receive every outcome of subsequent syncs. A nil r disables recording.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

func (e *Engine) Policy() models.Policy           { return e.policy }
func (e *Engine) Profile() *shared.EncoderProfile { return e.profile }

// poolSize returns the number of workers for n files: the configured count, or one per CPU,
// never more than n and never less than one.
func (e *Engine) poolSize(n int) int {
	size := e.workers
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if size > n {
		size = n
	}
	if size < 1 {
		size = 1
	}
	return size
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
