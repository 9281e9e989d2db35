package tasks

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/sinkmuzik/internal/models"
)

// Outcome is the result of one file operation, tagged with the file it belongs to.
type Outcome struct {
	Source      string          // Source path of the file
	Destination string          // Destination path the operation wrote (or tried to write)
	Decision    models.Decision // Operation that ran
	Err         error           // Nil on success
	Duration    time.Duration   // Wall time of the operation
}

func (o Outcome) Succeeded() bool { return o.Err == nil }
func (o Outcome) Converted() bool { return o.Decision == models.Transcode }

// SyncResult aggregates the outcomes of a sync.
type SyncResult struct {
	Total     int           // Files handed to the batch
	Succeeded int           // Files copied or transcoded
	Failed    int           // Files whose operation failed
	Skipped   int           // Files excluded before the batch, set by the caller
	Outcomes  []Outcome     // One per file, ordered by source path
	Duration  time.Duration // Wall time of the whole batch
}

// Failures maps the source path of every failed file to its error.
func (r *SyncResult) Failures() map[string]error {
	failures := make(map[string]error, r.Failed)
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failures[o.Source] = o.Err
		}
	}
	return failures
}

// Transcoded counts successful transcodes.
func (r *SyncResult) Transcoded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil && o.Converted() {
			n++
		}
	}
	return n
}

// Copied counts successful verbatim copies.
func (r *SyncResult) Copied() int {
	return r.Succeeded - r.Transcoded()
}

// Sync runs [Engine.Apply] on every file using a bounded worker pool.
//
// Each worker owns one file at a time and no file is shared between workers. A failure is
// recorded against its file and never stops the batch, so every file gets exactly one outcome.
// Cancelling ctx makes the remaining operations fail quickly instead of skipping them.
func (e *Engine) Sync(ctx context.Context, files []*models.AudioFile, progress chan<- ProgressUpdate) *SyncResult {
	start := time.Now()
	total := len(files)
	result := &SyncResult{
		Total:    total,
		Outcomes: make([]Outcome, 0, total),
	}

	workers := e.poolSize(total)
	e.sendProgress(progress, syncStartedUpdate(total, workers))
	e.logger.Info("starting sync", "files", total, "workers", workers, "policy", e.policy)

	jobs := make(chan *models.AudioFile, total)
	results := make(chan Outcome, total)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go e.syncWorker(ctx, &wg, jobs, results)
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for o := range results {
		completed++
		result.Outcomes = append(result.Outcomes, o)

		if o.Err == nil {
			result.Succeeded++
		} else {
			result.Failed++
			e.logger.Error("operation failed", "file", o.Source, "decision", o.Decision, "error", o.Err)
		}

		if e.recorder != nil {
			if err := e.recorder.RecordOutcome(o.Source, o.Destination, o.Decision, o.Err, o.Duration); err != nil {
				e.logger.Warn("failed to record outcome", "file", o.Source, "error", err)
			}
		}
		e.sendProgress(progress, outcomeUpdate(completed, total, o))
	}

	slices.SortFunc(result.Outcomes, func(a, b Outcome) int {
		return strings.Compare(a.Source, b.Source)
	})
	result.Duration = time.Since(start)

	e.sendProgress(progress, syncDoneUpdate(result))
	e.logger.Info("sync finished", "succeeded", result.Succeeded, "failed", result.Failed, "duration", result.Duration)
	return result
}

// syncWorker is a worker goroutine that applies operations to files from the jobs channel.
func (e *Engine) syncWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan *models.AudioFile,
	results chan<- Outcome,
) {
	defer wg.Done()

	for file := range jobs {
		start := time.Now()
		decision, err := e.Apply(ctx, file)
		results <- Outcome{
			Source:      file.Source,
			Destination: file.Destination(),
			Decision:    decision,
			Err:         err,
			Duration:    time.Since(start),
		}
	}
}
