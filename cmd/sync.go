package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/desertthunder/sinkmuzik/internal/formatter"
	"github.com/desertthunder/sinkmuzik/internal/library"
	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/repositories"
	"github.com/desertthunder/sinkmuzik/internal/shared"
	"github.com/desertthunder/sinkmuzik/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync discovers every tagged file under the directory argument and copies or transcodes it into the library.
//
// Per-file failures are reported and recorded, but do not fail the command.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	dir, err := sourceDir(cmd)
	if err != nil {
		return err
	}
	if err := r.prepare(cmd, true); err != nil {
		return err
	}

	lock, err := library.LockLibrary(r.config.StoragePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release library lock", "error", err)
		}
	}()

	discovery, err := library.Discover(dir, r.config, r.profile)
	if err != nil {
		return err
	}
	for _, s := range discovery.Skipped {
		r.logger.Debug("skipping file", "file", s.Path, "reason", s.Reason)
	}
	r.logger.Info("discovered files", "dir", dir, "files", len(discovery.Files), "skipped", len(discovery.Skipped))

	run, err := r.startRun(dir)
	if err != nil {
		return err
	}

	var result *tasks.SyncResult
	if cmd.Bool("progress") && isTerminal() {
		result, err = r.syncWithProgress(ctx, discovery, cmd.Bool("yes"))
		if err != nil {
			return err
		}
	} else {
		result = r.engine.Sync(ctx, discovery.Files, nil)
	}

	if result == nil {
		r.finishRun(run, &tasks.SyncResult{Skipped: len(discovery.Skipped)})
		if err := ctx.Err(); err != nil {
			r.writePlain("Sync interrupted\n")
			return fmt.Errorf("sync interrupted: %w", err)
		}
		r.writePlain("Sync cancelled, no files were written\n")
		return nil
	}
	result.Skipped = len(discovery.Skipped)
	r.finishRun(run, result)

	r.printSyncSummary(result, run)

	if path := cmd.String("report"); path != "" {
		if err := formatter.WriteReport(result, cmd.String("format"), path); err != nil {
			return err
		}
		r.writePlain("Report written to %s\n", path)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sync interrupted: %w", err)
	}
	return nil
}

func (r *Runner) printSyncSummary(result *tasks.SyncResult, run *models.SyncRun) {
	r.writePlain("%d of %d files converted and saved successfully\n", result.Succeeded, result.Total)
	r.writePlain("Transcoded: %d, Copied: %d, Skipped: %d\n", result.Transcoded(), result.Copied(), result.Skipped)

	if result.Failed > 0 {
		failures := result.Failures()
		paths := make([]string, 0, len(failures))
		for p := range failures {
			paths = append(paths, p)
		}
		slices.Sort(paths)

		r.writePlainln("%d file(s) failed:", result.Failed)
		for _, p := range paths {
			r.writePlain("  ✗ %s: %v\n", p, failures[p])
		}
	}

	if run != nil {
		r.writePlain("Recorded as run #%d (%s)\n", run.Sequence(), run.ID())
	}
}

// openHistory opens the history database once per runner.
func (r *Runner) openHistory() error {
	if r.db != nil {
		return nil
	}
	db, err := shared.OpenHistory(r.config.History)
	if err != nil {
		return err
	}
	r.db = db
	return nil
}

// startRun records a new run and attaches a recorder to the engine, or returns nil when history is disabled.
func (r *Runner) startRun(dir string) (*models.SyncRun, error) {
	if err := r.openHistory(); err != nil {
		if errors.Is(err, shared.ErrHistoryDisabled) {
			return nil, nil
		}
		return nil, err
	}

	source, err := filepath.Abs(dir)
	if err != nil {
		source = dir
	}

	run := models.NewSyncRun(0, source, r.config.StoragePath, r.config.Convert, r.config.ConversionFormat)
	if err := repositories.NewRunRepository(r.db).Create(run); err != nil {
		return nil, fmt.Errorf("failed to record sync run: %w", err)
	}

	recorder := repositories.NewHistoryRecorder(repositories.NewOutcomeRepository(r.db), run.ID())
	r.engine.SetRecorder(recorder)
	r.logger.Debug("recording sync run", "run", run.ID(), "sequence", run.Sequence())
	return run, nil
}

// finishRun stores the final counts of run. History problems are logged and never fail the sync.
func (r *Runner) finishRun(run *models.SyncRun, result *tasks.SyncResult) {
	if run == nil {
		return
	}
	run.Complete(result.Total, result.Succeeded, result.Failed, result.Skipped)
	if err := repositories.NewRunRepository(r.db).Update(run); err != nil {
		r.logger.Warn("failed to complete sync run", "run", run.ID(), "error", err)
	}
}
