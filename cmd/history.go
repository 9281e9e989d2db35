package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/sinkmuzik/internal/formatter"
	"github.com/desertthunder/sinkmuzik/internal/repositories"
	"github.com/desertthunder/sinkmuzik/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists the most recent sync runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return fmt.Errorf("%w: unknown history command %q", shared.ErrInvalidArgument, cmd.Args().First())
	}

	limit := cmd.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", shared.ErrInvalidFlag)
	}

	if err := r.loadHistory(cmd); err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(r.db).List(map[string]any{"limit": limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		r.writePlain("No sync runs recorded yet\n")
		return nil
	}

	r.writePlain("%s\n", formatter.HistoryTable(runs))
	return nil
}

// HistoryShow lists the recorded file outcomes of one run, failures only unless --all is set.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	ref := strings.TrimPrefix(strings.TrimSpace(cmd.Args().First()), "#")
	if ref == "" {
		return fmt.Errorf("%w: run id or number", shared.ErrMissingArgument)
	}

	if err := r.loadHistory(cmd); err != nil {
		return err
	}

	run, err := repositories.NewRunRepository(r.db).Find(ref)
	if err != nil {
		return err
	}

	criteria := map[string]any{"run_id": run.ID()}
	if !cmd.Bool("all") {
		criteria["failed"] = true
	}
	outcomes, err := repositories.NewOutcomeRepository(r.db).List(criteria)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d (%s)", run.Sequence(), run.Status()))
	r.writePlain("Source:  %s\n", run.SourceDir())
	r.writePlain("Library: %s\n", run.StoragePath())
	r.writePlain("Policy:  %s, format %s\n", run.Policy(), run.Format())
	r.writePlain("Started: %s\n", run.StartedAt().Format("2006-01-02 15:04:05"))
	r.writePlain("%d of %d files converted and saved successfully, %d skipped\n\n", run.Succeeded(), run.Total(), run.Skipped())

	if len(outcomes) == 0 {
		if cmd.Bool("all") {
			r.writePlain("No file outcomes recorded\n")
		} else {
			r.writePlain("No failed files\n")
		}
		return nil
	}

	r.writePlain("%s\n", formatter.OutcomeTable(outcomes))
	return nil
}

// loadHistory loads the config and opens the history database it names.
func (r *Runner) loadHistory(cmd *cli.Command) error {
	if err := r.loadConfig(cmd, true); err != nil {
		return err
	}
	if err := r.openHistory(); err != nil {
		return fmt.Errorf("%w: set [history] path in %s", err, r.configPath)
	}
	return nil
}
