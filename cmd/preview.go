package main

import (
	"context"

	"github.com/desertthunder/sinkmuzik/internal/formatter"
	"github.com/desertthunder/sinkmuzik/internal/library"
	"github.com/urfave/cli/v3"
)

// Preview prints where each discovered file would be written. Nothing on disk is touched.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	dir, err := sourceDir(cmd)
	if err != nil {
		return err
	}
	if err := r.prepare(cmd, false); err != nil {
		return err
	}

	discovery, err := library.Discover(dir, r.config, r.profile)
	if err != nil {
		return err
	}
	for _, s := range discovery.Skipped {
		r.logger.Debug("skipping file", "file", s.Path, "reason", s.Reason)
	}

	result := r.engine.Preview(discovery.Files)
	result.Skipped = len(discovery.Skipped)

	if cmd.Bool("table") {
		r.writePlain("%s\n", formatter.PreviewTable(result))
	} else {
		for _, e := range result.Entries {
			r.writePlain("%s -> %s\n", e.Source, e.Destination)
		}
	}

	r.writePlain("%s\n", formatter.PreviewFooter(result))
	if result.Skipped > 0 {
		r.writePlain("%d file(s) skipped, run with --verbose to see why\n", result.Skipped)
	}
	return nil
}
