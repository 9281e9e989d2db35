package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/sinkmuzik/internal/shared"
	"github.com/urfave/cli/v3"
)

const usage = `USAGE:
    sinkmuzik <action> <music directory>

ACTIONS:
    sync, convert    copy or transcode the directory into the library
    preview          show where each file would be written`

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := newApp(runner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if shared.IsUsageError(err) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s\n", err, usage)
			runner.Close()
			os.Exit(2)
		}
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "sinkmuzik",
		Usage:    "Sync a music directory into a tagged library, transcoding with an external encoder",
		Version:  "0.1.0",
		Commands: r.register(),
		Action:   unknownAction,
	}
}

// unknownAction rejects invocations that do not name a known action.
func unknownAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("%w: action", shared.ErrMissingArgument)
	}
	return fmt.Errorf("%w: unknown action %q", shared.ErrInvalidArgument, cmd.Args().First())
}
