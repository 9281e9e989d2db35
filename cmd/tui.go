package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sinkmuzik/internal/library"
	"github.com/desertthunder/sinkmuzik/internal/shared"
	"github.com/desertthunder/sinkmuzik/internal/tasks"
	"github.com/desertthunder/sinkmuzik/internal/ui"
	"github.com/mattn/go-isatty"
)

// isTerminal reports whether both stdin and stdout are attached to a terminal.
func isTerminal() bool {
	for _, f := range []*os.File{os.Stdin, os.Stdout} {
		fd := f.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return false
		}
	}
	return true
}

// syncWithProgress runs the sync behind the interactive progress screen.
//
// It returns only once any started batch has finished, and a nil result when the user declines
// before the sync starts.
func (r *Runner) syncWithProgress(ctx context.Context, discovery *library.Discovery, skipConfirm bool) (*tasks.SyncResult, error) {
	// Keep log lines off the screen while the TUI owns it
	if r.config.Log.Path == "" {
		r.SetLogger(shared.NewLogger(io.Discard))
		r.engine.SetLogger(r.logger)
	}

	model := ui.NewModel(ctx, r.engine, discovery.Files, ui.Options{
		SkipConfirm: skipConfirm,
		Destination: r.config.StoragePath,
		Skipped:     len(discovery.Skipped),
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))

	_, err := p.Run()
	result := model.Finish()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return result, nil
		}
		return nil, fmt.Errorf("error running TUI: %w", err)
	}
	return result, nil
}
