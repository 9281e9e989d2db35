package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/sinkmuzik/internal/tasks"
)

var styles = newTheme()

// theme styles the screens and colors each file outcome by what happened to it.
type theme struct {
	title      lipgloss.Style
	ok         lipgloss.Style
	err        lipgloss.Style
	warn       lipgloss.Style
	transcoded lipgloss.Style
	copied     lipgloss.Style
	muted      lipgloss.Style
}

func newTheme() *theme {
	return &theme{
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginBottom(1),
		ok:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		err:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),
		warn:       lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
		transcoded: lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")),
		copied:     lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		muted:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262")),
	}
}

// outcome renders the message of a per-file update in the color of its phase.
func (t *theme) outcome(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.FileFailed:
		return t.err.Render(u.Message)
	case tasks.TranscodeFile:
		return t.transcoded.Render(u.Message)
	case tasks.CopyFile:
		return t.copied.Render(u.Message)
	default:
		return t.muted.Render(u.Message)
	}
}
