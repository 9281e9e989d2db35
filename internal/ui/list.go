package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/sinkmuzik/internal/tasks"
)

var (
	_ list.Item = entryItem{}
	_ list.Item = failureItem{}
)

// entryItem wraps [tasks.PreviewEntry] to implement [list.Item].
type entryItem struct {
	entry tasks.PreviewEntry
}

func (i entryItem) FilterValue() string { return i.entry.Source }
func (i entryItem) Title() string       { return filepath.Base(i.entry.Source) }
func (i entryItem) Description() string {
	return fmt.Sprintf("→ %s • %d MB", i.entry.Destination, i.entry.SizeMB)
}

// failureItem wraps a failed [tasks.Outcome] to implement [list.Item].
type failureItem struct {
	outcome tasks.Outcome
}

func (i failureItem) FilterValue() string { return i.outcome.Source }
func (i failureItem) Title() string       { return i.outcome.Source }
func (i failureItem) Description() string {
	return fmt.Sprintf("%s • %v", i.outcome.Decision, i.outcome.Err)
}

func newEntryList(entries []tasks.PreviewEntry, width, height int) list.Model {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Planned files"
	l.SetShowHelp(false)
	return l
}

func newFailureList(result *tasks.SyncResult, width, height int) list.Model {
	items := make([]list.Item, 0, result.Failed)
	for _, o := range result.Outcomes {
		if o.Err != nil {
			items = append(items, failureItem{outcome: o})
		}
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Failed files"
	l.SetShowHelp(false)
	return l
}
