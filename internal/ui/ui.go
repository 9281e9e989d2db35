package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	SyncView
	ResultView
)

const (
	recentLines = 6
	maxBarWidth = 80
)

// Syncer runs a batch and plans it. [*tasks.Engine] satisfies it.
type Syncer interface {
	Sync(ctx context.Context, files []*models.AudioFile, progress chan<- tasks.ProgressUpdate) *tasks.SyncResult
	Preview(files []*models.AudioFile) *tasks.PreviewResult
}

// Options tunes the TUI.
type Options struct {
	SkipConfirm bool   // Start syncing immediately instead of showing the planned files
	Destination string // Library root shown in the confirm title
	Skipped     int    // Files excluded before the batch, shown in the summary
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	view      ViewState
	engine    Syncer
	files     []*models.AudioFile
	opts      Options
	width     int
	height    int
	plan      *tasks.PreviewResult
	entries   list.Model
	failures  list.Model
	bar       progress.Model
	updates   chan tasks.ProgressUpdate
	done      chan *tasks.SyncResult
	finished  chan struct{}
	final     *tasks.SyncResult
	progress  tasks.ProgressUpdate
	recent    []tasks.ProgressUpdate
	result    *tasks.SyncResult
	cancelled bool
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model that syncs files with engine.
//
// Quitting during a sync cancels ctx for the batch and waits for the in-flight files to finish.
func NewModel(ctx context.Context, engine Syncer, files []*models.AudioFile, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)
	m := &Model{
		ctx:    ctx,
		cancel: cancel,
		view:   ConfirmView,
		engine: engine,
		files:  files,
		opts:   opts,
		width:  maxBarWidth,
		height: 24,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth-4)),
		help:   help.New(),
		keys:   newKeyMap(),
	}
	m.plan = engine.Preview(files)
	m.entries = newEntryList(m.plan.Entries, m.width-4, m.height-8)
	return m
}

// Init starts the sync right away when confirmation is skipped.
func (m *Model) Init() tea.Cmd {
	if m.opts.SkipConfirm {
		return m.startSync()
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		m.entries.SetSize(msg.Width-4, msg.Height-8)
		if m.result != nil {
			m.failures.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SyncView:
			return m.handleSyncKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		if b, ok := bar.(progress.Model); ok {
			m.bar = b
		}
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			update := msg.data.(tasks.ProgressUpdate)
			m.progress = update
			if update.Step > 0 && update.Message != "" {
				m.recent = append(m.recent, update)
				if len(m.recent) > recentLines {
					m.recent = m.recent[len(m.recent)-recentLines:]
				}
			}
			return m, tea.Batch(m.bar.SetPercent(m.percent()), m.waitForProgress())

		case MsgSyncComplete:
			m.result = msg.data.(*tasks.SyncResult)
			m.result.Skipped = m.opts.Skipped
			m.failures = newFailureList(m.result, m.width-4, m.height-10)
			m.view = ResultView
			m.updates, m.done = nil, nil
			return m, nil
		}
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Result returns the finished batch, or nil when the sync never ran.
func (m *Model) Result() *tasks.SyncResult { return m.result }

// Finish cancels a sync still in flight and blocks until the batch returns, so no file operation
// outlives the program. It returns the batch result, or nil when no sync was started.
//
// Call it only after the program has stopped.
func (m *Model) Finish() *tasks.SyncResult {
	if m.finished == nil {
		return m.result
	}
	m.cancel()
	<-m.finished
	return m.final
}

// Cancelled reports whether the user declined or interrupted the sync.
func (m *Model) Cancelled() bool { return m.cancelled }

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.startSync()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.cancelled = true
		m.cancel()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func (m *Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) && !m.cancelled {
		m.cancelled = true
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), msg.Type == tea.KeyEnter:
		m.cancel()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.failures, cmd = m.failures.Update(msg)
	return m, cmd
}

func (m *Model) startSync() tea.Cmd {
	m.view = SyncView
	m.updates = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan *tasks.SyncResult, 1)
	m.finished = make(chan struct{})

	updates, done, finished := m.updates, m.done, m.finished
	go func() {
		result := m.engine.Sync(m.ctx, m.files, updates)
		m.final = result
		close(finished)
		done <- result
		close(updates)
	}()

	return m.waitForProgress()
}

// waitForProgress reads the next update, or the result once the batch closes the channel.
func (m *Model) waitForProgress() tea.Cmd {
	updates, done := m.updates, m.done
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return syncCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) percent() float64 {
	if m.progress.Total == 0 {
		return 0
	}
	return float64(m.progress.Step) / float64(m.progress.Total)
}

func (m *Model) renderConfirm() string {
	dest := m.opts.Destination
	if dest == "" {
		dest = "the library"
	}
	title := styles.title.Render(fmt.Sprintf("Sync %d file(s) into %s?", m.plan.Count, dest))

	footer := fmt.Sprintf("%d file(s) will be transferred, with a total size of %d MB", m.plan.Count, m.plan.SizeMB)
	if m.opts.Skipped > 0 {
		footer += styles.warn.Render(fmt.Sprintf(" (%d skipped)", m.opts.Skipped))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.up, m.keys.down})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.entries.View(), footer, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Library")

	status := fmt.Sprintf("%d/%d files", m.progress.Step, m.progress.Total)
	if m.progress.Phase == tasks.SyncFiles && m.progress.Message != "" {
		status = m.progress.Message
	}
	if m.cancelled {
		status = styles.warn.Render("Cancelling, waiting for running files to finish...")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%s\n", title, m.bar.View(), status)
	for _, u := range m.recent {
		fmt.Fprintf(&b, "\n  %s", styles.outcome(u))
	}
	fmt.Fprintf(&b, "\n\n%s", m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	summary := fmt.Sprintf("%d of %d files converted and saved successfully", m.result.Succeeded, m.result.Total)
	title := styles.ok.Render("✓ " + summary)
	if m.result.Failed > 0 {
		title = styles.warn.Render("! " + summary)
	}

	info := fmt.Sprintf(
		"\nTranscoded: %d\nCopied: %d\nFailed: %d\nSkipped: %d\nTook: %s",
		m.result.Transcoded(),
		m.result.Copied(),
		m.result.Failed,
		m.result.Skipped,
		m.result.Duration.Round(time.Millisecond),
	)

	var failed string
	if m.result.Failed > 0 {
		failed = "\n\n" + m.failures.View()
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
