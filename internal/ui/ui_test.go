package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/tasks"
)

// fakeSyncer replays a fixed batch: every file whose name contains "bad" fails.
type fakeSyncer struct {
	ctxErr error
}

func (f *fakeSyncer) Preview(files []*models.AudioFile) *tasks.PreviewResult {
	result := &tasks.PreviewResult{Count: len(files)}
	for _, file := range files {
		result.Entries = append(result.Entries, tasks.PreviewEntry{
			Source:      file.Source,
			Destination: file.DestinationAs("opus"),
			SizeMB:      2,
		})
		result.SizeMB += 2
	}
	return result
}

func (f *fakeSyncer) Sync(ctx context.Context, files []*models.AudioFile, progress chan<- tasks.ProgressUpdate) *tasks.SyncResult {
	result := &tasks.SyncResult{Total: len(files)}
	progress <- tasks.ProgressUpdate{Phase: tasks.SyncFiles, Total: len(files), Message: "Syncing files..."}
	for i, file := range files {
		o := tasks.Outcome{Source: file.Source, Destination: file.Destination(), Decision: models.Transcode}
		if strings.Contains(file.Source, "bad") {
			o.Err = errors.New("encoder exited with status 1")
			result.Failed++
			progress <- tasks.ProgressUpdate{Phase: tasks.FileFailed, Step: i + 1, Total: len(files), Message: "✗ " + file.Source}
		} else {
			result.Succeeded++
			progress <- tasks.ProgressUpdate{Phase: tasks.TranscodeFile, Step: i + 1, Total: len(files), Message: "✓ " + file.Source}
		}
		result.Outcomes = append(result.Outcomes, o)
	}
	f.ctxErr = ctx.Err()
	return result
}

func testFiles(names ...string) []*models.AudioFile {
	files := make([]*models.AudioFile, 0, len(names))
	for _, n := range names {
		files = append(files, models.NewAudioFile("/music/"+n+".flac", "/lib/"+n, "flac", true))
	}
	return files
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runToCompletion feeds the model every message the batch produces until it reaches the result view.
func runToCompletion(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; m.view != ResultView; i++ {
		if i > 100 {
			t.Fatal("sync never completed")
		}
		if cmd == nil {
			t.Fatal("expected a command while syncing")
		}
		m.Update(cmd())
		cmd = m.waitForProgress()
	}
}

func TestModel_Confirm(t *testing.T) {
	t.Run("ShowsPlan", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSyncer{}, testFiles("one", "two"), Options{Destination: "/lib", Skipped: 3})
		if m.view != ConfirmView {
			t.Fatalf("expected ConfirmView, got %v", m.view)
		}
		if cmd := m.Init(); cmd != nil {
			t.Error("Init should not start the sync before confirmation")
		}

		view := m.View()
		for _, want := range []string{
			"Sync 2 file(s) into /lib?",
			"2 file(s) will be transferred, with a total size of 4 MB",
			"3 skipped",
		} {
			if !strings.Contains(view, want) {
				t.Errorf("confirm view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("Decline", func(t *testing.T) {
		for _, k := range []string{"n", "q", "ctrl+c"} {
			t.Run(k, func(t *testing.T) {
				m := NewModel(context.Background(), &fakeSyncer{}, testFiles("one"), Options{})
				_, cmd := m.Update(keyPress(k))
				if cmd == nil {
					t.Fatal("expected quit command")
				}
				if _, ok := cmd().(tea.QuitMsg); !ok {
					t.Error("expected tea.QuitMsg")
				}
				if !m.Cancelled() {
					t.Error("declining should mark the model cancelled")
				}
				if m.Result() != nil {
					t.Error("no sync should have run")
				}
			})
		}
	})
}

func TestModel_Sync(t *testing.T) {
	t.Run("ConfirmAndComplete", func(t *testing.T) {
		syncer := &fakeSyncer{}
		m := NewModel(context.Background(), syncer, testFiles("a", "bad", "c"), Options{Skipped: 1})

		_, cmd := m.Update(keyPress("y"))
		if m.view != SyncView {
			t.Fatalf("expected SyncView after confirming, got %v", m.view)
		}
		runToCompletion(t, m, cmd)

		result := m.Result()
		if result == nil {
			t.Fatal("expected a result")
		}
		if result.Succeeded != 2 || result.Failed != 1 || result.Skipped != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
		if m.Cancelled() {
			t.Error("completed sync should not be cancelled")
		}
		if syncer.ctxErr != nil {
			t.Errorf("batch context should be live, got %v", syncer.ctxErr)
		}

		view := m.View()
		for _, want := range []string{
			"2 of 3 files converted and saved successfully",
			"Failed: 1",
			"Skipped: 1",
			"Failed files",
			"/music/bad.flac",
		} {
			if !strings.Contains(view, want) {
				t.Errorf("result view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("SkipConfirm", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSyncer{}, testFiles("a"), Options{SkipConfirm: true})
		cmd := m.Init()
		if cmd == nil || m.view != SyncView {
			t.Fatal("Init should start the sync when confirmation is skipped")
		}
		runToCompletion(t, m, cmd)

		if got := m.Result().Succeeded; got != 1 {
			t.Errorf("expected 1 success, got %d", got)
		}
		if view := m.View(); strings.Contains(view, "Failed files") {
			t.Errorf("result without failures should not list failed files:\n%s", view)
		}
	})

	t.Run("ProgressView", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSyncer{}, nil, Options{})
		m.view = SyncView
		m.Update(progressUpdateMsg(tasks.ProgressUpdate{Phase: tasks.CopyFile, Step: 1, Total: 4, Message: "[1/4] ✓ a.mp3 (copy)"}))
		m.Update(progressUpdateMsg(tasks.ProgressUpdate{Phase: tasks.FileFailed, Step: 2, Total: 4, Message: "[2/4] ✗ b.flac: boom"}))

		if got := m.percent(); got != 0.5 {
			t.Errorf("expected 50%% progress, got %v", got)
		}
		view := m.View()
		for _, want := range []string{"Syncing Library", "2/4 files", "a.mp3 (copy)", "b.flac: boom"} {
			if !strings.Contains(view, want) {
				t.Errorf("sync view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("RecentLinesBounded", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSyncer{}, nil, Options{})
		m.view = SyncView
		for i := 1; i <= recentLines+4; i++ {
			m.Update(progressUpdateMsg(tasks.ProgressUpdate{Step: i, Total: 20, Message: "line"}))
		}
		if len(m.recent) != recentLines {
			t.Errorf("expected %d recent lines, got %d", recentLines, len(m.recent))
		}
	})

	t.Run("CancelDuringSync", func(t *testing.T) {
		syncer := &fakeSyncer{}
		m := NewModel(context.Background(), syncer, testFiles("a", "b"), Options{})
		m.view = SyncView

		_, cmd := m.Update(keyPress("q"))
		if cmd != nil {
			t.Error("quitting mid-sync should wait for the batch, not exit")
		}
		if !m.Cancelled() {
			t.Error("expected cancelled")
		}
		if m.ctx.Err() == nil {
			t.Error("batch context should be cancelled")
		}
		if !strings.Contains(m.View(), "Cancelling") {
			t.Errorf("sync view should show cancellation:\n%s", m.View())
		}

		runToCompletion(t, m, m.startSync())
		if !errors.Is(syncer.ctxErr, context.Canceled) {
			t.Errorf("batch should see a cancelled context, got %v", syncer.ctxErr)
		}
	})
}

func TestModel_Result(t *testing.T) {
	m := NewModel(context.Background(), &fakeSyncer{}, nil, Options{})
	m.Update(syncCompleteMsg(&tasks.SyncResult{Total: 1, Succeeded: 1}))
	if m.view != ResultView {
		t.Fatalf("expected ResultView, got %v", m.view)
	}

	for _, k := range []string{"q", "enter"} {
		_, cmd := m.Update(keyPress(k))
		if cmd == nil {
			t.Fatalf("%s should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := NewModel(context.Background(), &fakeSyncer{}, testFiles("a"), Options{})
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
	if m.bar.Width != maxBarWidth {
		t.Errorf("expected bar width capped at %d, got %d", maxBarWidth, m.bar.Width)
	}

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if m.bar.Width != 36 {
		t.Errorf("expected bar width 36, got %d", m.bar.Width)
	}
}

func TestListItems(t *testing.T) {
	entry := entryItem{entry: tasks.PreviewEntry{Source: "/music/a/b.flac", Destination: "/lib/A/B.opus", SizeMB: 9}}
	if entry.Title() != "b.flac" {
		t.Errorf("unexpected title %q", entry.Title())
	}
	if !strings.Contains(entry.Description(), "/lib/A/B.opus") || !strings.Contains(entry.Description(), "9 MB") {
		t.Errorf("unexpected description %q", entry.Description())
	}

	failure := failureItem{outcome: tasks.Outcome{Source: "/music/x.flac", Decision: models.Transcode, Err: errors.New("boom")}}
	if failure.FilterValue() != "/music/x.flac" {
		t.Errorf("unexpected filter value %q", failure.FilterValue())
	}
	if failure.Description() != "transcode • boom" {
		t.Errorf("unexpected description %q", failure.Description())
	}
}

func TestThemeOutcome(t *testing.T) {
	tests := []struct {
		name  string
		phase tasks.Phase
	}{
		{"failed", tasks.FileFailed},
		{"transcoded", tasks.TranscodeFile},
		{"copied", tasks.CopyFile},
		{"other", tasks.SyncFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := "[1/2] " + tt.name + ".flac"
			if got := styles.outcome(tasks.ProgressUpdate{Phase: tt.phase, Message: msg}); !strings.Contains(got, msg) {
				t.Errorf("outcome() = %q, want it to contain %q", got, msg)
			}
		})
	}
}

// blockingSyncer holds every batch open until its context ends.
type blockingSyncer struct {
	fakeSyncer
	started chan struct{}
}

func (b *blockingSyncer) Sync(ctx context.Context, files []*models.AudioFile, progress chan<- tasks.ProgressUpdate) *tasks.SyncResult {
	close(b.started)
	<-ctx.Done()
	b.ctxErr = ctx.Err()
	return &tasks.SyncResult{Total: len(files), Failed: len(files)}
}

func TestModel_Finish(t *testing.T) {
	t.Run("NoSyncStarted", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSyncer{}, testFiles("a"), Options{})
		m.Update(keyPress("n"))
		if got := m.Finish(); got != nil {
			t.Errorf("expected nil result, got %+v", got)
		}
	})

	t.Run("ProgramStoppedMidSync", func(t *testing.T) {
		syncer := &blockingSyncer{started: make(chan struct{})}
		m := NewModel(context.Background(), syncer, testFiles("a", "b", "c"), Options{SkipConfirm: true})
		if cmd := m.Init(); cmd == nil {
			t.Fatal("expected the sync to start")
		}
		<-syncer.started

		result := m.Finish()
		if result == nil {
			t.Fatal("expected the batch result once it returned")
		}
		if result.Total != 3 || result.Failed != 3 {
			t.Errorf("unexpected result %+v", result)
		}
		if !errors.Is(syncer.ctxErr, context.Canceled) {
			t.Errorf("batch context should be cancelled, got %v", syncer.ctxErr)
		}
	})

	t.Run("AfterCompletion", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSyncer{}, testFiles("a", "bad"), Options{SkipConfirm: true})
		runToCompletion(t, m, m.Init())
		if got := m.Finish(); got != m.Result() {
			t.Errorf("Finish() = %p, want the completed result %p", got, m.Result())
		}
	})
}
