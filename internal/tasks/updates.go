package tasks

import (
	"fmt"
	"path/filepath"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SyncFiles Phase = iota
	CopyFile
	TranscodeFile
	FileFailed
	SyncDone
)

func (p Phase) String() string {
	switch p {
	case SyncFiles:
		return "sync_files"
	case CopyFile:
		return "copy_file"
	case TranscodeFile:
		return "transcode_file"
	case FileFailed:
		return "file_failed"
	case SyncDone:
		return "sync_done"
	default:
		return ""
	}
}

func syncStartedUpdate(total, workers int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncFiles,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Syncing %d file(s) with %d worker(s)...", total, workers),
	}
}

func outcomeUpdate(step, total int, o Outcome) ProgressUpdate {
	name := filepath.Base(o.Source)
	if o.Err != nil {
		return ProgressUpdate{
			Phase:   FileFailed,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, o.Err),
			Data:    o,
		}
	}

	phase := CopyFile
	if o.Converted() {
		phase = TranscodeFile
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, name, o.Decision),
		Data:    o,
	}
}

func syncDoneUpdate(r *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncDone,
		Step:    r.Total,
		Total:   r.Total,
		Message: fmt.Sprintf("%d of %d files converted and saved successfully", r.Succeeded, r.Total),
		Data:    r,
	}
}
