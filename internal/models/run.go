package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a [SyncRun].
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// SyncRun records one invocation of the sync action.
type SyncRun struct {
	id          string
	sequence    int
	sourceDir   string
	storagePath string
	policy      Policy
	format      string
	status      RunStatus
	total       int
	succeeded   int
	failed      int
	skipped     int
	startedAt   time.Time
	completedAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewSyncRun creates a running [SyncRun] started now.
func NewSyncRun(sequence int, sourceDir, storagePath string, policy Policy, format string) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:    sequence,
		sourceDir:   sourceDir,
		storagePath: storagePath,
		policy:      policy,
		format:      format,
		status:      RunRunning,
		startedAt:   now,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (r *SyncRun) ID() string              { return r.id }
func (r *SyncRun) Sequence() int           { return r.sequence }
func (r *SyncRun) SourceDir() string       { return r.sourceDir }
func (r *SyncRun) StoragePath() string     { return r.storagePath }
func (r *SyncRun) Policy() Policy          { return r.policy }
func (r *SyncRun) Format() string          { return r.format }
func (r *SyncRun) Status() RunStatus       { return r.status }
func (r *SyncRun) Total() int              { return r.total }
func (r *SyncRun) Succeeded() int          { return r.succeeded }
func (r *SyncRun) Failed() int             { return r.failed }
func (r *SyncRun) Skipped() int            { return r.skipped }
func (r *SyncRun) StartedAt() time.Time    { return r.startedAt }
func (r *SyncRun) CompletedAt() *time.Time { return r.completedAt }
func (r *SyncRun) CreatedAt() time.Time    { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time    { return r.updatedAt }

func (r *SyncRun) SetID(id string)             { r.id = id }
func (r *SyncRun) SetSequence(seq int)         { r.sequence = seq }
func (r *SyncRun) SetStatus(s RunStatus)       { r.status = s }
func (r *SyncRun) SetStartedAt(t time.Time)    { r.startedAt = t }
func (r *SyncRun) SetCompletedAt(t *time.Time) { r.completedAt = t }
func (r *SyncRun) SetCreatedAt(t time.Time)    { r.createdAt = t }
func (r *SyncRun) SetUpdatedAt(t time.Time)    { r.updatedAt = t }

// SetCounts sets the run totals in one call.
func (r *SyncRun) SetCounts(total, ok, bad, skip int) {
	r.total, r.succeeded, r.failed, r.skipped = total, ok, bad, skip
}

// Complete marks the run finished with the given counts. A run with any failure is recorded as failed.
func (r *SyncRun) Complete(total, succeeded, failed, skipped int) {
	now := time.Now()
	r.SetCounts(total, succeeded, failed, skipped)
	r.completedAt = &now
	r.updatedAt = now
	r.status = RunCompleted
	if failed > 0 {
		r.status = RunFailed
	}
}

// Duration returns how long the run took, or zero while it is still running.
func (r *SyncRun) Duration() time.Duration {
	if r.completedAt == nil {
		return 0
	}
	return r.completedAt.Sub(r.startedAt)
}

func (r *SyncRun) Validate() error {
	if r.sourceDir == "" {
		return fmt.Errorf("source directory is required")
	}
	if r.storagePath == "" {
		return fmt.Errorf("storage path is required")
	}
	if !r.policy.Valid() {
		return fmt.Errorf("invalid policy %q", r.policy)
	}
	if r.total < 0 || r.succeeded < 0 || r.failed < 0 || r.skipped < 0 {
		return fmt.Errorf("counts must not be negative")
	}
	if r.succeeded+r.failed > r.total {
		return fmt.Errorf("succeeded + failed exceeds total")
	}
	return nil
}

// FileOutcome records the result of one file operation within a [SyncRun].
type FileOutcome struct {
	id          string
	runID       string
	source      string
	destination string
	decision    Decision
	errMessage  string
	durationMS  int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewFileOutcome creates a [FileOutcome] for runID. An empty errMessage means the operation succeeded.
func NewFileOutcome(runID, source, destination string, decision Decision, errMessage string, d time.Duration) *FileOutcome {
	now := time.Now()
	return &FileOutcome{
		runID:       runID,
		source:      source,
		destination: destination,
		decision:    decision,
		errMessage:  errMessage,
		durationMS:  d.Milliseconds(),
		createdAt:   now,
		updatedAt:   now,
	}
}

func (o *FileOutcome) ID() string           { return o.id }
func (o *FileOutcome) RunID() string        { return o.runID }
func (o *FileOutcome) Source() string       { return o.source }
func (o *FileOutcome) Destination() string  { return o.destination }
func (o *FileOutcome) Decision() Decision   { return o.decision }
func (o *FileOutcome) ErrorMessage() string { return o.errMessage }
func (o *FileOutcome) Succeeded() bool      { return o.errMessage == "" }
func (o *FileOutcome) DurationMS() int64    { return o.durationMS }
func (o *FileOutcome) CreatedAt() time.Time { return o.createdAt }
func (o *FileOutcome) UpdatedAt() time.Time { return o.updatedAt }

func (o *FileOutcome) SetID(id string)          { o.id = id }
func (o *FileOutcome) SetCreatedAt(t time.Time) { o.createdAt = t }
func (o *FileOutcome) SetUpdatedAt(t time.Time) { o.updatedAt = t }

func (o *FileOutcome) Validate() error {
	if o.runID == "" {
		return fmt.Errorf("run ID is required")
	}
	if o.source == "" {
		return fmt.Errorf("source path is required")
	}
	if o.decision != CopyVerbatim && o.decision != Transcode {
		return fmt.Errorf("invalid decision %d", o.decision)
	}
	return nil
}
