package repositories

import (
	"fmt"
	"time"

	"github.com/desertthunder/sinkmuzik/internal/models"
)

// HistoryRecorder persists the outcomes of one sync run as they complete.
//
// It satisfies tasks.Recorder.
type HistoryRecorder struct {
	repo  *OutcomeRepository
	runID string
}

// NewHistoryRecorder creates a [HistoryRecorder] writing outcomes for the run with ID runID
func NewHistoryRecorder(repo *OutcomeRepository, runID string) *HistoryRecorder {
	return &HistoryRecorder{repo: repo, runID: runID}
}

// RecordOutcome stores one file outcome. A nil err records a success.
func (h *HistoryRecorder) RecordOutcome(source, destination string, decision models.Decision, err error, elapsed time.Duration) error {
	var message string
	if err != nil {
		message = err.Error()
	}

	outcome := models.NewFileOutcome(h.runID, source, destination, decision, message, elapsed)
	if err := h.repo.Create(outcome); err != nil {
		return fmt.Errorf("failed to record outcome for %s: %w", source, err)
	}
	return nil
}
