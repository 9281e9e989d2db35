package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/shared"
)

const outcomeColumns = `id, run_id, source, destination, decision, error_message, duration_ms, created_at, updated_at`

// OutcomeRepository implements [models.Repository] for [models.FileOutcome] persistence.
type OutcomeRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.FileOutcome] = (*OutcomeRepository)(nil)

// NewOutcomeRepository creates a new [OutcomeRepository] with the given database connection
func NewOutcomeRepository(db *sql.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// Create inserts a new outcome with a generated ID. The run it belongs to must exist.
func (r *OutcomeRepository) Create(outcome *models.FileOutcome) error {
	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	query := `INSERT INTO file_outcomes (` + outcomeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		id,
		outcome.RunID(),
		outcome.Source(),
		outcome.Destination(),
		outcome.Decision().String(),
		nullString(outcome.ErrorMessage()),
		outcome.DurationMS(),
		outcome.CreatedAt(),
		outcome.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert file outcome: %w", err)
	}

	outcome.SetID(id)
	return nil
}

// Get retrieves an outcome by ID
func (r *OutcomeRepository) Get(id string) (*models.FileOutcome, error) {
	row := r.db.QueryRow(`SELECT `+outcomeColumns+` FROM file_outcomes WHERE id = ?`, id)
	outcome, err := scanOutcome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file outcome not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file outcome: %w", err)
	}
	return outcome, nil
}

// Update rewrites the destination, error, and duration of an existing outcome.
//
// The run and source an outcome belongs to never change.
func (r *OutcomeRepository) Update(outcome *models.FileOutcome) error {
	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	outcome.SetUpdatedAt(now)

	query := `
		UPDATE file_outcomes
		SET destination = ?, decision = ?, error_message = ?, duration_ms = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		outcome.Destination(),
		outcome.Decision().String(),
		nullString(outcome.ErrorMessage()),
		outcome.DurationMS(),
		now,
		outcome.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update file outcome: %w", err)
	}
	return requireRow(result, fmt.Errorf("file outcome not found: %s", outcome.ID()))
}

// Delete removes an outcome by ID
func (r *OutcomeRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM file_outcomes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete file outcome: %w", err)
	}
	return requireRow(result, fmt.Errorf("file outcome not found: %s", id))
}

// List retrieves outcomes ordered by source path.
//
// Supported criteria: "run_id" (string) and "failed" (bool, true for failures only, false for successes only).
func (r *OutcomeRepository) List(criteria map[string]any) ([]*models.FileOutcome, error) {
	query := `SELECT ` + outcomeColumns + ` FROM file_outcomes WHERE 1 = 1`
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}
	if failed, ok := criteria["failed"].(bool); ok {
		if failed {
			query += " AND error_message IS NOT NULL"
		} else {
			query += " AND error_message IS NULL"
		}
	}

	query += " ORDER BY source ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query file outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*models.FileOutcome
	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file outcome: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return outcomes, nil
}

func scanOutcome(row scanner) (*models.FileOutcome, error) {
	var (
		id, runID, source    string
		destination, choice  string
		errMessage           sql.NullString
		durationMS           int64
		createdAt, updatedAt time.Time
	)

	err := row.Scan(&id, &runID, &source, &destination, &choice, &errMessage, &durationMS, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	decision, err := models.ParseDecision(choice)
	if err != nil {
		return nil, err
	}

	outcome := models.NewFileOutcome(runID, source, destination, decision, errMessage.String,
		time.Duration(durationMS)*time.Millisecond)
	outcome.SetID(id)
	outcome.SetCreatedAt(createdAt)
	outcome.SetUpdatedAt(updatedAt)
	return outcome, nil
}
