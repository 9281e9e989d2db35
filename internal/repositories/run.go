package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/shared"
)

const runColumns = `id, sequence, source_dir, storage_path, policy, format, status,
	total, succeeded, failed, skipped, started_at, completed_at, created_at, updated_at`

// RunRepository implements [models.Repository] for [models.SyncRun] persistence.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.SyncRun] = (*RunRepository)(nil)

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run with a generated ID and the next run sequence number
func (r *RunRepository) Create(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO sync_runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		id,
		sequence,
		run.SourceDir(),
		run.StoragePath(),
		string(run.Policy()),
		run.Format(),
		string(run.Status()),
		run.Total(),
		run.Succeeded(),
		run.Failed(),
		run.Skipped(),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	row := r.db.QueryRow(`SELECT `+runColumns+` FROM sync_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync run: %w", err)
	}
	return run, nil
}

// Find resolves ref as a run ID or, when numeric, as a run sequence number.
func (r *RunRepository) Find(ref string) (*models.SyncRun, error) {
	seq, err := strconv.Atoi(ref)
	if err != nil {
		return r.Get(ref)
	}

	row := r.db.QueryRow(`SELECT `+runColumns+` FROM sync_runs WHERE sequence = ?`, seq)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: #%d", shared.ErrRunNotFound, seq)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync run: %w", err)
	}
	return run, nil
}

// Update stores the status, counts, and completion time of an existing run
func (r *RunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE sync_runs
		SET status = ?, total = ?, succeeded = ?, failed = ?, skipped = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		string(run.Status()),
		run.Total(),
		run.Succeeded(),
		run.Failed(),
		run.Skipped(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}
	return requireRow(result, fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID()))
}

// Delete removes a run and, through the foreign key, its outcomes
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM sync_runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}
	return requireRow(result, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id))
}

// List retrieves runs newest first.
//
// Supported criteria: "status" ([models.RunStatus] or string) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE 1 = 1`
	args := []any{}

	switch status := criteria["status"].(type) {
	case models.RunStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

func scanRun(row scanner) (*models.SyncRun, error) {
	var (
		id, sourceDir, storagePath string
		policy, format, status     string
		sequence, total            int
		succeeded, failed, skipped int
		startedAt, createdAt       time.Time
		updatedAt                  time.Time
		completedAt                sql.NullTime
	)

	err := row.Scan(&id, &sequence, &sourceDir, &storagePath, &policy, &format, &status,
		&total, &succeeded, &failed, &skipped, &startedAt, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	run := models.NewSyncRun(sequence, sourceDir, storagePath, models.Policy(policy), format)
	run.SetID(id)
	run.SetStatus(models.RunStatus(status))
	run.SetCounts(total, succeeded, failed, skipped)
	run.SetStartedAt(startedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	return run, nil
}
