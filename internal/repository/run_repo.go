package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adyen/storefront-e2e/internal/database"
	"github.com/adyen/storefront-e2e/internal/models"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles database operations for suite runs and their scenario results
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository() *RunRepository {
	return &RunRepository{
		db: database.DB,
	}
}

// NewRunRepositoryWithDB creates a new run repository with a specific database connection
func NewRunRepositoryWithDB(db *sql.DB) *RunRepository {
	return &RunRepository{
		db: db,
	}
}

// CreateRun inserts a new run
func (r *RunRepository) CreateRun(run *models.Run) error {
	query := `
		INSERT INTO runs (id, base_url, driver, tags, status, passed, failed, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.BaseURL,
		run.Driver,
		run.Tags,
		run.Status,
		run.Passed,
		run.Failed,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by id
func (r *RunRepository) GetRun(id string) (*models.Run, error) {
	query := `
		SELECT id, base_url, driver, tags, status, passed, failed, started_at, finished_at
		FROM runs
		WHERE id = $1
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// UpdateRun persists the status, counters and finish time of a run
func (r *RunRepository) UpdateRun(run *models.Run) error {
	query := `
		UPDATE runs
		SET status = $1, passed = $2, failed = $3, finished_at = $4
		WHERE id = $5
	`

	var finishedAt sql.NullTime
	if !run.FinishedAt.IsZero() {
		finishedAt = sql.NullTime{Time: run.FinishedAt, Valid: true}
	}

	result, err := r.db.Exec(query, run.Status, run.Passed, run.Failed, finishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}

	return nil
}

// ListRuns returns the most recent runs, newest first
func (r *RunRepository) ListRuns(limit int) ([]*models.Run, error) {
	query := `
		SELECT id, base_url, driver, tags, status, passed, failed, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

// CreateScenarioResult inserts the result of one scenario
func (r *RunRepository) CreateScenarioResult(result *models.ScenarioResult) error {
	query := `
		INSERT INTO scenario_results (id, run_id, name, uri, status, error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(query,
		result.ID,
		result.RunID,
		result.Name,
		result.URI,
		result.Status,
		result.Error,
		result.Duration.Milliseconds(),
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scenario result: %w", err)
	}

	return nil
}

// ListScenarioResults returns the results of a run in recording order
func (r *RunRepository) ListScenarioResults(runID string) ([]*models.ScenarioResult, error) {
	query := `
		SELECT id, run_id, name, uri, status, error, duration_ms, created_at
		FROM scenario_results
		WHERE run_id = $1
		ORDER BY created_at, name
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenario results: %w", err)
	}
	defer rows.Close()

	var results []*models.ScenarioResult
	for rows.Next() {
		result := &models.ScenarioResult{}
		var durationMS int64
		if err := rows.Scan(
			&result.ID,
			&result.RunID,
			&result.Name,
			&result.URI,
			&result.Status,
			&result.Error,
			&durationMS,
			&result.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scenario result: %w", err)
		}
		result.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scenario results: %w", err)
	}

	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	run := &models.Run{}
	var finishedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.BaseURL,
		&run.Driver,
		&run.Tags,
		&run.Status,
		&run.Passed,
		&run.Failed,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return run, nil
}
