package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/maltedev/shopify-product-importer/internal/jobs"
	"github.com/maltedev/shopify-product-importer/internal/models"
)

// ImportRepository is the postgres implementation of jobs.Store.
type ImportRepository struct {
	db *DB
}

var _ jobs.Store = (*ImportRepository)(nil)

func NewImportRepository(db *DB) *ImportRepository {
	return &ImportRepository{db: db}
}

func (r *ImportRepository) CreateJob(ctx context.Context, job *models.Job) error {
	missing := job.MissingColumns
	if missing == nil {
		missing = []string{}
	}

	query := `
		INSERT INTO import_jobs (id, status, total, processed, row_count, missing_columns, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		job.ID, job.Status, job.Total, job.Processed, job.RowCount, missing, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *ImportRepository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	query := `
		SELECT id, status, total, processed, row_count, missing_columns,
		       created_at, started_at, completed_at, error
		FROM import_jobs
		WHERE id = $1
	`

	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, jobs.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if job.Failures, err = r.failures(ctx, id); err != nil {
		return nil, err
	}
	if job.Batches, err = r.batches(ctx, id); err != nil {
		return nil, err
	}

	return job, nil
}

// ListJobs returns job summaries, newest first. Failures and batches are
// only loaded by GetJob.
func (r *ImportRepository) ListJobs(ctx context.Context, limit int) ([]*models.Job, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, status, total, processed, row_count, missing_columns,
		       created_at, started_at, completed_at, error
		FROM import_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	result := []*models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		result = append(result, job)
	}

	return result, rows.Err()
}

func (r *ImportRepository) UpdateStatus(ctx context.Context, id, status string, jobErr error) error {
	now := time.Now()
	errMsg := ""
	if jobErr != nil {
		errMsg = jobErr.Error()
	}

	var query string
	var args []interface{}

	switch status {
	case models.JobStatusRunning:
		query = `UPDATE import_jobs SET status = $1, started_at = $2 WHERE id = $3`
		args = []interface{}{status, now, id}
	case models.JobStatusCompleted, models.JobStatusFailed:
		query = `UPDATE import_jobs SET status = $1, completed_at = $2, error = $3 WHERE id = $4`
		args = []interface{}{status, now, errMsg, id}
	default:
		query = `UPDATE import_jobs SET status = $1 WHERE id = $2`
		args = []interface{}{status, id}
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

func (r *ImportRepository) UpdateProgress(ctx context.Context, id string, processed int) error {
	tag, err := r.db.Exec(ctx, `UPDATE import_jobs SET processed = $1 WHERE id = $2`, processed, id)
	if err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

func (r *ImportRepository) SaveResult(ctx context.Context, id string, rowCount int, failures []models.Failure, batches []models.Batch) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE import_jobs SET row_count = $1 WHERE id = $2`, rowCount, id)
		if err != nil {
			return fmt.Errorf("failed to update row count: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return jobs.ErrJobNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM import_failures WHERE job_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear failures: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM import_batches WHERE job_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear batches: %w", err)
		}

		if len(failures) > 0 {
			rows := make([][]interface{}, len(failures))
			for i, f := range failures {
				rows[i] = []interface{}{id, i, f.URL, f.Message}
			}
			_, err := tx.CopyFrom(ctx,
				pgx.Identifier{"import_failures"},
				[]string{"job_id", "position", "url", "message"},
				pgx.CopyFromRows(rows))
			if err != nil {
				return fmt.Errorf("failed to insert failures: %w", err)
			}
		}

		insertBatch := `
			INSERT INTO import_batches
			(job_id, batch_index, label, start_row, end_row, row_count, filename, location, data)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		for _, b := range batches {
			_, err := tx.Exec(ctx, insertBatch,
				id, b.Index, b.Label, b.Start, b.End, b.Rows, b.Filename, b.Location, b.Data)
			if err != nil {
				return fmt.Errorf("failed to insert batch %s: %w", b.Label, err)
			}
		}

		return nil
	})
}

func (r *ImportRepository) GetBatch(ctx context.Context, id string, index int) (*models.Batch, error) {
	query := `
		SELECT batch_index, label, start_row, end_row, row_count, filename, location, data
		FROM import_batches
		WHERE job_id = $1 AND batch_index = $2
	`

	b := &models.Batch{}
	err := r.db.QueryRow(ctx, query, id, index).Scan(
		&b.Index, &b.Label, &b.Start, &b.End, &b.Rows, &b.Filename, &b.Location, &b.Data,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM import_jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check job: %w", err)
		}
		if !exists {
			return nil, jobs.ErrJobNotFound
		}
		return nil, jobs.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	return b, nil
}

func (r *ImportRepository) failures(ctx context.Context, id string) ([]models.Failure, error) {
	rows, err := r.db.Query(ctx,
		`SELECT url, message FROM import_failures WHERE job_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get failures: %w", err)
	}

	failures, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Failure, error) {
		var f models.Failure
		err := row.Scan(&f.URL, &f.Message)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan failures: %w", err)
	}
	return failures, nil
}

func (r *ImportRepository) batches(ctx context.Context, id string) ([]models.Batch, error) {
	rows, err := r.db.Query(ctx, `
		SELECT batch_index, label, start_row, end_row, row_count, filename, location
		FROM import_batches
		WHERE job_id = $1
		ORDER BY batch_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get batches: %w", err)
	}

	batches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Batch, error) {
		var b models.Batch
		err := row.Scan(&b.Index, &b.Label, &b.Start, &b.End, &b.Rows, &b.Filename, &b.Location)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan batches: %w", err)
	}
	return batches, nil
}

func scanJob(row pgx.Row) (*models.Job, error) {
	job := &models.Job{
		Failures: []models.Failure{},
		Batches:  []models.Batch{},
	}
	err := row.Scan(
		&job.ID, &job.Status, &job.Total, &job.Processed, &job.RowCount, &job.MissingColumns,
		&job.CreatedAt, &job.StartedAt, &job.CompletedAt, &job.Error,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}
