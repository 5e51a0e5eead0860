package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JobCreateInput holds the fields for creating a job
type JobCreateInput struct {
	OwnerID      uuid.UUID
	Title        string
	Description  string
	Requirements []string
	Status       string
	IsPublic     bool
}

// CreateJob inserts a job posting and returns the stored row
func (db *DB) CreateJob(ctx context.Context, input *JobCreateInput) (*Job, error) {
	status := input.Status
	if status == "" {
		status = JobStatusOpen
	}

	var j Job
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (owner_id, title, description, requirements, status, is_public)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, owner_id, title, description, requirements, status, is_public, created_at, updated_at`,
		input.OwnerID, input.Title, input.Description, StringArray(input.Requirements), status, input.IsPublic,
	).Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &j.Requirements, &j.Status, &j.IsPublic,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return &j, nil
}

// GetJob retrieves a job by ID. Returns nil when not found.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	var j Job
	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, title, description, requirements, status, is_public, created_at, updated_at
		 FROM jobs WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &j.Requirements, &j.Status, &j.IsPublic,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

// ListJobsOptions contains filters for listing an owner's jobs
type ListJobsOptions struct {
	Status string
	Limit  int
	Offset int
}

// ListJobsByOwner lists a hiring manager's jobs, newest first, with an
// optional status filter and pagination. Also returns the total count.
func (db *DB) ListJobsByOwner(ctx context.Context, ownerID uuid.UUID, opts ListJobsOptions) ([]Job, int, error) {
	conditions := []string{"owner_id = $1"}
	args := []any{ownerID}
	argIndex := 2

	if opts.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, opts.Status)
		argIndex++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM jobs %s", whereClause)
	if err := db.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT id, owner_id, title, description, requirements, status, is_public, created_at, updated_at
		 FROM jobs %s
		 ORDER BY created_at DESC
		 LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &j.Requirements,
			&j.Status, &j.IsPublic, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, total, nil
}

// ListPublicJobs lists open, public jobs for the unauthenticated job board.
// q filters on title substring, case-insensitive.
func (db *DB) ListPublicJobs(ctx context.Context, q string, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, owner_id, title, description, requirements, status, is_public, created_at, updated_at
		 FROM jobs
		 WHERE is_public = TRUE AND status = 'open'
		   AND ($1 = '' OR title ILIKE '%' || $1 || '%')
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		q, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list public jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &j.Requirements,
			&j.Status, &j.IsPublic, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// UpdateJob updates the editable fields of a job posting
func (db *DB) UpdateJob(ctx context.Context, j *Job) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE jobs SET title = $1, description = $2, requirements = $3, status = $4,
		        is_public = $5, updated_at = NOW()
		 WHERE id = $6`,
		j.Title, j.Description, j.Requirements, j.Status, j.IsPublic, j.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", j.ID)
	}
	return nil
}

// DeleteJob removes a job and all its candidates, applications, and
// interviews (via cascade)
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

// CountActiveJobsByOwner counts an owner's non-closed jobs (plan limits)
func (db *DB) CountActiveJobsByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE owner_id = $1 AND status != 'closed'`,
		ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return count, nil
}
