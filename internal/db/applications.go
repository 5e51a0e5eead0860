package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateApplication is returned when an applicant applies twice to the
// same job (unique constraint on job_id + applicant_id).
var ErrDuplicateApplication = errors.New("application already exists for this job")

// Application statuses
const (
	ApplicationSubmitted = "submitted"
	ApplicationReviewed  = "reviewed"
	ApplicationAccepted  = "accepted"
	ApplicationRejected  = "rejected"
)

// ApplicationCreateInput holds the fields for a job-board application
type ApplicationCreateInput struct {
	JobID       uuid.UUID
	ApplicantID uuid.UUID
	CandidateID *uuid.UUID
	CoverNote   string
}

// CreateApplication inserts an application. Returns ErrDuplicateApplication
// when the applicant already applied to the job.
func (db *DB) CreateApplication(ctx context.Context, input *ApplicationCreateInput) (*Application, error) {
	var a Application
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, applicant_id, candidate_id, cover_note)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, job_id, applicant_id, candidate_id, cover_note, status, created_at, updated_at`,
		input.JobID, input.ApplicantID, input.CandidateID, input.CoverNote,
	).Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CandidateID, &a.CoverNote, &a.Status,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, ErrDuplicateApplication
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &a, nil
}

// GetApplication retrieves an application by ID. Returns nil when not found.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*Application, error) {
	var a Application
	err := db.pool.QueryRow(ctx,
		`SELECT id, job_id, applicant_id, candidate_id, cover_note, status, created_at, updated_at
		 FROM applications WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CandidateID, &a.CoverNote, &a.Status,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &a, nil
}

// ListApplicationsByApplicant lists an applicant's applications, newest
// first, with the job title joined in for tracking views
func (db *DB) ListApplicationsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT a.id, a.job_id, a.applicant_id, a.candidate_id, a.cover_note, a.status,
		        j.title, a.created_at, a.updated_at
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.applicant_id = $1
		 ORDER BY a.created_at DESC`,
		applicantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CandidateID, &a.CoverNote,
			&a.Status, &a.JobTitle, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, nil
}

// ListApplicationsByJob lists a job's applications, newest first
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, applicant_id, candidate_id, cover_note, status, created_at, updated_at
		 FROM applications
		 WHERE job_id = $1
		 ORDER BY created_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CandidateID, &a.CoverNote,
			&a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, nil
}

// UpdateApplicationStatus sets a new status on an application
func (db *DB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("application not found: %s", id)
	}
	return nil
}
