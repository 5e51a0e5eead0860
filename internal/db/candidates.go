package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CandidateCreateInput holds the fields for creating a candidate record.
// The entity fields carry whatever the AI service returned (possibly empty
// when analysis degraded).
type CandidateCreateInput struct {
	JobID           uuid.UUID
	OwnerID         uuid.UUID
	Name            string
	Email           string
	ResumeFilename  string
	ResumeText      string
	Skills          []string
	Experience      JSONList
	Education       JSONList
	Projects        JSONList
	Summary         string
	Score           int
	VibeCodingScore int
	AnalysisStatus  string
}

const candidateColumns = `id, job_id, owner_id, name, email, resume_filename,
	skills, experience, education, projects, summary, score, vibe_coding_score,
	analysis_status, created_at`

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	err := row.Scan(&c.ID, &c.JobID, &c.OwnerID, &c.Name, &c.Email, &c.ResumeFilename,
		&c.Skills, &c.Experience, &c.Education, &c.Projects, &c.Summary,
		&c.Score, &c.VibeCodingScore, &c.AnalysisStatus, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCandidate inserts a candidate and returns the stored row
func (db *DB) CreateCandidate(ctx context.Context, input *CandidateCreateInput) (*Candidate, error) {
	status := input.AnalysisStatus
	if status == "" {
		status = AnalysisComplete
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO candidates (job_id, owner_id, name, email, resume_filename, resume_text,
		                         skills, experience, education, projects, summary,
		                         score, vibe_coding_score, analysis_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+candidateColumns,
		input.JobID, input.OwnerID, input.Name, input.Email, input.ResumeFilename, input.ResumeText,
		StringArray(input.Skills), input.Experience, input.Education, input.Projects, input.Summary,
		input.Score, input.VibeCodingScore, status,
	)
	c, err := scanCandidate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return c, nil
}

// GetCandidate retrieves a candidate by ID. Returns nil when not found.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// GetCandidateResumeText returns the stored raw resume text for re-analysis
func (db *DB) GetCandidateResumeText(ctx context.Context, id uuid.UUID) (string, error) {
	var text string
	err := db.pool.QueryRow(ctx,
		`SELECT resume_text FROM candidates WHERE id = $1`, id,
	).Scan(&text)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get resume text: %w", err)
	}
	return text, nil
}

// ListCandidatesByJob lists a job's candidates ranked by score, best first
func (db *DB) ListCandidatesByJob(ctx context.Context, jobID uuid.UUID) ([]Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+`
		 FROM candidates
		 WHERE job_id = $1
		 ORDER BY score DESC, created_at ASC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.JobID, &c.OwnerID, &c.Name, &c.Email, &c.ResumeFilename,
			&c.Skills, &c.Experience, &c.Education, &c.Projects, &c.Summary,
			&c.Score, &c.VibeCodingScore, &c.AnalysisStatus, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// UpdateCandidateAnalysis replaces the analysis fields after a (re)analysis
func (db *DB) UpdateCandidateAnalysis(ctx context.Context, id uuid.UUID, input *CandidateCreateInput) (*Candidate, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE candidates
		 SET skills = $1, experience = $2, education = $3, projects = $4, summary = $5,
		     score = $6, vibe_coding_score = $7, analysis_status = $8
		 WHERE id = $9
		 RETURNING `+candidateColumns,
		StringArray(input.Skills), input.Experience, input.Education, input.Projects, input.Summary,
		input.Score, input.VibeCodingScore, input.AnalysisStatus, id,
	)
	c, err := scanCandidate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update candidate analysis: %w", err)
	}
	return c, nil
}

// DeleteCandidate removes a candidate and its interviews (via cascade)
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("candidate not found: %s", id)
	}
	return nil
}
