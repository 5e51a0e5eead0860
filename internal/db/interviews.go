package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const interviewColumns = `id, candidate_id, job_id, owner_id, status, transcript,
	evaluation, started_at, completed_at, created_at`

func scanInterview(row pgx.Row) (*Interview, error) {
	var iv Interview
	var transcriptJSON []byte
	err := row.Scan(&iv.ID, &iv.CandidateID, &iv.JobID, &iv.OwnerID, &iv.Status,
		&transcriptJSON, &iv.Evaluation, &iv.StartedAt, &iv.CompletedAt, &iv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if transcriptJSON != nil {
		if err := json.Unmarshal(transcriptJSON, &iv.Transcript); err != nil {
			return nil, fmt.Errorf("failed to parse transcript: %w", err)
		}
	}
	return &iv, nil
}

// CreateInterview inserts a pending interview for a candidate
func (db *DB) CreateInterview(ctx context.Context, candidateID, jobID, ownerID uuid.UUID) (*Interview, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO interviews (candidate_id, job_id, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING `+interviewColumns,
		candidateID, jobID, ownerID,
	)
	iv, err := scanInterview(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}
	return iv, nil
}

// GetInterview retrieves an interview by ID. Returns nil when not found.
func (db *DB) GetInterview(ctx context.Context, id uuid.UUID) (*Interview, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id)
	iv, err := scanInterview(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return iv, nil
}

// ListInterviewsByCandidate lists a candidate's interviews, newest first
func (db *DB) ListInterviewsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Interview, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews
		 WHERE candidate_id = $1
		 ORDER BY created_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []Interview
	for rows.Next() {
		var iv Interview
		var transcriptJSON []byte
		if err := rows.Scan(&iv.ID, &iv.CandidateID, &iv.JobID, &iv.OwnerID, &iv.Status,
			&transcriptJSON, &iv.Evaluation, &iv.StartedAt, &iv.CompletedAt, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		if transcriptJSON != nil {
			if err := json.Unmarshal(transcriptJSON, &iv.Transcript); err != nil {
				return nil, fmt.Errorf("failed to parse transcript: %w", err)
			}
		}
		interviews = append(interviews, iv)
	}
	return interviews, nil
}

// statusStamp returns the timestamp assignment for a status change. Starting
// stamps started_at, completing stamps completed_at; a cancelled interview
// never completed, so its completed_at stays null.
func statusStamp(status string) string {
	switch status {
	case "in_progress":
		return ", started_at = NOW()"
	case "completed":
		return ", completed_at = NOW()"
	}
	return ""
}

// SetInterviewStatus updates the status and stamps the matching timestamp.
// The status machine is validated by the caller before this runs.
func (db *DB) SetInterviewStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE interviews SET status = $1`+statusStamp(status)+` WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set interview status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("interview not found: %s", id)
	}
	return nil
}

// AppendInterviewTurns appends turns to the transcript atomically using
// JSONB concatenation, avoiding a read-modify-write race.
func (db *DB) AppendInterviewTurns(ctx context.Context, id uuid.UUID, turns []Turn) error {
	if len(turns) == 0 {
		return nil
	}
	for i := range turns {
		if turns[i].At.IsZero() {
			turns[i].At = time.Now().UTC()
		}
	}

	turnsJSON, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal turns: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE interviews SET transcript = transcript || $1::jsonb WHERE id = $2`,
		turnsJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to append interview turns: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("interview not found: %s", id)
	}
	return nil
}

// SetInterviewEvaluation stores the evaluation JSON returned by the AI service
func (db *DB) SetInterviewEvaluation(ctx context.Context, id uuid.UUID, evaluation JSONDoc) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE interviews SET evaluation = $1 WHERE id = $2`,
		evaluation, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set interview evaluation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("interview not found: %s", id)
	}
	return nil
}
