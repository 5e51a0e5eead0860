package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleHR        = "hr"
	RoleApplicant = "applicant"
)

// Job statuses
const (
	JobStatusDraft  = "draft"
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Candidate analysis statuses
const (
	AnalysisComplete    = "complete"
	AnalysisUnavailable = "unavailable"
)

// User represents an account: a hiring manager (hr) or an applicant
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	Company      string    `json:"company,omitempty"`
	Title        string    `json:"title,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Job represents a job posting owned by a hiring manager
type Job struct {
	ID           uuid.UUID   `json:"id"`
	OwnerID      uuid.UUID   `json:"owner_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Requirements StringArray `json:"requirements"`
	Status       string      `json:"status"`
	IsPublic     bool        `json:"is_public"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Candidate represents an analyzed resume attached to a job. The entity
// fields (skills, experience, education, projects) hold whatever JSON the
// AI service returned; this service never interprets them.
type Candidate struct {
	ID              uuid.UUID   `json:"id"`
	JobID           uuid.UUID   `json:"job_id"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	Name            string      `json:"name"`
	Email           string      `json:"email,omitempty"`
	ResumeFilename  string      `json:"resume_filename,omitempty"`
	ResumeText      string      `json:"-"` // raw extracted text, not exposed in listings
	Skills          StringArray `json:"skills"`
	Experience      JSONList    `json:"experience"`
	Education       JSONList    `json:"education"`
	Projects        JSONList    `json:"projects"`
	Summary         string      `json:"summary,omitempty"`
	Score           int         `json:"score"`
	VibeCodingScore int         `json:"vibe_coding_score"`
	AnalysisStatus  string      `json:"analysis_status"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Application links an applicant to a public job
type Application struct {
	ID          uuid.UUID  `json:"id"`
	JobID       uuid.UUID  `json:"job_id"`
	ApplicantID uuid.UUID  `json:"applicant_id"`
	CandidateID *uuid.UUID `json:"candidate_id,omitempty"`
	CoverNote   string     `json:"cover_note,omitempty"`
	Status      string     `json:"status"`
	JobTitle    string     `json:"job_title,omitempty"` // joined for applicant listings
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Turn is one exchange in an interview transcript
type Turn struct {
	Role    string    `json:"role"` // "interviewer" or "candidate"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Interview represents an AI-driven interview session for a candidate
type Interview struct {
	ID          uuid.UUID  `json:"id"`
	CandidateID uuid.UUID  `json:"candidate_id"`
	JobID       uuid.UUID  `json:"job_id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Status      string     `json:"status"`
	Transcript  []Turn     `json:"transcript"`
	Evaluation  JSONDoc    `json:"evaluation,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Subscription tracks a user's plan and monthly usage counters
type Subscription struct {
	UserID       uuid.UUID `json:"user_id"`
	Plan         string    `json:"plan"`
	JobsUsed     int       `json:"jobs_used"`
	AnalysesUsed int       `json:"analyses_used"`
	PeriodStart  time.Time `json:"period_start"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = []string{}
		return nil
	}
	source, ok := src.([]byte)
	if !ok {
		return errors.New("type assertion .([]byte) failed")
	}
	return json.Unmarshal(source, a)
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// JSONList handles opaque JSONB arrays
type JSONList []any

// Scan implements the Scanner interface for JSONList
func (l *JSONList) Scan(src interface{}) error {
	if src == nil {
		*l = JSONList{}
		return nil
	}
	source, ok := src.([]byte)
	if !ok {
		return errors.New("type assertion .([]byte) failed")
	}
	return json.Unmarshal(source, l)
}

// Value implements the Valuer interface for JSONList
func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// JSONDoc handles opaque JSONB objects
type JSONDoc map[string]any

// Scan implements the Scanner interface for JSONDoc
func (d *JSONDoc) Scan(src interface{}) error {
	if src == nil {
		*d = nil
		return nil
	}
	source, ok := src.([]byte)
	if !ok {
		return errors.New("type assertion .([]byte) failed")
	}
	return json.Unmarshal(source, d)
}

// Value implements the Valuer interface for JSONDoc
func (d JSONDoc) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}
