package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/billing"
	"github.com/hirewire/hirewire/internal/db"
	"github.com/hirewire/hirewire/internal/server/middleware"
)

// CreateJobRequest is the body of POST /api/jobs.
type CreateJobRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"omitempty,max=20000"`
	Requirements []string `json:"requirements" validate:"omitempty,dive,max=500"`
	Status       string   `json:"status" validate:"omitempty,oneof=draft open closed"`
	IsPublic     bool     `json:"is_public"`
}

// UpdateJobRequest is the body of PUT /api/jobs/{id}. Pointer fields
// distinguish "not sent" from zero values.
type UpdateJobRequest struct {
	Title        *string   `json:"title" validate:"omitempty,max=200"`
	Description  *string   `json:"description" validate:"omitempty,max=20000"`
	Requirements *[]string `json:"requirements" validate:"omitempty,dive,max=500"`
	Status       *string   `json:"status" validate:"omitempty,oneof=draft open closed"`
	IsPublic     *bool     `json:"is_public"`
}

// ownedJob loads the job in the path parameter and verifies the caller owns
// it. Errors map through HTTPStatus.
func (s *Server) ownedJob(r *http.Request, param string) (*db.Job, error) {
	jobID, err := uuid.Parse(r.PathValue(param))
	if err != nil {
		return nil, &ErrValidation{Field: param, Message: "invalid job ID"}
	}

	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, &ErrForbidden{Reason: "missing identity"}
	}

	job, err := s.db.GetJob(r.Context(), jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job", ID: jobID}
	}
	if job.OwnerID != userID {
		return nil, &ErrForbidden{Reason: "job belongs to another user"}
	}
	return job, nil
}

// handleCreateJob creates a job posting, enforcing the plan's active-job
// limit.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	sub, err := s.db.GetOrCreateSubscription(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	activeJobs, err := s.db.CountActiveJobsByOwner(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if !billing.CanCreateJob(sub.Plan, activeJobs) {
		serviceError(w, &ErrPlanLimit{Resource: "job postings"})
		return
	}

	job, err := s.db.CreateJob(r.Context(), &db.JobCreateInput{
		OwnerID:      userID,
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Status:       req.Status,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	if err := s.db.IncrementJobsUsed(r.Context(), userID); err != nil {
		serviceError(w, err)
		return
	}

	s.cache.InvalidateBoard(r.Context())
	writeJSON(w, http.StatusCreated, job)
}

// handleListJobs lists the caller's jobs with optional status filter and
// pagination.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	opts := db.ListJobsOptions{Status: r.URL.Query().Get("status")}
	if opts.Status != "" && opts.Status != db.JobStatusDraft &&
		opts.Status != db.JobStatusOpen && opts.Status != db.JobStatusClosed {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	opts.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	opts.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	jobs, total, err := s.db.ListJobsByOwner(r.Context(), userID, opts)
	if err != nil {
		serviceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"total": total,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Requirements != nil {
		job.Requirements = *req.Requirements
	}
	if req.Status != nil {
		job.Status = *req.Status
	}
	if req.IsPublic != nil {
		job.IsPublic = *req.IsPublic
	}

	if err := s.db.UpdateJob(r.Context(), job); err != nil {
		serviceError(w, err)
		return
	}

	s.cache.InvalidateBoard(r.Context())
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	if err := s.db.DeleteJob(r.Context(), job.ID); err != nil {
		serviceError(w, err)
		return
	}

	s.cache.InvalidateBoard(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
