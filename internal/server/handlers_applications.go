package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/db"
	"github.com/hirewire/hirewire/internal/resume"
	"github.com/hirewire/hirewire/internal/server/middleware"
)

// applicationTransitions is the owner-driven review machine. Accepted and
// rejected are terminal.
var applicationTransitions = map[string][]string{
	db.ApplicationSubmitted: {db.ApplicationReviewed, db.ApplicationAccepted, db.ApplicationRejected},
	db.ApplicationReviewed:  {db.ApplicationAccepted, db.ApplicationRejected},
}

func applicationTransitionAllowed(from, to string) bool {
	for _, s := range applicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func validApplicationStatus(s string) bool {
	switch s {
	case db.ApplicationSubmitted, db.ApplicationReviewed,
		db.ApplicationAccepted, db.ApplicationRejected:
		return true
	}
	return false
}

// handleApply lets an applicant apply to a public job with a cover note and
// an optional resume. When a resume is attached it becomes a candidate row
// under the job owner, linked to the application.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	applicantID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job ID")
		return
	}

	job, err := s.db.GetJob(r.Context(), jobID)
	if err != nil {
		serviceError(w, err)
		return
	}
	// Same 404 as the board for private or closed jobs
	if job == nil || !job.IsPublic || job.Status != db.JobStatusOpen {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	input := &db.ApplicationCreateInput{JobID: jobID, ApplicantID: applicantID}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, resume.MaxUploadSize)
		if err := r.ParseMultipartForm(resume.MaxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "resume exceeds the 10MB limit or the form is malformed")
			return
		}
		input.CoverNote = r.FormValue("cover_note")

		if file, header, err := r.FormFile("resume"); err == nil {
			defer file.Close()
			candidateID, err := s.candidateFromApplicantResume(r, job, header.Filename, file)
			if err != nil {
				serviceError(w, err)
				return
			}
			input.CandidateID = candidateID
		}
	} else {
		var body struct {
			CoverNote string `json:"cover_note" validate:"omitempty,max=5000"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := s.validator.Struct(body); err != nil {
			writeError(w, http.StatusBadRequest, extractValidationErrors(err))
			return
		}
		input.CoverNote = body.CoverNote
	}

	application, err := s.db.CreateApplication(r.Context(), input)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateApplication) {
			serviceError(w, &ErrDuplicate{Resource: "application"})
			return
		}
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, application)
}

// candidateFromApplicantResume stores an applicant's resume as a candidate
// under the job owner so it shows up in the owner's ranked list. Analysis
// here is platform-paid: it does not draw from the owner's quota.
func (s *Server) candidateFromApplicantResume(r *http.Request, job *db.Job, filename string, file io.Reader) (*uuid.UUID, error) {
	if !resume.AllowedExtension(filename) {
		return nil, &ErrValidation{Field: "resume", Message: "unsupported resume format"}
	}

	text, err := s.extractResumeText(filename, file)
	if err != nil {
		return nil, &ErrValidation{Field: "resume", Message: err.Error()}
	}

	input := &db.CandidateCreateInput{
		JobID:          job.ID,
		OwnerID:        job.OwnerID,
		Name:           r.FormValue("name"),
		Email:          r.FormValue("email"),
		ResumeFilename: filename,
		ResumeText:     text,
	}
	s.analyzeResume(r.Context(), input, filename, text)

	candidate, err := s.db.CreateCandidate(r.Context(), input)
	if err != nil {
		return nil, err
	}
	return &candidate.ID, nil
}

// handleListMyApplications lists the applicant's own applications with job
// titles joined in.
func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	applicantID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	apps, err := s.db.ListApplicationsByApplicant(r.Context(), applicantID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if apps == nil {
		apps = []db.Application{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

// handleListJobApplications lists a job's applications for its owner.
func (s *Server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	apps, err := s.db.ListApplicationsByJob(r.Context(), job.ID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if apps == nil {
		apps = []db.Application{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

// handleUpdateApplicationStatus moves an application through the review
// machine. Only the job owner may move it; bad transitions are 409.
func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validApplicationStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown application status")
		return
	}

	application, err := s.db.GetApplication(r.Context(), applicationID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if application == nil {
		serviceError(w, &ErrNotFound{Resource: "application", ID: applicationID})
		return
	}

	job, err := s.db.GetJob(r.Context(), application.JobID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if job == nil || job.OwnerID != userID {
		serviceError(w, &ErrForbidden{Reason: "application belongs to another user's job"})
		return
	}

	if !applicationTransitionAllowed(application.Status, req.Status) {
		serviceError(w, &ErrInvalidTransition{From: application.Status, To: req.Status})
		return
	}

	if err := s.db.UpdateApplicationStatus(r.Context(), applicationID, req.Status); err != nil {
		serviceError(w, err)
		return
	}
	application.Status = req.Status

	log.Printf("application %s moved to %s", applicationID, req.Status)
	writeJSON(w, http.StatusOK, application)
}
