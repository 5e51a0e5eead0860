package server

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hirewire/hirewire/internal/billing"
	"github.com/hirewire/hirewire/internal/db"
	"github.com/hirewire/hirewire/internal/resume"
	"github.com/hirewire/hirewire/internal/server/middleware"
)

// importConcurrency bounds parallel AI calls during a CSV bulk import.
const importConcurrency = 4

// ownedCandidate loads the candidate in the path parameter and verifies the
// caller owns it.
func (s *Server) ownedCandidate(r *http.Request, param string) (*db.Candidate, error) {
	candidateID, err := uuid.Parse(r.PathValue(param))
	if err != nil {
		return nil, &ErrValidation{Field: param, Message: "invalid candidate ID"}
	}

	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, &ErrForbidden{Reason: "missing identity"}
	}

	candidate, err := s.db.GetCandidate(r.Context(), candidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, &ErrNotFound{Resource: "candidate", ID: candidateID}
	}
	if candidate.OwnerID != userID {
		return nil, &ErrForbidden{Reason: "candidate belongs to another user"}
	}
	return candidate, nil
}

// analyzeResume runs the AI analysis and shapes the result into a candidate
// input. AI failures and invalid payloads degrade to an unavailable analysis
// with zero scores; the caller still persists the candidate.
func (s *Server) analyzeResume(ctx context.Context, input *db.CandidateCreateInput, filename, text string) {
	analysis, err := s.ai.Analyze(ctx, filename, text)
	if err != nil {
		log.Printf("resume analysis degraded for %q: %v", filename, err)
		input.AnalysisStatus = db.AnalysisUnavailable
		input.Skills = []string{}
		return
	}

	input.Skills = analysis.Skills
	input.Experience = db.JSONList(analysis.Experience)
	input.Education = db.JSONList(analysis.Education)
	input.Projects = db.JSONList(analysis.Projects)
	input.Summary = analysis.Summary
	input.Score = analysis.Score
	input.VibeCodingScore = analysis.VibeCodingScore
	input.AnalysisStatus = db.AnalysisComplete

	// Prefer form-provided identity, fall back to what the analysis found
	if input.Name == "" {
		input.Name = analysis.Name
	}
	if input.Email == "" {
		input.Email = analysis.Email
	}
}

// checkAnalysisQuota verifies the caller's plan has room for n more analyses
// this month.
func (s *Server) checkAnalysisQuota(ctx context.Context, userID uuid.UUID, n int) error {
	sub, err := s.db.GetOrCreateSubscription(ctx, userID)
	if err != nil {
		return err
	}
	if !billing.CanRunAnalysis(sub.Plan, sub.AnalysesUsed, n) {
		return &ErrPlanLimit{Resource: "resume analyses"}
	}
	return nil
}

// extractResumeText stores the upload just long enough to run text
// extraction, then removes the file. The extracted text is what gets
// persisted; nothing reads the file again.
func (s *Server) extractResumeText(filename string, file io.Reader) (string, error) {
	path, err := s.resumes.Save(filename, file)
	if err != nil {
		return "", err
	}
	defer s.resumes.Remove(path)
	return resume.ExtractText(path)
}

// handleUploadCandidate accepts a multipart resume upload, extracts its
// text, analyzes it, and persists a scored candidate under the job.
func (s *Server) handleUploadCandidate(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, resume.MaxUploadSize)
	if err := r.ParseMultipartForm(resume.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "resume exceeds the 10MB limit or the form is malformed")
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing resume file")
		return
	}
	defer file.Close()

	if !resume.AllowedExtension(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported resume format, use pdf, docx, doc, or txt")
		return
	}

	if err := s.checkAnalysisQuota(r.Context(), job.OwnerID, 1); err != nil {
		serviceError(w, err)
		return
	}

	text, err := s.extractResumeText(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := &db.CandidateCreateInput{
		JobID:          job.ID,
		OwnerID:        job.OwnerID,
		Name:           r.FormValue("name"),
		Email:          r.FormValue("email"),
		ResumeFilename: header.Filename,
		ResumeText:     text,
	}
	s.analyzeResume(r.Context(), input, header.Filename, text)

	candidate, err := s.db.CreateCandidate(r.Context(), input)
	if err != nil {
		serviceError(w, err)
		return
	}

	if input.AnalysisStatus == db.AnalysisComplete {
		if err := s.db.IncrementAnalysesUsed(r.Context(), job.OwnerID); err != nil {
			log.Printf("failed to record analysis usage: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, candidate)
}

// importRow is one parsed line of a bulk import CSV.
type importRow struct {
	name       string
	email      string
	resumeText string
}

// handleImportCandidates bulk-imports candidates from a CSV with the header
// name,email,resume_text. Rows are analyzed concurrently; per-row AI
// failures degrade instead of failing the import.
func (s *Server) handleImportCandidates(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, resume.MaxUploadSize)
	if err := r.ParseMultipartForm(resume.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "import file exceeds the 10MB limit or the form is malformed")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing import file")
		return
	}
	defer file.Close()

	rows, err := parseImportCSV(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusBadRequest, "import file contains no rows")
		return
	}

	if err := s.checkAnalysisQuota(r.Context(), job.OwnerID, len(rows)); err != nil {
		serviceError(w, err)
		return
	}

	var (
		mu       sync.Mutex
		imported int
		degraded int
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(importConcurrency)
	for _, row := range rows {
		g.Go(func() error {
			input := &db.CandidateCreateInput{
				JobID:      job.ID,
				OwnerID:    job.OwnerID,
				Name:       row.name,
				Email:      row.email,
				ResumeText: row.resumeText,
			}
			filename := row.name + ".txt"
			s.analyzeResume(ctx, input, filename, row.resumeText)

			if _, err := s.db.CreateCandidate(ctx, input); err != nil {
				return err
			}

			mu.Lock()
			if input.AnalysisStatus == db.AnalysisComplete {
				imported++
			} else {
				degraded++
			}
			mu.Unlock()

			if input.AnalysisStatus == db.AnalysisComplete {
				if err := s.db.IncrementAnalysesUsed(ctx, job.OwnerID); err != nil {
					log.Printf("failed to record analysis usage: %v", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{
		"imported": imported,
		"degraded": degraded,
	})
}

// parseImportCSV reads and validates a bulk import CSV.
func parseImportCSV(r io.Reader) ([]importRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header")
	}
	if len(header) != 3 || strings.TrimSpace(header[0]) != "name" ||
		strings.TrimSpace(header[1]) != "email" || strings.TrimSpace(header[2]) != "resume_text" {
		return nil, fmt.Errorf("CSV header must be name,email,resume_text")
	}

	var rows []importRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed CSV row: %v", err)
		}
		row := importRow{
			name:       strings.TrimSpace(record[0]),
			email:      strings.TrimSpace(record[1]),
			resumeText: strings.TrimSpace(record[2]),
		}
		if row.name == "" || row.resumeText == "" {
			return nil, fmt.Errorf("CSV rows need a name and resume_text")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// handleListCandidates lists a job's candidates ranked by score.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	candidates, err := s.db.ListCandidatesByJob(r.Context(), job.ID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if candidates == nil {
		candidates = []db.Candidate{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.ownedCandidate(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidate)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.ownedCandidate(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	if err := s.db.DeleteCandidate(r.Context(), candidate.ID); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReanalyzeCandidate re-runs the AI analysis against the stored resume
// text, consuming one analysis from the monthly quota.
func (s *Server) handleReanalyzeCandidate(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.ownedCandidate(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	text, err := s.db.GetCandidateResumeText(r.Context(), candidate.ID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if text == "" {
		writeError(w, http.StatusConflict, "candidate has no stored resume text to reanalyze")
		return
	}

	if err := s.checkAnalysisQuota(r.Context(), candidate.OwnerID, 1); err != nil {
		serviceError(w, err)
		return
	}

	input := &db.CandidateCreateInput{
		Name:  candidate.Name,
		Email: candidate.Email,
	}
	filename := candidate.ResumeFilename
	if filename == "" {
		filename = candidate.Name + ".txt"
	}
	s.analyzeResume(r.Context(), input, filename, text)

	updated, err := s.db.UpdateCandidateAnalysis(r.Context(), candidate.ID, input)
	if err != nil {
		serviceError(w, err)
		return
	}
	if updated == nil {
		serviceError(w, &ErrNotFound{Resource: "candidate", ID: candidate.ID})
		return
	}

	if input.AnalysisStatus == db.AnalysisComplete {
		if err := s.db.IncrementAnalysesUsed(r.Context(), candidate.OwnerID); err != nil {
			log.Printf("failed to record analysis usage: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, updated)
}
