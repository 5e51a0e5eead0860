package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/db"
)

// handleBoardList serves the public job board: open, public jobs with an
// optional title search. Results are cached in Redis for 60 seconds.
func (s *Server) handleBoardList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	cacheKey := fmt.Sprintf("%s:%d:%d", q, limit, offset)

	var jobs []db.Job
	if s.cache.GetBoard(r.Context(), cacheKey, &jobs) {
		writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
		return
	}

	jobs, err := s.db.ListPublicJobs(r.Context(), q, limit, offset)
	if err != nil {
		serviceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}

	s.cache.SetBoard(r.Context(), cacheKey, jobs)
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// handleBoardGet serves one public job. Private or closed jobs read as 404
// so the board never confirms their existence.
func (s *Server) handleBoardGet(w http.ResponseWriter, r *http.Request) {
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
	if job == nil || !job.IsPublic || job.Status != db.JobStatusOpen {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	writeJSON(w, http.StatusOK, job)
}
