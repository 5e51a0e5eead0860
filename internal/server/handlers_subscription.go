package server

import (
	"encoding/json"
	"net/http"

	"github.com/hirewire/hirewire/internal/billing"
	"github.com/hirewire/hirewire/internal/server/middleware"
)

// handleGetSubscription returns the caller's subscription, creating a free
// one on first read. Stale usage periods reset lazily in the query.
func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sub, err := s.db.GetOrCreateSubscription(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	limits := billing.PlanLimits(sub.Plan)
	writeJSON(w, http.StatusOK, map[string]any{
		"subscription": sub,
		"limits": map[string]int{
			"max_active_jobs": limits.MaxActiveJobs,
			"max_analyses":    limits.MaxAnalyses,
		},
	})
}

// handleSetPlan changes the caller's plan. Downgrades are allowed; usage
// counters keep running across plan changes.
func (s *Server) handleSetPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !billing.ValidPlan(req.Plan) {
		writeError(w, http.StatusBadRequest, "unknown plan, choose free, starter, or pro")
		return
	}

	// Ensure the row exists before updating it
	if _, err := s.db.GetOrCreateSubscription(r.Context(), userID); err != nil {
		serviceError(w, err)
		return
	}

	sub, err := s.db.SetSubscriptionPlan(r.Context(), userID, req.Plan)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}
