package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hirewire/hirewire/internal/db"
)

func TestApplicationTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"review a new application", db.ApplicationSubmitted, db.ApplicationReviewed, true},
		{"accept without review", db.ApplicationSubmitted, db.ApplicationAccepted, true},
		{"reject without review", db.ApplicationSubmitted, db.ApplicationRejected, true},
		{"accept after review", db.ApplicationReviewed, db.ApplicationAccepted, true},
		{"reject after review", db.ApplicationReviewed, db.ApplicationRejected, true},
		{"un-review", db.ApplicationReviewed, db.ApplicationSubmitted, false},
		{"reverse an acceptance", db.ApplicationAccepted, db.ApplicationReviewed, false},
		{"accept after rejecting", db.ApplicationRejected, db.ApplicationAccepted, false},
		{"no self transition", db.ApplicationSubmitted, db.ApplicationSubmitted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, applicationTransitionAllowed(tt.from, tt.to))
		})
	}
}

func TestValidApplicationStatus(t *testing.T) {
	for _, s := range []string{
		db.ApplicationSubmitted, db.ApplicationReviewed,
		db.ApplicationAccepted, db.ApplicationRejected,
	} {
		assert.True(t, validApplicationStatus(s), s)
	}
	assert.False(t, validApplicationStatus("pending"))
	assert.False(t, validApplicationStatus(""))
}

func TestApplyInvalidJobID(t *testing.T) {
	s := newBareServer()

	req := authedRequest(http.MethodPost, "/api/board/jobs/nope/apply", []byte(`{}`), "applicant")
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	s.handleApply(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid job ID")
}

func TestUpdateApplicationStatusRejections(t *testing.T) {
	s := newBareServer()

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/applications/x/status", nil)
		rec := httptest.NewRecorder()
		s.handleUpdateApplicationStatus(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid application ID", func(t *testing.T) {
		req := authedRequest(http.MethodPut, "/api/applications/nope/status", []byte(`{"status":"reviewed"}`), "hr")
		req.SetPathValue("id", "nope")
		rec := httptest.NewRecorder()
		s.handleUpdateApplicationStatus(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		id := "0b2f9a90-2f6e-4f5c-9f5a-6a9e1c1d2e3f"
		req := authedRequest(http.MethodPut, "/api/applications/"+id+"/status", []byte(`{"status":"shortlisted"}`), "hr")
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		s.handleUpdateApplicationStatus(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown application status")
	})
}
