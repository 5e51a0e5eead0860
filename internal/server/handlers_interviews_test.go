package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire/internal/db"
)

func TestChatMessages(t *testing.T) {
	iv := &db.Interview{
		Transcript: []db.Turn{
			{Role: "interviewer", Content: "Tell me about your last project."},
			{Role: "candidate", Content: "I built a search index."},
		},
	}

	messages := chatMessages(iv)
	require.Len(t, messages, 3)

	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, interviewerSystemPrompt, messages[0].Content)

	// Interviewer turns map to the assistant role, candidate turns to user
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, "Tell me about your last project.", messages[1].Content)
	assert.Equal(t, "user", messages[2].Role)
	assert.Equal(t, "I built a search index.", messages[2].Content)
}

func TestChatMessagesEmptyTranscript(t *testing.T) {
	messages := chatMessages(&db.Interview{})
	require.Len(t, messages, 1)
	assert.Equal(t, "system", messages[0].Role)
}

func TestGetInterviewInvalidID(t *testing.T) {
	s := newBareServer()

	req := authedRequest(http.MethodGet, "/api/interviews/nope", nil, "hr")
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	s.handleGetInterview(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid interview ID")
}

func TestStartInterviewMissingIdentity(t *testing.T) {
	s := newBareServer()
	id := "0b2f9a90-2f6e-4f5c-9f5a-6a9e1c1d2e3f"

	req := httptest.NewRequest(http.MethodPost, "/api/interviews/"+id+"/start", nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	s.handleStartInterview(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
