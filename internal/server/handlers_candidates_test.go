package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire/internal/ai"
	"github.com/hirewire/hirewire/internal/db"
	"github.com/hirewire/hirewire/internal/resume"
)

func TestParseImportCSV(t *testing.T) {
	csv := "name,email,resume_text\n" +
		"Ada Lovelace,ada@example.com,Analytical engines and programming\n" +
		"Grace Hopper,,COBOL and compilers\n"

	rows, err := parseImportCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ada Lovelace", rows[0].name)
	assert.Equal(t, "ada@example.com", rows[0].email)
	assert.Equal(t, "Analytical engines and programming", rows[0].resumeText)

	// Email is optional
	assert.Equal(t, "Grace Hopper", rows[1].name)
	assert.Empty(t, rows[1].email)
}

func TestParseImportCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"empty file", "", "failed to read CSV header"},
		{"wrong header", "full_name,email,resume\nAda,a@b.com,text\n", "header must be"},
		{"wrong column count", "name,email,resume_text\nAda,a@b.com\n", "malformed CSV row"},
		{"missing name", "name,email,resume_text\n,a@b.com,text\n", "need a name"},
		{"missing resume text", "name,email,resume_text\nAda,a@b.com,\n", "need a name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseImportCSV(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseImportCSVQuotedFields(t *testing.T) {
	csv := "name,email,resume_text\n" +
		"\"Lovelace, Ada\",ada@example.com,\"Line one\nLine two\"\n"

	rows, err := parseImportCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lovelace, Ada", rows[0].name)
	assert.Equal(t, "Line one\nLine two", rows[0].resumeText)
}

func TestExtractResumeTextRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := resume.NewStore(dir)
	require.NoError(t, err)
	s := &Server{resumes: store}

	text, err := s.extractResumeText("resume.txt", strings.NewReader("Go engineer, ten years"))
	require.NoError(t, err)
	assert.Equal(t, "Go engineer, ten years", text)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "stored file must be removed once its text is extracted")
}

func TestExtractResumeTextRemovesFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	store, err := resume.NewStore(dir)
	require.NoError(t, err)
	s := &Server{resumes: store}

	_, err = s.extractResumeText("empty.txt", strings.NewReader("   "))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalyzeResumeDegrades(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"service error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"schema-invalid payload", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"score":"high","skills":"go"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			s := &Server{ai: ai.NewClient(srv.URL, time.Second)}

			input := &db.CandidateCreateInput{Name: "Ada Lovelace"}
			s.analyzeResume(context.Background(), input, "ada.txt", "resume text")

			assert.Equal(t, db.AnalysisUnavailable, input.AnalysisStatus)
			assert.Zero(t, input.Score)
			assert.Zero(t, input.VibeCodingScore)
			assert.Empty(t, input.Skills)
			// The candidate still persists with what the form provided
			assert.Equal(t, "Ada Lovelace", input.Name)
		})
	}
}

func TestAnalyzeResumeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "Ada Lovelace",
			"email": "ada@example.com",
			"summary": "strong candidate",
			"skills": ["go", "sql"],
			"score": 88,
			"vibe_coding_score": 40
		}`))
	}))
	defer srv.Close()
	s := &Server{ai: ai.NewClient(srv.URL, time.Second)}

	input := &db.CandidateCreateInput{}
	s.analyzeResume(context.Background(), input, "ada.txt", "resume text")

	assert.Equal(t, db.AnalysisComplete, input.AnalysisStatus)
	assert.Equal(t, 88, input.Score)
	assert.Equal(t, 40, input.VibeCodingScore)
	assert.Equal(t, []string{"go", "sql"}, input.Skills)
	assert.Equal(t, "strong candidate", input.Summary)

	// Identity falls back to what the analysis found
	assert.Equal(t, "Ada Lovelace", input.Name)
	assert.Equal(t, "ada@example.com", input.Email)
}

func TestGetCandidateInvalidID(t *testing.T) {
	s := newBareServer()

	req := authedRequest(http.MethodGet, "/api/candidates/nope", nil, "hr")
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	s.handleGetCandidate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid candidate ID")
}

func TestUploadCandidateMissingIdentity(t *testing.T) {
	s := newBareServer()
	id := "0b2f9a90-2f6e-4f5c-9f5a-6a9e1c1d2e3f"

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+id+"/candidates", nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	s.handleUploadCandidate(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
