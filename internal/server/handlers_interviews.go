package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/hirewire/hirewire/internal/ai"
	"github.com/hirewire/hirewire/internal/cache"
	"github.com/hirewire/hirewire/internal/db"
	"github.com/hirewire/hirewire/internal/interview"
	"github.com/hirewire/hirewire/internal/server/middleware"
)

const (
	interviewerSystemPrompt = "You are a professional job interviewer. Ask focused " +
		"follow-up questions about the candidate's experience and keep answers short."

	evaluationPrompt = "The interview has ended. Evaluate the candidate based on the " +
		"conversation so far. Respond with a JSON object containing the keys " +
		`"summary" (string), "strengths" (array of strings), "concerns" (array of ` +
		`strings), and "recommendation" (one of "hire", "maybe", "no_hire"). ` +
		"Respond with JSON only."
)

// ownedInterview loads the interview in the path parameter and verifies the
// caller owns it.
func (s *Server) ownedInterview(r *http.Request, param string) (*db.Interview, error) {
	interviewID, err := uuid.Parse(r.PathValue(param))
	if err != nil {
		return nil, &ErrValidation{Field: param, Message: "invalid interview ID"}
	}

	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, &ErrForbidden{Reason: "missing identity"}
	}

	iv, err := s.db.GetInterview(r.Context(), interviewID)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, &ErrNotFound{Resource: "interview", ID: interviewID}
	}
	if iv.OwnerID != userID {
		return nil, &ErrForbidden{Reason: "interview belongs to another user"}
	}
	return iv, nil
}

// transitionInterview validates and applies a status change, returning 409
// through the error map when the machine forbids it.
func (s *Server) transitionInterview(r *http.Request, iv *db.Interview, to interview.Status) error {
	from := interview.Status(iv.Status)
	if !interview.IsTransitionAllowed(from, to) {
		return &ErrInvalidTransition{From: iv.Status, To: string(to)}
	}
	if err := s.db.SetInterviewStatus(r.Context(), iv.ID, string(to)); err != nil {
		return err
	}
	iv.Status = string(to)
	return nil
}

func (s *Server) publishInterviewEvent(r *http.Request, iv *db.Interview, eventType string) {
	s.cache.PublishInterviewEvent(r.Context(), cache.InterviewEvent{
		Type:        eventType,
		InterviewID: iv.ID.String(),
		CandidateID: iv.CandidateID.String(),
		JobID:       iv.JobID.String(),
	})
}

// handleCreateInterview creates a pending interview for a candidate.
func (s *Server) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.ownedCandidate(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	iv, err := s.db.CreateInterview(r.Context(), candidate.ID, candidate.JobID, candidate.OwnerID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, iv)
}

// handleListCandidateInterviews lists a candidate's interviews.
func (s *Server) handleListCandidateInterviews(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.ownedCandidate(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	interviews, err := s.db.ListInterviewsByCandidate(r.Context(), candidate.ID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if interviews == nil {
		interviews = []db.Interview{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"interviews": interviews})
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	iv, err := s.ownedInterview(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

// handleStartInterview moves a pending interview to in_progress.
func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	iv, err := s.ownedInterview(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	if err := s.transitionInterview(r, iv, interview.StatusInProgress); err != nil {
		serviceError(w, err)
		return
	}

	s.publishInterviewEvent(r, iv, "interview_started")
	writeJSON(w, http.StatusOK, iv)
}

// chatMessages flattens the transcript into the AI chat format, prefixed by
// the interviewer system prompt.
func chatMessages(iv *db.Interview) []ai.Message {
	messages := make([]ai.Message, 0, len(iv.Transcript)+1)
	messages = append(messages, ai.Message{Role: "system", Content: interviewerSystemPrompt})
	for _, turn := range iv.Transcript {
		role := "user"
		if turn.Role == "interviewer" {
			role = "assistant"
		}
		messages = append(messages, ai.Message{Role: role, Content: turn.Content})
	}
	return messages
}

// exchangeTurn appends the candidate's message, asks the AI for the
// interviewer reply, and persists both turns.
func (s *Server) exchangeTurn(r *http.Request, iv *db.Interview, content string) (string, error) {
	messages := append(chatMessages(iv), ai.Message{Role: "user", Content: content})

	reply, err := s.ai.Chat(r.Context(), messages)
	if err != nil {
		return "", fmt.Errorf("interviewer is unavailable: %w", err)
	}

	turns := []db.Turn{
		{Role: "candidate", Content: content},
		{Role: "interviewer", Content: reply},
	}
	if err := s.db.AppendInterviewTurns(r.Context(), iv.ID, turns); err != nil {
		return "", err
	}
	iv.Transcript = append(iv.Transcript, turns...)

	return reply, nil
}

// handleInterviewMessage appends a candidate text turn and returns the AI
// interviewer's reply. Only valid while the interview is in progress.
func (s *Server) handleInterviewMessage(w http.ResponseWriter, r *http.Request) {
	iv, err := s.ownedInterview(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}
	if iv.Status != string(interview.StatusInProgress) {
		serviceError(w, &ErrInvalidTransition{From: iv.Status, To: "message exchange"})
		return
	}

	var req struct {
		Content string `json:"content" validate:"required,max=10000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	reply, err := s.exchangeTurn(r, iv, req.Content)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// handleInterviewAudio accepts a voice answer: transcribes it, runs the chat
// exchange, and synthesizes the reply. TTS failure degrades to a text-only
// reply.
func (s *Server) handleInterviewAudio(w http.ResponseWriter, r *http.Request) {
	iv, err := s.ownedInterview(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}
	if iv.Status != string(interview.StatusInProgress) {
		serviceError(w, &ErrInvalidTransition{From: iv.Status, To: "message exchange"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 25<<20)
	if err := r.ParseMultipartForm(25 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "audio exceeds the 25MB limit or the form is malformed")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio file")
		return
	}
	defer file.Close()

	transcribed, err := s.ai.SpeechToText(r.Context(), header.Filename, file)
	if err != nil {
		serviceError(w, fmt.Errorf("transcription failed: %w", err))
		return
	}
	if transcribed == "" {
		writeError(w, http.StatusBadRequest, "audio contains no recognizable speech")
		return
	}

	reply, err := s.exchangeTurn(r, iv, transcribed)
	if err != nil {
		serviceError(w, err)
		return
	}

	response := map[string]string{
		"transcribed": transcribed,
		"reply":       reply,
	}
	if audio, err := s.ai.TextToSpeech(r.Context(), reply); err != nil {
		log.Printf("text-to-speech degraded for interview %s: %v", iv.ID, err)
	} else {
		response["audio_base64"] = base64.StdEncoding.EncodeToString(audio)
	}

	writeJSON(w, http.StatusOK, response)
}

// handleInterviewAvatar generates an interviewer avatar image for the
// interview's job.
func (s *Server) handleInterviewAvatar(w http.ResponseWriter, r *http.Request) {
	iv, err := s.ownedInterview(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	job, err := s.db.GetJob(r.Context(), iv.JobID)
	if err != nil {
		serviceError(w, err)
		return
	}
	title := "a technical role"
	if job != nil {
		title = job.Title
	}

	prompt := fmt.Sprintf(
		"Professional headshot of a friendly interviewer for a %s position, neutral background",
		title)
	img, err := s.ai.GenerateImage(r.Context(), prompt)
	if err != nil {
		serviceError(w, fmt.Errorf("avatar generation failed: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		log.Printf("failed to write avatar response: %v", err)
	}
}

// handleCompleteInterview asks the AI to evaluate the transcript, stores the
// evaluation, and completes the interview. Evaluation failure stores a
// placeholder instead of failing the completion.
func (s *Server) handleCompleteInterview(w http.ResponseWriter, r *http.Request) {
	iv, err := s.ownedInterview(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	if err := s.transitionInterview(r, iv, interview.StatusCompleted); err != nil {
		serviceError(w, err)
		return
	}

	evaluation := s.evaluateTranscript(r, iv)
	if err := s.db.SetInterviewEvaluation(r.Context(), iv.ID, evaluation); err != nil {
		serviceError(w, err)
		return
	}
	iv.Evaluation = evaluation

	s.publishInterviewEvent(r, iv, "interview_completed")
	writeJSON(w, http.StatusOK, iv)
}

// evaluateTranscript runs the evaluation prompt over the transcript. Any
// failure degrades to a placeholder document.
func (s *Server) evaluateTranscript(r *http.Request, iv *db.Interview) db.JSONDoc {
	placeholder := db.JSONDoc{"summary": "evaluation unavailable"}
	if len(iv.Transcript) == 0 {
		return db.JSONDoc{"summary": "no conversation took place"}
	}

	messages := append(chatMessages(iv), ai.Message{Role: "user", Content: evaluationPrompt})
	reply, err := s.ai.Chat(r.Context(), messages)
	if err != nil {
		log.Printf("evaluation degraded for interview %s: %v", iv.ID, err)
		return placeholder
	}

	var evaluation db.JSONDoc
	if err := json.Unmarshal([]byte(reply), &evaluation); err != nil {
		log.Printf("evaluation for interview %s is not JSON, storing raw text", iv.ID)
		return db.JSONDoc{"summary": reply}
	}
	return evaluation
}

// handleCancelInterview cancels a pending or in-progress interview.
func (s *Server) handleCancelInterview(w http.ResponseWriter, r *http.Request) {
	iv, err := s.ownedInterview(r, "id")
	if err != nil {
		serviceError(w, err)
		return
	}

	if err := s.transitionInterview(r, iv, interview.StatusCancelled); err != nil {
		serviceError(w, err)
		return
	}

	s.publishInterviewEvent(r, iv, "interview_cancelled")
	writeJSON(w, http.StatusOK, iv)
}
