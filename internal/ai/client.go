// Package ai provides the HTTP client for the internal AI microservice.
//
// Every call is a single synchronous round trip with a configured timeout.
// There is no retry policy: callers degrade to placeholder values when a
// call fails.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client talks to the AI microservice at AI_SERVICE_URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the AI service.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Analysis is the resume analysis payload returned by /analyze.
// Entity fields are persisted opaquely; only scores and skills are read here.
type Analysis struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Summary         string   `json:"summary"`
	Skills          []string `json:"skills"`
	Experience      []any    `json:"experience"`
	Education       []any    `json:"education"`
	Projects        []any    `json:"projects"`
	Score           int      `json:"score"`
	VibeCodingScore int      `json:"vibe_coding_score"`
}

// Message is one chat turn sent to /api/chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Analyze forwards a resume to POST /analyze as a multipart upload and
// returns the parsed analysis. The response is validated against the
// analysis JSON Schema before use.
func (c *Client) Analyze(ctx context.Context, filename string, resumeText string) (*Analysis, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write([]byte(resumeText)); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("AI service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI service /analyze returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}

	if err := ValidateAnalysis(raw); err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	return &analysis, nil
}

// Chat forwards a conversation to POST /api/chat and returns the reply text.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	reqBody, err := json.Marshal(map[string]any{"messages": messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat",
		bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("AI service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI service /api/chat returned %d", resp.StatusCode)
	}

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("AI service error: %s", result.Error)
	}
	if result.Response == "" {
		return "", fmt.Errorf("AI service returned empty chat response")
	}

	return result.Response, nil
}

// SpeechToText forwards audio to POST /api/speech-to-text and returns the
// transcribed text.
func (c *Client) SpeechToText(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/speech-to-text", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("AI service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI service /api/speech-to-text returned %d", resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}

	return result.Text, nil
}

// TextToSpeech forwards text to POST /api/text-to-speech and returns the
// synthesized audio bytes.
func (c *Client) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	return c.postForBytes(ctx, "/api/text-to-speech", map[string]string{"text": text})
}

// GenerateImage forwards a prompt to POST /api/generate-image and returns
// the image bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return c.postForBytes(ctx, "/api/generate-image", map[string]string{"prompt": prompt})
}

// postForBytes sends a JSON request and returns the raw response body,
// shared by the binary-response endpoints.
func (c *Client) postForBytes(ctx context.Context, path string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path,
		bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("AI service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI service %s returned %d", path, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}
