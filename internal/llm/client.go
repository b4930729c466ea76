package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the llama.cpp server's OpenAI-compatible completions API.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewClient creates a new LLM client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		client:  newHTTPClient(),
	}
}

// newHTTPClient returns the HTTP client shared by the llama.cpp clients.
// Generation on CPU is slow, so the timeout is generous; callers bound requests with their context.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 2 * time.Minute}
}

// CompletionRequest represents the request payload for raw prompt completions.
type CompletionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float32  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// CompletionChoice represents a single choice in the completion response.
type CompletionChoice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

// CompletionResponse represents the response from the completions API.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Choices []CompletionChoice `json:"choices"`
}

// Generate sends a raw prompt to /v1/completions with default parameters.
// A prompt that overflows the model context yields an error wrapping ErrTokenLimitExceeded.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.GenerateWithParams(ctx, prompt, GenerateParams{})
}

// GenerateWithParams sends a raw prompt to /v1/completions.
func (c *Client) GenerateWithParams(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	params = params.withDefaults(c.Model)

	payload := CompletionRequest{
		Model:       params.Model,
		Prompt:      prompt,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		Stop:        params.Stop,
	}

	var completionResp CompletionResponse
	if err := c.post(ctx, "/v1/completions", payload, &completionResp); err != nil {
		return "", err
	}

	if len(completionResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return completionResp.Choices[0].Text, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		if isTokenLimitError(resp.StatusCode, string(raw)) {
			return fmt.Errorf("bad status %d: %w: %s", resp.StatusCode, ErrTokenLimitExceeded, string(raw))
		}
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// isTokenLimitError recognises the context overflow responses of llama.cpp and similar servers.
func isTokenLimitError(status int, body string) bool {
	if status != http.StatusBadRequest && status != http.StatusInternalServerError {
		return false
	}
	lower := strings.ToLower(body)
	if strings.Contains(lower, "number of tokens exceeded") || strings.Contains(lower, "exceed_context_size") {
		return true
	}
	return strings.Contains(lower, "context") && (strings.Contains(lower, "exceed") || strings.Contains(lower, "too long"))
}
