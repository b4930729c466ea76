package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaClient generates completions and embeddings through an Ollama server.
// It satisfies the same generator and embedder contracts as the llama.cpp clients.
type OllamaClient struct {
	GenerateModel string
	EmbedModel    string
	ExpectedSize  int
	client        *api.Client
}

// NewOllamaClient creates a client for the Ollama server at host (e.g. "http://localhost:11434").
func NewOllamaClient(host, generateModel, embedModel string, expectedSize int) (*OllamaClient, error) {
	return newOllamaClient(host, generateModel, embedModel, expectedSize, newHTTPClient())
}

func newOllamaClient(host, generateModel, embedModel string, expectedSize int, httpClient *http.Client) (*OllamaClient, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid OLLAMA_HOST URL: %q", host)
	}

	return &OllamaClient{
		GenerateModel: generateModel,
		EmbedModel:    embedModel,
		ExpectedSize:  expectedSize,
		client:        api.NewClient(base, httpClient),
	}, nil
}

// Generate sends the prompt verbatim (raw mode, no server-side template).
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  c.GenerateModel,
		Prompt: prompt,
		Raw:    true,
		Stream: &stream,
		Options: map[string]any{
			"num_predict": DefaultMaxTokens,
			"temperature": DefaultTemperature,
			"stop":        DefaultStop,
		},
	}

	var sb strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", wrapOllamaError("generate", err)
	}

	return sb.String(), nil
}

// Dimensions returns the vector size every embedding is validated against.
func (c *OllamaClient) Dimensions() int {
	return c.ExpectedSize
}

// EmbedTexts embeds all texts in one request. Inputs are never truncated server-side.
func (c *OllamaClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	truncate := false
	resp, err := c.client.Embed(ctx, &api.EmbedRequest{
		Model:    c.EmbedModel,
		Input:    texts,
		Truncate: &truncate,
	})
	if err != nil {
		return nil, wrapOllamaError("embed", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	for i, vec := range resp.Embeddings {
		if len(vec) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(vec), c.ExpectedSize)
		}
	}

	return resp.Embeddings, nil
}

func wrapOllamaError(op string, err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) && isTokenLimitError(statusErr.StatusCode, statusErr.ErrorMessage) {
		return fmt.Errorf("ollama %s: %w: %s", op, ErrTokenLimitExceeded, statusErr.ErrorMessage)
	}
	return fmt.Errorf("ollama %s: %w", op, err)
}
