package llm

import "errors"

// ErrTokenLimitExceeded is returned when the prompt does not fit the model's context window.
var ErrTokenLimitExceeded = errors.New("number of tokens exceeded")

// GenerateParams holds parameters for raw prompt completion requests.
type GenerateParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, DefaultMaxTokens is used.
	MaxTokens int

	// Temperature controls the randomness of the output.
	// If 0, DefaultTemperature is used.
	Temperature float32

	// Stop lists sequences that end generation.
	Stop []string
}

// Generation defaults tuned for short factual answers from a small chat model.
const (
	DefaultMaxTokens   = 256
	DefaultTemperature = 0.2
)

// DefaultStop ends generation when the model starts a new prompt section.
var DefaultStop = []string{"<|user|>", "<|system|>", "<|context|>"}

func (p GenerateParams) withDefaults(model string) GenerateParams {
	if p.Model == "" {
		p.Model = model
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	if p.Temperature == 0 {
		p.Temperature = DefaultTemperature
	}
	if p.Stop == nil {
		p.Stop = DefaultStop
	}
	return p
}
