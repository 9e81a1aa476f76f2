package domain

import "context"

// LLMClient defines the capability to send prompts to a language model.
type LLMClient interface {
	// Generate returns free-form text for the prompt.
	Generate(ctx context.Context, prompt string, maxTokens int) (*LLMResponse, error)
	// GenerateStructured constrains the model output to the given JSON
	// schema and returns the raw JSON text. Callers decode it into their own
	// types.
	GenerateStructured(ctx context.Context, prompt string, schema map[string]any, maxTokens int) (*LLMResponse, error)
	Version() string
}

// LLMResponse carries the model output and whether the generation finished.
type LLMResponse struct {
	Text string
	Done bool
}
