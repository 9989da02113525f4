// Package llms implements the outbound chat-completion client for
// OpenAI-compatible providers, including structured (JSON schema
// constrained) output.
package llms

import "context"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateOptions tunes one completion request.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int

	// Schema, when set, constrains the response to the given JSON schema
	// via the provider's structured-output support. SchemaName labels it.
	Schema     map[string]any
	SchemaName string
}

// Result is a completed generation.
type Result struct {
	Text  string
	Usage Usage
}

// Provider is the minimal chat-completion surface the gateway needs.
type Provider interface {
	Generate(ctx context.Context, messages []Message, opts GenerateOptions) (*Result, error)
	ModelName() string
}
