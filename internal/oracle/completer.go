// Package oracle provides the classification oracle: an LLM-backed
// text-to-structured-judgment service with validated payloads.
package oracle

import (
	"context"
)

// CompletionRequest represents a completion request to a provider.
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
	JSONOnly    bool
}

// ChatMessage represents a chat message for the provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a provider completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Completer is the interface for LLM providers.
type Completer interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewCompleter creates a provider based on the configured name.
func NewCompleter(provider Provider, apiKey string) (Completer, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicCompleter(apiKey)
	case ProviderOpenAI:
		return NewOpenAICompleter(apiKey)
	default:
		return NewOpenAICompleter(apiKey)
	}
}
