package summarizer

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewGenerator builds the Generator for provider. A blank key fails here so
// callers can refuse to start before any request is served.
func NewGenerator(ctx context.Context, provider, apiKey string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderGemini:
		return NewGeminiGenerator(ctx, apiKey)
	case ProviderOpenAI:
		return NewOpenAIGenerator(apiKey)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
