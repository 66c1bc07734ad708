package llm

import (
	"fmt"
	"os"
)

// defaultRPM bounds completion calls against cloud backends. Local ollama
// runs unthrottled.
const defaultRPM = 60

// NewProvider creates an LLM provider for the given provider type and model.
// Supported provider types: "anthropic", "openai", "ollama". The retrieval
// core only uses the provider for query condensation, adequacy evaluation,
// and reranking; every call site tolerates provider failure.
func NewProvider(providerType string, model string) (Provider, error) {
	switch providerType {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewRateLimitedProvider(NewAnthropicProvider(apiKey, model), defaultRPM), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewRateLimitedProvider(NewOpenAIProvider(apiKey, model), defaultRPM), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
