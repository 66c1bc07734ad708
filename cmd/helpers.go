package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/guilhermexp/memoria/internal/config"
	"github.com/guilhermexp/memoria/internal/embeddings"
	"github.com/guilhermexp/memoria/internal/llm"
	"github.com/guilhermexp/memoria/internal/websearch"
)

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// Shared by the serve, search, mcp, and reembed commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		preset := config.GetPreset(provider, cfg.Quality)
		model = preset.EmbeddingModel
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, ""), nil
	default:
		// For providers without native embeddings, fall back to OpenAI.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required (used for embeddings when provider is %s)", provider)
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// webSearchConfigFrom maps file config onto the web search client config.
func webSearchConfigFrom(cfg *config.Config) websearch.Config {
	ws := websearch.DefaultConfig()
	ws.Enabled = cfg.WebSearch.Enabled
	ws.BaseURL = cfg.WebSearch.BaseURL
	if cfg.WebSearch.MaxResults > 0 {
		ws.MaxResults = cfg.WebSearch.MaxResults
	}
	if cfg.WebSearch.TimeoutSeconds > 0 {
		ws.Timeout = time.Duration(cfg.WebSearch.TimeoutSeconds) * time.Second
	}
	if cfg.WebSearch.RatePerSecond > 0 {
		ws.RatePerSecond = cfg.WebSearch.RatePerSecond
	}
	return ws
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `memoria init` to create a config file", err)
	}
	return cfg, nil
}
