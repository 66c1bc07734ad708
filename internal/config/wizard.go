package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .memoria.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to memoria! Let's configure your memory store.")
	fmt.Println()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider (evaluation, condensing, reranking)",
		Items: []string{"anthropic", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. Quality tier.
	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   — fast & cheap (haiku / gpt-4o-mini)",
			"normal — balanced (sonnet / gpt-4o)",
			"max    — highest quality (opus / gpt-4)",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	quality := tiers[qualityIdx]

	preset := GetPreset(provider, quality)

	// 3. Database path.
	dbPrompt := promptui.Prompt{
		Label:   "SQLite database path",
		Default: "memoria.db",
	}
	dbPath, err := dbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("db path: %w", err)
	}

	// 4. Server address.
	addrPrompt := promptui.Prompt{
		Label:   "HTTP listen address",
		Default: ":8080",
	}
	addr, err := addrPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server address: %w", err)
	}

	// 5. Optional web search supplement for agentic mode.
	webPrompt := promptui.Select{
		Label: "Enable web search supplement for agentic searches",
		Items: []string{"no", "yes"},
	}
	webIdx, _, err := webPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("web search selection: %w", err)
	}

	// Build the config on top of the defaults.
	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = preset.Model
	cfg.EmbeddingProvider = embeddingProviderFor(provider)
	cfg.EmbeddingModel = preset.EmbeddingModel
	cfg.Quality = quality
	cfg.DBPath = dbPath
	cfg.Server.Addr = addr

	if webIdx == 1 {
		urlPrompt := promptui.Prompt{
			Label:   "Web search endpoint (SearXNG-compatible)",
			Default: "http://localhost:8888",
		}
		baseURL, err := urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("web search endpoint: %w", err)
		}
		cfg.WebSearch.Enabled = true
		cfg.WebSearch.BaseURL = baseURL
	}

	// Check for API key.
	envVar := APIKeyEnvVar(provider)
	if envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running memoria serve.\n", envVar)
		}
	}

	// Save to .memoria.yml.
	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

// embeddingProviderFor returns the default embedding provider for a given
// LLM provider. OpenAI embeddings are used for cloud providers.
func embeddingProviderFor(p ProviderType) ProviderType {
	if p == ProviderOllama {
		return ProviderOllama
	}
	return ProviderOpenAI
}
