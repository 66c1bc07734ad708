package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider %q, got %q", ProviderAnthropic, cfg.Provider)
	}
	if cfg.Quality != QualityNormal {
		t.Errorf("expected default quality %q, got %q", QualityNormal, cfg.Quality)
	}
	if cfg.DBPath != "memoria.db" {
		t.Errorf("expected default db_path %q, got %q", "memoria.db", cfg.DBPath)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr %q, got %q", ":8080", cfg.Server.Addr)
	}
	if cfg.Search.HybridWeight != 0.7 {
		t.Errorf("expected default hybrid_weight 0.7, got %f", cfg.Search.HybridWeight)
	}
	if cfg.WebSearch.Enabled {
		t.Error("web search should be disabled by default")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.memoria.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.Quality = QualityMax
	original.DBPath = "/var/lib/memoria/store.db"
	original.Server.Addr = ":9090"
	original.WebSearch.Enabled = true
	original.WebSearch.BaseURL = "http://searx.local"
	original.Cache.TTLSeconds = 120

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Quality != original.Quality {
		t.Errorf("quality: got %q, want %q", loaded.Quality, original.Quality)
	}
	if loaded.DBPath != original.DBPath {
		t.Errorf("db_path: got %q, want %q", loaded.DBPath, original.DBPath)
	}
	if loaded.Server.Addr != original.Server.Addr {
		t.Errorf("server.addr: got %q, want %q", loaded.Server.Addr, original.Server.Addr)
	}
	if !loaded.WebSearch.Enabled || loaded.WebSearch.BaseURL != original.WebSearch.BaseURL {
		t.Errorf("web_search: got %+v, want %+v", loaded.WebSearch, original.WebSearch)
	}
	if loaded.Cache.TTLSeconds != original.Cache.TTLSeconds {
		t.Errorf("cache.ttl_seconds: got %d, want %d", loaded.Cache.TTLSeconds, original.Cache.TTLSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("MEMORIA_PROVIDER", "openai")
	t.Setenv("MEMORIA_SERVER__ADDR", ":7070")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOpenAI)
	}
	if loaded.Server.Addr != ":7070" {
		t.Errorf("nested env override failed: got %q, want %q", loaded.Server.Addr, ":7070")
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestValidateEmptyProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty provider")
	}
}

func TestValidateEmptyModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty model")
	}
}

func TestValidateInvalidQuality(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quality = "ultra"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid quality")
	}
}

func TestValidateEmptyDBPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty db_path")
	}
}

func TestValidateHybridWeightRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.HybridWeight = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for hybrid_weight > 1")
	}
	cfg.Search.HybridWeight = -0.1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative hybrid_weight")
	}
}

func TestValidateWebSearchNeedsBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebSearch.Enabled = true
	cfg.WebSearch.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for enabled web search without base_url")
	}
}

func TestValidateNegativeCacheTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.TTLSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative cache.ttl_seconds")
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderAnthropic, QualityLite)
	if p.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected haiku model, got %q", p.Model)
	}

	p = GetPreset(ProviderOpenAI, QualityMax)
	if p.Model != "gpt-4" {
		t.Errorf("expected gpt-4, got %q", p.Model)
	}

	// Unknown combination falls back.
	p = GetPreset("unknown", QualityLite)
	if p.Model != "claude-sonnet-4-5-20250929" {
		t.Errorf("expected fallback to sonnet, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}
