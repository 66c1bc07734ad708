package config

// QualityTier controls the model selection trade-off between speed/cost
// and answer quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level memoria configuration, corresponding to
// .memoria.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	Quality           QualityTier  `yaml:"quality" koanf:"quality"`
	DBPath            string       `yaml:"db_path" koanf:"db_path"`

	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Search    SearchConfig    `yaml:"search" koanf:"search"`
	WebSearch WebSearchConfig `yaml:"web_search" koanf:"web_search"`
	Cache     CacheConfig     `yaml:"cache" koanf:"cache"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr        string   `yaml:"addr" koanf:"addr"`
	CORSOrigins []string `yaml:"cors_origins" koanf:"cors_origins"`
}

// SearchConfig holds retrieval defaults applied when a request leaves the
// corresponding field unset.
type SearchConfig struct {
	DefaultLimit      int     `yaml:"default_limit" koanf:"default_limit"`
	ChunkThreshold    float64 `yaml:"chunk_threshold" koanf:"chunk_threshold"`
	DocumentThreshold float64 `yaml:"document_threshold" koanf:"document_threshold"`
	HybridWeight      float64 `yaml:"hybrid_weight" koanf:"hybrid_weight"`
}

// WebSearchConfig holds the optional web supplement settings for agentic
// searches.
type WebSearchConfig struct {
	Enabled        bool    `yaml:"enabled" koanf:"enabled"`
	BaseURL        string  `yaml:"base_url" koanf:"base_url"`
	MaxResults     int     `yaml:"max_results" koanf:"max_results"`
	TimeoutSeconds int     `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second" koanf:"rate_per_second"`
}

// CacheConfig holds document list cache settings.
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds" koanf:"ttl_seconds"`
}
