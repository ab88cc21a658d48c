package model

import "time"

// Config holds the complete Celestial configuration
type Config struct {
	Storage      StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Defaults     IngestDefaults    `yaml:"defaults" mapstructure:"defaults"`
}

// StorageConfig points at the static site that publishes batch files
type StorageConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
}

// CacheConfig controls the (date, language) batch store
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend   string        `yaml:"backend" mapstructure:"backend"` // disk or sqlite
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// HTTPConfig controls remote batch retrieval
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LLMConfig controls the optional AI fallback
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, gemini, anthropic, ollama, or empty
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Retries   int    `yaml:"retries" mapstructure:"retries"`
}

// RateLimitConfig throttles remote fetches and AI calls
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
	APIPerSecond      float64 `yaml:"api_per_second" mapstructure:"api_per_second"`
}

// ConcurrencyConfig sizes the export worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls export rendering
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Format  string `yaml:"format" mapstructure:"format"` // txt or json
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// IngestDefaults apply when an upload filename carries no date or language
type IngestDefaults struct {
	Language string `yaml:"language" mapstructure:"language"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			BaseURL: "https://prateekmalhotracontentcreator-coder.github.io/Celestial-AI",
			Enabled: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "disk",
			Dir:       "",
			MemoryTTL: 24 * time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Celestial/0.1 (+https://github.com/ppiankov/celestial)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: false,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   60,
			MaxTokens: 8192,
			Retries:   3,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2.5,
			BurstSize:         5,
			APIPerSecond:      0.33,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Dir:    ".",
			Format: "txt",
		},
		Defaults: IngestDefaults{
			Language: "en",
		},
	}
}
