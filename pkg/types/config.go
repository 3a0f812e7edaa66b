package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves requests unbounded.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "content-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FeedConfig holds settings for the preprint feed adapter.
type FeedConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the feed API root (default https://api.biorxiv.org).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Server is the preprint server path segment (default "biorxiv").
	Server string `json:"server" yaml:"server" mapstructure:"server"`

	// PageSize is the page size of the primary window fetch (default 50).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// FallbackPageSize is the page size of each per-keyword query (default 10).
	FallbackPageSize int `json:"fallback_page_size" yaml:"fallback_page_size" mapstructure:"fallback_page_size"`

	// FallbackKeywords bounds how many keywords the fallback search tries (default 5).
	FallbackKeywords int `json:"fallback_keywords" yaml:"fallback_keywords" mapstructure:"fallback_keywords"`

	// Keywords is the relevance filter, matched case-insensitively against
	// title and abstract.
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`

	// RequestsPerSecond caps outbound feed requests. Zero disables the limit.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// AIConfig holds shared settings for stages that call the text-generation API.
type AIConfig struct {
	// Model is the model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API endpoint (OpenAI-compatible servers, tests).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Timeout bounds a single completion request. Zero leaves it to the client default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// CompletionConfig holds sampling settings for one kind of prompt.
type CompletionConfig struct {
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens is the completion token ceiling. Zero sends no ceiling.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Path is the SQLite database file (default data/content.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// PipelineConfig holds the defaults of an ingestion run.
type PipelineConfig struct {
	// LookbackDays is the feed window length in days.
	LookbackDays int `json:"lookback_days" yaml:"lookback_days" mapstructure:"lookback_days"`

	// MaxItems caps the number of candidates processed per run (default 10).
	MaxItems int `json:"max_items" yaml:"max_items" mapstructure:"max_items"`

	// GenerateDrafts enables the blog draft stage.
	GenerateDrafts bool `json:"generate_drafts" yaml:"generate_drafts" mapstructure:"generate_drafts"`

	// ItemDelay is the pause between items (default 1s).
	ItemDelay time.Duration `json:"item_delay" yaml:"item_delay" mapstructure:"item_delay"`
}

// ServerConfig holds settings for the admin trigger server.
type ServerConfig struct {
	Address         string        `json:"address" yaml:"address" mapstructure:"address"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// LookbackDays is used when a trigger request names no window (default 7).
	LookbackDays int `json:"lookback_days" yaml:"lookback_days" mapstructure:"lookback_days"`
}

// LoggingConfig selects the log level and output format (json or console).
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups the configuration of every stage.
type Config struct {
	Feed     FeedConfig       `json:"feed" yaml:"feed" mapstructure:"feed"`
	AI       AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Summary  CompletionConfig `json:"summary" yaml:"summary" mapstructure:"summary"`
	Draft    CompletionConfig `json:"draft" yaml:"draft" mapstructure:"draft"`
	Store    StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Pipeline PipelineConfig   `json:"pipeline" yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Logging  LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// DefaultKeywords is the relevance filter for DNA-beauty research.
var DefaultKeywords = []string{
	"skin aging gene",
	"nutrigenomics",
	"epigenetic clock",
	"CRISPR skin",
	"hair follicle gene",
	"telomere therapy",
	"biological age",
	"collagen gene editing",
	"melanocyte stem",
	"longevity cosmeceutical",
	"dermatogenomics",
	"pharmacogenomics beauty",
}

// DefaultConfig returns the configuration used when no file or flag overrides a key.
func DefaultConfig() Config {
	return Config{
		Feed: FeedConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "content-engine/0.1",
			},
			BaseURL:           "https://api.biorxiv.org",
			Server:            "biorxiv",
			PageSize:          50,
			FallbackPageSize:  10,
			FallbackKeywords:  5,
			Keywords:          append([]string(nil), DefaultKeywords...),
			RequestsPerSecond: 2,
		},
		AI: AIConfig{
			Model: "gpt-4o",
		},
		Summary: CompletionConfig{Temperature: 0.7, MaxTokens: 800},
		Draft:   CompletionConfig{Temperature: 0.8, MaxTokens: 1600},
		Store:   StoreConfig{Path: "data/content.db"},
		Pipeline: PipelineConfig{
			LookbackDays: 30,
			MaxItems:     10,
			ItemDelay:    time.Second,
		},
		Server: ServerConfig{
			Address:         ":8080",
			ShutdownTimeout: 10 * time.Second,
			LookbackDays:    7,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}
