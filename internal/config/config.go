package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize    int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes
	MaxDocumentWords int   `env:"MAX_DOCUMENT_WORDS" envDefault:"3000"`

	// Sessions live in memory only and end after this much inactivity.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// LLM
	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" or "gemini"
	LLMModel        string        `env:"LLM_MODEL"`
	OpenAIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	GeminiKey       string        `env:"GEMINI_API_KEY"`
	GeminiBaseURL   string        `env:"GEMINI_BASE_URL"`
	MaxOutputTokens int           `env:"MAX_OUTPUT_TOKENS" envDefault:"300"`
	Temperature     float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
}

// ConfigurationError reports settings the service cannot start with.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// Load reads configuration from environment variables with defaults and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, &ConfigurationError{Field: "env", Reason: err.Error()}
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the selected provider has its secret and that limits are usable.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return &ConfigurationError{Field: "OPENAI_API_KEY", Reason: "required when LLM_PROVIDER=openai"}
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			return &ConfigurationError{Field: "GEMINI_API_KEY", Reason: "required when LLM_PROVIDER=gemini"}
		}
	default:
		return &ConfigurationError{Field: "LLM_PROVIDER", Reason: fmt.Sprintf("invalid value %q (valid options: openai, gemini)", c.LLMProvider)}
	}
	if c.MaxOutputTokens <= 0 {
		return &ConfigurationError{Field: "MAX_OUTPUT_TOKENS", Reason: "must be positive"}
	}
	if c.MaxUploadSize <= 0 {
		return &ConfigurationError{Field: "MAX_UPLOAD_SIZE", Reason: "must be positive"}
	}
	if c.SessionTTL <= 0 {
		return &ConfigurationError{Field: "SESSION_TTL", Reason: "must be positive"}
	}
	return nil
}
