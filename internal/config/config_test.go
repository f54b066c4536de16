package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if original, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, original) })
		}
		os.Unsetenv(key)
	}
}

var allKeys = []string{
	"PORT", "LOG_LEVEL", "MAX_UPLOAD_SIZE", "MAX_DOCUMENT_WORDS", "SESSION_TTL",
	"LLM_PROVIDER", "LLM_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY", "GEMINI_BASE_URL",
	"MAX_OUTPUT_TOKENS", "LLM_TEMPERATURE", "LLM_TIMEOUT",
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, allKeys...)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LLMProvider", cfg.LLMProvider, "openai"},
		{"MaxUploadSize", cfg.MaxUploadSize, int64(10485760)},
		{"MaxOutputTokens", cfg.MaxOutputTokens, 300},
		{"Temperature", cfg.Temperature, 0.7},
		{"SessionTTL", cfg.SessionTTL, 30 * time.Minute},
		{"LLMTimeout", cfg.LLMTimeout, 60 * time.Second},
		{"MaxDocumentWords", cfg.MaxDocumentWords, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	unsetEnv(t, allKeys...)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-test")
	t.Setenv("SESSION_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
}

func TestLoadMissingKeyIsConfigurationError(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		field    string
	}{
		{"openai without key", "openai", "OPENAI_API_KEY"},
		{"gemini without key", "gemini", "GEMINI_API_KEY"},
		{"unknown provider", "mystery", "LLM_PROVIDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, allKeys...)
			t.Setenv("LLM_PROVIDER", tt.provider)
			t.Setenv("OPENAI_API_KEY", "")
			t.Setenv("GEMINI_API_KEY", "")

			_, err := Load()
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateRejectsBadLimits(t *testing.T) {
	base := Config{
		LLMProvider:     ProviderOpenAI,
		OpenAIKey:       "sk-test",
		MaxOutputTokens: 300,
		MaxUploadSize:   1024,
		SessionTTL:      time.Minute,
	}
	require.NoError(t, base.Validate())

	noTokens := base
	noTokens.MaxOutputTokens = 0
	assert.Error(t, noTokens.Validate())

	noTTL := base
	noTTL.SessionTTL = 0
	assert.Error(t, noTTL.Validate())
}
