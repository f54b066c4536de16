package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"doc-assistant/internal/advisor"
	"doc-assistant/internal/config"
	"doc-assistant/internal/document"
	"doc-assistant/internal/llm"
	"doc-assistant/internal/logger"
	"doc-assistant/internal/session"
)

// Deps bundles the runtime dependencies of the server.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	LLM       llm.Provider
	Sessions  *session.Store
	Advisor   *advisor.Advisor
	Extractor *document.Extractor
}

// Build loads env, config, and shared components. A missing .env file is fine;
// a malformed one is not.
func Build(ctx context.Context) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel)

	provider, err := buildLLM(ctx, cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return New(cfg, log, provider), nil
}

// New wires the components around an already constructed provider.
func New(cfg config.Config, log *slog.Logger, provider llm.Provider) Deps {
	return Deps{
		Config:    cfg,
		Log:       log,
		LLM:       provider,
		Sessions:  session.NewStore(provider, cfg.SessionTTL, log),
		Advisor:   advisor.New(provider, log, cfg.MaxDocumentWords),
		Extractor: document.NewExtractor(),
	}
}

func buildLLM(ctx context.Context, cfg config.Config, log *slog.Logger) (llm.Provider, error) {
	temperature := cfg.Temperature
	opts := llm.Options{
		Model:           cfg.LLMModel,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Temperature:     &temperature,
		Timeout:         cfg.LLMTimeout,
	}
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiBaseURL, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		log.Info("using Gemini LLM client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, &config.ConfigurationError{
			Field:  "LLM_PROVIDER",
			Reason: fmt.Sprintf("invalid value %q (valid options: openai, gemini)", cfg.LLMProvider),
		}
	}
}
