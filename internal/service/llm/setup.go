package llm

import (
	"fmt"
	"log/slog"

	"feedbackwidget/internal/capabilities"
	"feedbackwidget/internal/config"
	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
)

// Selection is the model client plus the resolved per-turn parameters.
type Selection struct {
	Client    feedbackSvc.ModelClient
	Info      *ModelInfo
	MaxTokens int
}

// SetupModelClient resolves cfg.Model to a provider, checks it against the
// model catalog and clamps the max token budget to what the model supports.
// Models missing from the catalog are allowed (custom OpenAI-compatible
// deployments) but logged.
func SetupModelClient(cfg *config.Config, catalog *capabilities.Registry, logger *slog.Logger) (*Selection, error) {
	info, err := ParseModel(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("invalid FEEDBACK_MODEL: %w", err)
	}

	client, err := NewProviderFactory(cfg).GetProvider(info.Provider)
	if err != nil {
		return nil, err
	}

	maxTokens := cfg.MaxTokens
	if caps, err := catalog.GetModelCapabilities(info.Provider, info.Model); err != nil {
		logger.Warn("model not in catalog, using configured limits",
			"provider", info.Provider,
			"model", info.Model,
		)
	} else {
		maxTokens = catalog.ClampMaxTokens(info.Provider, info.Model, cfg.MaxTokens)
		if maxTokens != cfg.MaxTokens {
			logger.Warn("max tokens clamped to model limit",
				"model", info.Model,
				"requested", cfg.MaxTokens,
				"max_output", caps.MaxOutput,
			)
		}
	}

	logger.Info("model provider ready",
		"provider", info.Provider,
		"model", info.Model,
		"max_tokens", maxTokens,
	)

	return &Selection{
		Client:    client,
		Info:      info,
		MaxTokens: maxTokens,
	}, nil
}
