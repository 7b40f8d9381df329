package llm

import (
	"fmt"

	"github.com/haowjy/meridian-llm-go/providers/anthropic"

	"feedbackwidget/internal/config"
	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
	serviceFeedback "feedbackwidget/internal/service/feedback"
	"feedbackwidget/internal/service/llm/adapters"
	"feedbackwidget/internal/service/llm/providers/lorem"
	"feedbackwidget/internal/service/llm/providers/openai"
)

// ProviderFactory creates model clients from configuration
type ProviderFactory struct {
	config *config.Config
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
	}
}

// GetProvider returns a model client for the given provider name
//
// Supported providers:
//   - "openai" - GPT models, or any OpenAI-compatible endpoint via OPENAI_BASE_URL
//   - "anthropic" - Claude models via the meridian-llm-go Anthropic provider
//   - "lorem" - Scripted offline assistant (no API key required)
func (f *ProviderFactory) GetProvider(providerName string) (feedbackSvc.ModelClient, error) {
	switch providerName {
	case "openai":
		return f.createOpenAIProvider()

	case "anthropic":
		return f.createAnthropicProvider()

	case "lorem":
		return lorem.NewProvider(serviceFeedback.CompletionMarker), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func (f *ProviderFactory) createOpenAIProvider() (feedbackSvc.ModelClient, error) {
	if f.config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	provider, err := openai.NewProvider(f.config.OpenAIAPIKey, f.config.OpenAIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
	}

	return provider, nil
}

func (f *ProviderFactory) createAnthropicProvider() (feedbackSvc.ModelClient, error) {
	if f.config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	provider, err := anthropic.NewProvider(f.config.AnthropicAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}

	return adapters.NewProviderAdapter(provider), nil
}
