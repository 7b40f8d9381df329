package handler

import (
	"log/slog"
	"net/http"

	"feedbackwidget/internal/capabilities"
	"feedbackwidget/internal/config"
	"feedbackwidget/internal/httputil"
)

// ModelsHandler reports the model catalog and the model the assistant uses
type ModelsHandler struct {
	config   *config.Config
	logger   *slog.Logger
	registry *capabilities.Registry
	active   ActiveModel
}

// ActiveModel identifies the model serving chat turns
type ActiveModel struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(cfg *config.Config, logger *slog.Logger, registry *capabilities.Registry, active ActiveModel) *ModelsHandler {
	return &ModelsHandler{
		config:   cfg,
		logger:   logger,
		registry: registry,
		active:   active,
	}
}

// ProviderResponse represents a provider with its models
type ProviderResponse struct {
	ID     string                           `json:"id"`
	Models []capabilities.ModelCapabilities `json:"models"`
}

// ModelsResponse is the body of GET /feedback/models
type ModelsResponse struct {
	Active    ActiveModel        `json:"active"`
	Providers []ProviderResponse `json:"providers"`
}

// GetModels lists catalog models for every provider with credentials
// GET /feedback/models
func (h *ModelsHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	providers := make([]ProviderResponse, 0)

	for _, id := range h.registry.GetAllProviders() {
		if !h.providerAvailable(id) {
			continue
		}
		models, err := h.registry.ListProviderModels(id)
		if err != nil {
			h.logger.Warn("failed to list provider models", "provider", id, "error", err)
			continue
		}
		providers = append(providers, ProviderResponse{ID: id, Models: models})
	}

	httputil.RespondJSON(w, http.StatusOK, ModelsResponse{
		Active:    h.active,
		Providers: providers,
	})
}

// providerAvailable reports whether the server holds credentials for the provider
func (h *ModelsHandler) providerAvailable(provider string) bool {
	switch provider {
	case "openai":
		return h.config.OpenAIAPIKey != ""
	case "anthropic":
		return h.config.AnthropicAPIKey != ""
	case "lorem":
		return true
	}
	return false
}
