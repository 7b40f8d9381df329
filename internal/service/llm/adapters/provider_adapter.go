package adapters

import (
	"context"
	"fmt"

	llmprovider "github.com/haowjy/meridian-llm-go"

	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
)

// responder is the blocking half of llmprovider.Provider.
type responder interface {
	SupportsModel(model string) bool
	GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error)
}

// ProviderAdapter wraps a library provider and implements feedbackSvc.ModelClient.
// Only GenerateResponse is used; replies are delivered whole.
type ProviderAdapter struct {
	name     string
	provider responder
}

// NewProviderAdapter creates a model client from a library provider.
func NewProviderAdapter(provider llmprovider.Provider) *ProviderAdapter {
	return &ProviderAdapter{
		name:     provider.Name().String(),
		provider: provider,
	}
}

// Name returns the provider name.
func (a *ProviderAdapter) Name() string {
	return a.name
}

// Generate sends one exchange through the library provider.
func (a *ProviderAdapter) Generate(ctx context.Context, req *feedbackSvc.GenerateRequest) (*feedbackSvc.GenerateResponse, error) {
	if !a.provider.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by %s provider", req.Model, a.name)
	}

	libResp, err := a.provider.GenerateResponse(ctx, toLibraryRequest(req))
	if err != nil {
		return nil, fmt.Errorf("%s API call failed: %w", a.name, err)
	}

	return fromLibraryResponse(libResp), nil
}
