package feedback

import (
	"context"

	"feedbackwidget/internal/domain/models/feedback"
)

// ModelClient is the language-model collaborator.
// Implementations return the assistant's single text reply; they do not
// retry and do not interpret the reply.
type ModelClient interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "openai", "anthropic")
	Name() string
}

// GenerateRequest contains the parameters for one exchange with the model.
type GenerateRequest struct {
	// System is the instruction text sent as the conversation's system turn.
	System string

	// Messages is the conversation history followed by the new user turn.
	Messages []feedback.Turn

	Model       string
	Temperature float64
	MaxTokens   int
}

// GenerateResponse contains the model's reply.
type GenerateResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}
