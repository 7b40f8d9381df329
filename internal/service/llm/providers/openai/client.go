package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"feedbackwidget/internal/domain/models/feedback"
	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
)

// Provider implements feedbackSvc.ModelClient for OpenAI chat completions.
// A custom base URL points it at any OpenAI-compatible endpoint.
type Provider struct {
	client openai.Client
}

// NewProvider creates a new OpenAI provider. baseURL may be empty.
func NewProvider(apiKey, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Provider{
		client: openai.NewClient(opts...),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Generate sends the system prompt and history as one chat completion.
func (p *Provider) Generate(ctx context.Context, req *feedbackSvc.GenerateRequest) (*feedbackSvc.GenerateResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    convertMessages(req.System, req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai API call failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return &feedbackSvc.GenerateResponse{Model: completion.Model}, nil
	}

	choice := completion.Choices[0]
	return &feedbackSvc.GenerateResponse{
		Text:         strings.TrimSpace(choice.Message.Content),
		Model:        completion.Model,
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
		StopReason:   string(choice.FinishReason),
	}, nil
}

func convertMessages(system string, turns []feedback.Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}

	for _, turn := range turns {
		if turn.Role == feedback.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(turn.Content))
	}

	return messages
}
