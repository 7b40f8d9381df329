package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"feedbackwidget/internal/config"
	"feedbackwidget/internal/domain"
	"feedbackwidget/internal/domain/models/feedback"
	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ChatConfig holds the per-turn model parameters and prompt details.
type ChatConfig struct {
	Prompt          PromptConfig
	Model           string
	Temperature     float64
	MaxTokens       int
	MaxHistoryTurns int
}

type chatService struct {
	model  feedbackSvc.ModelClient
	cfg    ChatConfig
	guard  *conversationGuard
	logger *slog.Logger
}

// NewChatService creates the conversation driver
func NewChatService(
	model feedbackSvc.ModelClient,
	cfg ChatConfig,
	logger *slog.Logger,
) feedbackSvc.ChatService {
	if cfg.MaxHistoryTurns <= 0 {
		cfg.MaxHistoryTurns = config.MaxHistoryTurns
	}
	return &chatService{
		model:  model,
		cfg:    cfg,
		guard:  newConversationGuard(),
		logger: logger,
	}
}

// Chat runs one turn: validate, build [system, history..., user], call the
// model once and split the reply into visible text and completion payload.
func (s *chatService) Chat(ctx context.Context, req *feedbackSvc.ChatRequest) (*feedback.ChatResult, error) {
	if err := checkTurnLimit(len(req.History), s.cfg.MaxHistoryTurns); err != nil {
		return nil, err
	}

	if err := s.validateChatRequest(req); err != nil {
		return nil, toValidationError(err)
	}

	release, err := s.guard.acquire(req.ConversationKey())
	if err != nil {
		return nil, err
	}
	defer release()

	messages := make([]feedback.Turn, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, feedback.Turn{Role: feedback.RoleUser, Content: req.Message})

	resp, err := s.model.Generate(ctx, &feedbackSvc.GenerateRequest{
		System:      BuildSystemPrompt(s.cfg.Prompt, req.Category),
		Messages:    messages,
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, &domain.ModelError{Provider: s.model.Name(), Err: err}
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, &domain.ModelError{Provider: s.model.Name(), Err: domain.ErrEmptyModelReply}
	}

	result := ParseCompletion(resp.Text)

	s.logger.Debug("feedback turn",
		"user_id", req.UserID,
		"type", req.Category,
		"history", len(req.History),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"done", result.IsComplete,
	)

	return &result, nil
}

func (s *chatService) validateChatRequest(req *feedbackSvc.ChatRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Message,
			validation.Required.Error("The message field is required."),
			validation.RuneLength(0, config.MaxMessageLength).
				Error(fmt.Sprintf("The message field must not be greater than %d characters.", config.MaxMessageLength)),
		),
		validation.Field(&req.History, validation.Each(validation.By(validateTurn))),
		validation.Field(&req.Category,
			validation.Required.Error("The type field is required."),
			validation.In(feedback.CategoryBug, feedback.CategoryFeature, feedback.CategoryFeedback).
				Error("The selected type is invalid."),
		),
	)
}

func validateTurn(value interface{}) error {
	turn, ok := value.(feedback.Turn)
	if !ok {
		return fmt.Errorf("invalid history entry")
	}

	return validation.ValidateStruct(&turn,
		validation.Field(&turn.Role,
			validation.Required.Error("The role field is required."),
			validation.In(feedback.RoleUser, feedback.RoleAssistant).Error("The selected role is invalid."),
		),
		validation.Field(&turn.Content,
			validation.Required.Error("The content field is required."),
			validation.RuneLength(0, config.MaxHistoryContentLength).
				Error(fmt.Sprintf("The content field must not be greater than %d characters.", config.MaxHistoryContentLength)),
		),
	)
}
