package feedback

import (
	"context"

	"feedbackwidget/internal/domain/models/feedback"
)

// ChatService runs one turn of the report-gathering conversation.
type ChatService interface {
	// Chat sends the user's message together with the prior history to the
	// assistant and returns the visible reply plus completion state.
	// Returns a *domain.ValidationError or *domain.TurnLimitError for bad input,
	// domain.ErrConversationBusy when a reply for the same conversation is
	// still pending, and a *domain.ModelError when the model call fails.
	Chat(ctx context.Context, req *ChatRequest) (*feedback.ChatResult, error)
}

// ChatRequest is the DTO for one chat turn
type ChatRequest struct {
	Message        string            `json:"message"`
	History        []feedback.Turn   `json:"history"`
	Category       feedback.Category `json:"type"`
	ConversationID string            `json:"conversation_id,omitempty"`
	UserID         string            `json:"-"` // Set by handler from auth context
}

// ConversationKey identifies the conversation for request serialization.
func (r *ChatRequest) ConversationKey() string {
	if r.ConversationID != "" {
		return r.UserID + ":" + r.ConversationID
	}
	return r.UserID
}
