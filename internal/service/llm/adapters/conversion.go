package adapters

import (
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"

	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
)

const blockTypeText = "text"

// toLibraryRequest converts a feedback GenerateRequest to the library request.
// Each turn becomes one text block; the system prompt travels in Params.
func toLibraryRequest(req *feedbackSvc.GenerateRequest) *llmprovider.GenerateRequest {
	messages := make([]llmprovider.Message, len(req.Messages))
	for i, turn := range req.Messages {
		text := turn.Content
		messages[i] = llmprovider.Message{
			Role: string(turn.Role),
			Blocks: []*llmprovider.Block{
				{BlockType: blockTypeText, TextContent: &text},
			},
		}
	}

	temperature := req.Temperature
	params := &llmprovider.RequestParams{
		Temperature: &temperature,
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		params.MaxTokens = &maxTokens
	}
	if req.System != "" {
		system := req.System
		params.System = &system
	}

	return &llmprovider.GenerateRequest{
		Messages: messages,
		Model:    req.Model,
		Params:   params,
	}
}

// fromLibraryResponse joins the text blocks of a library response in order.
// Thinking and tool blocks are never requested and are skipped.
func fromLibraryResponse(resp *llmprovider.GenerateResponse) *feedbackSvc.GenerateResponse {
	var text strings.Builder
	for _, block := range resp.Blocks {
		if block == nil || block.BlockType != blockTypeText || block.TextContent == nil {
			continue
		}
		text.WriteString(*block.TextContent)
	}

	return &feedbackSvc.GenerateResponse{
		Text:         strings.TrimSpace(text.String()),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		StopReason:   resp.StopReason,
	}
}
