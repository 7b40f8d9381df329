package lorem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"feedbackwidget/internal/domain/models/feedback"
	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
)

// DefaultQuestions is how many follow-up questions the script asks before it
// files the report.
const DefaultQuestions = 2

// ErrScriptedFailure is returned by the lorem-fail model.
var ErrScriptedFailure = errors.New("lorem-fail always fails")

// Provider is a scripted offline assistant that speaks lorem ipsum.
// It asks a few questions, then emits a completion object, so the whole
// widget flow can be exercised without an API key.
type Provider struct {
	generator *loremgen.Lorem
	marker    string
	questions int
}

// NewProvider creates a lorem provider that emits marker once it has asked
// its questions.
func NewProvider(marker string) *Provider {
	return &Provider{
		generator: loremgen.New(),
		marker:    marker,
		questions: DefaultQuestions,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-fail"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// Generate answers with a question until the user has spoken more than the
// configured number of times, then summarises and emits the completion
// object. The title tag is taken from the system prompt.
func (p *Provider) Generate(ctx context.Context, req *feedbackSvc.GenerateRequest) (*feedbackSvc.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	select {
	case <-time.After(replyDelay(req.Model)):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if strings.Contains(req.Model, "fail") {
		return nil, ErrScriptedFailure
	}

	var text string
	if countUserTurns(req.Messages) > p.questions {
		var err error
		text, err = p.completion(titleTag(req.System))
		if err != nil {
			return nil, err
		}
	} else {
		text = p.question()
	}

	return &feedbackSvc.GenerateResponse{
		Text:         text,
		Model:        req.Model,
		InputTokens:  estimateTokens(req.System, req.Messages),
		OutputTokens: len(strings.Fields(text)), // Word count as proxy
		StopReason:   "end_turn",
	}, nil
}

// replyDelay simulates model latency based on the model name.
func replyDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 2 * time.Second
	}
	return 0
}

func (p *Provider) question() string {
	sentence := strings.TrimRight(p.generator.Sentence(5, 10), ".!? ")
	return sentence + "?"
}

func (p *Provider) completion(tag string) (string, error) {
	title := strings.TrimRight(p.generator.Sentence(3, 6), ". ")
	if tag != "" {
		title = tag + " " + title
	}

	body := "## Summary\n" + p.generator.Sentence(8, 14) +
		"\n\n## Details\n" + p.generator.Paragraph(2, 3)

	payload, err := json.Marshal(map[string]interface{}{
		p.marker: true,
		"title":  title,
		"body":   body,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion: %w", err)
	}

	return p.generator.Sentence(5, 8) + "\n" + string(payload), nil
}

// titleTag finds the bracketed title prefix the prompt asks for.
func titleTag(system string) string {
	for _, category := range feedback.Categories {
		tag := category.TitleTag()
		if strings.Contains(system, `"`+tag+`"`) {
			return tag
		}
	}
	return ""
}

func countUserTurns(messages []feedback.Turn) int {
	n := 0
	for _, m := range messages {
		if m.Role == feedback.RoleUser {
			n++
		}
	}
	return n
}

// estimateTokens uses word count as a rough approximation.
func estimateTokens(system string, messages []feedback.Turn) int {
	total := len(strings.Fields(system))
	for _, m := range messages {
		total += len(strings.Fields(m.Content))
	}
	return total
}
