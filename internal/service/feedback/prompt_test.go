package feedback

import (
	"strings"
	"testing"

	"feedbackwidget/internal/domain/models/feedback"
)

func TestBuildSystemPrompt_Categories(t *testing.T) {
	cfg := PromptConfig{AppName: "Acme CRM", Locale: "en"}

	tests := []struct {
		category feedback.Category
		contains []string
	}{
		{
			category: feedback.CategoryBug,
			contains: []string{"bug-report assistant", "[Bug]", "## Steps to Reproduce", "explicitly confirms"},
		},
		{
			category: feedback.CategoryFeature,
			contains: []string{"feature requests", "[Feature]", "## Use Case", "explicitly confirms"},
		},
		{
			category: feedback.CategoryFeedback,
			contains: []string{"general feedback", "[Feedback]", "## Summary", "in that same reply"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			prompt := BuildSystemPrompt(cfg, tt.category)

			for _, want := range tt.contains {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt for %s missing %q", tt.category, want)
				}
			}
			if !strings.Contains(prompt, "called Acme CRM.") {
				t.Error("prompt does not name the application")
			}
			if !strings.Contains(prompt, `{"__done__": true, "title"`) {
				t.Error("prompt does not show the completion object shape")
			}
			if strings.Contains(prompt, "{app}") || strings.Contains(prompt, "{marker}") {
				t.Error("prompt still contains placeholders")
			}
		})
	}
}

func TestBuildSystemPrompt_FeedbackDoesNotWaitForConfirmation(t *testing.T) {
	prompt := BuildSystemPrompt(PromptConfig{AppName: "App"}, feedback.CategoryFeedback)
	if strings.Contains(prompt, "until the user explicitly confirms") {
		t.Error("feedback prompt should not require a confirmation round")
	}
}

func TestBuildSystemPrompt_UnknownCategoryUsesFeaturePrompt(t *testing.T) {
	cfg := PromptConfig{AppName: "App", Locale: "en"}

	got := BuildSystemPrompt(cfg, feedback.Category("question"))
	want := BuildSystemPrompt(cfg, feedback.CategoryFeature)
	if got != want {
		t.Error("unknown category should produce the feature request prompt")
	}
}

func TestBuildSystemPrompt_Locale(t *testing.T) {
	tests := []struct {
		locale     string
		wantPrefix bool
	}{
		{locale: "fr", wantPrefix: true},
		{locale: "pt-BR", wantPrefix: true},
		{locale: "en", wantPrefix: false},
		{locale: "", wantPrefix: false},
	}

	for _, tt := range tests {
		for _, category := range feedback.Categories {
			prompt := BuildSystemPrompt(PromptConfig{AppName: "App", Locale: tt.locale}, category)
			prefix := "You must respond in " + tt.locale + ".\n\n"

			if got := strings.HasPrefix(prompt, prefix); got != tt.wantPrefix {
				t.Errorf("locale %q, category %s: prefixed = %v, want %v", tt.locale, category, got, tt.wantPrefix)
			}
			if !tt.wantPrefix && strings.Contains(prompt, "You must respond in") {
				t.Errorf("locale %q, category %s: unexpected locale directive", tt.locale, category)
			}
		}
	}
}

func TestLocaleDirective(t *testing.T) {
	if got := LocaleDirective("de"); got != "You must respond in de." {
		t.Errorf("LocaleDirective(de) = %q", got)
	}
}
