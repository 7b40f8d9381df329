package feedback

import (
	"strings"
	"testing"

	"feedbackwidget/internal/domain/models/feedback"
)

func TestParseCompletion(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		want     string
		complete bool
		title    string
		body     string
	}{
		{
			name:  "plain question",
			reply: "Can you describe the steps?",
			want:  "Can you describe the steps?",
		},
		{
			name:     "summary followed by completion object",
			reply:    "Great, summary.\n{\"__done__\":true,\"title\":\"[Bug] X\",\"body\":\"## Steps\"}",
			want:     "Great, summary.",
			complete: true,
			title:    "[Bug] X",
			body:     "## Steps",
		},
		{
			name:  "marker without json",
			reply: "text __done__ but no json",
			want:  "text __done__ but no json",
		},
		{
			name:     "nested braces in body without surrounding text",
			reply:    `{"__done__":true,"title":"T","body":"if (x) { y(); }"}`,
			want:     FallbackReply,
			complete: true,
			title:    "T",
			body:     "if (x) { y(); }",
		},
		{
			name:     "code fence with nested braces",
			reply:    "Here is your issue.\n{\"__done__\": true, \"title\": \"[Bug] Template rendering fails\", \"body\": \"## Code\\n```\\nif (x) { doThing(); }\\n```\"}",
			want:     "Here is your issue.",
			complete: true,
			title:    "[Bug] Template rendering fails",
			body:     "## Code\n```\nif (x) { doThing(); }\n```",
		},
		{
			name:     "text on both sides is kept",
			reply:    "Before.\n{\"__done__\":true,\"title\":\"T\",\"body\":\"B\"}\nAfter.",
			want:     "Before.\n\nAfter.",
			complete: true,
			title:    "T",
			body:     "B",
		},
		{
			name:     "multibyte text before the object",
			reply:    "Merci pour votre retour ! J'ai bien noté le problème.\n{\"__done__\": true, \"title\": \"[Bug] Impossible de sauvegarder une description\", \"body\": \"## Steps to Reproduce\\n1. Accéder à une localisation d'entreprise.\"}",
			want:     "Merci pour votre retour ! J'ai bien noté le problème.",
			complete: true,
			title:    "[Bug] Impossible de sauvegarder une description",
			body:     "## Steps to Reproduce\n1. Accéder à une localisation d'entreprise.",
		},
		{
			name:     "multibyte text on both sides",
			reply:    "日本語のテキスト 🐛\n{\"__done__\":true,\"title\":\"[Bug] 保存できない\",\"body\":\"## 手順 { ok }\"}\nÇa marche — merci",
			want:     "日本語のテキスト 🐛\n\nÇa marche — merci",
			complete: true,
			title:    "[Bug] 保存できない",
			body:     "## 手順 { ok }",
		},
		{
			name:     "title and body are not re-trimmed",
			reply:    "ok {\"__done__\":true,\"title\":\"  spaced  \",\"body\":\"\\n body \\n\"}",
			want:     "ok",
			complete: true,
			title:    "  spaced  ",
			body:     "\n body \n",
		},
		{
			name:  "unbalanced braces",
			reply: "__done__ }}",
			want:  "__done__ }}",
		},
		{
			name:  "opening brace missing for last closing brace",
			reply: "__done__ {\"a\": 1}}",
			want:  "__done__ {\"a\": 1}}",
		},
		{
			name:  "invalid json between braces",
			reply: "Use {__done__} in markdown",
			want:  "Use {__done__} in markdown",
		},
		{
			name:  "object missing body",
			reply: "Done.\n{\"__done__\":true,\"title\":\"T\"}",
			want:  "Done.\n{\"__done__\":true,\"title\":\"T\"}",
		},
		{
			name:  "object missing marker key",
			reply: "__done__ soon\n{\"title\":\"T\",\"body\":\"B\"}",
			want:  "__done__ soon\n{\"title\":\"T\",\"body\":\"B\"}",
		},
		{
			name:  "null marker",
			reply: "{\"__done__\":null,\"title\":\"T\",\"body\":\"B\"}",
			want:  "{\"__done__\":null,\"title\":\"T\",\"body\":\"B\"}",
		},
		{
			name:  "non-string title",
			reply: "{\"__done__\":true,\"title\":42,\"body\":\"B\"}",
			want:  "{\"__done__\":true,\"title\":42,\"body\":\"B\"}",
		},
		{
			name:  "invalid utf-8 inside object",
			reply: "Done.\n{\"__done__\":true,\"title\":\"T\xff\",\"body\":\"B\"}",
			want:  "Done.\n{\"__done__\":true,\"title\":\"T\xff\",\"body\":\"B\"}",
		},
		{
			name:     "invalid utf-8 outside object",
			reply:    "Done\xff.\n{\"__done__\":true,\"title\":\"T\",\"body\":\"B\"}",
			want:     "Done\xff.",
			complete: true,
			title:    "T",
			body:     "B",
		},
		{
			name:  "completion object is not the last object",
			reply: "{\"__done__\":true,\"title\":\"T\",\"body\":\"B\"}\nThen use {braces}.",
			want:  "{\"__done__\":true,\"title\":\"T\",\"body\":\"B\"}\nThen use {braces}.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCompletion(tt.reply)

			if got.Reply != tt.want {
				t.Errorf("Reply = %q, want %q", got.Reply, tt.want)
			}
			if got.IsComplete != tt.complete {
				t.Fatalf("IsComplete = %v, want %v", got.IsComplete, tt.complete)
			}
			if !tt.complete {
				if got.StructuredData != nil {
					t.Errorf("StructuredData = %+v, want nil", got.StructuredData)
				}
				return
			}
			if got.StructuredData == nil {
				t.Fatal("StructuredData is nil for a complete result")
			}
			if got.StructuredData.Title != tt.title {
				t.Errorf("Title = %q, want %q", got.StructuredData.Title, tt.title)
			}
			if got.StructuredData.Body != tt.body {
				t.Errorf("Body = %q, want %q", got.StructuredData.Body, tt.body)
			}
		})
	}
}

func TestParseCompletion_WithoutMarkerSkipsParsing(t *testing.T) {
	// Valid-looking object, but no marker anywhere: returned as-is.
	reply := `{"title":"T","body":"B"}`
	got := ParseCompletion(reply)
	if got != (feedback.ChatResult{Reply: reply}) {
		t.Errorf("ParseCompletion(%q) = %+v", reply, got)
	}
}

func TestParseCompletion_NeverReturnsEmptyReply(t *testing.T) {
	for _, reply := range []string{
		`{"__done__":true,"title":"T","body":"B"}`,
		"  \n\t{\"__done__\":true,\"title\":\"T\",\"body\":\"B\"}\n  ",
		"\u00a0{\"__done__\":true,\"title\":\"T\",\"body\":\"B\"}\u3000",
	} {
		got := ParseCompletion(reply)
		if !got.IsComplete {
			t.Fatalf("ParseCompletion(%q) not complete", reply)
		}
		if got.Reply != FallbackReply {
			t.Errorf("Reply = %q, want fallback", got.Reply)
		}
	}
}

func TestMatchOpeningBrace(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{s: "{}", want: 0},
		{s: "a{b{c}d}", want: 1},
		{s: "{{}", want: 1},
		{s: "}", want: -1},
		{s: "x}}", want: -1},
		{s: "é{ü}", want: 2},
	}

	for _, tt := range tests {
		end := strings.LastIndexByte(tt.s, '}')
		if got := matchOpeningBrace(tt.s, end); got != tt.want {
			t.Errorf("matchOpeningBrace(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}
