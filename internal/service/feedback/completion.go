package feedback

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"feedbackwidget/internal/domain/models/feedback"
)

// CompletionMarker is the key the assistant puts in the JSON object it emits
// once the report is ready to file.
const CompletionMarker = "__done__"

// FallbackReply replaces the visible reply when the assistant sent nothing
// but the completion object.
const FallbackReply = "Thank you! Creating your issue now..."

// ParseCompletion splits an assistant reply into the text shown to the user
// and, if present, the completion payload.
//
// The payload is the balanced {...} object ending at the last '}' of the
// reply. It only counts when it parses as a JSON object carrying the marker,
// a title and a body; anything else means "not complete yet" and the reply
// is returned verbatim. ParseCompletion never fails.
//
// Scanning and slicing both use byte offsets. Braces are ASCII and cannot
// occur inside a multibyte UTF-8 sequence, so the offsets are always rune
// boundaries.
func ParseCompletion(reply string) feedback.ChatResult {
	if !strings.Contains(reply, CompletionMarker) {
		return incomplete(reply)
	}

	end := strings.LastIndexByte(reply, '}')
	if end < 0 {
		return incomplete(reply)
	}

	start := matchOpeningBrace(reply, end)
	if start < 0 {
		return incomplete(reply)
	}

	data, ok := decodeCompletion(reply[start : end+1])
	if !ok {
		return incomplete(reply)
	}

	visible := strings.TrimSpace(reply[:start] + reply[end+1:])
	if visible == "" {
		visible = FallbackReply
	}

	return feedback.ChatResult{
		Reply:          visible,
		IsComplete:     true,
		StructuredData: data,
	}
}

func incomplete(reply string) feedback.ChatResult {
	return feedback.ChatResult{Reply: reply}
}

// matchOpeningBrace walks backwards from the '}' at end and returns the index
// of the '{' that balances it, or -1 when the braces never balance.
// Nested pairs (code in the body, for instance) are skipped by depth.
func matchOpeningBrace(s string, end int) int {
	depth := 0
	for i := end; i >= 0; i-- {
		switch s[i] {
		case '}':
			depth++
		case '{':
			depth--
		}
		if depth == 0 {
			return i
		}
	}
	return -1
}

// decodeCompletion parses a candidate object. Marker, title and body must be
// present and non-null; title and body must be strings. Invalid UTF-8 is
// rejected rather than replaced.
func decodeCompletion(candidate string) (*feedback.StructuredData, bool) {
	if !utf8.ValidString(candidate) {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, false
	}

	if isNull(fields[CompletionMarker]) {
		return nil, false
	}

	var data feedback.StructuredData
	if !decodeString(fields["title"], &data.Title) || !decodeString(fields["body"], &data.Body) {
		return nil, false
	}

	return &data, true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func decodeString(raw json.RawMessage, dst *string) bool {
	if isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
