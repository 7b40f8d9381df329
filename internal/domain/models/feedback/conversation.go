package feedback

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the role-tagged history exchanged with the assistant.
// History is supplied by the caller in order; alternation is not enforced.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// StructuredData is the title/body pair extracted once the assistant
// signals completion. It is filed with the issue tracker as-is.
type StructuredData struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ChatResult is the outcome of one chat turn.
// StructuredData is non-nil if and only if IsComplete is true.
type ChatResult struct {
	Reply          string          `json:"reply"`
	IsComplete     bool            `json:"done"`
	StructuredData *StructuredData `json:"structured"`
}
