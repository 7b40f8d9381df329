package config

const (
	// DefaultLocale is the locale the prompts are written in. Any other
	// locale gets a "respond in" directive.
	DefaultLocale = "en"

	// DefaultTemperature and DefaultMaxTokens are sent with every chat turn.
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024

	// MaxMessageLength is the maximum length (in characters) of a new chat message.
	MaxMessageLength = 2000

	// MaxHistoryTurns bounds the conversation. Longer histories are rejected
	// without contacting the model; the widget asks the user to start over.
	MaxHistoryTurns = 20

	// MaxHistoryContentLength is the maximum length of a single history turn.
	// Assistant turns carry summaries, hence the larger budget.
	MaxHistoryContentLength = 5000

	// MaxIssueTitleLength fits the tracker's title column and keeps titles scannable.
	MaxIssueTitleLength = 255

	// MaxIssueBodyLength is the maximum length of an issue body before the
	// screenshot reference and attribution are appended.
	MaxIssueBodyLength = 10000

	// MaxScreenshotBytes is the upload limit for screenshots (5 MiB).
	MaxScreenshotBytes = 5120 * 1024

	// MaxSubmissionsListed bounds GET /feedback/issues.
	MaxSubmissionsListed = 20
)

// AllowedScreenshotTypes are the sniffed content types accepted for screenshots.
var AllowedScreenshotTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
