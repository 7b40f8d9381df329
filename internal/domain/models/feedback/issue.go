package feedback

import (
	"time"

	"github.com/google/uuid"
)

// Issue identifies an issue created in the external tracker.
type Issue struct {
	URL    string `json:"url"`
	Number int    `json:"number"`
}

// IssueDraft is what gets handed to the issue tracker.
type IssueDraft struct {
	Title     string
	Body      string
	Category  Category
	Submitter string
}

// Screenshot is an uploaded image attached to an issue.
type Screenshot struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Submission is the ledger record of an issue filed through the widget.
type Submission struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Category      Category  `json:"type" db:"category"`
	Title         string    `json:"title" db:"title"`
	IssueNumber   int       `json:"number" db:"issue_number"`
	IssueURL      string    `json:"url" db:"issue_url"`
	ScreenshotURL *string   `json:"screenshot_url,omitempty" db:"screenshot_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
