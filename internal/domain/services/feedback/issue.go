package feedback

import (
	"context"

	"feedbackwidget/internal/domain/models/feedback"
)

// IssueService files confirmed reports with the issue tracker.
type IssueService interface {
	CreateIssue(ctx context.Context, req *CreateIssueRequest) (*feedback.Issue, error)

	// ListSubmissions returns the user's most recent filed issues, newest first.
	ListSubmissions(ctx context.Context, userID string) ([]feedback.Submission, error)
}

// CreateIssueRequest is the DTO for filing an issue
type CreateIssueRequest struct {
	Title      string               `json:"title"`
	Body       string               `json:"body"`
	Category   feedback.Category    `json:"type"`
	Screenshot *feedback.Screenshot `json:"-"` // Multipart uploads only
	UserID     string               `json:"-"`
}

// IssueTracker creates issues in an external tracker.
// Implementations append their own attribution line to the body.
type IssueTracker interface {
	CreateIssue(ctx context.Context, draft feedback.IssueDraft) (*feedback.Issue, error)
}

// ScreenshotStore persists screenshots and returns a publicly reachable URL.
type ScreenshotStore interface {
	Save(ctx context.Context, shot *feedback.Screenshot) (string, error)
}
