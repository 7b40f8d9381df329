package repositories

import (
	"context"

	"feedbackwidget/internal/domain/models/feedback"
)

// SubmissionRepository records issues filed through the widget.
type SubmissionRepository interface {
	// Create inserts the submission, assigning ID and CreatedAt when unset.
	Create(ctx context.Context, submission *feedback.Submission) error

	// ListByUser returns up to limit submissions for the user, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]feedback.Submission, error)
}
