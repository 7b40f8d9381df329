package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedbackwidget/internal/domain/models/feedback"
	"feedbackwidget/internal/domain/repositories"
)

// SubmissionRepository keeps the submission ledger in process memory.
// Used when DATABASE_URL is unset and in tests; contents are lost on restart.
type SubmissionRepository struct {
	mu          sync.RWMutex
	submissions []feedback.Submission
}

// NewSubmissionRepository creates an empty in-memory ledger
func NewSubmissionRepository() repositories.SubmissionRepository {
	return &SubmissionRepository{}
}

// Create appends a copy of the submission
func (r *SubmissionRepository) Create(ctx context.Context, s *feedback.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, *s)
	return nil
}

// ListByUser returns up to limit submissions for userID, newest first
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]feedback.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]feedback.Submission, 0)
	for i := len(r.submissions) - 1; i >= 0; i-- {
		if r.submissions[i].UserID == userID {
			out = append(out, r.submissions[i])
		}
	}

	// Equal timestamps keep latest-inserted first
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
