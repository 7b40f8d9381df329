package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedbackwidget/internal/domain/models/feedback"
	"feedbackwidget/internal/domain/repositories"
)

// PostgresSubmissionRepository implements repositories.SubmissionRepository
type PostgresSubmissionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(config *RepositoryConfig) repositories.SubmissionRepository {
	return &PostgresSubmissionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a submission row
func (r *PostgresSubmissionRepository) Create(ctx context.Context, s *feedback.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, category, title, issue_number, issue_url, screenshot_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Submissions)

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		string(s.Category),
		s.Title,
		s.IssueNumber,
		s.IssueURL,
		s.ScreenshotURL,
		s.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("submission %s already recorded: %w", s.ID, err)
		}
		if IsPgUndefinedTableError(err) {
			return fmt.Errorf("table %s missing, run schema setup: %w", r.tables.Submissions, err)
		}
		return fmt.Errorf("insert submission: %w", err)
	}

	r.logger.Debug("submission recorded",
		"id", s.ID,
		"user_id", s.UserID,
		"issue_number", s.IssueNumber,
	)
	return nil
}

// ListByUser returns the user's submissions, newest first
func (r *PostgresSubmissionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]feedback.Submission, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, category, title, issue_number, issue_url, screenshot_url, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, r.tables.Submissions)

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]feedback.Submission, 0)
	for rows.Next() {
		var s feedback.Submission
		var category string
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&category,
			&s.Title,
			&s.IssueNumber,
			&s.IssueURL,
			&s.ScreenshotURL,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		s.Category = feedback.Category(category)
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return submissions, nil
}
