package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"feedbackwidget/internal/config"
	"feedbackwidget/internal/domain"
	"feedbackwidget/internal/domain/models/feedback"
	"feedbackwidget/internal/domain/repositories"
	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type issueService struct {
	tracker     feedbackSvc.IssueTracker
	screenshots feedbackSvc.ScreenshotStore
	submissions repositories.SubmissionRepository
	logger      *slog.Logger
}

// NewIssueService creates the issue filing service.
// screenshots may be nil, in which case uploads are rejected.
func NewIssueService(
	tracker feedbackSvc.IssueTracker,
	screenshots feedbackSvc.ScreenshotStore,
	submissions repositories.SubmissionRepository,
	logger *slog.Logger,
) feedbackSvc.IssueService {
	return &issueService{
		tracker:     tracker,
		screenshots: screenshots,
		submissions: submissions,
		logger:      logger,
	}
}

// CreateIssue stores the screenshot (if any), files the issue and records
// the submission. A ledger failure is logged but does not fail the request:
// the issue already exists in the tracker at that point. Title and body reach
// the tracker as received.
func (s *issueService) CreateIssue(ctx context.Context, req *feedbackSvc.CreateIssueRequest) (*feedback.Issue, error) {
	if err := s.validateCreateIssueRequest(req); err != nil {
		return nil, toValidationError(err)
	}

	body := req.Body
	var screenshotURL *string
	if req.Screenshot != nil {
		if s.screenshots == nil {
			return nil, fmt.Errorf("%w: screenshot storage", domain.ErrNotConfigured)
		}
		url, err := s.screenshots.Save(ctx, req.Screenshot)
		if err != nil {
			return nil, fmt.Errorf("save screenshot: %w", err)
		}
		screenshotURL = &url
		body += "\n\n![Screenshot](" + url + ")"
	}

	issue, err := s.tracker.CreateIssue(ctx, feedback.IssueDraft{
		Title:     req.Title,
		Body:      body,
		Category:  req.Category,
		Submitter: req.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("feedback issue created",
		"user_id", req.UserID,
		"type", req.Category,
		"number", issue.Number,
		"url", issue.URL,
	)

	submission := &feedback.Submission{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Category:      req.Category,
		Title:         req.Title,
		IssueNumber:   issue.Number,
		IssueURL:      issue.URL,
		ScreenshotURL: screenshotURL,
		CreatedAt:     time.Now(),
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		s.logger.Warn("failed to record submission",
			"user_id", req.UserID,
			"number", issue.Number,
			"error", err,
		)
	}

	return issue, nil
}

// ListSubmissions returns the user's most recent submissions
func (s *issueService) ListSubmissions(ctx context.Context, userID string) ([]feedback.Submission, error) {
	submissions, err := s.submissions.ListByUser(ctx, userID, config.MaxSubmissionsListed)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

func (s *issueService) validateCreateIssueRequest(req *feedbackSvc.CreateIssueRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required.Error("The title field is required."),
			validation.RuneLength(0, config.MaxIssueTitleLength).
				Error(fmt.Sprintf("The title field must not be greater than %d characters.", config.MaxIssueTitleLength)),
		),
		validation.Field(&req.Body,
			validation.Required.Error("The body field is required."),
			validation.RuneLength(0, config.MaxIssueBodyLength).
				Error(fmt.Sprintf("The body field must not be greater than %d characters.", config.MaxIssueBodyLength)),
		),
		validation.Field(&req.Category,
			validation.Required.Error("The type field is required."),
			validation.In(feedback.CategoryBug, feedback.CategoryFeature, feedback.CategoryFeedback).
				Error("The selected type is invalid."),
		),
	)

	// Uploads are not part of the JSON shape, so the field is checked apart
	if shotErr := validateScreenshot(req.Screenshot); shotErr != nil {
		errs, _ := err.(validation.Errors)
		if errs == nil {
			errs = validation.Errors{}
		}
		errs["screenshot"] = shotErr
		return errs
	}

	return err
}

// validateScreenshot checks size and sniffed content type. The client's
// declared type is not trusted.
func validateScreenshot(shot *feedback.Screenshot) error {
	if shot == nil {
		return nil
	}

	if len(shot.Data) > config.MaxScreenshotBytes {
		return fmt.Errorf("The screenshot field must not be greater than %d kilobytes.", config.MaxScreenshotBytes/1024)
	}

	detected := http.DetectContentType(shot.Data)
	if !slices.Contains(config.AllowedScreenshotTypes, detected) {
		return errors.New("The screenshot field must be a file of type: jpeg, png, webp, gif.")
	}
	shot.ContentType = detected

	return nil
}
