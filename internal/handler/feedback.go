package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"feedbackwidget/internal/config"
	"feedbackwidget/internal/domain/models/feedback"
	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
	"feedbackwidget/internal/httputil"
)

// multipartOverhead is the allowance for form fields next to the screenshot.
const multipartOverhead = 64 << 10

// FeedbackHandler handles the widget's chat and issue endpoints
type FeedbackHandler struct {
	chatService  feedbackSvc.ChatService
	issueService feedbackSvc.IssueService
	logger       *slog.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(
	chatService feedbackSvc.ChatService,
	issueService feedbackSvc.IssueService,
	logger *slog.Logger,
) *FeedbackHandler {
	return &FeedbackHandler{
		chatService:  chatService,
		issueService: issueService,
		logger:       logger,
	}
}

// Chat runs one conversation turn. An unreadable body is validated as an
// empty one, so the client gets per-field 422 errors.
// POST /feedback/chat
func (h *FeedbackHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, err := httputil.RequireUserID(r)
	if err != nil {
		handleError(w, r, h.logger, err, msgSomethingWrong)
		return
	}

	var req feedbackSvc.ChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.logger.Debug("unreadable chat body", "user_id", userID, "error", err)
		req = feedbackSvc.ChatRequest{}
	}
	req.UserID = userID

	result, err := h.chatService.Chat(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, msgSomethingWrong)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// CreateIssue files a confirmed report
// POST /feedback/issue (application/json or multipart/form-data with a "screenshot" file)
func (h *FeedbackHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	userID, err := httputil.RequireUserID(r)
	if err != nil {
		handleError(w, r, h.logger, err, msgIssueFailed)
		return
	}

	var req feedbackSvc.CreateIssueRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if !h.parseIssueForm(w, r, &req) {
			return
		}
	} else if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.logger.Debug("unreadable issue body", "user_id", userID, "error", err)
		req = feedbackSvc.CreateIssueRequest{}
	}
	req.UserID = userID

	issue, err := h.issueService.CreateIssue(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, msgIssueFailed)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, issue)
}

// parseIssueForm fills req from a multipart body. It writes the error
// response itself and reports whether the request may continue. A form that
// cannot be parsed leaves req empty for validation to reject.
func (h *FeedbackHandler) parseIssueForm(w http.ResponseWriter, r *http.Request, req *feedbackSvc.CreateIssueRequest) bool {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxScreenshotBytes+multipartOverhead)

	if err := r.ParseMultipartForm(config.MaxScreenshotBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondValidationError(w, msgScreenshotTooLarge, map[string]interface{}{
				"screenshot": msgScreenshotTooLarge,
			})
			return false
		}
		h.logger.Debug("unreadable issue form", "error", err)
		return true
	}

	req.Title = r.FormValue("title")
	req.Body = r.FormValue("body")
	req.Category = feedback.Category(r.FormValue("type"))

	file, header, err := r.FormFile("screenshot")
	if errors.Is(err, http.ErrMissingFile) {
		return true
	}
	if err != nil {
		httputil.RespondValidationError(w, msgScreenshotUploadFailed, map[string]interface{}{
			"screenshot": msgScreenshotUploadFailed,
		})
		return false
	}
	defer func() { _ = file.Close() }() // Error ignored: read-only upload

	// One byte over the limit is enough for validation to reject it
	data, err := io.ReadAll(io.LimitReader(file, config.MaxScreenshotBytes+1))
	if err != nil {
		h.logger.Error("failed to read screenshot", "file", header.Filename, "error", err)
		httputil.RespondValidationError(w, msgScreenshotUploadFailed, map[string]interface{}{
			"screenshot": msgScreenshotUploadFailed,
		})
		return false
	}

	req.Screenshot = &feedback.Screenshot{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return true
}

// ListSubmissions returns the caller's recent filed issues
// GET /feedback/issues
func (h *FeedbackHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, err := httputil.RequireUserID(r)
	if err != nil {
		handleError(w, r, h.logger, err, msgSomethingWrong)
		return
	}

	submissions, err := h.issueService.ListSubmissions(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.logger, err, msgSomethingWrong)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
	})
}

// Health is a simple health check endpoint
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
