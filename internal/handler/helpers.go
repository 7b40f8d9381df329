package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"feedbackwidget/internal/domain"
	"feedbackwidget/internal/httputil"
)

const (
	msgSessionExpired  = "Your session has expired. Please refresh the page."
	msgUnauthenticated = "Unauthenticated."
	msgTooManyRequests = "Too many requests. Please wait a moment and try again."
	msgSomethingWrong  = "Something went wrong. Please try again."
	msgIssueFailed     = "Failed to create the issue. Please try again."

	msgScreenshotTooLarge     = "The screenshot field must not be greater than 5120 kilobytes."
	msgScreenshotUploadFailed = "The screenshot failed to upload."
)

// handleError converts domain errors to HTTP responses.
// Anything unexpected is logged and answered with fallback.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	var valErr *domain.ValidationError
	var turnErr *domain.TurnLimitError

	switch {
	case errors.As(err, &valErr):
		httputil.RespondValidationError(w, valErr.Message, valErr.Fields)
	case errors.As(err, &turnErr):
		httputil.RespondValidationError(w, turnErr.Error(), map[string]interface{}{
			"history": turnErr.Error(),
		})
	case errors.Is(err, domain.ErrSessionExpired):
		httputil.RespondError(w, domain.StatusSessionExpired, msgSessionExpired)
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, msgUnauthenticated)
	case errors.Is(err, domain.ErrConversationBusy):
		httputil.RespondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		httputil.RespondError(w, http.StatusTooManyRequests, msgTooManyRequests)
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// Client went away; nobody is listening for the body
		logger.Debug("request canceled", "path", r.URL.Path)
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", httputil.GetUserID(r),
			"error", err,
		)
		httputil.RespondError(w, http.StatusInternalServerError, fallback)
	}
}
