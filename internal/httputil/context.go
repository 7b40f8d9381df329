package httputil

import (
	"context"
	"net/http"

	"feedbackwidget/internal/domain"
)

type submitterKey struct{}

// WithUserID records the authenticated submitter on the request
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), submitterKey{}, userID))
}

// GetUserID returns the submitter, or "" on routes without auth
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(submitterKey{}).(string)
	return userID
}

// RequireUserID is GetUserID for handlers that attribute work to a user.
// A missing id means the route was mounted without the auth middleware.
func RequireUserID(r *http.Request) (string, error) {
	userID := GetUserID(r)
	if userID == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}
