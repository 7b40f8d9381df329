package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"feedbackwidget/internal/auth"
	"feedbackwidget/internal/domain"
	"feedbackwidget/internal/httputil"
)

// Messages the widget shows as-is.
const (
	msgUnauthenticated = "Unauthenticated."
	msgSessionExpired  = "Your session has expired. Please refresh the page."
)

// Auth verifies the bearer token and puts the user id in the request
// context. Expired tokens answer 419 so the widget can ask for a refresh.
//
// A nil verifier (development without an identity provider) attributes every
// request to devUserID instead.
func Auth(verifier auth.JWTVerifier, devUserID string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, httputil.WithUserID(r, devUserID))
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, msgUnauthenticated)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				if errors.Is(err, domain.ErrSessionExpired) {
					httputil.RespondError(w, domain.StatusSessionExpired, msgSessionExpired)
					return
				}
				logger.Debug("rejected token", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, msgUnauthenticated)
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.GetUserID()))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
