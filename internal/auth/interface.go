package auth

import "feedbackwidget/internal/domain/models"

// JWTVerifier checks the host application's session tokens.
type JWTVerifier interface {
	// VerifyToken returns the claims of a valid token, domain.ErrSessionExpired
	// for an expired one and domain.ErrUnauthorized otherwise.
	VerifyToken(tokenString string) (*models.UserClaims, error)

	// Close stops background key refresh.
	Close() error
}
