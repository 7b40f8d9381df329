package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims represents the JWT claims issued by the host application's identity provider.
type UserClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Name                 string `json:"name"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the submitting identity recorded on filed issues.
func (c *UserClaims) GetUserID() string {
	return c.Subject
}
