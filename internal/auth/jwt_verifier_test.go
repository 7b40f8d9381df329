package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"feedbackwidget/internal/domain"
	"feedbackwidget/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

func newTestVerifier(t *testing.T) (*KeyfuncVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	kf := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	return NewKeyfuncVerifier(kf, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.UserClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestVerifyToken(t *testing.T) {
	v, key := newTestVerifier(t)
	now := time.Now()

	valid := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: "a@example.com",
	}

	claims, err := v.VerifyToken(sign(t, jwt.SigningMethodRS256, key, valid))
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.GetUserID() != "user-1" || claims.Email != "a@example.com" {
		t.Errorf("claims = %+v", claims)
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	if _, err := v.VerifyToken(sign(t, jwt.SigningMethodRS256, key, expired)); !errors.Is(err, domain.ErrSessionExpired) {
		t.Errorf("expired token error = %v, want ErrSessionExpired", err)
	}

	noSubject := valid
	noSubject.Subject = ""
	if _, err := v.VerifyToken(sign(t, jwt.SigningMethodRS256, key, noSubject)); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("missing subject error = %v, want ErrUnauthorized", err)
	}

	hmac := sign(t, jwt.SigningMethodHS256, []byte("secret"), valid)
	if _, err := v.VerifyToken(hmac); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("HS256 token error = %v, want ErrUnauthorized", err)
	}

	if _, err := v.VerifyToken("not-a-jwt"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("garbage token error = %v, want ErrUnauthorized", err)
	}
}
