package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zote/internal/domain"
	models "zote/internal/domain/models/auth"
)

func testVerifier(t *testing.T) (*JWKSVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyFunc := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	return newVerifier(keyFunc, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims *models.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() *models.Claims {
	return &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "authenticated",
	}
}

func TestVerifyToken_Valid(t *testing.T) {
	v, key := testVerifier(t)

	claims, err := v.VerifyToken(sign(t, key, validClaims()))

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.GetUserID())
}

func TestVerifyToken_Rejected(t *testing.T) {
	v, key := testVerifier(t)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noSubject := validClaims()
	noSubject.Subject = ""

	anon := validClaims()
	anon.Role = "anon"

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":    "not-a-token",
		"expired":    sign(t, key, expired),
		"no subject": sign(t, key, noSubject),
		"anonymous":  sign(t, key, anon),
		"no expiry":  sign(t, key, noExpiry),
		"hmac":       hmacToken,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.VerifyToken(token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestNewJWTVerifier_EmptyURL(t *testing.T) {
	_, err := NewJWTVerifier(t.Context(), "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
