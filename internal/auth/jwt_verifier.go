package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"zote/internal/domain"
	models "zote/internal/domain/models/auth"
)

// allowedAlgorithms guards against algorithm confusion
var allowedAlgorithms = []string{"RS256", "ES256"}

// JWKSVerifier verifies tokens against keys published at a JWKS endpoint
type JWKSVerifier struct {
	keyFunc jwt.Keyfunc
	logger  *slog.Logger
}

// NewJWTVerifier fetches signing keys from jwksURL. keyfunc caches them and
// refreshes according to the endpoint's cache headers.
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return newVerifier(jwks.Keyfunc, logger), nil
}

func newVerifier(keyFunc jwt.Keyfunc, logger *slog.Logger) *JWKSVerifier {
	return &JWKSVerifier{
		keyFunc: keyFunc,
		logger:  logger,
	}
}

// VerifyToken parses and validates a token
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, v.keyFunc,
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token rejected", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		v.logger.Warn("token claims could not be read")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	if claims.Role == "anon" {
		v.logger.Debug("anonymous token rejected", "user_id", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close is a no-op; keyfunc manages its own refresh goroutine lifetime via ctx
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
