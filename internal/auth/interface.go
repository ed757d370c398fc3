package auth

import models "zote/internal/domain/models/auth"

// JWTVerifier validates bearer tokens
type JWTVerifier interface {
	// VerifyToken returns the claims of a valid token, or domain.ErrUnauthorized
	VerifyToken(tokenString string) (*models.Claims, error)

	Close() error
}
