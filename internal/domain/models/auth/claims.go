package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the access-token payload issued by the identity provider
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"` // "authenticated" or "anon"
}

// GetUserID returns the subject claim, which identifies the node owner
func (c *Claims) GetUserID() string {
	return c.Subject
}
