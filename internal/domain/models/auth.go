package models

import "github.com/golang-jwt/jwt/v5"

// EditorClaims represents the JWT claims issued by the newsroom identity provider.
type EditorClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"` // "admin", "editor" or "author"
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *EditorClaims) GetUserID() string {
	return c.Subject
}
