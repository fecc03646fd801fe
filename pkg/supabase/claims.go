package supabase

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims is the subset of a Supabase access token the admin
// gateway cares about. Supabase signs these with the project JWT secret.
type AccessTokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the Supabase user id (the sub claim).
func (c *AccessTokenClaims) UserID() string {
	return c.Subject
}
