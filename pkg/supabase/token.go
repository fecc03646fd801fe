package supabase

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/electrohogar/storefront-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Supabase issues access tokens with this audience for signed-in users.
const audienceAuthenticated = "authenticated"

// VerifyAccessToken validates a Supabase-issued JWT string and returns its
// typed claims. Expiry and audience are enforced.
func VerifyAccessToken(cfg config.SupabaseConfig, tokenString string) (*AccessTokenClaims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("supabase jwt secret is required")
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithAudience(audienceAuthenticated),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token carries no subject")
	}

	return claims, nil
}
