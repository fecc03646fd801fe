package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/pkg/config"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
	"github.com/electrohogar/storefront-backend/pkg/supabase"
)

type bearerKey struct{}

// BearerFromContext returns the raw access token so gateways can forward it
// upstream.
func BearerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(bearerKey{}).(string); ok {
		return v
	}
	return ""
}

// SupabaseAuth validates the Supabase bearer token and seeds the context
// with the user identity and the raw token.
func SupabaseAuth(cfg config.SupabaseConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := supabase.VerifyAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid or expired session"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID())
			ctx = context.WithValue(ctx, ctxUserEmail, claims.Email)
			ctx = context.WithValue(ctx, bearerKey{}, token)
			if logg != nil {
				ctx = logg.WithField(ctx, "user_id", claims.UserID())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
