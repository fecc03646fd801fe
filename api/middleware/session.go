package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/electrohogar/storefront-backend/pkg/config"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

const sessionCookieName = "eh_session"

// Session assigns each browser an opaque anonymous session id, minted once
// and carried in a cookie. The id scopes the recently-viewed list and view
// tracking; it is not an authentication credential.
func Session(cfg config.ViewsConfig, app config.AppConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
					sessionID = cookie.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sessionID,
					Path:     "/",
					Expires:  time.Now().Add(cfg.SessionTTL),
					HttpOnly: true,
					Secure:   app.IsProd(),
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
