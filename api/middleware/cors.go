package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/electrohogar/storefront-backend/pkg/config"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
}

// CORS returns middleware that allows the storefront origin plus local dev.
func CORS(cfg config.AppConfig) func(http.Handler) http.Handler {
	origins := append([]string(nil), defaultCORSOrigins...)
	if site := strings.TrimSpace(cfg.SiteURL); site != "" {
		origins = append(origins, strings.TrimRight(site, "/"))
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
