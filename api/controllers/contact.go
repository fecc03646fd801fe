package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/api/validators"
	"github.com/electrohogar/storefront-backend/internal/contact"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ContactSubmit accepts a contact form submission. The message is persisted
// before the notification email is attempted, so a mail failure still
// returns a created response, flagged as degraded.
func ContactSubmit(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		var req contact.SubmitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), clientIP(r), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
