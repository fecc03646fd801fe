package controllers

import (
	"net/http"

	"github.com/electrohogar/storefront-backend/api/middleware"
	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/internal/views"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

// RecentlyViewed serves the anonymous session's recently viewed products,
// most recent first.
func RecentlyViewed(svc views.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "views service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteSuccess(w, []views.RecentItem{})
			return
		}

		items, err := svc.RecentlyViewed(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []views.RecentItem{}
		}
		responses.WriteSuccess(w, items)
	}
}
