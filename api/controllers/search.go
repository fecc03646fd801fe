package controllers

import (
	"net/http"
	"strings"

	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/internal/search"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

// SearchSuggestions resolves the predictive dropdown for a query. Debouncing
// happens client-side; this endpoint answers one keystroke's lookup.
func SearchSuggestions(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		query := r.URL.Query().Get("q")
		snapshot := svc.Suggest(r.Context(), query)
		responses.WriteSuccess(w, snapshot)
	}
}

// SearchResults runs the explicit full search across both families.
func SearchResults(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		result, err := svc.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
