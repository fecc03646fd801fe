package controllers

import (
	"net/http"
	"strings"

	"github.com/electrohogar/storefront-backend/api/middleware"
	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/api/validators"
	"github.com/electrohogar/storefront-backend/internal/catalog"
	"github.com/electrohogar/storefront-backend/internal/recommendations"
	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

const (
	defaultMostViewedLimit = 8
	defaultSimilarLimit    = 4
	maxRecommendationLimit = 20
)

// MostViewed serves the ranked most-viewed products. Fewer than two ranked
// products yields an empty list.
func MostViewed(svc recommendations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recommendations service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultMostViewedLimit, 1, maxRecommendationLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := svc.MostViewed(r.Context(), limit)
		responses.WriteSuccess(w, items)
	}
}

// SimilarProducts serves products related to the one identified by family and
// slug, excluding it and the session's recently viewed products.
func SimilarProducts(svc recommendations.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recommendations service unavailable"))
			return
		}

		rawFamily := r.URL.Query().Get("family")
		family, err := catalogapi.ParseFamily(rawFamily)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown product family").WithDetails(map[string]string{"family": rawFamily}))
			return
		}

		slug := strings.TrimSpace(r.URL.Query().Get("slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultSimilarLimit, 1, maxRecommendationLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalogSvc.Detail(r.Context(), family, slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		items := svc.Similar(r.Context(), sessionID, family, product, limit)
		responses.WriteSuccess(w, items)
	}
}
