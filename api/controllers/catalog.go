package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/electrohogar/storefront-backend/api/middleware"
	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/internal/catalog"
	"github.com/electrohogar/storefront-backend/internal/views"
	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
	"github.com/electrohogar/storefront-backend/pkg/querystate"
)

func familyFromRequest(r *http.Request) (catalogapi.Family, error) {
	raw := chi.URLParam(r, "family")
	family, err := catalogapi.ParseFamily(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown product family").WithDetails(map[string]string{"family": raw})
	}
	return family, nil
}

// CatalogListing serves one listing page. Upstream failures surface as an
// empty page with a degraded flag, never as an error response.
func CatalogListing(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		family, err := familyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state := querystate.FromValues(r.URL.Query())
		page := svc.Listing(r.Context(), family, state)
		responses.WriteSuccess(w, page)
	}
}

// CatalogDetail serves one product by slug and records the view against the
// caller's anonymous session.
func CatalogDetail(svc catalog.Service, viewsSvc views.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		family, err := familyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		product, err := svc.Detail(r.Context(), family, slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if viewsSvc != nil {
			if sessionID := middleware.SessionIDFromContext(r.Context()); sessionID != "" {
				viewsSvc.RecordView(r.Context(), sessionID, family, product)
			}
		}

		responses.WriteSuccess(w, product)
	}
}

// CatalogFilters serves the category and brand options for a family.
func CatalogFilters(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		family, err := familyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		options, err := svc.FilterOptions(r.Context(), family)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, options)
	}
}
