package controllers

import (
	"net/http"

	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/api/validators"
	"github.com/electrohogar/storefront-backend/internal/admin"
	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

type revalidateRequest struct {
	Families []string `json:"families" validate:"omitempty,dive,oneof=electrodomesticos repuestos"`
}

// Revalidate purges cached listings for the requested families, or for both
// when none are named. The caller authenticates with the shared secret token
// in the X-Revalidation-Token header.
func Revalidate(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		var req revalidateRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		families := make([]catalogapi.Family, 0, len(req.Families))
		for _, raw := range req.Families {
			family, err := catalogapi.ParseFamily(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown product family").WithDetails(map[string]string{"family": raw}))
				return
			}
			families = append(families, family)
		}

		token := r.Header.Get("X-Revalidation-Token")
		if err := svc.Revalidate(r.Context(), token, families); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"revalidated": true})
	}
}
