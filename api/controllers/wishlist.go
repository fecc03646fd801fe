package controllers

import (
	"net/http"

	"github.com/electrohogar/storefront-backend/api/middleware"
	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/api/validators"
	"github.com/electrohogar/storefront-backend/internal/wishlist"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

type wishlistToggleRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	ProductType string `json:"product_type" validate:"required,oneof=electrodomestico repuesto"`
}

type wishlistResponse struct {
	Items   []wishlist.Item `json:"items"`
	Loading bool            `json:"loading"`
}

func userStore(r *http.Request, registry *wishlist.Registry) (*wishlist.Store, string, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	bearer := middleware.BearerFromContext(r.Context())
	store, err := registry.ForUser(userID)
	if err != nil {
		return nil, "", err
	}
	return store, bearer, nil
}

// WishlistList serves the authenticated user's wishlist, loading it from the
// upstream on first access.
func WishlistList(registry *wishlist.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist registry unavailable"))
			return
		}

		store, bearer, err := userStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !store.Loaded() {
			if err := store.Load(r.Context(), bearer); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, wishlistResponse{Items: store.Items(), Loading: store.Loading()})
	}
}

// WishlistToggle adds or removes one product. The optimistic mutation settles
// against the upstream before the response is written; a toggle racing a
// pending toggle on the same product is rejected.
func WishlistToggle(registry *wishlist.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist registry unavailable"))
			return
		}

		var req wishlistToggleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, bearer, err := userStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !store.Loaded() {
			if err := store.Load(r.Context(), bearer); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := store.Toggle(r.Context(), bearer, req.ProductID, req.ProductType); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wishlistResponse{Items: store.Items(), Loading: store.Loading()})
	}
}
