package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/electrohogar/storefront-backend/api/middleware"
	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/internal/admin"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

const maxAdminFormMemory = 32 << 20

// parseProductForm reads the multipart admin payload into a normalized form.
// The features, specifications, and images fields accept either a JSON array
// or newline-separated text.
func parseProductForm(r *http.Request) (admin.ProductForm, error) {
	if err := r.ParseMultipartForm(maxAdminFormMemory); err != nil {
		return admin.ProductForm{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	var form admin.ProductForm
	form.Name = r.FormValue("name")
	form.Category = r.FormValue("category")
	form.Brand = r.FormValue("brand")
	form.Description = r.FormValue("description")

	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return admin.ProductForm{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number")
		}
		form.Price = price
	}
	if raw := strings.TrimSpace(r.FormValue("original_price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return admin.ProductForm{}, pkgerrors.New(pkgerrors.CodeValidation, "original_price must be a decimal number")
		}
		form.OriginalPrice = &price
	}
	if raw := strings.TrimSpace(r.FormValue("stock")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return admin.ProductForm{}, pkgerrors.New(pkgerrors.CodeValidation, "stock must be an integer")
		}
		form.Stock = &stock
	}
	if raw := strings.TrimSpace(r.FormValue("is_original")); raw != "" {
		isOriginal, err := strconv.ParseBool(raw)
		if err != nil {
			return admin.ProductForm{}, pkgerrors.New(pkgerrors.CodeValidation, "is_original must be a boolean")
		}
		form.IsOriginal = &isOriginal
	}

	form.Features = admin.ParseFlexibleList(r.FormValue("features"))
	form.Specifications = admin.ParseFlexibleList(r.FormValue("specifications"))
	form.Images = admin.ParseFlexibleList(r.FormValue("images"))

	if r.MultipartForm != nil {
		if mains := r.MultipartForm.File["main_image"]; len(mains) > 0 {
			upload, err := openUpload("main_image", mains[0])
			if err != nil {
				return admin.ProductForm{}, err
			}
			form.MainImage = upload
		}
		for _, header := range r.MultipartForm.File["additional_images"] {
			upload, err := openUpload("additional_images", header)
			if err != nil {
				return admin.ProductForm{}, err
			}
			form.AdditionalImages = append(form.AdditionalImages, *upload)
		}
	}
	return form, nil
}

func openUpload(field string, header *multipart.FileHeader) (*admin.Upload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
	}
	return &admin.Upload{Field: field, Filename: header.Filename, Content: file}, nil
}

// AdminCreateProduct forwards a create to the catalog API and purges the
// family's cached listings.
func AdminCreateProduct(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		family, err := familyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := parseProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), middleware.BearerFromContext(r.Context()), family, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct forwards an update to the catalog API and purges the
// family's cached listings.
func AdminUpdateProduct(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		family, err := familyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		form, err := parseProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), middleware.BearerFromContext(r.Context()), family, id, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct forwards a delete to the catalog API. The cache is only
// purged after the upstream confirms the delete.
func AdminDeleteProduct(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		family, err := familyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		if err := svc.Delete(r.Context(), middleware.BearerFromContext(r.Context()), family, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted", "id": id})
	}
}
