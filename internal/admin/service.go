package admin

import (
	"context"
	"crypto/subtle"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/config"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

// Upload is one image file received from the admin form.
type Upload struct {
	Field    string
	Filename string
	Content  io.Reader
}

// ProductForm is a create or update payload for either family.
type ProductForm struct {
	Name          string           `json:"name" validate:"required,min=2,max=200"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Category      string           `json:"category" validate:"required"`
	Brand         string           `json:"brand" validate:"required"`
	Description   string           `json:"description,omitempty"`
	Stock         *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	IsOriginal    *bool            `json:"is_original,omitempty"`

	Features       FlexibleList `json:"features,omitempty"`
	Specifications FlexibleList `json:"specifications,omitempty"`
	Images         FlexibleList `json:"images,omitempty"`

	MainImage        *Upload  `json:"-"`
	AdditionalImages []Upload `json:"-"`
}

// Forwarder is the slice of the catalog API client the gateway forwards to.
type Forwarder interface {
	AdminCreate(ctx context.Context, bearer string, family catalogapi.Family, form catalogapi.AdminForm) (*catalogapi.Product, error)
	AdminUpdate(ctx context.Context, bearer string, family catalogapi.Family, id string, form catalogapi.AdminForm) (*catalogapi.Product, error)
	AdminDelete(ctx context.Context, bearer string, family catalogapi.Family, id string) error
}

// Purger invalidates cached listing data after a mutation.
type Purger interface {
	PurgeFamily(ctx context.Context, family catalogapi.Family) error
}

// ServiceParams groups dependencies for the admin gateway.
type ServiceParams struct {
	Forwarder Forwarder
	Purger    Purger
	Validator *validator.Validate
	Config    config.RevalidationConfig
	Logger    *logger.Logger
}

// Service forwards admin catalog mutations upstream and keeps the cache
// honest afterwards.
type Service interface {
	Create(ctx context.Context, bearer string, family catalogapi.Family, form ProductForm) (*catalogapi.Product, error)
	Update(ctx context.Context, bearer string, family catalogapi.Family, id string, form ProductForm) (*catalogapi.Product, error)
	Delete(ctx context.Context, bearer string, family catalogapi.Family, id string) error
	Revalidate(ctx context.Context, token string, families []catalogapi.Family) error
}

type service struct {
	forwarder Forwarder
	purger    Purger
	validate  *validator.Validate
	cfg       config.RevalidationConfig
	logg      *logger.Logger
}

// NewService builds the admin gateway with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Forwarder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "forwarder is required")
	}
	if params.Purger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache purger is required")
	}
	if params.Validator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validator is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		forwarder: params.Forwarder,
		purger:    params.Purger,
		validate:  params.Validator,
		cfg:       params.Config,
		logg:      params.Logger,
	}, nil
}

// Create forwards a new catalog entry and purges the family's cache.
func (s *service) Create(ctx context.Context, bearer string, family catalogapi.Family, form ProductForm) (*catalogapi.Product, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product form")
	}
	product, err := s.forwarder.AdminCreate(ctx, bearer, family, encodeForm(family, form))
	if err != nil {
		return nil, forwardError(err, "create product")
	}
	s.purge(ctx, family)
	return product, nil
}

// Update forwards changes to an existing entry and purges the family's cache.
func (s *service) Update(ctx context.Context, bearer string, family catalogapi.Family, id string, form ProductForm) (*catalogapi.Product, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.validate.Struct(form); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product form")
	}
	product, err := s.forwarder.AdminUpdate(ctx, bearer, family, id, encodeForm(family, form))
	if err != nil {
		return nil, forwardError(err, "update product")
	}
	s.purge(ctx, family)
	return product, nil
}

// Delete removes an entry and purges the family's cache.
func (s *service) Delete(ctx context.Context, bearer string, family catalogapi.Family, id string) error {
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.forwarder.AdminDelete(ctx, bearer, family, id); err != nil {
		return forwardError(err, "delete product")
	}
	s.purge(ctx, family)
	return nil
}

// Revalidate purges cached data for the named families (or both when none
// are named) after verifying the shared secret token.
func (s *service) Revalidate(ctx context.Context, token string, families []catalogapi.Family) error {
	if s.cfg.SecretToken == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "revalidation token is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.SecretToken)) != 1 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid revalidation token")
	}
	if len(families) == 0 {
		families = []catalogapi.Family{catalogapi.FamilyElectrodomesticos, catalogapi.FamilyRepuestos}
	}
	for _, family := range families {
		if err := s.purger.PurgeFamily(ctx, family); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) purge(ctx context.Context, family catalogapi.Family) {
	if err := s.purger.PurgeFamily(ctx, family); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cache purge after admin mutation failed")
	}
}

func forwardError(err error, action string) error {
	switch {
	case catalogapi.IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, action+": not found")
	case catalogapi.IsConflict(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, action+": conflict")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}

// encodeForm flattens the normalized form into the multipart shape the
// upstream API expects: repeated fields for list values, files for uploads.
func encodeForm(family catalogapi.Family, form ProductForm) catalogapi.AdminForm {
	fields := url.Values{}
	fields.Set("name", strings.TrimSpace(form.Name))
	fields.Set("price", form.Price.String())
	fields.Set("category", strings.TrimSpace(form.Category))
	fields.Set("brand", strings.TrimSpace(form.Brand))
	if form.OriginalPrice != nil {
		fields.Set("original_price", form.OriginalPrice.String())
	}
	if description := strings.TrimSpace(form.Description); description != "" {
		fields.Set("description", description)
	}
	if form.Stock != nil {
		fields.Set("stock", strconv.Itoa(*form.Stock))
	}
	if family == catalogapi.FamilyRepuestos && form.IsOriginal != nil {
		fields.Set("is_original", strconv.FormatBool(*form.IsOriginal))
	}
	for _, feature := range form.Features {
		fields.Add("features", feature)
	}
	for _, spec := range form.Specifications {
		fields.Add("specifications", spec)
	}
	for _, image := range form.Images {
		fields.Add("images", image)
	}

	var files []catalogapi.FilePart
	if form.MainImage != nil {
		files = append(files, catalogapi.FilePart{
			Field:    "main_image",
			Filename: form.MainImage.Filename,
			Content:  form.MainImage.Content,
		})
	}
	for _, upload := range form.AdditionalImages {
		files = append(files, catalogapi.FilePart{
			Field:    "additional_images",
			Filename: upload.Filename,
			Content:  upload.Content,
		})
	}
	return catalogapi.AdminForm{Fields: fields, Files: files}
}
