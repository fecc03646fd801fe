package catalogapi

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Family selects one of the two product catalogs. The upstream API exposes
// them as separate endpoint trees, not a unified one.
type Family string

const (
	FamilyElectrodomesticos Family = "electrodomesticos"
	FamilyRepuestos         Family = "repuestos"
)

// ParseFamily validates a raw family path segment.
func ParseFamily(raw string) (Family, error) {
	switch Family(raw) {
	case FamilyElectrodomesticos, FamilyRepuestos:
		return Family(raw), nil
	default:
		return "", fmt.Errorf("unknown product family %q", raw)
	}
}

// ProductType is the singular tag used by view tracking, recommendations, and
// wishlist rows.
func (f Family) ProductType() string {
	switch f {
	case FamilyElectrodomesticos:
		return "electrodomestico"
	case FamilyRepuestos:
		return "repuesto"
	default:
		return ""
	}
}

// ErrNotFound marks a 404 from a detail-by-slug endpoint.
var ErrNotFound = errors.New("catalogapi: not found")

// ErrConflict marks a 409 from the wishlist add endpoint (already added).
var ErrConflict = errors.New("catalogapi: conflict")

// ProductSummary is the listing-row projection of a product.
type ProductSummary struct {
	ID            string           `json:"id"`
	Slug          string           `json:"slug"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	ImageURL      string           `json:"image_url"`
	Category      string           `json:"category"`
	Brand         string           `json:"brand"`
	Stock         *int             `json:"stock,omitempty"`
	IsOriginal    *bool            `json:"is_original,omitempty"`
}

// Product is the full detail record returned by the slug endpoints.
type Product struct {
	ProductSummary
	Description    string   `json:"description,omitempty"`
	Features       []string `json:"features,omitempty"`
	Specifications []string `json:"specifications,omitempty"`
	Images         []string `json:"images,omitempty"`
}

// ListingResult is the page contract of the listing endpoints.
type ListingResult struct {
	Data        []ProductSummary `json:"data"`
	TotalItems  int              `json:"totalItems"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

// EmptyListing is what callers render when the upstream is unavailable.
func EmptyListing() ListingResult {
	return ListingResult{Data: []ProductSummary{}, CurrentPage: 1}
}

// Suggestion is one typeahead row.
type Suggestion struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url"`
	Type     string `json:"type"`
	Link     string `json:"link"`
}

// SearchResult is the full-search response covering both families.
type SearchResult struct {
	Electrodomesticos []ProductSummary `json:"electrodomesticos"`
	Repuestos         []ProductSummary `json:"repuestos"`
	SearchTerm        string           `json:"searchTerm"`
}

// WishlistEntry is a row of the upstream wishlist collection. Exactly one of
// the two product references is populated.
type WishlistEntry struct {
	ID               string          `json:"id"`
	CreatedAt        string          `json:"created_at,omitempty"`
	Electrodomestico *ProductSummary `json:"electrodomestico,omitempty"`
	Repuesto         *ProductSummary `json:"repuesto,omitempty"`
}

// ProductID returns the id of whichever product reference is populated.
func (e WishlistEntry) ProductID() string {
	if e.Electrodomestico != nil {
		return e.Electrodomestico.ID
	}
	if e.Repuesto != nil {
		return e.Repuesto.ID
	}
	return ""
}

// ProductType reports which family the entry references.
func (e WishlistEntry) ProductType() string {
	if e.Electrodomestico != nil {
		return FamilyElectrodomesticos.ProductType()
	}
	if e.Repuesto != nil {
		return FamilyRepuestos.ProductType()
	}
	return ""
}
