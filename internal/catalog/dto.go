package catalog

import (
	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/pagination"
	"github.com/electrohogar/storefront-backend/pkg/querystate"
)

// EmptyKind tells the renderer which empty state to show when a listing page
// has no rows.
type EmptyKind string

const (
	// EmptyNone means the page has rows.
	EmptyNone EmptyKind = ""
	// EmptyFiltered means the active filters matched nothing; the UI offers
	// to clear them.
	EmptyFiltered EmptyKind = "no_results_for_filters"
	// EmptyCatalog means the catalog itself has nothing to show.
	EmptyCatalog EmptyKind = "no_products_available"
)

// ListingPage is everything a listing view renders: the rows, the pagination
// window, the state the page was built from, and the empty-state kind.
type ListingPage struct {
	Family      catalogapi.Family           `json:"family"`
	State       querystate.QueryState       `json:"-"`
	Query       string                      `json:"query"`
	Data        []catalogapi.ProductSummary `json:"data"`
	TotalItems  int                         `json:"totalItems"`
	TotalPages  int                         `json:"totalPages"`
	CurrentPage int                         `json:"currentPage"`
	Window      pagination.Window           `json:"window"`
	EmptyKind   EmptyKind                   `json:"emptyKind,omitempty"`
	Degraded    bool                        `json:"degraded,omitempty"`
}

// FilterOptions are the category and brand values a family's filter controls
// offer.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}

func buildPage(family catalogapi.Family, state querystate.QueryState, result catalogapi.ListingResult, degraded bool) ListingPage {
	current := pagination.Clamp(result.CurrentPage, result.TotalPages)
	page := ListingPage{
		Family:      family,
		State:       state,
		Query:       state.Encode(),
		Data:        result.Data,
		TotalItems:  result.TotalItems,
		TotalPages:  result.TotalPages,
		CurrentPage: current,
		Window:      pagination.NewWindow(current, result.TotalPages),
		Degraded:    degraded,
	}
	if page.Data == nil {
		page.Data = []catalogapi.ProductSummary{}
	}
	if len(page.Data) == 0 {
		if state.HasFilters() {
			page.EmptyKind = EmptyFiltered
		} else {
			page.EmptyKind = EmptyCatalog
		}
	}
	return page
}
