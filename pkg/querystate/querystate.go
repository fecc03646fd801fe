package querystate

import (
	"net/url"
	"strconv"
	"strings"
)

// Canonical query parameter names. Anything else found in a query string is
// preserved untouched when the state is merged back.
const (
	ParamQuery      = "q"
	ParamCategory   = "category"
	ParamBrand      = "brand"
	ParamIsOriginal = "is_original"
	ParamSort       = "sort"
	ParamPage       = "page"
)

// Sort enumerates the orderings the listing endpoints accept. The zero value
// means server-default relevance order.
type Sort string

const (
	SortDefault   Sort = ""
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortNameAsc   Sort = "name_asc"
	SortNameDesc  Sort = "name_desc"
)

// ParseSort normalizes a raw sort value; unknown values map to SortDefault.
func ParseSort(raw string) Sort {
	switch Sort(strings.TrimSpace(raw)) {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return Sort(strings.TrimSpace(raw))
	default:
		return SortDefault
	}
}

// QueryState is the canonical filter/sort/page state for a catalog listing.
// Empty string fields mean "no filter"; IsOriginal is nil when absent.
type QueryState struct {
	Q          string
	Category   string
	Brand      string
	IsOriginal *bool
	Sort       Sort
	Page       int
}

// FromValues reads the canonical parameters out of a parsed query string.
// Out-of-range pages normalize to 1; invalid sorts normalize to default.
func FromValues(values url.Values) QueryState {
	state := QueryState{
		Q:        strings.TrimSpace(values.Get(ParamQuery)),
		Category: strings.TrimSpace(values.Get(ParamCategory)),
		Brand:    strings.TrimSpace(values.Get(ParamBrand)),
		Sort:     ParseSort(values.Get(ParamSort)),
		Page:     1,
	}
	if raw := strings.TrimSpace(values.Get(ParamPage)); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			state.Page = page
		}
	}
	if raw := strings.TrimSpace(values.Get(ParamIsOriginal)); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			state.IsOriginal = &parsed
		}
	}
	return state
}

// HasFilters reports whether any filter narrows the listing. Sort and page are
// not filters: they shape presentation, not the result set.
func (s QueryState) HasFilters() bool {
	return s.Q != "" || s.Category != "" || s.Brand != "" || s.IsOriginal != nil
}

// Change mutates one field of a QueryState during Merge. filter reports
// whether the mutation narrows the result set and must reset pagination.
type Change struct {
	apply  func(*QueryState) bool
	filter bool
}

// WithQuery sets the free-text search term; empty clears it.
func WithQuery(q string) Change {
	return Change{filter: true, apply: func(s *QueryState) bool {
		trimmed := strings.TrimSpace(q)
		if s.Q == trimmed {
			return false
		}
		s.Q = trimmed
		return true
	}}
}

// WithCategory sets the category filter; empty clears it.
func WithCategory(category string) Change {
	return Change{filter: true, apply: func(s *QueryState) bool {
		trimmed := strings.TrimSpace(category)
		if s.Category == trimmed {
			return false
		}
		s.Category = trimmed
		return true
	}}
}

// WithBrand sets the brand filter; empty clears it.
func WithBrand(brand string) Change {
	return Change{filter: true, apply: func(s *QueryState) bool {
		trimmed := strings.TrimSpace(brand)
		if s.Brand == trimmed {
			return false
		}
		s.Brand = trimmed
		return true
	}}
}

// WithOriginalOnly sets the repuestos-only originality filter; nil clears it.
func WithOriginalOnly(value *bool) Change {
	return Change{filter: true, apply: func(s *QueryState) bool {
		if value == nil {
			if s.IsOriginal == nil {
				return false
			}
			s.IsOriginal = nil
			return true
		}
		if s.IsOriginal != nil && *s.IsOriginal == *value {
			return false
		}
		v := *value
		s.IsOriginal = &v
		return true
	}}
}

// WithSort sets the ordering. Sort changes never reset pagination.
func WithSort(sort Sort) Change {
	return Change{apply: func(s *QueryState) bool {
		normalized := ParseSort(string(sort))
		if s.Sort == normalized {
			return false
		}
		s.Sort = normalized
		return true
	}}
}

// WithPage moves to the requested page. Values below 1 normalize to 1.
func WithPage(page int) Change {
	return Change{apply: func(s *QueryState) bool {
		if page < 1 {
			page = 1
		}
		if s.Page == page {
			return false
		}
		s.Page = page
		return true
	}}
}

// Merge applies the given changes and returns the resulting state. Any
// effective change to q, category, brand, or is_original resets page to 1;
// sort-only and page-only changes leave the other fields alone.
func (s QueryState) Merge(changes ...Change) QueryState {
	next := s
	filterChanged := false
	for _, change := range changes {
		if change.apply == nil {
			continue
		}
		if change.apply(&next) && change.filter {
			filterChanged = true
		}
	}
	if filterChanged {
		next.Page = 1
	}
	if next.Page < 1 {
		next.Page = 1
	}
	return next
}

// Apply writes the canonical parameters into the given query values,
// preserving unrecognized keys. Cleared fields are removed entirely (absence,
// not empty string) and page is omitted when it is 1.
func (s QueryState) Apply(values url.Values) url.Values {
	merged := url.Values{}
	for key, vals := range values {
		switch key {
		case ParamQuery, ParamCategory, ParamBrand, ParamIsOriginal, ParamSort, ParamPage:
			continue
		}
		merged[key] = append([]string(nil), vals...)
	}
	if s.Q != "" {
		merged.Set(ParamQuery, s.Q)
	}
	if s.Category != "" {
		merged.Set(ParamCategory, s.Category)
	}
	if s.Brand != "" {
		merged.Set(ParamBrand, s.Brand)
	}
	if s.IsOriginal != nil {
		merged.Set(ParamIsOriginal, strconv.FormatBool(*s.IsOriginal))
	}
	if s.Sort != SortDefault {
		merged.Set(ParamSort, string(s.Sort))
	}
	if s.Page > 1 {
		merged.Set(ParamPage, strconv.Itoa(s.Page))
	}
	return merged
}

// Encode serializes the state alone as a canonical query string.
func (s QueryState) Encode() string {
	return s.Apply(url.Values{}).Encode()
}
