package recommendations

import (
	"context"

	"github.com/electrohogar/storefront-backend/internal/views"
	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

// Fetcher is the slice of the catalog API client used for recommendations.
type Fetcher interface {
	Similar(ctx context.Context, params catalogapi.SimilarParams) ([]catalogapi.ProductSummary, error)
	MostViewed(ctx context.Context, limit int) ([]catalogapi.ProductSummary, error)
}

// RecentLister reads a session's recently-viewed list for exclusion.
type RecentLister interface {
	RecentlyViewed(ctx context.Context, sessionID string) ([]views.RecentItem, error)
}

// ServiceParams groups dependencies for the recommendations service.
type ServiceParams struct {
	Fetcher Fetcher
	Recents RecentLister
	Logger  *logger.Logger
}

// Service produces the similar-products and most-viewed rails. Both degrade
// to an empty slice on any failure; a recommendation rail never errors a
// page.
type Service interface {
	Similar(ctx context.Context, sessionID string, family catalogapi.Family, current *catalogapi.Product, limit int) []catalogapi.ProductSummary
	MostViewed(ctx context.Context, limit int) []catalogapi.ProductSummary
}

type service struct {
	fetcher Fetcher
	recents RecentLister
	logg    *logger.Logger
}

// NewService builds the recommendations service with the required
// dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fetcher is required")
	}
	if params.Recents == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recent lister is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{fetcher: params.Fetcher, recents: params.Recents, logg: params.Logger}, nil
}

// Similar returns products related to the current one by category or brand.
// Without either attribute there is nothing to relate on and no request is
// made. The current product and anything recently viewed are excluded.
func (s *service) Similar(ctx context.Context, sessionID string, family catalogapi.Family, current *catalogapi.Product, limit int) []catalogapi.ProductSummary {
	if current == nil || limit <= 0 {
		return []catalogapi.ProductSummary{}
	}
	if current.Category == "" && current.Brand == "" {
		return []catalogapi.ProductSummary{}
	}

	exclude := map[string]struct{}{current.ID: {}}
	if sessionID != "" {
		recent, err := s.recents.RecentlyViewed(ctx, sessionID)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "recently viewed lookup failed for similar rail")
		}
		for _, item := range recent {
			exclude[item.ID] = struct{}{}
		}
	}

	// Overfetch so exclusions do not starve the rail.
	candidates, err := s.fetcher.Similar(ctx, catalogapi.SimilarParams{
		ProductID:   current.ID,
		ProductType: family.ProductType(),
		Category:    current.Category,
		Brand:       current.Brand,
		Limit:       limit + len(exclude),
	})
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "similar fetch failed, serving empty rail")
		return []catalogapi.ProductSummary{}
	}

	result := make([]catalogapi.ProductSummary, 0, limit)
	for _, candidate := range candidates {
		if _, skip := exclude[candidate.ID]; skip {
			continue
		}
		result = append(result, candidate)
		if len(result) == limit {
			break
		}
	}
	return result
}

// MostViewed returns the ranked most-viewed rail. Fewer than two items is
// not a rail worth showing.
func (s *service) MostViewed(ctx context.Context, limit int) []catalogapi.ProductSummary {
	if limit <= 0 {
		return []catalogapi.ProductSummary{}
	}
	products, err := s.fetcher.MostViewed(ctx, limit)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "most viewed fetch failed, serving empty rail")
		return []catalogapi.ProductSummary{}
	}
	if len(products) < 2 {
		return []catalogapi.ProductSummary{}
	}
	if len(products) > limit {
		products = products[:limit]
	}
	return products
}
