package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/config"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

// Searcher is the slice of the catalog API client the full-search path uses.
type Searcher interface {
	Search(ctx context.Context, query string) (catalogapi.SearchResult, error)
}

// ServiceParams groups dependencies for the search service.
type ServiceParams struct {
	Searcher  Searcher
	Suggester Suggester
	Config    config.SearchConfig
	Logger    *logger.Logger
}

// Service resolves explicit search submissions across both families and
// serves one-shot suggestion lookups for the storefront's search box.
type Service interface {
	Search(ctx context.Context, query string) (catalogapi.SearchResult, error)
	Suggest(ctx context.Context, query string) Snapshot
}

type service struct {
	searcher  Searcher
	suggester Suggester
	cfg       config.SearchConfig
	logg      *logger.Logger
}

// NewService builds the search service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Searcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "searcher is required")
	}
	if params.Suggester == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "suggester is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		searcher:  params.Searcher,
		suggester: params.Suggester,
		cfg:       params.Config,
		logg:      params.Logger,
	}, nil
}

// Search runs the cross-family search. Empty queries are rejected before any
// request; upstream failures degrade to an empty result.
func (s *service) Search(ctx context.Context, query string) (catalogapi.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return catalogapi.SearchResult{}, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}

	result, err := s.searcher.Search(ctx, trimmed)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "full search failed, serving empty result")
		return catalogapi.SearchResult{
			Electrodomesticos: []catalogapi.ProductSummary{},
			Repuestos:         []catalogapi.ProductSummary{},
			SearchTerm:        trimmed,
		}, nil
	}
	return result, nil
}

// Suggest resolves one suggestions lookup without debouncing. Queries below
// the minimum length close the dropdown without a request.
func (s *service) Suggest(ctx context.Context, query string) Snapshot {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < s.cfg.MinQueryLength {
		return Snapshot{State: StateIdle, Query: trimmed}
	}
	return resolveQuery(ctx, s.suggester, s.cfg, s.logg, trimmed)
}
