package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/config"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
	"github.com/electrohogar/storefront-backend/pkg/metrics"
	"github.com/electrohogar/storefront-backend/pkg/querystate"
	"github.com/electrohogar/storefront-backend/pkg/redis"
)

// Upstream is the slice of the catalog API client the listing service uses.
type Upstream interface {
	List(ctx context.Context, family catalogapi.Family, params catalogapi.ListParams) (catalogapi.ListingResult, error)
	GetBySlug(ctx context.Context, family catalogapi.Family, slug string) (*catalogapi.Product, error)
	Categories(ctx context.Context, family catalogapi.Family) ([]string, error)
	Brands(ctx context.Context, family catalogapi.Family) ([]string, error)
}

// Cache is the slice of the Redis client the listing service uses. A nil
// cache disables caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	CacheKey(parts ...string) string
	CachePrefix(parts ...string) string
}

// ServiceParams groups dependencies for the listing service.
type ServiceParams struct {
	Upstream Upstream
	Cache    Cache
	Config   config.CatalogConfig
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
}

// Service exposes the catalog read paths the storefront renders from.
type Service interface {
	Listing(ctx context.Context, family catalogapi.Family, state querystate.QueryState) ListingPage
	Detail(ctx context.Context, family catalogapi.Family, slug string) (*catalogapi.Product, error)
	FilterOptions(ctx context.Context, family catalogapi.Family) (FilterOptions, error)
	PurgeFamily(ctx context.Context, family catalogapi.Family) error
}

type service struct {
	upstream Upstream
	cache    Cache
	cfg      config.CatalogConfig
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
}

// NewService builds the listing service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Upstream == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog upstream is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Config.PageSize <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page size must be positive")
	}
	cache := params.Cache
	if params.Config.CacheDisabled {
		cache = nil
	}
	return &service{
		upstream: params.Upstream,
		cache:    cache,
		cfg:      params.Config,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Listing fetches one page of a family's catalog. Upstream failures degrade
// to an empty page so the storefront always renders.
func (s *service) Listing(ctx context.Context, family catalogapi.Family, state querystate.QueryState) ListingPage {
	key := ""
	if s.cache != nil {
		key = s.cache.CacheKey("listing", string(family), state.Encode())
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var result catalogapi.ListingResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				s.metrics.IncCacheHit("listing")
				return buildPage(family, state, result, false)
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "listing cache read failed")
		}
		s.metrics.IncCacheMiss("listing")
	}

	result, err := s.upstream.List(ctx, family, catalogapi.ListParams{State: state, Limit: s.cfg.PageSize})
	if err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"error":  err.Error(),
			"family": string(family),
			"query":  state.Encode(),
		})
		s.logg.Warn(logCtx, "listing fetch failed, serving empty page")
		return buildPage(family, state, catalogapi.EmptyListing(), true)
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, encoded, s.cfg.ListingTTL); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "listing cache write failed")
			}
		}
	}
	return buildPage(family, state, result, false)
}

// Detail loads the full product record. Detail is never cached: stock and
// price must be live.
func (s *service) Detail(ctx context.Context, family catalogapi.Family, slug string) (*catalogapi.Product, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	product, err := s.upstream.GetBySlug(ctx, family, slug)
	if err != nil {
		if catalogapi.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// FilterOptions loads a family's category and brand options, fetched
// concurrently and cached with a long TTL.
func (s *service) FilterOptions(ctx context.Context, family catalogapi.Family) (FilterOptions, error) {
	key := ""
	if s.cache != nil {
		key = s.cache.CacheKey("filters", string(family))
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var opts FilterOptions
			if err := json.Unmarshal([]byte(cached), &opts); err == nil {
				s.metrics.IncCacheHit("filters")
				return opts, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "filter options cache read failed")
		}
		s.metrics.IncCacheMiss("filters")
	}

	var opts FilterOptions
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		categories, err := s.upstream.Categories(groupCtx, family)
		if err != nil {
			return err
		}
		opts.Categories = categories
		return nil
	})
	group.Go(func() error {
		brands, err := s.upstream.Brands(groupCtx, family)
		if err != nil {
			return err
		}
		opts.Brands = brands
		return nil
	})
	if err := group.Wait(); err != nil {
		return FilterOptions{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load filter options")
	}
	if opts.Categories == nil {
		opts.Categories = []string{}
	}
	if opts.Brands == nil {
		opts.Brands = []string{}
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(opts); err == nil {
			if err := s.cache.Set(ctx, key, encoded, s.cfg.FilterOptsTTL); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "filter options cache write failed")
			}
		}
	}
	return opts, nil
}

// PurgeFamily drops every cached listing and filter-option entry of one
// family. Called after admin mutations and explicit revalidation.
func (s *service) PurgeFamily(ctx context.Context, family catalogapi.Family) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeleteByPrefix(ctx, s.cache.CachePrefix("listing", string(family))); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge listing cache")
	}
	if err := s.cache.DeleteByPrefix(ctx, s.cache.CachePrefix("filters", string(family))); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge filter options cache")
	}
	return nil
}
