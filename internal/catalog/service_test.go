package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/config"
	"github.com/electrohogar/storefront-backend/pkg/logger"
	"github.com/electrohogar/storefront-backend/pkg/querystate"
	"github.com/electrohogar/storefront-backend/pkg/redis"
)

type fakeUpstream struct {
	listFn       func(ctx context.Context, family catalogapi.Family, params catalogapi.ListParams) (catalogapi.ListingResult, error)
	getBySlugFn  func(ctx context.Context, family catalogapi.Family, slug string) (*catalogapi.Product, error)
	categoriesFn func(ctx context.Context, family catalogapi.Family) ([]string, error)
	brandsFn     func(ctx context.Context, family catalogapi.Family) ([]string, error)
}

func (f *fakeUpstream) List(ctx context.Context, family catalogapi.Family, params catalogapi.ListParams) (catalogapi.ListingResult, error) {
	return f.listFn(ctx, family, params)
}

func (f *fakeUpstream) GetBySlug(ctx context.Context, family catalogapi.Family, slug string) (*catalogapi.Product, error) {
	return f.getBySlugFn(ctx, family, slug)
}

func (f *fakeUpstream) Categories(ctx context.Context, family catalogapi.Family) ([]string, error) {
	return f.categoriesFn(ctx, family)
}

func (f *fakeUpstream) Brands(ctx context.Context, family catalogapi.Family) ([]string, error) {
	return f.brandsFn(ctx, family)
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.entries[key] = string(v)
	case string:
		f.entries[key] = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		f.entries[key] = string(encoded)
	}
	return nil
}

func (f *fakeCache) DeleteByPrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, prefix)
	for key := range f.entries {
		if key == prefix || strings.HasPrefix(key, prefix+":") {
			delete(f.entries, key)
		}
	}
	return nil
}

// CacheKey mirrors the real client's builder: empty parts are skipped, so a
// key with an empty trailing part lands at the bare prefix.
func (f *fakeCache) CacheKey(parts ...string) string {
	key := "cache"
	for _, part := range parts {
		if part == "" {
			continue
		}
		key += ":" + part
	}
	return key
}

func (f *fakeCache) CachePrefix(parts ...string) string {
	return f.CacheKey(parts...)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: zerolog.ErrorLevel})
}

func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{PageSize: 8, ListingTTL: 30 * time.Minute, FilterOptsTTL: 24 * time.Hour}
}

func newTestService(t *testing.T, upstream Upstream, cache Cache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Upstream: upstream,
		Cache:    cache,
		Config:   testCatalogConfig(),
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestListingPassesPageSizeAndBuildsWindow(t *testing.T) {
	var gotParams catalogapi.ListParams
	upstream := &fakeUpstream{
		listFn: func(_ context.Context, _ catalogapi.Family, params catalogapi.ListParams) (catalogapi.ListingResult, error) {
			gotParams = params
			return catalogapi.ListingResult{
				Data:        []catalogapi.ProductSummary{{ID: "p1"}},
				TotalItems:  33,
				TotalPages:  5,
				CurrentPage: 3,
			}, nil
		},
	}
	svc := newTestService(t, upstream, nil)

	state := querystate.QueryState{Page: 3, Category: "lavadoras"}
	page := svc.Listing(context.Background(), catalogapi.FamilyElectrodomesticos, state)

	if gotParams.Limit != 8 {
		t.Fatalf("expected limit 8, got %d", gotParams.Limit)
	}
	if page.CurrentPage != 3 || page.TotalPages != 5 {
		t.Fatalf("unexpected page counts: %+v", page)
	}
	if len(page.Window.Pages) != 5 || page.Window.Pages[0] != 1 {
		t.Fatalf("unexpected window: %+v", page.Window)
	}
	if page.EmptyKind != EmptyNone {
		t.Fatalf("expected no empty kind, got %q", page.EmptyKind)
	}
}

func TestListingFailureDegradesToEmptyPage(t *testing.T) {
	upstream := &fakeUpstream{
		listFn: func(context.Context, catalogapi.Family, catalogapi.ListParams) (catalogapi.ListingResult, error) {
			return catalogapi.ListingResult{}, errors.New("connection refused")
		},
	}
	svc := newTestService(t, upstream, nil)

	page := svc.Listing(context.Background(), catalogapi.FamilyRepuestos, querystate.QueryState{Page: 1})

	if !page.Degraded {
		t.Fatal("expected degraded page")
	}
	if page.Data == nil || len(page.Data) != 0 {
		t.Fatalf("expected empty data slice, got %v", page.Data)
	}
	if page.TotalItems != 0 || page.TotalPages != 0 || page.CurrentPage != 1 {
		t.Fatalf("unexpected counts: %+v", page)
	}
	if page.EmptyKind != EmptyCatalog {
		t.Fatalf("expected catalog empty kind, got %q", page.EmptyKind)
	}
}

func TestListingEmptyKindDependsOnFilters(t *testing.T) {
	upstream := &fakeUpstream{
		listFn: func(context.Context, catalogapi.Family, catalogapi.ListParams) (catalogapi.ListingResult, error) {
			return catalogapi.ListingResult{Data: []catalogapi.ProductSummary{}, CurrentPage: 1}, nil
		},
	}
	svc := newTestService(t, upstream, nil)

	filtered := svc.Listing(context.Background(), catalogapi.FamilyRepuestos, querystate.QueryState{Brand: "Bosch", Page: 1})
	if filtered.EmptyKind != EmptyFiltered {
		t.Fatalf("expected filtered empty kind, got %q", filtered.EmptyKind)
	}

	unfiltered := svc.Listing(context.Background(), catalogapi.FamilyRepuestos, querystate.QueryState{Page: 1})
	if unfiltered.EmptyKind != EmptyCatalog {
		t.Fatalf("expected catalog empty kind, got %q", unfiltered.EmptyKind)
	}
}

func TestListingUsesCacheOnSecondCall(t *testing.T) {
	calls := 0
	upstream := &fakeUpstream{
		listFn: func(context.Context, catalogapi.Family, catalogapi.ListParams) (catalogapi.ListingResult, error) {
			calls++
			return catalogapi.ListingResult{
				Data:        []catalogapi.ProductSummary{{ID: "p1"}},
				TotalItems:  1,
				TotalPages:  1,
				CurrentPage: 1,
			}, nil
		},
	}
	cache := newFakeCache()
	svc := newTestService(t, upstream, cache)

	state := querystate.QueryState{Page: 1}
	first := svc.Listing(context.Background(), catalogapi.FamilyElectrodomesticos, state)
	second := svc.Listing(context.Background(), catalogapi.FamilyElectrodomesticos, state)

	if calls != 1 {
		t.Fatalf("expected single upstream call, got %d", calls)
	}
	if len(first.Data) != 1 || len(second.Data) != 1 {
		t.Fatalf("unexpected pages: %+v %+v", first, second)
	}
}

func TestListingClampsOutOfRangeCurrentPage(t *testing.T) {
	upstream := &fakeUpstream{
		listFn: func(context.Context, catalogapi.Family, catalogapi.ListParams) (catalogapi.ListingResult, error) {
			return catalogapi.ListingResult{
				Data:        []catalogapi.ProductSummary{{ID: "p1"}},
				TotalItems:  9,
				TotalPages:  2,
				CurrentPage: 7,
			}, nil
		},
	}
	svc := newTestService(t, upstream, nil)

	page := svc.Listing(context.Background(), catalogapi.FamilyElectrodomesticos, querystate.QueryState{Page: 7})
	if page.CurrentPage != 2 {
		t.Fatalf("expected clamp to 2, got %d", page.CurrentPage)
	}
}

func TestDetailMapsNotFound(t *testing.T) {
	upstream := &fakeUpstream{
		getBySlugFn: func(context.Context, catalogapi.Family, string) (*catalogapi.Product, error) {
			return nil, catalogapi.ErrNotFound
		},
	}
	svc := newTestService(t, upstream, nil)

	_, err := svc.Detail(context.Background(), catalogapi.FamilyRepuestos, "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !catalogapi.IsNotFound(err) {
		t.Fatalf("expected wrapped not-found, got %v", err)
	}
}

func TestFilterOptionsFetchesBothAndCaches(t *testing.T) {
	upstream := &fakeUpstream{
		categoriesFn: func(context.Context, catalogapi.Family) ([]string, error) {
			return []string{"lavadoras", "refrigeradores"}, nil
		},
		brandsFn: func(context.Context, catalogapi.Family) ([]string, error) {
			return []string{"LG", "Samsung"}, nil
		},
	}
	cache := newFakeCache()
	svc := newTestService(t, upstream, cache)

	opts, err := svc.FilterOptions(context.Background(), catalogapi.FamilyElectrodomesticos)
	if err != nil {
		t.Fatalf("FilterOptions returned error: %v", err)
	}
	if len(opts.Categories) != 2 || len(opts.Brands) != 2 {
		t.Fatalf("unexpected options: %+v", opts)
	}

	upstream.categoriesFn = func(context.Context, catalogapi.Family) ([]string, error) {
		t.Fatal("expected cached read")
		return nil, nil
	}
	cached, err := svc.FilterOptions(context.Background(), catalogapi.FamilyElectrodomesticos)
	if err != nil {
		t.Fatalf("cached FilterOptions returned error: %v", err)
	}
	if len(cached.Categories) != 2 {
		t.Fatalf("unexpected cached options: %+v", cached)
	}
}

func TestFilterOptionsFailureSurfaces(t *testing.T) {
	upstream := &fakeUpstream{
		categoriesFn: func(context.Context, catalogapi.Family) ([]string, error) {
			return nil, errors.New("boom")
		},
		brandsFn: func(context.Context, catalogapi.Family) ([]string, error) {
			return []string{"LG"}, nil
		},
	}
	svc := newTestService(t, upstream, nil)

	if _, err := svc.FilterOptions(context.Background(), catalogapi.FamilyElectrodomesticos); err == nil {
		t.Fatal("expected error when one option fetch fails")
	}
}

func TestPurgeFamilyDropsBothPrefixes(t *testing.T) {
	upstream := &fakeUpstream{}
	cache := newFakeCache()
	svc := newTestService(t, upstream, cache)

	if err := svc.PurgeFamily(context.Background(), catalogapi.FamilyRepuestos); err != nil {
		t.Fatalf("PurgeFamily returned error: %v", err)
	}
	if len(cache.deleted) != 2 {
		t.Fatalf("expected 2 prefix purges, got %v", cache.deleted)
	}
}

// The unfiltered page-1 listing key has an empty encoded state and the
// filter-option key has no trailing parts, so both sit at exactly the prefix
// the purge passes to the cache. They must not survive an admin mutation.
func TestPurgeFamilyDropsBarePrefixEntries(t *testing.T) {
	upstream := &fakeUpstream{}
	cache := newFakeCache()
	svc := newTestService(t, upstream, cache)
	ctx := context.Background()

	family := string(catalogapi.FamilyElectrodomesticos)
	unfiltered := cache.CacheKey("listing", family, querystate.QueryState{}.Encode())
	filtered := cache.CacheKey("listing", family, "category=lavadoras")
	filters := cache.CacheKey("filters", family)
	for _, key := range []string{unfiltered, filtered, filters} {
		if err := cache.Set(ctx, key, "{}", time.Minute); err != nil {
			t.Fatalf("seeding cache: %v", err)
		}
	}

	if err := svc.PurgeFamily(ctx, catalogapi.FamilyElectrodomesticos); err != nil {
		t.Fatalf("PurgeFamily returned error: %v", err)
	}

	for _, key := range []string{unfiltered, filtered, filters} {
		if _, err := cache.Get(ctx, key); err == nil {
			t.Fatalf("expected key %q to be purged", key)
		}
	}
}
