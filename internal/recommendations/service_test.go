package recommendations

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/electrohogar/storefront-backend/internal/views"
	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

type fakeFetcher struct {
	similarFn    func(ctx context.Context, params catalogapi.SimilarParams) ([]catalogapi.ProductSummary, error)
	mostViewedFn func(ctx context.Context, limit int) ([]catalogapi.ProductSummary, error)
	similarCalls int
}

func (f *fakeFetcher) Similar(ctx context.Context, params catalogapi.SimilarParams) ([]catalogapi.ProductSummary, error) {
	f.similarCalls++
	return f.similarFn(ctx, params)
}

func (f *fakeFetcher) MostViewed(ctx context.Context, limit int) ([]catalogapi.ProductSummary, error) {
	return f.mostViewedFn(ctx, limit)
}

type fakeRecents struct {
	items []views.RecentItem
	err   error
}

func (f *fakeRecents) RecentlyViewed(context.Context, string) ([]views.RecentItem, error) {
	return f.items, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: zerolog.ErrorLevel})
}

func newTestService(t *testing.T, fetcher Fetcher, recents RecentLister) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Fetcher: fetcher, Recents: recents, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func summaries(ids ...string) []catalogapi.ProductSummary {
	out := make([]catalogapi.ProductSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalogapi.ProductSummary{ID: id})
	}
	return out
}

func detail(id, category, brand string) *catalogapi.Product {
	return &catalogapi.Product{ProductSummary: catalogapi.ProductSummary{ID: id, Category: category, Brand: brand}}
}

func TestSimilarWithoutAttributesMakesNoRequest(t *testing.T) {
	fetcher := &fakeFetcher{
		similarFn: func(context.Context, catalogapi.SimilarParams) ([]catalogapi.ProductSummary, error) {
			return summaries("x"), nil
		},
	}
	svc := newTestService(t, fetcher, &fakeRecents{})

	result := svc.Similar(context.Background(), "sess-1", catalogapi.FamilyRepuestos, detail("p1", "", ""), 4)
	if len(result) != 0 {
		t.Fatalf("expected empty rail, got %+v", result)
	}
	if fetcher.similarCalls != 0 {
		t.Fatalf("expected no upstream call, got %d", fetcher.similarCalls)
	}
}

func TestSimilarExcludesCurrentAndRecent(t *testing.T) {
	fetcher := &fakeFetcher{
		similarFn: func(_ context.Context, params catalogapi.SimilarParams) ([]catalogapi.ProductSummary, error) {
			if params.Category != "lavadoras" {
				t.Fatalf("expected category forwarded, got %q", params.Category)
			}
			if params.ProductID != "p1" || params.ProductType != "electrodomestico" {
				t.Fatalf("expected product identity forwarded, got %+v", params)
			}
			return summaries("p1", "p2", "p3", "p4", "p5"), nil
		},
	}
	recents := &fakeRecents{items: []views.RecentItem{
		{ProductSummary: catalogapi.ProductSummary{ID: "p2"}},
		{ProductSummary: catalogapi.ProductSummary{ID: "p3"}},
	}}
	svc := newTestService(t, fetcher, recents)

	result := svc.Similar(context.Background(), "sess-1", catalogapi.FamilyElectrodomesticos, detail("p1", "lavadoras", ""), 2)
	if len(result) != 2 {
		t.Fatalf("expected 2 items, got %+v", result)
	}
	if result[0].ID != "p4" || result[1].ID != "p5" {
		t.Fatalf("expected exclusions applied, got %+v", result)
	}
}

func TestSimilarFailureDegradesToEmpty(t *testing.T) {
	fetcher := &fakeFetcher{
		similarFn: func(context.Context, catalogapi.SimilarParams) ([]catalogapi.ProductSummary, error) {
			return nil, errors.New("upstream down")
		},
	}
	svc := newTestService(t, fetcher, &fakeRecents{})

	result := svc.Similar(context.Background(), "sess-1", catalogapi.FamilyRepuestos, detail("p1", "filtros", ""), 4)
	if len(result) != 0 {
		t.Fatalf("expected empty rail, got %+v", result)
	}
}

func TestSimilarRecentLookupFailureStillServes(t *testing.T) {
	fetcher := &fakeFetcher{
		similarFn: func(context.Context, catalogapi.SimilarParams) ([]catalogapi.ProductSummary, error) {
			return summaries("p2", "p3"), nil
		},
	}
	svc := newTestService(t, fetcher, &fakeRecents{err: errors.New("redis down")})

	result := svc.Similar(context.Background(), "sess-1", catalogapi.FamilyRepuestos, detail("p1", "", "Bosch"), 4)
	if len(result) != 2 {
		t.Fatalf("expected rail despite recents failure, got %+v", result)
	}
}

func TestMostViewedRequiresAtLeastTwo(t *testing.T) {
	fetcher := &fakeFetcher{
		mostViewedFn: func(context.Context, int) ([]catalogapi.ProductSummary, error) {
			return summaries("p1"), nil
		},
	}
	svc := newTestService(t, fetcher, &fakeRecents{})

	if got := svc.MostViewed(context.Background(), 6); len(got) != 0 {
		t.Fatalf("expected empty rail for a single item, got %+v", got)
	}

	fetcher.mostViewedFn = func(context.Context, int) ([]catalogapi.ProductSummary, error) {
		return summaries("p1", "p2"), nil
	}
	if got := svc.MostViewed(context.Background(), 6); len(got) != 2 {
		t.Fatalf("expected rail with 2 items, got %+v", got)
	}
}

func TestMostViewedFailureDegradesToEmpty(t *testing.T) {
	fetcher := &fakeFetcher{
		mostViewedFn: func(context.Context, int) ([]catalogapi.ProductSummary, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := newTestService(t, fetcher, &fakeRecents{})

	if got := svc.MostViewed(context.Background(), 6); len(got) != 0 {
		t.Fatalf("expected empty rail, got %+v", got)
	}
}
