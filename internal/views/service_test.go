package views

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/config"
	"github.com/electrohogar/storefront-backend/pkg/logger"
	"github.com/electrohogar/storefront-backend/pkg/redis"
)

type fakeTracker struct {
	mu      sync.Mutex
	fail    bool
	tracked []catalogapi.TrackViewRequest
	done    chan struct{}
}

func newFakeTracker(fail bool) *fakeTracker {
	return &fakeTracker{fail: fail, done: make(chan struct{}, 16)}
}

func (f *fakeTracker) TrackView(_ context.Context, req catalogapi.TrackViewRequest) error {
	f.mu.Lock()
	f.tracked = append(f.tracked, req)
	f.mu.Unlock()
	f.done <- struct{}{}
	if f.fail {
		return errors.New("track endpoint down")
	}
	return nil
}

func (f *fakeTracker) waitForTrack(t *testing.T) catalogapi.TrackViewRequest {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for track call")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tracked[len(f.tracked)-1]
}

type fakeSessionStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{entries: make(map[string]string)}
}

func (f *fakeSessionStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeSessionStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
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

func (f *fakeSessionStore) SessionKey(sessionID string, parts ...string) string {
	key := "session:" + sessionID
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

func testViewsConfig() config.ViewsConfig {
	return config.ViewsConfig{RecentCap: 5, SessionTTL: 12 * time.Hour}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: zerolog.ErrorLevel})
}

func newTestService(t *testing.T, tracker Tracker, store SessionStore) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Tracker: tracker,
		Store:   store,
		Config:  testViewsConfig(),
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func product(id string) *catalogapi.Product {
	return &catalogapi.Product{ProductSummary: catalogapi.ProductSummary{ID: id, Slug: "slug-" + id, Name: "Producto " + id}}
}

func TestRecordViewTracksUpstreamAndStoresRecent(t *testing.T) {
	tracker := newFakeTracker(false)
	store := newFakeSessionStore()
	svc := newTestService(t, tracker, store)

	svc.RecordView(context.Background(), "sess-1", catalogapi.FamilyElectrodomesticos, product("p1"))

	req := tracker.waitForTrack(t)
	if req.ProductID != "p1" || req.Type != "electrodomestico" || req.SessionID != "sess-1" {
		t.Fatalf("unexpected track request %+v", req)
	}

	items, err := svc.RecentlyViewed(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("RecentlyViewed returned error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Fatalf("unexpected recent list %+v", items)
	}
}

func TestRecordViewMovesDuplicateToFront(t *testing.T) {
	tracker := newFakeTracker(false)
	store := newFakeSessionStore()
	svc := newTestService(t, tracker, store)
	ctx := context.Background()

	svc.RecordView(ctx, "sess-1", catalogapi.FamilyRepuestos, product("p1"))
	svc.RecordView(ctx, "sess-1", catalogapi.FamilyRepuestos, product("p2"))
	svc.RecordView(ctx, "sess-1", catalogapi.FamilyRepuestos, product("p1"))

	items, err := svc.RecentlyViewed(ctx, "sess-1")
	if err != nil {
		t.Fatalf("RecentlyViewed returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected dedup to 2 items, got %d", len(items))
	}
	if items[0].ID != "p1" || items[1].ID != "p2" {
		t.Fatalf("expected p1 moved to front, got %+v", items)
	}
}

func TestRecordViewCapsListAtFive(t *testing.T) {
	tracker := newFakeTracker(false)
	store := newFakeSessionStore()
	svc := newTestService(t, tracker, store)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3", "p4", "p5", "p6"} {
		svc.RecordView(ctx, "sess-1", catalogapi.FamilyElectrodomesticos, product(id))
	}

	items, err := svc.RecentlyViewed(ctx, "sess-1")
	if err != nil {
		t.Fatalf("RecentlyViewed returned error: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected cap of 5, got %d", len(items))
	}
	if items[0].ID != "p6" {
		t.Fatalf("expected newest first, got %+v", items)
	}
	for _, item := range items {
		if item.ID == "p1" {
			t.Fatal("oldest item should have been evicted")
		}
	}
}

func TestTrackingFailureDoesNotBlockRecentList(t *testing.T) {
	tracker := newFakeTracker(true)
	store := newFakeSessionStore()
	svc := newTestService(t, tracker, store)

	svc.RecordView(context.Background(), "sess-1", catalogapi.FamilyRepuestos, product("p1"))
	tracker.waitForTrack(t)

	items, err := svc.RecentlyViewed(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("RecentlyViewed returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected recent list despite tracking failure, got %+v", items)
	}
}

func TestSubscribeReceivesBroadcast(t *testing.T) {
	tracker := newFakeTracker(false)
	store := newFakeSessionStore()
	svc := newTestService(t, tracker, store)

	var got [][]RecentItem
	cancel := svc.Subscribe("sess-1", func(items []RecentItem) {
		got = append(got, items)
	})
	defer cancel()

	svc.RecordView(context.Background(), "sess-1", catalogapi.FamilyElectrodomesticos, product("p1"))
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("expected one broadcast with one item, got %+v", got)
	}

	// Other sessions never leak into this subscription.
	svc.RecordView(context.Background(), "sess-2", catalogapi.FamilyElectrodomesticos, product("p2"))
	if len(got) != 1 {
		t.Fatalf("expected no cross-session broadcast, got %d", len(got))
	}
}

func TestRecentlyViewedEmptySession(t *testing.T) {
	svc := newTestService(t, newFakeTracker(false), newFakeSessionStore())

	items, err := svc.RecentlyViewed(context.Background(), "")
	if err != nil {
		t.Fatalf("RecentlyViewed returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %+v", items)
	}
}
