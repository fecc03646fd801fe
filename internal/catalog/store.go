package catalog

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/querystate"
)

// Store holds the current listing page for one family and serializes
// concurrent refreshes: only the newest refresh may publish its result, so a
// slow response for an old filter state never overwrites a newer one.
type Store struct {
	svc    Service
	family catalogapi.Family

	generation atomic.Int64

	mu          sync.Mutex
	page        ListingPage
	loaded      bool
	subscribers map[int]func(ListingPage)
	nextSubID   int
}

// NewStore builds a listing store bound to one family.
func NewStore(svc Service, family catalogapi.Family) *Store {
	return &Store{
		svc:         svc,
		family:      family,
		subscribers: make(map[int]func(ListingPage)),
	}
}

// Page returns the last published page and whether one has been published.
func (s *Store) Page() (ListingPage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, s.loaded
}

// Subscribe registers a callback invoked on every published page. The
// returned function cancels the subscription.
func (s *Store) Subscribe(fn func(ListingPage)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Refresh fetches the page for the given state and publishes it unless a
// newer Refresh started in the meantime. It reports whether the result was
// published.
func (s *Store) Refresh(ctx context.Context, state querystate.QueryState) (ListingPage, bool) {
	generation := s.generation.Add(1)
	page := s.svc.Listing(ctx, s.family, state)
	return page, s.publish(generation, page)
}

func (s *Store) publish(generation int64, page ListingPage) bool {
	if generation != s.generation.Load() {
		return false
	}
	s.mu.Lock()
	if generation != s.generation.Load() {
		s.mu.Unlock()
		return false
	}
	s.page = page
	s.loaded = true
	callbacks := make([]func(ListingPage), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(page)
	}
	return true
}
