package wishlist

import (
	"context"
	"sync"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

// Item is one wishlist row as the storefront renders it. Pending marks an
// optimistic placeholder whose upstream write has not confirmed yet.
type Item struct {
	EntryID     string                     `json:"entry_id,omitempty"`
	ProductID   string                     `json:"product_id"`
	ProductType string                     `json:"product_type"`
	Product     *catalogapi.ProductSummary `json:"product,omitempty"`
	Pending     bool                       `json:"pending,omitempty"`
}

// Upstream is the slice of the catalog API client the store synchronizes
// with.
type Upstream interface {
	WishlistList(ctx context.Context, bearer string) ([]catalogapi.WishlistEntry, error)
	WishlistAdd(ctx context.Context, bearer string, req catalogapi.WishlistAddRequest) (*catalogapi.WishlistEntry, error)
	WishlistRemove(ctx context.Context, bearer, entryID, productType string) error
}

// Store holds one user's wishlist with optimistic toggles: the local list
// changes immediately and rolls back only when the upstream write fails in a
// way that contradicts it.
type Store struct {
	upstream Upstream
	logg     *logger.Logger

	mu          sync.Mutex
	items       []Item
	loading     bool
	loaded      bool
	inflight    map[string]struct{}
	subscribers map[int]func([]Item)
	nextSubID   int
}

// NewStore builds an empty store for one user.
func NewStore(upstream Upstream, logg *logger.Logger) (*Store, error) {
	if upstream == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist upstream is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Store{
		upstream:    upstream,
		logg:        logg,
		inflight:    make(map[string]struct{}),
		subscribers: make(map[int]func([]Item)),
	}, nil
}

// Items returns a snapshot of the current list.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Loading reports whether an initial load is in progress.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Loaded reports whether the upstream list has been fetched at least once.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Contains reports whether the product is on the list, placeholders
// included.
func (s *Store) Contains(productID, productType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID, productType) >= 0
}

// Subscribe registers a callback invoked on every list change. The returned
// function cancels the subscription.
func (s *Store) Subscribe(fn func([]Item)) func() {
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

// Load replaces the local list with the upstream one.
func (s *Store) Load(ctx context.Context, bearer string) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	entries, err := s.upstream.WishlistList(ctx, bearer)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if entry.ProductID() == "" {
			continue
		}
		items = append(items, itemFromEntry(entry))
	}
	s.items = items
	s.loaded = true
	notify := s.notifyLocked()
	s.mu.Unlock()

	notify()
	return nil
}

// Toggle flips the product's membership. A toggle while a previous toggle on
// the same product is still pending is rejected.
func (s *Store) Toggle(ctx context.Context, bearer, productID, productType string) error {
	if productID == "" || productType == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and type are required")
	}

	key := productType + ":" + productID
	s.mu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, "a toggle for this product is already in progress")
	}
	s.inflight[key] = struct{}{}
	present := s.indexOf(productID, productType) >= 0
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}()

	if present {
		return s.remove(ctx, bearer, productID, productType)
	}
	return s.add(ctx, bearer, productID, productType)
}

func (s *Store) add(ctx context.Context, bearer, productID, productType string) error {
	placeholder := Item{ProductID: productID, ProductType: productType, Pending: true}
	s.mu.Lock()
	s.items = append(s.items, placeholder)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()

	entry, err := s.upstream.WishlistAdd(ctx, bearer, catalogapi.WishlistAddRequest{
		ProductID:   productID,
		ProductType: productType,
	})

	s.mu.Lock()
	idx := s.indexOf(productID, productType)
	var result error
	switch {
	case err == nil:
		if idx >= 0 && entry != nil {
			s.items[idx] = itemFromEntry(*entry)
		}
	case catalogapi.IsConflict(err):
		// Already on the upstream list; the placeholder was right after all.
		if idx >= 0 {
			s.items[idx].Pending = false
		}
	default:
		if idx >= 0 {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
		}
		result = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	notify = s.notifyLocked()
	s.mu.Unlock()
	notify()
	return result
}

func (s *Store) remove(ctx context.Context, bearer, productID, productType string) error {
	s.mu.Lock()
	idx := s.indexOf(productID, productType)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()

	entryID := removed.EntryID
	if entryID == "" {
		// The item settled through a conflict and never learned its server
		// id. Re-list to resolve it before deleting.
		entries, err := s.upstream.WishlistList(ctx, bearer)
		if err != nil {
			s.mu.Lock()
			s.items = append(s.items, removed)
			notify = s.notifyLocked()
			s.mu.Unlock()
			notify()
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve wishlist entry")
		}
		for _, entry := range entries {
			if entry.ProductID() == productID && entry.ProductType() == productType {
				entryID = entry.ID
				break
			}
		}
		if entryID == "" {
			// Already gone upstream; the local removal stands.
			return nil
		}
	}

	err := s.upstream.WishlistRemove(ctx, bearer, entryID, productType)
	if err == nil || catalogapi.IsNotFound(err) {
		return nil
	}

	s.mu.Lock()
	s.items = append(s.items, removed)
	notify = s.notifyLocked()
	s.mu.Unlock()
	notify()
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
}

func (s *Store) indexOf(productID, productType string) int {
	for i, item := range s.items {
		if item.ProductID == productID && item.ProductType == productType {
			return i
		}
	}
	return -1
}

// notifyLocked snapshots the list and returns a closure that invokes the
// subscribers; callers run it after releasing the lock.
func (s *Store) notifyLocked() func() {
	snapshot := append([]Item(nil), s.items...)
	callbacks := make([]func([]Item), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		callbacks = append(callbacks, fn)
	}
	return func() {
		for _, fn := range callbacks {
			fn(snapshot)
		}
	}
}

func itemFromEntry(entry catalogapi.WishlistEntry) Item {
	item := Item{
		EntryID:     entry.ID,
		ProductID:   entry.ProductID(),
		ProductType: entry.ProductType(),
	}
	if entry.Electrodomestico != nil {
		item.Product = entry.Electrodomestico
	} else if entry.Repuesto != nil {
		item.Product = entry.Repuesto
	}
	return item
}
