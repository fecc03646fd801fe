package wishlist

import (
	"sync"

	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

// Registry hands out one Store per authenticated user so toggles from
// concurrent requests share the same optimistic state.
type Registry struct {
	upstream Upstream
	logg     *logger.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry builds an empty registry.
func NewRegistry(upstream Upstream, logg *logger.Logger) (*Registry, error) {
	if upstream == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist upstream is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Registry{upstream: upstream, logg: logg, stores: make(map[string]*Store)}, nil
}

// ForUser returns the user's store, creating it on first use.
func (r *Registry) ForUser(userID string) (*Store, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.stores[userID]; ok {
		return store, nil
	}
	store, err := NewStore(r.upstream, r.logg)
	if err != nil {
		return nil, err
	}
	r.stores[userID] = store
	return store, nil
}

// Drop forgets a user's store, typically on sign-out.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}
