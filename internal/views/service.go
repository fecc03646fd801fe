package views

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/config"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
	"github.com/electrohogar/storefront-backend/pkg/metrics"
	"github.com/electrohogar/storefront-backend/pkg/redis"
)

// RecentItem is one entry of a session's recently-viewed list. It carries
// enough of the product to render a card without another fetch.
type RecentItem struct {
	catalogapi.ProductSummary
	Type     string    `json:"type"`
	ViewedAt time.Time `json:"viewed_at"`
}

// Tracker is the slice of the catalog API client used for view recording.
type Tracker interface {
	TrackView(ctx context.Context, req catalogapi.TrackViewRequest) error
}

// SessionStore is the slice of the Redis client holding per-session state.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SessionKey(sessionID string, parts ...string) string
}

// ServiceParams groups dependencies for the views service.
type ServiceParams struct {
	Tracker Tracker
	Store   SessionStore
	Config  config.ViewsConfig
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

// Service records product detail views and maintains each session's
// recently-viewed list.
type Service interface {
	RecordView(ctx context.Context, sessionID string, family catalogapi.Family, product *catalogapi.Product)
	RecentlyViewed(ctx context.Context, sessionID string) ([]RecentItem, error)
	Subscribe(sessionID string, fn func([]RecentItem)) func()
}

type service struct {
	tracker Tracker
	store   SessionStore
	cfg     config.ViewsConfig
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics

	mu          sync.Mutex
	subscribers map[string]map[int]func([]RecentItem)
	nextSubID   int
}

// NewService builds the views service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tracker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "view tracker is required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Config.RecentCap <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recent cap must be positive")
	}
	return &service{
		tracker:     params.Tracker,
		store:       params.Store,
		cfg:         params.Config,
		logg:        params.Logger,
		metrics:     params.Metrics,
		subscribers: make(map[string]map[int]func([]RecentItem)),
	}, nil
}

// RecordView sends the upstream view event without blocking the caller, then
// moves the product to the front of the session's recently-viewed list.
// Tracking failures are logged and counted, never surfaced.
func (s *service) RecordView(ctx context.Context, sessionID string, family catalogapi.Family, product *catalogapi.Product) {
	if sessionID == "" || product == nil {
		return
	}

	trackCtx := context.WithoutCancel(ctx)
	go func() {
		req := catalogapi.TrackViewRequest{
			Type:      family.ProductType(),
			ProductID: product.ID,
			SessionID: sessionID,
		}
		if err := s.tracker.TrackView(trackCtx, req); err != nil {
			s.metrics.IncViewTrackDrop()
			logCtx := s.logg.WithFields(trackCtx, map[string]any{
				"error":      err.Error(),
				"product_id": product.ID,
			})
			s.logg.Warn(logCtx, "view tracking failed")
		}
	}()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "recently viewed read failed")
		items = nil
	}

	entry := RecentItem{
		ProductSummary: product.ProductSummary,
		Type:           family.ProductType(),
		ViewedAt:       time.Now().UTC(),
	}
	next := make([]RecentItem, 0, s.cfg.RecentCap)
	next = append(next, entry)
	for _, item := range items {
		if item.ID == entry.ID && item.Type == entry.Type {
			continue
		}
		next = append(next, item)
		if len(next) == s.cfg.RecentCap {
			break
		}
	}

	if err := s.save(ctx, sessionID, next); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "recently viewed write failed")
		return
	}
	s.broadcast(sessionID, next)
}

// RecentlyViewed returns the session's list, newest first.
func (s *service) RecentlyViewed(ctx context.Context, sessionID string) ([]RecentItem, error) {
	if sessionID == "" {
		return []RecentItem{}, nil
	}
	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recently viewed")
	}
	if items == nil {
		items = []RecentItem{}
	}
	return items, nil
}

// Subscribe registers a callback for one session's list changes. The
// returned function cancels the subscription.
func (s *service) Subscribe(sessionID string, fn func([]RecentItem)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribers[sessionID] == nil {
		s.subscribers[sessionID] = make(map[int]func([]RecentItem))
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[sessionID][id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers[sessionID], id)
		if len(s.subscribers[sessionID]) == 0 {
			delete(s.subscribers, sessionID)
		}
	}
}

func (s *service) load(ctx context.Context, sessionID string) ([]RecentItem, error) {
	raw, err := s.store.Get(ctx, s.store.SessionKey(sessionID, "recent"))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var items []RecentItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *service) save(ctx context.Context, sessionID string, items []RecentItem) error {
	encoded, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.store.SessionKey(sessionID, "recent"), encoded, s.cfg.SessionTTL)
}

func (s *service) broadcast(sessionID string, items []RecentItem) {
	s.mu.Lock()
	callbacks := make([]func([]RecentItem), 0, len(s.subscribers[sessionID]))
	for _, fn := range s.subscribers[sessionID] {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(items)
	}
}
