package search

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/config"
	"github.com/electrohogar/storefront-backend/pkg/debounce"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

// State is the predictive search dropdown's visible state.
type State string

const (
	StateIdle               State = "idle"
	StateDebouncing         State = "debouncing"
	StateLoading            State = "loading"
	StateShowingSuggestions State = "showing_suggestions"
	StateShowingCorrection  State = "showing_correction"
	StateShowingEmpty       State = "showing_empty"
)

// Snapshot is an immutable view of the session for rendering. At most one of
// Suggestions and Correction is populated.
type Snapshot struct {
	State       State                   `json:"state"`
	Query       string                  `json:"query"`
	Suggestions []catalogapi.Suggestion `json:"suggestions,omitempty"`
	Correction  string                  `json:"correction,omitempty"`
}

// Suggester is the slice of the catalog API client the session queries.
type Suggester interface {
	Suggestions(ctx context.Context, query string, limit int) ([]catalogapi.Suggestion, error)
	Spellcheck(ctx context.Context, query string) (string, error)
}

// SessionParams groups dependencies for a predictive search session.
type SessionParams struct {
	Suggester Suggester
	Config    config.SearchConfig
	Logger    *logger.Logger
}

// Session drives one search box: it debounces keystrokes, fetches
// suggestions, falls back to spellcheck on empty results, and guards against
// stale responses with a per-input generation counter.
type Session struct {
	suggester Suggester
	cfg       config.SearchConfig
	logg      *logger.Logger
	debouncer *debounce.Debouncer

	generation atomic.Int64

	mu          sync.Mutex
	snapshot    Snapshot
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// NewSession builds a session with the required dependencies.
func NewSession(params SessionParams) (*Session, error) {
	if params.Suggester == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "suggester is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Config.DebounceInterval <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debounce interval must be positive")
	}
	if params.Config.MinQueryLength <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min query length must be positive")
	}
	return &Session{
		suggester:   params.Suggester,
		cfg:         params.Config,
		logg:        params.Logger,
		debouncer:   debounce.New(params.Config.DebounceInterval),
		snapshot:    Snapshot{State: StateIdle},
		subscribers: make(map[int]func(Snapshot)),
	}, nil
}

// Snapshot returns the current view state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Subscribe registers a callback invoked on every state change. The returned
// function cancels the subscription.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
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

// Input feeds the latest search box contents into the session. Queries
// shorter than the minimum close the dropdown without issuing a request.
func (s *Session) Input(ctx context.Context, text string) {
	query := strings.TrimSpace(text)
	generation := s.generation.Add(1)

	if utf8.RuneCountInString(query) < s.cfg.MinQueryLength {
		s.debouncer.Stop()
		s.publish(generation, Snapshot{State: StateIdle, Query: query})
		return
	}

	s.publish(generation, Snapshot{State: StateDebouncing, Query: query})
	s.debouncer.Trigger(func() {
		s.fetch(ctx, generation, query)
	})
}

// Submit resolves an explicit enter press: the dropdown closes and the caller
// navigates to the full-search results. Any non-empty query submits; the
// minimum length only gates the suggestion dropdown.
func (s *Session) Submit() (string, bool) {
	s.debouncer.Stop()
	generation := s.generation.Add(1)

	s.mu.Lock()
	query := s.snapshot.Query
	s.mu.Unlock()

	s.publish(generation, Snapshot{State: StateIdle, Query: query})
	if query == "" {
		return "", false
	}
	return query, true
}

// Close cancels any pending work and resets the session.
func (s *Session) Close() {
	s.debouncer.Stop()
	generation := s.generation.Add(1)
	s.publish(generation, Snapshot{State: StateIdle})
}

func (s *Session) fetch(ctx context.Context, generation int64, query string) {
	if !s.publish(generation, Snapshot{State: StateLoading, Query: query}) {
		return
	}
	s.publish(generation, resolveQuery(ctx, s.suggester, s.cfg, s.logg, query))
}

// resolveQuery runs one suggestions lookup to its terminal snapshot:
// suggestions when any exist, a spellcheck correction when none do and the
// correction differs from the query, otherwise the empty state. Failures
// degrade to the empty state.
func resolveQuery(ctx context.Context, suggester Suggester, cfg config.SearchConfig, logg *logger.Logger, query string) Snapshot {
	limit := cfg.SuggestionLimit
	suggestions, err := suggester.Suggestions(ctx, query, limit)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "suggestions fetch failed")
		return Snapshot{State: StateShowingEmpty, Query: query}
	}

	if len(suggestions) > 0 {
		if limit > 0 && len(suggestions) > limit {
			suggestions = suggestions[:limit]
		}
		return Snapshot{State: StateShowingSuggestions, Query: query, Suggestions: suggestions}
	}

	correction, err := suggester.Spellcheck(ctx, query)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "spellcheck fetch failed")
		return Snapshot{State: StateShowingEmpty, Query: query}
	}
	if correction != "" && !strings.EqualFold(correction, query) {
		return Snapshot{State: StateShowingCorrection, Query: query, Correction: correction}
	}
	return Snapshot{State: StateShowingEmpty, Query: query}
}

// publish applies the snapshot unless a newer input superseded it. It
// reports whether the snapshot was applied.
func (s *Session) publish(generation int64, snapshot Snapshot) bool {
	if generation != s.generation.Load() {
		return false
	}
	s.mu.Lock()
	if generation != s.generation.Load() {
		s.mu.Unlock()
		return false
	}
	s.snapshot = snapshot
	callbacks := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(snapshot)
	}
	return true
}
