package search

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/electrohogar/storefront-backend/pkg/catalogapi"
	"github.com/electrohogar/storefront-backend/pkg/config"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

type fakeSuggester struct {
	mu            sync.Mutex
	suggestionsFn func(ctx context.Context, query string, limit int) ([]catalogapi.Suggestion, error)
	spellcheckFn  func(ctx context.Context, query string) (string, error)
	queries       []string
}

func (f *fakeSuggester) Suggestions(ctx context.Context, query string, limit int) ([]catalogapi.Suggestion, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.suggestionsFn == nil {
		return nil, nil
	}
	return f.suggestionsFn(ctx, query, limit)
}

func (f *fakeSuggester) Spellcheck(ctx context.Context, query string) (string, error) {
	if f.spellcheckFn == nil {
		return "", nil
	}
	return f.spellcheckFn(ctx, query)
}

func (f *fakeSuggester) seenQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		DebounceInterval: 5 * time.Millisecond,
		MinQueryLength:   3,
		SuggestionLimit:  5,
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: zerolog.ErrorLevel})
}

func newTestSession(t *testing.T, suggester Suggester, cfg config.SearchConfig) *Session {
	t.Helper()
	session, err := NewSession(SessionParams{Suggester: suggester, Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	return session
}

func waitForState(t *testing.T, session *Session, want State) Snapshot {
	t.Helper()
	deadline := time.After(500 * time.Millisecond)
	for {
		snapshot := session.Snapshot()
		if snapshot.State == want {
			return snapshot
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for state %s, last %s", want, snapshot.State)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestShortInputNeverRequests(t *testing.T) {
	suggester := &fakeSuggester{}
	session := newTestSession(t, suggester, testSearchConfig())
	defer session.Close()

	session.Input(context.Background(), "re")
	time.Sleep(20 * time.Millisecond)

	if got := session.Snapshot().State; got != StateIdle {
		t.Fatalf("expected idle, got %s", got)
	}
	if queries := suggester.seenQueries(); len(queries) != 0 {
		t.Fatalf("expected no requests, got %v", queries)
	}
}

func TestDebouncedInputCollapsesToLastQuery(t *testing.T) {
	suggester := &fakeSuggester{
		suggestionsFn: func(_ context.Context, query string, _ int) ([]catalogapi.Suggestion, error) {
			return []catalogapi.Suggestion{{ID: "s1", Name: query}}, nil
		},
	}
	session := newTestSession(t, suggester, testSearchConfig())
	defer session.Close()

	ctx := context.Background()
	session.Input(ctx, "ref")
	session.Input(ctx, "refr")
	session.Input(ctx, "refri")

	snapshot := waitForState(t, session, StateShowingSuggestions)
	if snapshot.Query != "refri" {
		t.Fatalf("expected last query, got %q", snapshot.Query)
	}
	if queries := suggester.seenQueries(); len(queries) != 1 || queries[0] != "refri" {
		t.Fatalf("expected single collapsed request, got %v", queries)
	}
}

func TestSuggestionsTruncatedToLimit(t *testing.T) {
	suggester := &fakeSuggester{
		suggestionsFn: func(context.Context, string, int) ([]catalogapi.Suggestion, error) {
			rows := make([]catalogapi.Suggestion, 8)
			for i := range rows {
				rows[i] = catalogapi.Suggestion{ID: string(rune('a' + i))}
			}
			return rows, nil
		},
	}
	session := newTestSession(t, suggester, testSearchConfig())
	defer session.Close()

	session.Input(context.Background(), "lavadora")
	snapshot := waitForState(t, session, StateShowingSuggestions)
	if len(snapshot.Suggestions) != 5 {
		t.Fatalf("expected 5 suggestions, got %d", len(snapshot.Suggestions))
	}
}

func TestEmptySuggestionsFallsBackToSpellcheck(t *testing.T) {
	suggester := &fakeSuggester{
		suggestionsFn: func(context.Context, string, int) ([]catalogapi.Suggestion, error) {
			return nil, nil
		},
		spellcheckFn: func(_ context.Context, query string) (string, error) {
			return "refrigerador", nil
		},
	}
	session := newTestSession(t, suggester, testSearchConfig())
	defer session.Close()

	session.Input(context.Background(), "refrijerador")
	snapshot := waitForState(t, session, StateShowingCorrection)
	if snapshot.Correction != "refrigerador" {
		t.Fatalf("unexpected correction %q", snapshot.Correction)
	}
	if len(snapshot.Suggestions) != 0 {
		t.Fatal("correction and suggestions must be mutually exclusive")
	}
}

func TestCorrectionEqualToQueryShowsEmpty(t *testing.T) {
	suggester := &fakeSuggester{
		suggestionsFn: func(context.Context, string, int) ([]catalogapi.Suggestion, error) {
			return nil, nil
		},
		spellcheckFn: func(_ context.Context, query string) (string, error) {
			return "Lavadora", nil
		},
	}
	session := newTestSession(t, suggester, testSearchConfig())
	defer session.Close()

	session.Input(context.Background(), "lavadora")
	snapshot := waitForState(t, session, StateShowingEmpty)
	if snapshot.Correction != "" {
		t.Fatalf("case-insensitive match must not surface a correction, got %q", snapshot.Correction)
	}
}

func TestFetchFailureDegradesToEmpty(t *testing.T) {
	suggester := &fakeSuggester{
		suggestionsFn: func(context.Context, string, int) ([]catalogapi.Suggestion, error) {
			return nil, errors.New("upstream down")
		},
	}
	session := newTestSession(t, suggester, testSearchConfig())
	defer session.Close()

	session.Input(context.Background(), "licuadora")
	waitForState(t, session, StateShowingEmpty)
}

func TestStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)
	suggester := &fakeSuggester{
		suggestionsFn: func(_ context.Context, query string, _ int) ([]catalogapi.Suggestion, error) {
			started <- query
			if query == "vieja" {
				<-release
			}
			return []catalogapi.Suggestion{{ID: query, Name: query}}, nil
		},
	}
	cfg := testSearchConfig()
	cfg.DebounceInterval = time.Millisecond
	session := newTestSession(t, suggester, cfg)
	defer session.Close()

	ctx := context.Background()
	session.Input(ctx, "vieja")
	<-started

	session.Input(ctx, "nueva")
	snapshot := waitForState(t, session, StateShowingSuggestions)
	if snapshot.Query != "nueva" {
		t.Fatalf("expected newest query, got %q", snapshot.Query)
	}

	close(release)
	time.Sleep(20 * time.Millisecond)
	final := session.Snapshot()
	if final.Query != "nueva" || final.State != StateShowingSuggestions {
		t.Fatalf("stale response overwrote newer state: %+v", final)
	}
}

func TestClearResetsToIdle(t *testing.T) {
	suggester := &fakeSuggester{
		suggestionsFn: func(_ context.Context, query string, _ int) ([]catalogapi.Suggestion, error) {
			return []catalogapi.Suggestion{{ID: "s1"}}, nil
		},
	}
	session := newTestSession(t, suggester, testSearchConfig())
	defer session.Close()

	ctx := context.Background()
	session.Input(ctx, "plancha")
	waitForState(t, session, StateShowingSuggestions)

	session.Input(ctx, "")
	snapshot := session.Snapshot()
	if snapshot.State != StateIdle || len(snapshot.Suggestions) != 0 {
		t.Fatalf("expected cleared idle state, got %+v", snapshot)
	}
}

func TestSubmitBypassesDropdown(t *testing.T) {
	suggester := &fakeSuggester{}
	session := newTestSession(t, suggester, testSearchConfig())
	defer session.Close()

	session.Input(context.Background(), "taladro")
	query, ok := session.Submit()
	if !ok || query != "taladro" {
		t.Fatalf("expected submit to resolve query, got %q ok=%v", query, ok)
	}
	if got := session.Snapshot().State; got != StateIdle {
		t.Fatalf("expected idle after submit, got %s", got)
	}

	// Queries under the dropdown minimum still submit.
	session.Input(context.Background(), "ta")
	if query, ok := session.Submit(); !ok || query != "ta" {
		t.Fatalf("expected short query to submit, got %q ok=%v", query, ok)
	}

	session.Input(context.Background(), "   ")
	if _, ok := session.Submit(); ok {
		t.Fatal("expected empty submit to be rejected")
	}
}
