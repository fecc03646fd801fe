package redis

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "contact:1.2.3.4", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed on first request")
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "contact:1.2.3.4", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "contact:1.2.3.4", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	mock.data["eh:cache:electrodomesticos:listing:a"] = "{}"
	mock.data["eh:cache:electrodomesticos:listing:b"] = "{}"
	mock.data["eh:cache:repuestos:listing:a"] = "{}"
	mock.data["eh:cache:electrodomesticos"] = "{}"

	if err := client.DeleteByPrefix(ctx, client.CachePrefix("electrodomesticos")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := mock.data["eh:cache:electrodomesticos:listing:a"]; ok {
		t.Fatal("expected electrodomesticos cache keys to be purged")
	}
	if _, ok := mock.data["eh:cache:electrodomesticos"]; ok {
		t.Fatal("expected the bare-prefix key to be purged")
	}
	if _, ok := mock.data["eh:cache:repuestos:listing:a"]; !ok {
		t.Fatal("repuestos cache keys should be untouched")
	}
}

// The unfiltered page-1 listing and the filter-option entry live at exactly
// the prefix PurgeFamily passes in, because their trailing key parts are
// empty. A purge must remove them along with the filtered variants.
func TestDeleteByPrefixRemovesBarePrefixKeys(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	mock.data[client.CacheKey("listing", "electrodomesticos", "")] = "{}"
	mock.data[client.CacheKey("listing", "electrodomesticos", "q=nevera")] = "{}"
	mock.data[client.CacheKey("filters", "electrodomesticos")] = "{}"

	for _, prefix := range []string{
		client.CachePrefix("listing", "electrodomesticos"),
		client.CachePrefix("filters", "electrodomesticos"),
	} {
		if err := client.DeleteByPrefix(ctx, prefix); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(mock.data) != 0 {
		t.Fatalf("expected all family keys purged, still have %v", mock.data)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.CacheKey("electrodomesticos", "listing", "abc"); got != "eh:cache:electrodomesticos:listing:abc" {
		t.Fatalf("unexpected cache key %s", got)
	}
	if got := client.RateLimitKey("contact"); got != "eh:rate_limit:contact" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.SessionKey("sess-1", "recently_viewed"); got != "eh:session:sess-1:recently_viewed" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.SessionKey("sess-1"); got != "eh:session:sess-1" {
		t.Fatalf("session key should skip empty parts, got %s", got)
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	prefix := strings.TrimSuffix(match, "*")
	keys := make([]string, 0)
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	cmd := redis.NewScanCmd(ctx, nil)
	cmd.SetVal(keys, 0)
	return cmd
}
