package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/metrics"
)

const (
	defaultBaseURL              = "http://localhost:3001/api/v1"
	errorBodyReadLimit    int64 = 1024
	defaultRequestTimeout       = 10 * time.Second
)

// Client wraps the external catalog REST API the storefront renders from.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.StorefrontMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithMetrics wires upstream request metrics into the client.
func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the catalog API client.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		client.baseURL = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return client
}

func (c *Client) buildURL(path string, query url.Values) string {
	base := strings.TrimRight(c.baseURL, "/")
	full := base + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// getJSON issues a GET and decodes a 2xx JSON body into dest. Non-2xx
// responses surface as dependency errors except 404, which maps to
// ErrNotFound so callers can branch on it.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, bearer string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+endpoint+" request")
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req, endpoint, dest)
}

// sendJSON issues a request with an optional JSON body. Used by the write
// endpoints (view tracking, wishlist mutations).
func (c *Client) sendJSON(ctx context.Context, method, endpoint, path string, body any, bearer string, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+endpoint+" request body")
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, nil), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+endpoint+" request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req, endpoint, dest)
}

func (c *Client) do(req *http.Request, endpoint string, dest any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveUpstream(endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncUpstreamFailure(endpoint)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+endpoint+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.metrics.IncUpstreamFailure(endpoint)
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			endpoint+" request failed",
		)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.metrics.IncUpstreamFailure(endpoint)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+endpoint+" response")
	}
	return nil
}

// IsNotFound reports whether the error chain contains a 404 result.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether the error chain contains a 409 result.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// Ping verifies the upstream API answers; used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	var out []string
	err := c.getJSON(ctx, "ping", string(FamilyElectrodomesticos)+"/config/categories", nil, "", &out)
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}
