package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/electrohogar/storefront-backend/pkg/config"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
)

const (
	defaultBaseURL           = "https://api.resend.com"
	defaultTimeout           = 10 * time.Second
	errorBodyReadLimit int64 = 1024
)

// Email is one outbound message for the Resend send endpoint.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// SendResult carries the provider-side id of an accepted message.
type SendResult struct {
	ID string `json:"id"`
}

// Client talks to the Resend transactional email API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	defaultFrom string
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

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds a Resend client from configuration.
func NewClient(cfg config.ResendConfig, opts ...Option) *Client {
	client := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     defaultBaseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		defaultFrom: strings.TrimSpace(cfg.DefaultFrom),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Enabled reports whether an API key is configured. Callers skip sending
// when it is not rather than failing the surrounding operation.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Send delivers one email. The default from address applies when the message
// does not name one.
func (c *Client) Send(ctx context.Context, email Email) (*SendResult, error) {
	if !c.Enabled() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "resend api key not configured")
	}
	if email.From == "" {
		email.From = c.defaultFrom
	}
	if email.From == "" || len(email.To) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email requires from and at least one recipient")
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.baseURL, "/")+"/emails", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build send request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute send request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"send request failed",
		)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode send response")
	}
	return &result, nil
}
