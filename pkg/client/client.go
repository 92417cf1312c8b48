// Package client is a Go client for the CinePrep HTTP API. Its types mirror
// the data hooks of the web application: lore generation, history, favorites,
// settings and audio.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/CinePrep/cineprep/internal/domain"
)

// TokenSource returns the Supabase access token sent as bearer.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken always returns token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// APIError is a non-2xx answer of the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cineprep api: %d %s", e.StatusCode, e.Message)
}

// IsQuotaExceeded reports whether the server refused the call because the
// monthly plan limit is reached.
func (e *APIError) IsQuotaExceeded() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

type Client struct {
	baseURL    string
	httpClient domain.HTTPClient
	token      TokenSource
	now        func() time.Time
	storage    Storage
}

type Option func(*Client)

func WithHTTPClient(httpClient domain.HTTPClient) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithClock overrides the time source used by the history cache.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithStorage sets where the history cache is kept. Defaults to memory.
func WithStorage(storage Storage) Option {
	return func(c *Client) { c.storage = storage }
}

func New(baseURL string, token TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
		token:      token,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.storage == nil {
		c.storage = NewMemoryStorage(0)
	}
	return c
}

func (c *Client) LoreGenerator() *LoreGenerator { return &LoreGenerator{c: c} }
func (c *Client) Favorites() *Favorites         { return &Favorites{c: c} }
func (c *Client) Settings() *Settings           { return &Settings{c: c} }
func (c *Client) Audio() *Audio                 { return &Audio{c: c, maxChars: domain.MaxNarrativeChars} }

// History returns the history hook. Hooks created from the same client share
// the cache.
func (c *Client) History() *History {
	return &History{c: c, ttl: HistoryCacheTTL}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(data, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
