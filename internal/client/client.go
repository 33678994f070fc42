package client

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

	"github.com/cenkalti/backoff/v4"

	"botdash/internal/filter"
)

// APIResponse is the envelope every endpoint replies with
type APIResponse[T any] struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    T               `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// PaginatedResponse is the data payload of list endpoints
type PaginatedResponse[T any] struct {
	Items    []T             `json:"items"`
	PageInfo filter.PageInfo `json:"page_info"`
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying might succeed
func (e *APIError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// Client talks to the dashboard REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	// MaxRetries bounds retries of GET requests. Zero disables retrying.
	MaxRetries int
	// RetryInterval is the first backoff delay
	RetryInterval time.Duration
}

// Option customises a Client
type Option func(*Client)

// WithToken sets the bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxRetries sets how often a failed GET is retried
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.MaxRetries = n }
}

// WithRetryInterval sets the first backoff delay
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) { c.RetryInterval = d }
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the API at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		MaxRetries:    3,
		RetryInterval: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends a request and decodes the envelope's data into out. GET requests
// are retried on network errors and 5xx responses.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	op := func() error {
		err := c.once(ctx, method, path, query, payload, out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return backoff.Permanent(err)
		}
		var decodeErr *decodeError
		if errors.As(err, &decodeErr) {
			return backoff.Permanent(err)
		}
		return err
	}

	if method != http.MethodGet || c.MaxRetries <= 0 {
		return c.once(ctx, method, path, query, payload, out)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.RetryInterval
	b.MaxElapsedTime = 0
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.MaxRetries)), ctx))
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (c *Client) once(ctx context.Context, method, path string, query url.Values, payload []byte, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env APIResponse[json.RawMessage]
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	env := APIResponse[json.RawMessage]{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return &decodeError{err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &decodeError{err}
	}
	return nil
}

// Get fetches path and decodes its data as T
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, query, nil, &out)
	return out, err
}

// Post sends body to path and decodes the reply's data as T
func Post[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, nil, body, &out)
	return out, err
}
