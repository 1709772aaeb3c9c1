// Package client talks to the research assistant HTTP API.
//
// Query returns the decoded envelope or an error; Ask never fails and turns
// every error into the envelope a front end would show instead.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/demark/pkg/domain"
)

// DefaultBaseURL is where the assistant listens in a local setup.
const DefaultBaseURL = "http://localhost:8000"

// maxErrorBody bounds how much of a failed response is kept in StatusError.
const maxErrorBody = 4096

// StatusError is returned for non-2xx answers.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.Code)
	}
	return fmt.Sprintf("HTTP error! status: %d: %s", e.Code, e.Body)
}

// Client calls the assistant API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-attempt timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRetries sets how many times a failed attempt is retried and the base
// delay between attempts. Attempt n waits n*backoff.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.backoff = backoff
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a client for the assistant at baseURL (DefaultBaseURL if empty).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		backoff: 500 * time.Millisecond,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type queryRequest struct {
	Query   string         `json:"query"`
	Options map[string]any `json:"options"`
}

// Query posts a query to /api/query and returns the envelope with defaults
// applied to every field the assistant left empty.
func (c *Client) Query(ctx context.Context, query string, options map[string]any) (*domain.Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if options == nil {
		options = map[string]any{}
	}
	payload, err := json.Marshal(queryRequest{Query: query, Options: options})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/query", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out domain.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	out = out.WithDefaults(query)
	return &out, nil
}

// Ask is Query for front ends: it never fails. On error it returns the
// envelope that tells the user the assistant is unreachable.
func (c *Client) Ask(ctx context.Context, query string, options map[string]any) *domain.Response {
	resp, err := c.Query(ctx, query, options)
	if err != nil {
		c.logger.Error("assistant query failed", "error", err, "base_url", c.baseURL)
		fallback := domain.ErrorResponse(query, c.baseURL, err)
		return &fallback
	}
	return resp
}

// Health reports whether the assistant answers GET / with a 2xx status.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do performs the request, retrying transport errors and 5xx answers.
// On success the caller owns the response body.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.backoff
			c.logger.Debug("retrying assistant request", "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		resp, err := c.attempt(ctx, method, path, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return true
}
