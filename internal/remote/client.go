// Package remote talks to the spreadsheet-backed JSON endpoint that holds the shared
// board document.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/example/club-schedule-board/internal/application"
	"github.com/example/club-schedule-board/internal/logging"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 15 * time.Second

const maxResponseBytes = 8 << 20

// ErrNotConfigured is returned by FetchAll when no endpoint is set.
var ErrNotConfigured = errors.New("remote: endpoint not configured")

// StatusError reports a non-2xx response.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: unexpected status %d", e.Status)
}

// Client reads the board document and pushes best-effort writes.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger

	inflight sync.WaitGroup
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger used for push failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client for endpoint. An empty endpoint yields an unconfigured
// client whose pushes are no-ops.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "remote")
	return c
}

var (
	_ application.RemoteSource = (*Client)(nil)
	_ application.RemoteSink   = (*Client)(nil)
)

// Configured reports whether an endpoint is set.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != ""
}

// FetchAll downloads the whole board document. Collections missing from the response
// are left nil.
func (c *Client) FetchAll(ctx context.Context) (application.RemotePayload, error) {
	if !c.Configured() {
		return application.RemotePayload{}, ErrNotConfigured
	}

	target, err := url.Parse(c.endpoint)
	if err != nil {
		return application.RemotePayload{}, fmt.Errorf("remote: parse endpoint: %w", err)
	}
	query := target.Query()
	query.Set("action", "getData")
	target.RawQuery = query.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return application.RemotePayload{}, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return application.RemotePayload{}, fmt.Errorf("remote: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return application.RemotePayload{}, &StatusError{Status: resp.StatusCode}
	}

	var payload application.RemotePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return application.RemotePayload{}, fmt.Errorf("remote: decode document: %w", err)
	}
	return payload, nil
}

type envelope struct {
	Action application.Action `json:"action"`
	Data   any                `json:"data"`
}

// Push sends a write in the background. It never blocks on the network and never
// reports failure to the caller; failures are logged as warnings. The write outlives
// cancellation of ctx but is bounded by the client timeout.
func (c *Client) Push(ctx context.Context, action application.Action, data any) {
	if !c.Configured() {
		return
	}

	body, err := json.Marshal(envelope{Action: action, Data: data})
	if err != nil {
		c.loggerFor(ctx).WarnContext(ctx, "failed to encode remote write", "action", string(action), "error", err)
		return
	}

	detached := context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		if err := c.post(detached, body); err != nil {
			c.loggerFor(detached).WarnContext(detached, "remote write failed", "action", string(action), "error", err)
		}
	}()
}

// Wait blocks until every in-flight push has finished.
func (c *Client) Wait() {
	if c == nil {
		return
	}
	c.inflight.Wait()
}

func (c *Client) post(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger.With("component", "remote")
	}
	return c.logger
}
