// Package firewall is the HTTP client for the remote content-safety service.
// It performs exactly one bounded, cancellable call per user action and
// translates transport and HTTP failures into the error taxonomy the display
// layer understands.
package firewall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pageguard/pageguard/internal/logging"
)

// MaxHTMLBytes is the largest page payload the client will dispatch. Pages
// above it fail with PayloadTooLarge before any network call is made. The
// value matches the remote service's own 5 MB limit so oversized content is
// rejected locally instead of burning quota.
const MaxHTMLBytes = 5_000_000

// DefaultTimeout bounds one dispatch end to end.
const DefaultTimeout = 30 * time.Second

// responseBodyCap limits how much remote diagnostic text is retained.
const responseBodyCap = 1 << 20

// Config holds the per-client connection settings.
type Config struct {
	Endpoint  string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
}

// Client dispatches requests to the safety service. It is stateless per call
// and safe to use from independent sessions concurrently; single-flight
// discipline for one interactive session belongs to the caller.
type Client struct {
	httpClient *http.Client
	cfg        Config

	mu       sync.Mutex
	pinnedID string
}

// NewClient creates a Client for the given endpoint and key.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "pageguard/0.1"
	}
	return &Client{
		// Cancellation is driven by the per-call context so a timeout
		// actively aborts the in-flight request.
		httpClient: &http.Client{},
		cfg:        cfg,
	}
}

// AttachRequestID pins a caller-supplied correlation ID to the next dispatch.
// Without one, each dispatch carries a fresh UUID.
func (c *Client) AttachRequestID(id string) {
	c.mu.Lock()
	c.pinnedID = id
	c.mu.Unlock()
}

func (c *Client) takeRequestID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pinnedID != "" {
		id := c.pinnedID
		c.pinnedID = ""
		return id
	}
	return uuid.NewString()
}

// Ask performs a full-answer dispatch: the page plus the user's query.
func (c *Client) Ask(ctx context.Context, pageURL, html, query string) (*Verdict, error) {
	if len(html) > MaxHTMLBytes {
		return nil, newError(KindPayloadTooLarge, fmt.Sprintf("page is too large to scan (%d bytes, limit %d)", len(html), MaxHTMLBytes))
	}

	raw, err := c.post(ctx, "/safe-ask", askRequest{URL: pageURL, HTML: html, Query: query})
	if err != nil {
		return nil, err
	}
	return normalizeAsk(raw)
}

// Scan performs a scan-only dispatch: a safety verdict with no query and no
// generated answer.
func (c *Client) Scan(ctx context.Context, pageURL, html string) (*Verdict, error) {
	if len(html) > MaxHTMLBytes {
		return nil, newError(KindPayloadTooLarge, fmt.Sprintf("page is too large to scan (%d bytes, limit %d)", len(html), MaxHTMLBytes))
	}

	raw, err := c.post(ctx, "/scan-html", scanRequest{URL: pageURL, HTML: html})
	if err != nil {
		return nil, err
	}
	return normalizeScan(raw)
}

// Health probes the service's health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyTransport(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyCap))
	if err != nil {
		return nil, wrapError(KindBackendUnreachable, "reading health response failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyStatus(resp.StatusCode, body)
	}

	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, wrapError(KindMalformedResponse, "safety service returned an unreadable health response", err)
	}
	return &h, nil
}

// post performs one bounded POST and returns the raw 2xx body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := c.takeRequestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyTransport(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyCap))
	if err != nil {
		return nil, wrapError(KindBackendUnreachable, "reading response failed", err)
	}

	log.Debug().
		Str("path", path).
		Str("request_id", requestID).
		Str("api_key", logging.RedactKey(c.cfg.APIKey)).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("dispatch completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.classifyStatus(resp.StatusCode, raw)
	}

	return raw, nil
}

// classifyTransport maps a transport-level failure: an expired deadline is a
// Timeout (the call was actively aborted), anything else means the backend
// could not be reached.
func (c *Client) classifyTransport(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		e := wrapError(KindTimeout, fmt.Sprintf("safety service did not respond within %s", c.cfg.Timeout), err)
		e.Status = 0
		return e
	}
	return wrapError(KindBackendUnreachable, "safety service is unreachable", err)
}

// classifyStatus maps a non-2xx HTTP status onto the error taxonomy.
func (c *Client) classifyStatus(status int, body []byte) *Error {
	var e *Error
	switch status {
	case http.StatusUnauthorized:
		e = newError(KindInvalidCredentials, "API key invalid; reconfigure")
	case http.StatusTooManyRequests:
		e = newError(KindRateLimited, "rate limited by safety service; retry later")
	default:
		e = newError(KindRemoteFailure, fmt.Sprintf("safety service returned status %d", status))
	}
	e.Status = status
	e.Body = string(body)
	return e
}
