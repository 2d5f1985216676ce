// Package extract produces the PageContent handed to the safety guard: the
// raw markup of a page plus the URL it was loaded from. Content can come from
// a live HTTP fetch or from a local file.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// PageContent is the raw material of one user action. It is created per
// request, owned by that request, and discarded when the action completes.
type PageContent struct {
	HTML string
	URL  string
}

// Extractor reads page content. The read cap is deliberately above the
// dispatcher's payload limit so oversized pages are still observed in full
// enough form to be rejected by the size check rather than silently trimmed
// under it.
type Extractor struct {
	httpClient *http.Client
	robots     *RobotsChecker
	userAgent  string
	maxBytes   int64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRobots enables robots.txt compliance checks before remote fetches.
func WithRobots(userAgent string, timeout time.Duration) Option {
	return func(e *Extractor) {
		e.robots = NewRobotsChecker(userAgent, timeout)
	}
}

// WithMaxBytes overrides the fetch read cap.
func WithMaxBytes(n int64) Option {
	return func(e *Extractor) {
		e.maxBytes = n
	}
}

// NewExtractor creates an Extractor with the given HTTP timeout.
func NewExtractor(timeout time.Duration, userAgent string, opts ...Option) *Extractor {
	e := &Extractor{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  10 << 20,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromURL fetches the page at rawURL and returns its content. The returned
// URL is the final URL after redirects.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (*PageContent, error) {
	if e.robots != nil {
		allowed, err := e.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return nil, fmt.Errorf("robots.txt disallows fetching %s", rawURL)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()
	log.Debug().
		Str("url", finalURL).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("page fetched")

	return &PageContent{HTML: string(body), URL: finalURL}, nil
}

// FromFile reads page content from a local file. pageURL is the URL the
// content claims to come from; when empty a file:// URL is used.
func (e *Extractor) FromFile(path, pageURL string) (*PageContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if pageURL == "" {
		pageURL = "file://" + path
	}
	return &PageContent{HTML: string(data), URL: pageURL}, nil
}

// Title returns the text of the first <title> element, or "" when none is
// found or the markup cannot be parsed.
func Title(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}
