package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DecLeMec/price-scraper/config"
)

// MetaProperties lists the meta tags the static path can supply. The
// catalog checks a request's chains against this list to decide whether
// the static strategy can answer at all.
var MetaProperties = []string{"og:title", "product:price:amount"}

// StaticClient performs the plain-GET fast path: one unauthenticated
// request with spoofed desktop headers, no JavaScript, no rendering.
type StaticClient struct {
	client         *http.Client
	userAgent      string
	acceptLanguage string
	maxBody        int64
}

// NewStaticClient creates a StaticClient from configuration.
func NewStaticClient(cfg config.StaticConfig) *StaticClient {
	return &StaticClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent:      cfg.UserAgent,
		acceptLanguage: cfg.AcceptLanguage,
		maxBody:        cfg.MaxBodyBytes,
	}
}

// Get fetches the raw HTML of a page. Any network failure, non-2xx status
// or non-HTML payload is an error; callers on a fallback path treat it as
// "no result" rather than surfacing it.
func (c *StaticClient) Get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("static: build request: %w", err)
	}

	// Simulate browser-like headers.
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", c.acceptLanguage)
	req.Header.Set("Accept-Encoding", "identity") // body reader does no decompression

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("static: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return "", fmt.Errorf("static: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("static: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return "", fmt.Errorf("static: non-html content-type %q", ct)
	}
	return string(body), nil
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
