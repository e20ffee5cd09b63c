// Package engine decides how a scrape request is satisfied: a plain
// static fetch for hosts that expose their data in unrendered meta tags,
// a full headless-browser render for everything else, with the static
// path falling back to the browser when it comes up empty.
package engine

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/DecLeMec/price-scraper/cache"
	"github.com/DecLeMec/price-scraper/catalog"
	"github.com/DecLeMec/price-scraper/extract"
	"github.com/DecLeMec/price-scraper/metrics"
	"github.com/DecLeMec/price-scraper/models"
)

// StaticFetcher fetches raw HTML over plain HTTP.
type StaticFetcher interface {
	Get(ctx context.Context, rawURL string) (string, error)
}

// RequestPage is one request's private, rendered page handle. The router
// owns its lifecycle: every acquired page is closed exactly once, on every
// exit path.
type RequestPage interface {
	extract.PageAccessor
	Navigate(ctx context.Context, rawURL string) error
	HTML() (string, error)
	Close() error
}

// BrowserSource hands out isolated per-request browsing contexts.
type BrowserSource interface {
	NewRequestContext(ctx context.Context) (RequestPage, error)
}

// BrowserSourceFunc adapts a function to the BrowserSource interface.
type BrowserSourceFunc func(ctx context.Context) (RequestPage, error)

// NewRequestContext calls f.
func (f BrowserSourceFunc) NewRequestContext(ctx context.Context) (RequestPage, error) {
	return f(ctx)
}

// Router picks and runs the extraction strategy for each request, checking
// the response cache on the way in and filling it on the way out.
type Router struct {
	static  StaticFetcher
	browser BrowserSource
	catalog *catalog.Catalog
	store   *cache.Cache
	log     *slog.Logger
}

// NewRouter wires a Router.
func NewRouter(static StaticFetcher, browser BrowserSource, cat *catalog.Catalog, store *cache.Cache, log *slog.Logger) *Router {
	return &Router{
		static:  static,
		browser: browser,
		catalog: cat,
		store:   store,
		log:     log.With("component", "router"),
	}
}

// Scrape resolves the requested fields for a product page.
//
// Path selection: a host whose family is static-friendly, with every
// requested field answerable from supported meta tags, gets one static
// fetch first; a usable static result ends the request. Everything else,
// including static misses, renders in the browser. Results are cached
// after normalization; a cache hit never touches either path.
func (r *Router) Scrape(ctx context.Context, rawURL string, fields []string) (*extract.Result, error) {
	if strings.TrimSpace(rawURL) == "" || len(fields) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeInvalidRequest, "missing url or fields", nil)
	}

	key := cache.Key(rawURL, fields)
	if res, ok := r.store.Get(key); ok {
		metrics.CacheEventsTotal.WithLabelValues("hit").Inc()
		r.log.Debug("cache hit", "url", rawURL)
		return res, nil
	}
	metrics.CacheEventsTotal.WithLabelValues("miss").Inc()

	fam := r.catalog.ForHost(hostOf(rawURL))

	if fam.StaticFriendly && fam.MetaSatisfiable(fields, MetaProperties) {
		if res := r.tryStatic(ctx, rawURL, fam, fields); res != nil {
			r.store.Set(key, res)
			return res, nil
		}
	}

	res, err := r.renderAndExtract(ctx, rawURL, fam, fields)
	if err != nil {
		return nil, err
	}
	r.store.Set(key, res)
	return res, nil
}

// tryStatic runs the static-only path. Any failure or partially-empty
// result returns nil so the caller falls through to the browser. The
// fallback is immediate, there is no static retry.
func (r *Router) tryStatic(ctx context.Context, rawURL string, fam catalog.Family, fields []string) *extract.Result {
	start := time.Now()

	html, err := r.static.Get(ctx, rawURL)
	if err != nil {
		metrics.ScrapesTotal.WithLabelValues(models.SourceStatic, "error").Inc()
		r.log.Debug("static fetch failed, falling back to browser", "url", rawURL, "error", err)
		return nil
	}

	doc, err := extract.ParseHTML(html)
	if err != nil {
		metrics.ScrapesTotal.WithLabelValues(models.SourceStatic, "error").Inc()
		r.log.Debug("static document unparseable, falling back to browser", "url", rawURL, "error", err)
		return nil
	}

	raw := make(map[string]string, len(fields))
	for _, field := range fields {
		v := firstMetaValue(fam.Chain(field), doc)
		if v == "" {
			metrics.ScrapesTotal.WithLabelValues(models.SourceStatic, "miss").Inc()
			r.log.Debug("static result unusable, falling back to browser", "url", rawURL, "field", field)
			return nil
		}
		raw[field] = v
	}

	metrics.ScrapesTotal.WithLabelValues(models.SourceStatic, "ok").Inc()
	metrics.ScrapeDuration.WithLabelValues(models.SourceStatic).Observe(time.Since(start).Seconds())
	r.log.Info("static scrape complete", "url", rawURL, "duration", time.Since(start))
	return extract.Finalize(fields, raw)
}

// firstMetaValue walks the chain's meta descriptors in priority order
// against the unrendered document. DOM descriptors are skipped: without a
// render their text is not trustworthy.
func firstMetaValue(chain catalog.Chain, doc extract.PageAccessor) string {
	for _, d := range chain {
		if d.Kind != catalog.KindMeta {
			continue
		}
		v, err := doc.MetaContent(d.Query)
		if err != nil {
			continue
		}
		if v != "" {
			return v
		}
	}
	return ""
}

// renderAndExtract runs the browser path: acquire a context, navigate,
// extract, and always release the context.
func (r *Router) renderAndExtract(ctx context.Context, rawURL string, fam catalog.Family, fields []string) (res *extract.Result, err error) {
	start := time.Now()

	page, err := r.browser.NewRequestContext(ctx)
	if err != nil {
		metrics.ScrapesTotal.WithLabelValues(models.SourceBrowser, "error").Inc()
		return nil, err
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			r.log.Warn("browsing context teardown failed", "url", rawURL, "error", cerr)
		}
	}()

	if err := page.Navigate(ctx, rawURL); err != nil {
		metrics.ScrapesTotal.WithLabelValues(models.SourceBrowser, "error").Inc()
		return nil, err
	}

	raw := extract.Fields(page, fam, fields)

	metrics.ScrapesTotal.WithLabelValues(models.SourceBrowser, "ok").Inc()
	metrics.ScrapeDuration.WithLabelValues(models.SourceBrowser).Observe(time.Since(start).Seconds())
	r.log.Info("browser scrape complete", "url", rawURL, "duration", time.Since(start))
	return extract.Finalize(fields, raw), nil
}

// PageHTML fetches a page's full HTML for content extraction: the static
// client first, the browser render when that fails. The second return
// names the path used, "static" or "browser".
func (r *Router) PageHTML(ctx context.Context, rawURL string) (string, string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", "", models.NewScrapeError(models.ErrCodeInvalidRequest, "missing url", nil)
	}

	html, err := r.static.Get(ctx, rawURL)
	if err == nil && strings.TrimSpace(html) != "" {
		return html, models.SourceStatic, nil
	}
	if err != nil {
		r.log.Debug("static fetch failed, rendering instead", "url", rawURL, "error", err)
	}

	html, err = r.RenderHTML(ctx, rawURL)
	if err != nil {
		return "", "", err
	}
	return html, models.SourceBrowser, nil
}

// RenderHTML fetches a page's HTML through the browser path only.
func (r *Router) RenderHTML(ctx context.Context, rawURL string) (string, error) {
	page, err := r.browser.NewRequestContext(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			r.log.Warn("browsing context teardown failed", "url", rawURL, "error", cerr)
		}
	}()

	if err := page.Navigate(ctx, rawURL); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeInternal, "failed to read rendered page", err)
	}
	return html, nil
}

// hostOf extracts the host for catalog matching; unparseable URLs match
// the default family and let the fetch path report the real problem.
func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Hostname()
}
