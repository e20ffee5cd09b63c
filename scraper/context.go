package scraper

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/DecLeMec/price-scraper/config"
	"github.com/DecLeMec/price-scraper/metrics"
	"github.com/DecLeMec/price-scraper/models"
)

// RequestContext is one request's private slice of the shared browser: an
// incognito browsing context holding exactly one page. It is created per
// request and must be closed on every exit path.
//
// Construction order matters: the user-agent override, locale/timezone
// emulation, certificate relaxation and the resource interceptor are all
// installed before any navigation, because they only take effect for
// navigations that happen after them.
type RequestContext struct {
	// page is the raw page handle, deliberately unbound from the request
	// context so teardown still works after the caller gave up.
	page *rod.Page

	// work is the same page bound to the request context; all navigation
	// and extraction use it so a dead caller stops billable work.
	work *rod.Page

	browser   *rod.Browser
	contextID proto.BrowserBrowserContextID
	router    *rod.HijackRouter

	navTimeout     time.Duration
	settleDelay    time.Duration
	acceptLanguage string

	closeOnce sync.Once
	closeErr  error
}

// NewRequestContext creates an isolated browsing context for one request:
// fresh incognito context, spoofed user agent, fixed locale and timezone,
// TLS certificate errors ignored, resource interception mounted. The
// caller owns the context and must Close it.
func (m *Manager) NewRequestContext(ctx context.Context) (*RequestContext, error) {
	browser, err := m.getBrowser()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeUnavailable,
			"failed to create browsing context",
			err,
		)
	}

	rc := &RequestContext{
		browser:        browser,
		contextID:      incognito.BrowserContextID,
		navTimeout:     m.scrapeCfg.NavTimeout,
		settleDelay:    m.scrapeCfg.SettleDelay,
		acceptLanguage: m.browserCfg.AcceptLanguage,
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		rc.disposeContext()
		return nil, models.NewScrapeError(
			models.ErrCodeUnavailable,
			"failed to open page",
			err,
		)
	}
	rc.page = page
	rc.work = page.Context(ctx)
	metrics.ActiveContexts.Inc() // paired with the Dec in Close

	if err := rc.prepare(m.browserCfg); err != nil {
		_ = rc.Close()
		return nil, err
	}

	rc.router = setupHijack(page, m.scrapeCfg.BlockedResourceTypes)
	return rc, nil
}

// prepare installs the per-context spoofing overrides.
func (rc *RequestContext) prepare(cfg config.BrowserConfig) error {
	if err := rc.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: cfg.UserAgent,
		Platform:  "Win32",
	}); err != nil {
		return models.NewScrapeError(models.ErrCodeUnavailable, "failed to set user agent", err)
	}

	if err := (proto.EmulationSetLocaleOverride{Locale: cfg.Locale}).Call(rc.page); err != nil {
		return models.NewScrapeError(models.ErrCodeUnavailable, "failed to set locale", err)
	}
	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: cfg.Timezone}).Call(rc.page); err != nil {
		return models.NewScrapeError(models.ErrCodeUnavailable, "failed to set timezone", err)
	}

	// Product pages behind sloppy TLS still need to render.
	if err := (proto.SecuritySetIgnoreCertificateErrors{Ignore: true}).Call(rc.page); err != nil {
		return models.NewScrapeError(models.ErrCodeUnavailable, "failed to relax certificate checks", err)
	}
	return nil
}

// Navigate drives the page to rawURL and waits for readiness: the
// DOMContentLoaded signal bounded by the navigation timeout, then the
// fixed settle delay for client-side rendering to stabilize. The settle
// sleep is deliberately not tied to the caller's context.
func (rc *RequestContext) Navigate(ctx context.Context, rawURL string) error {
	navCtx, cancel := context.WithTimeout(ctx, rc.navTimeout)
	defer cancel()
	p := rc.page.Context(navCtx)

	headers := map[string]string{
		"Accept-Language": rc.acceptLanguage,
	}
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}).Call(p); err != nil {
		return models.NewScrapeError(models.ErrCodeUnavailable, "failed to set extra headers", err)
	}

	// The listener must be registered before Navigate or a fast page can
	// fire DOMContentLoaded while nobody is watching.
	wait := p.WaitEvent(&proto.PageDomContentEventFired{})

	if err := p.Navigate(rawURL); err != nil {
		return categorizeError(err, "navigation to target URL failed")
	}
	wait()
	if err := navCtx.Err(); err != nil {
		return categorizeError(err, "page did not reach DOMContentLoaded in time")
	}

	time.Sleep(rc.settleDelay)
	return nil
}

// QueryText implements the page-accessor read of the first element
// matching a DOM query.
func (rc *RequestContext) QueryText(query string) (string, error) {
	res, err := rc.work.Eval(`(sel) => {
		const el = document.querySelector(sel);
		return el && el.textContent ? el.textContent.trim() : "";
	}`, query)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// MetaContent implements the page-accessor read of a named meta tag,
// checking the property= convention first, then name=.
func (rc *RequestContext) MetaContent(property string) (string, error) {
	res, err := rc.work.Eval(`(prop) => {
		const el = document.querySelector('meta[property="' + prop + '"]')
			|| document.querySelector('meta[name="' + prop + '"]');
		return el ? (el.getAttribute("content") || "").trim() : "";
	}`, property)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// HTML returns the serialized rendered document.
func (rc *RequestContext) HTML() (string, error) {
	return rc.work.HTML()
}

// Close tears the request's browser state down: interceptor, page, then
// the browsing context itself. Idempotent; later calls return the first
// result. Runs on the unbound page handle so it succeeds even after the
// caller's context expired.
func (rc *RequestContext) Close() error {
	rc.closeOnce.Do(func() {
		if rc.router != nil {
			_ = rc.router.Stop()
		}
		if rc.page != nil {
			if err := rc.page.Close(); err != nil {
				rc.closeErr = err
			}
		}
		if err := rc.disposeContext(); err != nil && rc.closeErr == nil {
			rc.closeErr = err
		}
		metrics.ActiveContexts.Dec()
	})
	return rc.closeErr
}

func (rc *RequestContext) disposeContext() error {
	if rc.contextID == "" {
		return nil
	}
	return proto.TargetDisposeBrowserContext{BrowserContextID: rc.contextID}.Call(rc.browser)
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders
// type (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API
// layer can map them to HTTP statuses.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeUnavailable, msg, err)
	}
}
