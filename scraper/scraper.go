// Package scraper owns the browser side of the system: one long-lived
// headless browser shared by the whole process, and one isolated browsing
// context per request layered on top of it.
package scraper

import (
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/DecLeMec/price-scraper/config"
	"github.com/DecLeMec/price-scraper/metrics"
	"github.com/DecLeMec/price-scraper/models"
)

// Manager holds the singleton browser handle. The browser is launched
// lazily on the first request that needs it; concurrent first callers
// collapse into a single launch. It is safe for concurrent use.
type Manager struct {
	browserCfg config.BrowserConfig
	scrapeCfg  config.ScrapeConfig
	log        *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser

	// launch produces the connected browser. Swappable in tests so the
	// lifecycle can be exercised without Chrome.
	launch func() (*rod.Browser, error)
}

// NewManager creates a Manager. No browser is started until the first
// request context is requested.
func NewManager(browserCfg config.BrowserConfig, scrapeCfg config.ScrapeConfig, log *slog.Logger) *Manager {
	m := &Manager{
		browserCfg: browserCfg,
		scrapeCfg:  scrapeCfg,
		log:        log.With("component", "scraper"),
	}
	m.launch = m.launchBrowser
	return m
}

// getBrowser returns the singleton browser, launching it on first call.
// The mutex makes concurrent first callers share one in-flight launch; a
// failed launch leaves the manager unlaunched so a later request retries.
func (m *Manager) getBrowser() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return m.browser, nil
	}

	b, err := m.launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeUnavailable,
			"failed to launch browser",
			err,
		)
	}
	m.browser = b
	metrics.BrowserLaunchesTotal.Inc()
	return b, nil
}

// launchBrowser starts the headless browser process and connects to it.
func (m *Manager) launchBrowser() (*rod.Browser, error) {
	l := launcher.New().
		Headless(m.browserCfg.Headless).
		NoSandbox(m.browserCfg.NoSandbox)

	if m.browserCfg.BrowserBin != "" {
		l = l.Bin(m.browserCfg.BrowserBin)
	}

	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}
	m.log.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}

// Close shuts the browser down. Safe to call when nothing was launched.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return
	}
	m.log.Info("closing browser")
	if err := m.browser.Close(); err != nil {
		m.log.Warn("browser close failed", "error", err)
	}
	m.browser = nil
}
