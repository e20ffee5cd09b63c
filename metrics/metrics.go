// Package metrics declares the Prometheus collectors shared across the
// service. Collectors self-register on the default registry via promauto;
// the API exposes them on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scraper",
		Name:      "http_requests_total",
		Help:      "Handled HTTP requests by route and status code.",
	}, []string{"route", "status"})

	// ScrapesTotal counts scrape executions by strategy and outcome.
	// Cache hits never reach a strategy and are counted in CacheEventsTotal.
	ScrapesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scraper",
		Name:      "scrapes_total",
		Help:      "Scrape executions by strategy (static, browser) and outcome (ok, miss, error).",
	}, []string{"strategy", "outcome"})

	// ScrapeDuration observes end-to-end strategy latency.
	ScrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scraper",
		Name:      "scrape_duration_seconds",
		Help:      "Scrape latency by strategy.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"strategy"})

	// CacheEventsTotal counts response-cache lookups by result.
	CacheEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scraper",
		Name:      "cache_events_total",
		Help:      "Response cache lookups by event (hit, miss).",
	}, []string{"event"})

	// BrowserLaunchesTotal counts underlying browser launches. Stays at 1
	// for the lifetime of a healthy process.
	BrowserLaunchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scraper",
		Name:      "browser_launches_total",
		Help:      "Underlying headless browser launches.",
	})

	// ActiveContexts tracks live per-request browsing contexts. A value
	// stuck above zero while idle indicates a context leak.
	ActiveContexts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "scraper",
		Name:      "browser_active_contexts",
		Help:      "Browsing contexts currently open.",
	})
)
