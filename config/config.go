package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultUserAgent is the spoofed desktop browser identity presented on
// both the static and the browser fetch paths.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Browser BrowserConfig
	Scrape  ScrapeConfig
	Static  StaticConfig
	Cache   CacheConfig
	Catalog CatalogConfig
	Log     LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration // default: 5s
}

// BrowserConfig controls the Rod browser instance and per-request contexts.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in containers).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// UserAgent is presented by every request context.
	UserAgent string

	// AcceptLanguage is sent as an extra header on every navigation.
	AcceptLanguage string // default: "en-CA,en;q=0.9"

	// Locale and Timezone are fixed per-context overrides so rendered
	// prices and dates come back in one locale regardless of the host.
	Locale   string // default: "en-CA"
	Timezone string // default: "America/Toronto"
}

// ScrapeConfig controls browser-path scraping behavior.
type ScrapeConfig struct {
	// NavTimeout bounds page navigation.
	NavTimeout time.Duration // default: 30s

	// SettleDelay is the fixed wait after DOMContentLoaded that lets
	// client-side rendering stabilize before extraction.
	SettleDelay time.Duration // default: 1500ms

	// BlockedResourceTypes lists subresource types aborted by the
	// interception policy. default: ["Image", "Media", "Font"]
	BlockedResourceTypes []string
}

// StaticConfig controls the static fetch extractor.
type StaticConfig struct {
	// Timeout is the deadline for the plain HTTP GET.
	Timeout time.Duration // default: 10s

	// UserAgent is the spoofed desktop identity for static requests.
	UserAgent string

	// AcceptLanguage pins the response locale.
	AcceptLanguage string // default: "en-CA,en;q=0.9"

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 // default: 10 MiB
}

// CacheConfig controls the scrape response cache.
type CacheConfig struct {
	// TTL is how long an entry may be served after creation.
	TTL time.Duration // default: 15m
}

// CatalogConfig controls selector catalog loading.
type CatalogConfig struct {
	// File is an optional YAML file of additional site families, merged
	// over the built-in catalog at startup.
	File string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            envOr("SCRAPER_HOST", "0.0.0.0"),
			Port:            envIntOr("SCRAPER_PORT", 8080),
			Mode:            envOr("SCRAPER_MODE", "release"),
			ShutdownTimeout: envDurationOr("SCRAPER_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("SCRAPER_HEADLESS", true),
			NoSandbox:      envBoolOr("SCRAPER_NO_SANDBOX", true),
			BrowserBin:     os.Getenv("SCRAPER_BROWSER_BIN"),
			UserAgent:      envOr("SCRAPER_USER_AGENT", defaultUserAgent),
			AcceptLanguage: envOr("SCRAPER_ACCEPT_LANGUAGE", "en-CA,en;q=0.9"),
			Locale:         envOr("SCRAPER_LOCALE", "en-CA"),
			Timezone:       envOr("SCRAPER_TIMEZONE", "America/Toronto"),
		},
		Scrape: ScrapeConfig{
			NavTimeout:  envDurationOr("SCRAPER_NAV_TIMEOUT", 30*time.Second),
			SettleDelay: envDurationOr("SCRAPER_SETTLE_DELAY", 1500*time.Millisecond),
			BlockedResourceTypes: envSliceOr("SCRAPER_BLOCKED_RESOURCES", []string{
				"Image", "Media", "Font",
			}),
		},
		Static: StaticConfig{
			Timeout:        envDurationOr("SCRAPER_STATIC_TIMEOUT", 10*time.Second),
			UserAgent:      envOr("SCRAPER_USER_AGENT", defaultUserAgent),
			AcceptLanguage: envOr("SCRAPER_ACCEPT_LANGUAGE", "en-CA,en;q=0.9"),
			MaxBodyBytes:   int64(envIntOr("SCRAPER_STATIC_MAX_BODY", 10*1024*1024)),
		},
		Cache: CacheConfig{
			TTL: envDurationOr("SCRAPER_CACHE_TTL", 15*time.Minute),
		},
		Catalog: CatalogConfig{
			File: os.Getenv("SCRAPER_CATALOG_FILE"),
		},
		Log: LogConfig{
			Level:  envOr("SCRAPER_LOG_LEVEL", "info"),
			Format: envOr("SCRAPER_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
