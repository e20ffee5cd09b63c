package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/DecLeMec/price-scraper/api"
	"github.com/DecLeMec/price-scraper/cache"
	"github.com/DecLeMec/price-scraper/catalog"
	"github.com/DecLeMec/price-scraper/cleaner"
	"github.com/DecLeMec/price-scraper/config"
	"github.com/DecLeMec/price-scraper/engine"
	"github.com/DecLeMec/price-scraper/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("price-scraper starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"cacheTTL", cfg.Cache.TTL,
	)

	// ── 3. Build the selector catalog ────────────────────────────────
	cat := catalog.Default()
	if cfg.Catalog.File != "" {
		if err := cat.LoadFile(cfg.Catalog.File); err != nil {
			slog.Error("failed to load catalog file", "path", cfg.Catalog.File, "error", err)
			os.Exit(1)
		}
		slog.Info("catalog file merged", "path", cfg.Catalog.File)
	}

	// ── 4. Initialise the scraping core ──────────────────────────────
	// The browser itself launches lazily on the first rendered request.
	mgr := scraper.NewManager(cfg.Browser, cfg.Scrape, slog.Default())
	defer mgr.Close()

	static := engine.NewStaticClient(cfg.Static)
	store := cache.New(cfg.Cache.TTL)

	browser := engine.BrowserSourceFunc(func(ctx context.Context) (engine.RequestPage, error) {
		rc, err := mgr.NewRequestContext(ctx)
		if err != nil {
			return nil, err
		}
		return rc, nil
	})

	rt := engine.NewRouter(static, browser, cat, store, slog.Default())
	cl := cleaner.NewCleaner()

	// ── 5. Setup router and HTTP server ──────────────────────────────
	router := api.NewRouter(rt, cl, cfg, slog.Default())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ─────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// mgr.Close() runs via defer and kills the shared browser.
	slog.Info("price-scraper stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
