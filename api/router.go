// Package api wires the HTTP surface: routes, middleware, and the
// translation between transport and the scraping core.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DecLeMec/price-scraper/api/handler"
	"github.com/DecLeMec/price-scraper/api/middleware"
	"github.com/DecLeMec/price-scraper/cleaner"
	"github.com/DecLeMec/price-scraper/config"
	"github.com/DecLeMec/price-scraper/engine"
)

// NewRouter creates the configured Gin engine.
//
// Middleware chain: Recovery → RequestID → Logger → Metrics.
// Health and metrics sit at the root, outside /api, so probes keep working
// whatever happens to the API surface.
func NewRouter(rt *engine.Router, cl *cleaner.Cleaner, cfg *config.Config, log *slog.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics())

	maxAge := int(cfg.Cache.TTL.Seconds())

	apiGroup := r.Group("/api")
	apiGroup.GET("/scrape", handler.Scrape(rt, maxAge))
	apiGroup.GET("/describe", handler.Describe(rt, cl, maxAge))

	// Spreadsheet-facing CSV endpoint, kept at the root for IMPORTDATA
	// formulas.
	r.GET("/values", handler.Values(rt))

	r.GET("/health", handler.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
