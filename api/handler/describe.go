package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DecLeMec/price-scraper/cleaner"
	"github.com/DecLeMec/price-scraper/models"
)

// PageFetcher hands back a page's full HTML plus the fetch path used.
type PageFetcher interface {
	PageHTML(ctx context.Context, rawURL string) (html string, source string, err error)
	RenderHTML(ctx context.Context, rawURL string) (string, error)
}

// Describe returns the handler for GET /api/describe: fetch the page,
// extract its main content, and respond with a Markdown description.
//
// When a statically fetched page yields no content, the handler assumes it
// got an unrendered shell and retries once through the browser before
// giving up.
func Describe(p PageFetcher, cl *cleaner.Cleaner, cacheMaxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		if strings.TrimSpace(rawURL) == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing url"})
			return
		}

		html, source, err := p.PageHTML(c.Request.Context(), rawURL)
		if err != nil {
			respondError(c, err)
			return
		}

		desc, err := cl.Describe(rawURL, html)
		if err != nil && source == models.SourceStatic {
			rendered, rerr := p.RenderHTML(c.Request.Context(), rawURL)
			if rerr != nil {
				respondError(c, rerr)
				return
			}
			source = models.SourceBrowser
			desc, err = cl.Describe(rawURL, rendered)
		}
		if err != nil {
			respondError(c, err)
			return
		}

		desc.Source = source
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", cacheMaxAge))
		c.JSON(http.StatusOK, desc)
	}
}
