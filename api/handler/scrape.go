// Package handler implements the HTTP endpoints.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DecLeMec/price-scraper/extract"
	"github.com/DecLeMec/price-scraper/models"
)

// ProductScraper is the scraping core the handlers drive.
type ProductScraper interface {
	Scrape(ctx context.Context, rawURL string, fields []string) (*extract.Result, error)
}

// Scrape returns the handler for GET /api/scrape.
//
// Query parameters: url (required) and fields (required, comma-separated
// field names). The response aligns headers and values positionally in the
// requested field order.
func Scrape(s ProductScraper, cacheMaxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		fields := parseFields(c.Query("fields"))
		if strings.TrimSpace(rawURL) == "" || len(fields) == 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing url or fields"})
			return
		}

		res, err := s.Scrape(c.Request.Context(), rawURL, fields)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", cacheMaxAge))
		c.JSON(http.StatusOK, buildResponse(fields, res))
	}
}

// parseFields splits the comma-separated fields parameter, dropping blanks
// and duplicates while keeping the caller's order.
func parseFields(raw string) []string {
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		f := strings.TrimSpace(p)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	return fields
}

// buildResponse lines the values up with the requested field order.
func buildResponse(fields []string, res *extract.Result) models.ScrapeResponse {
	resp := models.ScrapeResponse{
		Headers: fields,
		Values:  make([]any, len(fields)),
		Raw:     res.Raw,
	}
	for i, f := range fields {
		resp.Values[i] = res.Values[f]
	}
	return resp
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// the JSON error body.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(mapErrorToStatus(scrapeErr), models.ErrorResponse{Error: scrapeErr.Message})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidRequest:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}
