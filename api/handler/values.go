package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DecLeMec/price-scraper/extract"
)

// Values returns the handler for GET /values: the same extraction as
// /api/scrape, rendered as a single CSV record of the requested values.
//
// The CSV surface has no error channel. Invalid parameters get a bare 400;
// an extraction failure gets a 200 with an empty body so spreadsheet
// importers see a blank cell instead of an error page.
func Values(s ProductScraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/csv; charset=utf-8")

		rawURL := c.Query("url")
		fields := parseFields(c.Query("fields"))
		if strings.TrimSpace(rawURL) == "" || len(fields) == 0 {
			c.Status(http.StatusBadRequest)
			return
		}

		res, err := s.Scrape(c.Request.Context(), rawURL, fields)
		if err != nil {
			c.Status(http.StatusOK)
			return
		}

		c.String(http.StatusOK, csvLine(fields, res))
	}
}

// csvLine renders one always-quoted CSV record in field order. Quoting
// unconditionally keeps the output stable when values grow commas or
// quotes between scrapes.
func csvLine(fields []string, res *extract.Result) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		v := fmt.Sprint(res.Values[f])
		parts[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(parts, ",") + "\n"
}
