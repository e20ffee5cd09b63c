package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DecLeMec/price-scraper/metrics"
)

// Metrics counts finished requests per route template and status code.
// Unmatched paths share one label so probes and scanners cannot blow up
// the cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
