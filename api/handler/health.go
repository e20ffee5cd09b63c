package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health returns the handler for GET /health. The probe reports process
// liveness only; it never touches the browser.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
