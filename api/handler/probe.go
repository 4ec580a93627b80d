package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Probe returns a handler for POST /probe. It answers 204 with an empty
// body: reachable means ready, there is nothing else to report.
func Probe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	}
}
