package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seeker/models"
)

// Stats reports live service counters for the health endpoint.
type Stats interface {
	ActiveSearches() int
}

// Health returns a handler for GET /health.
//
// Every search holds a full browser process, so the active count doubles as
// a load signal for monitoring.
func Health(stats Stats, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         "healthy",
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			ActiveSearches: stats.ActiveSearches(),
			Version:        "0.1.0",
		})
	}
}
