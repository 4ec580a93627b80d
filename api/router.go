package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seeker/api/handler"
	"github.com/use-agent/seeker/api/middleware"
	"github.com/use-agent/seeker/config"
	"github.com/use-agent/seeker/search"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	Search:  Auth (if enabled) → RateLimit
//
// Probe and health endpoints are intentionally outside auth so readiness
// checks and monitoring always work.
func NewRouter(o *search.Orchestrator, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	// Probe and health — no auth required.
	r.POST("/probe", handler.Probe())
	r.GET("/health", handler.Health(o, startTime))

	// Protected group — auth + rate limit.
	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Search
	protected.POST("/search", handler.Search(o))

	return r
}
