package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seeker/config"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = time.Hour
	limiterSweepEvery = 5 * time.Minute
)

type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns token-bucket rate limiting middleware keyed by client
// identity (API key when auth ran, source IP otherwise), powered by
// golang.org/x/time/rate. Every allowed search costs a full browser launch,
// which is what the bucket is really metering.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	take := func(identity string) bool {
		mu.Lock()
		defer mu.Unlock()
		cl, ok := clients[identity]
		if !ok {
			cl = &clientLimiter{
				bucket: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
			}
			clients[identity] = cl
		}
		cl.lastSeen = time.Now()
		return cl.bucket.Allow()
	}

	// Background sweep: drop limiters idle past the TTL so the map stays
	// bounded by the active client set.
	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-limiterIdleTTL)
			mu.Lock()
			for id, cl := range clients {
				if cl.lastSeen.Before(cutoff) {
					delete(clients, id)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		if !take(clientIdentity(c)) {
			c.String(http.StatusTooManyRequests, "Rate limit exceeded, please slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}

// clientIdentity prefers the API key set by the auth middleware and falls
// back to the source IP for open deployments.
func clientIdentity(c *gin.Context) string {
	if key, ok := c.Get("api_key"); ok {
		return key.(string)
	}
	return c.ClientIP()
}
