package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Auth returns API-key middleware accepting either an X-API-Key header or an
// Authorization: Bearer token. With no keys configured it degrades to a
// no-op so local deployments stay open.
func Auth(apiKeys []string) gin.HandlerFunc {
	if len(apiKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			allowed[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		key, ok := requestKey(c)
		if !ok {
			c.String(http.StatusUnauthorized, "Missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			c.Abort()
			return
		}
		if _, valid := allowed[key]; !valid {
			c.String(http.StatusUnauthorized, "Invalid API key")
			c.Abort()
			return
		}

		// Stash the key so the rate limiter can use it as the client identity.
		c.Set("api_key", key)
		c.Next()
	}
}

// requestKey pulls the API key out of the request, trying X-API-Key before
// the Authorization header.
func requestKey(c *gin.Context) (string, bool) {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key, true
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if key := strings.TrimPrefix(auth, "Bearer "); key != "" {
			return key, true
		}
	}
	return "", false
}
