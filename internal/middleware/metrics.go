package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ugportal-api/internal/service"
)

const roleAnonymous = "anonymous"

// opsPaths are served to infrastructure, not portal users, and are left out of request metrics.
var opsPaths = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
}

// Metrics returns middleware that records request count and latency per route
// and caller role. Unmatched routes are labelled "unmatched" to keep path
// cardinality bounded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		if _, skip := opsPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, callerRole(c), c.Writer.Status(), time.Since(start))
	}
}

// callerRole reads the role set by JWT further down the chain.
func callerRole(c *gin.Context) string {
	claims := Claims(c)
	if claims == nil || claims.Role == "" {
		return roleAnonymous
	}
	return strings.ToLower(string(claims.Role))
}
