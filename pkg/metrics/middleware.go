package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	providerKey = "metrics.provider"

	noProvider   = "none"
	unknownRoute = "unmatched"
)

// TagProvider attaches the payment provider a request targets so the HTTP
// metrics can be split per provider. Empty names are ignored.
func TagProvider(c *gin.Context, provider string) {
	if provider != "" {
		c.Set(providerKey, provider)
	}
}

// GinMiddleware records latency and request counts per route, provider and
// outcome. Unmatched routes share one label to bound cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unknownRoute
		}
		provider := c.GetString(providerKey)
		if provider == "" {
			provider = noProvider
		}
		outcome := OutcomeOf(c.Writer.Status())

		HTTPRequestDuration.WithLabelValues(route, provider, outcome).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, provider, outcome).Inc()
	}
}
