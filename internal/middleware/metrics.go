package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/metrics"
)

// PrometheusMiddleware records request count and latency per route
// template. Unmatched routes collapse into a single label so 404 scans
// cannot blow up metric cardinality.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		metrics.IncrementAPIRequests(c.Request.Method, path, statusCode)
		metrics.RecordAPIRequestDuration(c.Request.Method, path, duration)
	}
}
