// Package middleware provides the gin middleware shared across routes.
package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azhao/scanpay/internal/metrics"
)

// RequestLogger logs every request with method, route, status and duration,
// and feeds the HTTP request counter. The matched route pattern (not the
// raw path) is used as the metric label to keep cardinality bounded.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start).Milliseconds()

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		if status >= 500 {
			slog.Error("Request failed",
				"method", c.Request.Method,
				"route", route,
				"status", status,
				"duration_ms", duration,
				"errors", c.Errors.String(),
			)
		} else {
			slog.Info("Request completed",
				"method", c.Request.Method,
				"route", route,
				"status", status,
				"duration_ms", duration,
			)
		}
	}
}
