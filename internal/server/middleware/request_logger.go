package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"deedflow/internal/common/logger"
	"deedflow/internal/common/metrics"
)

// RequestLogger logs one line per request and feeds the duration histogram.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		metrics.RequestDuration.WithLabelValues(path, c.Request.Method, strconv.Itoa(status)).Observe(elapsed.Seconds())

		fields := map[string]interface{}{
			"requestId": GetRequestID(c),
			"method":    c.Request.Method,
			"path":      path,
			"status":    status,
			"latencyMs": elapsed.Milliseconds(),
			"clientIp":  c.ClientIP(),
		}
		if status >= 500 {
			log.Error("request completed", fields)
		} else {
			log.Info("request completed", fields)
		}
	}
}
