package middleware

import (
	"time"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/gin-gonic/gin"
)

func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			logger.Error(c.Request.Context(), "[HTTP] request", attrs...)
		case status >= 400:
			logger.Warn(c.Request.Context(), "[HTTP] request", attrs...)
		default:
			logger.Info(c.Request.Context(), "[HTTP] request", attrs...)
		}
	}
}
