package middleware

import (
	"log/slog"
	"time"

	"github.com/cruxlens/cruxlens/requestid"
	"github.com/gin-gonic/gin"
)

// Logging logs method, path, status, duration, and request ID for every
// HTTP request.
func Logging(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", requestid.FromContext(c.Request.Context()),
		)
	}
}
