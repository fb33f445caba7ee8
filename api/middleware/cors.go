package middleware

import (
	"net/http"

	"github.com/cruxlens/cruxlens/config"
	"github.com/gin-gonic/gin"
)

// CORS applies cross-origin headers based on the configured allowlist.
//
// A literal "*" in the allowlist permits any origin; otherwise the Origin
// header must match an allowed origin exactly. Preflight OPTIONS requests
// are answered with 204 and never reach the handlers.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, match := allowed[origin]
		if origin != "" && (allowAll || match) {
			if allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			c.Header("Access-Control-Max-Age", "600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
