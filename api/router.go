// Package api wires the HTTP surface: routing, middleware, and handlers.
package api

import (
	"log/slog"
	"net/http"

	"github.com/cruxlens/cruxlens/api/handler"
	"github.com/cruxlens/cruxlens/api/middleware"
	"github.com/cruxlens/cruxlens/config"
	"github.com/cruxlens/cruxlens/crux"
	"github.com/gin-gonic/gin"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logging → CORS
//	Analyze: RateLimit
//
// Health is intentionally outside the rate limiter so monitoring probes
// always work. svc may be nil when no CrUX API key is configured.
func NewRouter(svc *crux.Service, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.CORS))

	apiGroup := r.Group("/api")

	// Health — no rate limit.
	apiGroup.GET("/health", handler.Health(svc != nil))

	limited := apiGroup.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit))
	limited.POST("/analyze-url", handler.Analyze(svc))

	return r
}
