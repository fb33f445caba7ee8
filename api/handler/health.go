package handler

import (
	"net/http"
	"time"

	"github.com/cruxlens/cruxlens/models"
	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Health returns a handler for GET /api/health.
//
// apiConfigured reflects whether a CrUX API key was present at startup,
// independent of any analysis traffic. Monitoring probes hit this
// endpoint, so it sits outside the rate limiter.
func Health(apiConfigured bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        "ok",
			APIConfigured: apiConfigured,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Version:       Version,
		})
	}
}
