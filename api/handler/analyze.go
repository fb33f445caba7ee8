package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cruxlens/cruxlens/crux"
	"github.com/cruxlens/cruxlens/models"
	"github.com/cruxlens/cruxlens/urlnorm"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Analyze returns a handler for POST /api/analyze-url.
//
// Flow:
//  1. Bind & validate the JSON body (1-20 URL strings).
//  2. Normalize the batch: scheme injection, well-formedness, dedup.
//     Any invalid entry fails the whole request with field detail.
//  3. Run the sequential fetch/normalize/aggregate pipeline.
//
// svc may be nil when no CrUX API key is configured; analysis requests
// then fail with 503 while the rest of the API stays up.
func Analyze(svc *crux.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid input",
				"details": gin.H{"urls": bindErrorMessage(err)},
			})
			return
		}

		urls, err := urlnorm.NormalizeBatch(req.URLs)
		if err != nil {
			var batchErr *urlnorm.BatchError
			if errors.As(err, &batchErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Invalid input",
					"details": batchErr.Fields,
				})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid input",
				"details": gin.H{"urls": err.Error()},
			})
			return
		}

		if svc == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "CrUX API error",
				"message": "CrUX API key not configured",
			})
			return
		}

		slog.Info("analyzing URLs", "count", len(urls))
		report := svc.AnalyzeURLs(c.Request.Context(), urls)
		c.JSON(http.StatusOK, report)
	}
}

// bindErrorMessage keeps binding failures terse: raw validator errors read
// poorly at API callers.
func bindErrorMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		switch ve[0].Tag() {
		case "required":
			return `the "urls" field is required`
		case "min":
			return "at least 1 URL is required"
		case "max":
			return fmt.Sprintf("at most %d URLs per request", urlnorm.MaxBatchSize)
		}
	}
	return "malformed request body"
}
