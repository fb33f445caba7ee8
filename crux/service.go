package crux

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cruxlens/cruxlens/models"
	"github.com/cruxlens/cruxlens/requestid"
)

// Service runs the per-batch analysis pipeline: sequential fetch and
// normalize per URL, then aggregation over the successes.
type Service struct {
	client *Client
	logger *slog.Logger
}

// NewService creates a Service backed by the given client.
func NewService(client *Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// AnalyzeURLs processes one validated batch. URLs are fetched one at a
// time in submission order; a single URL's failure never aborts the batch.
// Upstream failures land in the report's error list with the upstream
// message, anything else with an "Unexpected error" prefix.
func (s *Service) AnalyzeURLs(ctx context.Context, urls []string) *models.BatchReport {
	logger := s.logger.With("request_id", requestid.FromContext(ctx))

	results := make([]models.URLResult, 0, len(urls))
	urlErrors := make([]models.URLError, 0)

	for _, targetURL := range urls {
		raw, err := s.client.Fetch(ctx, targetURL)
		if err != nil {
			var apiErr *models.APIError
			if errors.As(err, &apiErr) {
				logger.Warn("CrUX API error", "url", targetURL, "error", err)
				urlErrors = append(urlErrors, models.URLError{URL: targetURL, Error: apiErr.Message})
			} else {
				logger.Error("unexpected analysis error", "url", targetURL, "error", err)
				urlErrors = append(urlErrors, models.URLError{URL: targetURL, Error: "Unexpected error: " + err.Error()})
			}
			continue
		}
		results = append(results, newResult(raw, targetURL, time.Now()))
	}

	report := &models.BatchReport{
		Results:      results,
		Errors:       urlErrors,
		Summary:      Summarize(results),
		TotalURLs:    len(urls),
		SuccessCount: len(results),
		Timestamp:    time.Now().Format(time.RFC3339),
	}

	logger.Info("batch analysis complete",
		"total", report.TotalURLs,
		"succeeded", report.SuccessCount,
		"failed", len(report.Errors),
	)
	return report
}
