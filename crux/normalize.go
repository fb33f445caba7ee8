package crux

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cruxlens/cruxlens/models"
)

// CrUX metric keys for the three normalized metrics.
const (
	keyLCP = "largest_contentful_paint"
	keyCLS = "cumulative_layout_shift"
	keyFCP = "first_contentful_paint"
)

var (
	emptyObject = json.RawMessage(`{}`)
	emptyArray  = json.RawMessage(`[]`)
)

// newResult reshapes a raw CrUX payload into a URLResult. Metric values are
// passed through untouched; only availability is classified here.
func newResult(raw *QueryResponse, targetURL string, fetchTime time.Time) models.URLResult {
	collectionPeriod := raw.Record.CollectionPeriod
	if len(collectionPeriod) == 0 {
		collectionPeriod = emptyObject
	}

	metrics := raw.Record.Metrics
	return models.URLResult{
		URL:       targetURL,
		FetchTime: fetchTime.Format(time.RFC3339),
		Metrics: models.URLMetrics{
			LCP: parseMetric(metrics[keyLCP]),
			CLS: parseMetric(metrics[keyCLS]),
			FCP: parseMetric(metrics[keyFCP]),
		},
		CollectionPeriod: collectionPeriod,
	}
}

// parseMetric classifies one raw metric. A metric with no percentile block
// is "unavailable" with null cut points, regardless of other fields.
func parseMetric(metric *Metric) models.MetricSample {
	if metric == nil || metric.Percentiles == nil {
		return models.MetricSample{Status: models.MetricUnavailable}
	}

	distribution := metric.Distribution
	if len(distribution) == 0 {
		distribution = emptyArray
	}

	return models.MetricSample{
		P75:          percentileValue(metric.Percentiles.P75),
		P90:          percentileValue(metric.Percentiles.P90),
		P99:          percentileValue(metric.Percentiles.P99),
		Distribution: distribution,
		Status:       models.MetricAvailable,
	}
}

// percentileValue converts a raw percentile to a float pointer, or nil when
// the upstream omitted the cut point or reported a non-numeric value.
func percentileValue(n rawNumber) *float64 {
	if n == "" {
		return nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return nil
	}
	return &f
}
