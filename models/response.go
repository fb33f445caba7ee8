package models

import "encoding/json"

// Metric sample availability states.
const (
	MetricAvailable   = "available"
	MetricUnavailable = "unavailable"
)

// MetricSample holds one metric's reported percentiles. When the upstream
// has no field data for the metric, Status is "unavailable" and the
// percentiles are null. A sample is never mutated after construction.
type MetricSample struct {
	// P75, P90 and P99 are the reported percentile values. Null when the
	// metric is unavailable or the upstream omitted the cut point.
	P75 *float64 `json:"p75"`
	P90 *float64 `json:"p90"`
	P99 *float64 `json:"p99"`

	// Distribution is the upstream's bucket breakdown, passed through
	// unmodified. Omitted entirely for unavailable samples.
	Distribution json.RawMessage `json:"distribution,omitempty"`

	// Status is "available" or "unavailable".
	Status string `json:"status"`
}

// URLMetrics groups the three normalized metrics for one URL.
type URLMetrics struct {
	// LCP is largest contentful paint (load time).
	LCP MetricSample `json:"lcp"`
	// CLS is cumulative layout shift (layout stability).
	CLS MetricSample `json:"cls"`
	// FCP is first contentful paint (paint time).
	FCP MetricSample `json:"fcp"`
}

// URLResult is one URL's successful outcome.
type URLResult struct {
	URL       string     `json:"url"`
	FetchTime string     `json:"fetchTime"`
	Metrics   URLMetrics `json:"metrics"`

	// CollectionPeriod is the upstream's reporting window, passed through
	// unmodified. An empty JSON object when the upstream omitted it.
	CollectionPeriod json.RawMessage `json:"collectionPeriod"`
}

// URLError is one URL's failure outcome. Mutually exclusive with a
// URLResult for the same URL within a batch.
type URLError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// MetricSummary is the per-metric aggregate over one batch. All fields are
// zero when no result contributed an available sample.
type MetricSummary struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// SummaryStats holds the per-metric aggregates for one batch. Recomputed
// fresh per request, never cached.
type SummaryStats struct {
	LCP MetricSummary `json:"lcp"`
	CLS MetricSummary `json:"cls"`
	FCP MetricSummary `json:"fcp"`
}

// BatchReport is the response for POST /api/analyze-url. It is owned by a
// single request/response cycle and discarded after serialization.
type BatchReport struct {
	Results      []URLResult  `json:"results"`
	Errors       []URLError   `json:"errors"`
	Summary      SummaryStats `json:"summary"`
	TotalURLs    int          `json:"totalUrls"`
	SuccessCount int          `json:"successCount"`
	Timestamp    string       `json:"timestamp"`
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status        string `json:"status"`
	APIConfigured bool   `json:"apiConfigured"`
	Timestamp     string `json:"timestamp"`
	Version       string `json:"version"`
}
