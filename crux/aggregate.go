package crux

import (
	"math"

	"github.com/cruxlens/cruxlens/models"
)

// Summarize computes per-metric aggregate statistics over the successful
// results of one batch. Only the 75th percentile of available samples
// contributes; a metric with no contributing samples reports all zeros.
// The result depends only on the input's contents, not its order.
func Summarize(results []models.URLResult) models.SummaryStats {
	return models.SummaryStats{
		LCP: summarizeMetric(results, func(m models.URLMetrics) models.MetricSample { return m.LCP }),
		CLS: summarizeMetric(results, func(m models.URLMetrics) models.MetricSample { return m.CLS }),
		FCP: summarizeMetric(results, func(m models.URLMetrics) models.MetricSample { return m.FCP }),
	}
}

func summarizeMetric(results []models.URLResult, pick func(models.URLMetrics) models.MetricSample) models.MetricSummary {
	var values []float64
	for _, r := range results {
		sample := pick(r.Metrics)
		if sample.Status != models.MetricAvailable || sample.P75 == nil {
			continue
		}
		values = append(values, *sample.P75)
	}

	if len(values) == 0 {
		return models.MetricSummary{}
	}

	sum := 0.0
	min := values[0]
	max := values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return models.MetricSummary{
		Avg:   math.Round(sum/float64(len(values))*100) / 100,
		Min:   min,
		Max:   max,
		Count: len(values),
	}
}
