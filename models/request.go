package models

// AnalyzeRequest is the payload for POST /api/analyze-url.
type AnalyzeRequest struct {
	// URLs is the batch of URLs to analyze. Between 1 and 20 entries;
	// the scheme is optional and defaults to https during normalization.
	URLs []string `json:"urls" binding:"required,min=1,max=20"`
}
