// Package crux implements the analysis pipeline against the Chrome UX
// Report API: one outbound query per URL, normalization of the nested
// upstream payload into a flat display shape, and per-batch aggregation.
package crux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cruxlens/cruxlens/config"
	"github.com/cruxlens/cruxlens/models"
)

// Client is a lightweight CrUX API client. It uses net/http directly —
// no third-party SDK needed.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

// NewClient creates a CrUX client from configuration. Pass a nil
// httpClient to use a default client bound to the configured timeout.
// Returns a NOT_CONFIGURED error when the API key is absent.
func NewClient(cfg config.CruxConfig, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, models.NewAPIError(models.ErrCodeNotConfigured, "CrUX API key not configured", nil)
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = config.DefaultCruxAPIURL
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		apiURL:     apiURL,
		apiKey:     cfg.APIKey,
	}, nil
}

// queryRequest is the CrUX query request body.
type queryRequest struct {
	URL string `json:"url"`
}

// QueryResponse is the raw CrUX query response. Only the fields the
// pipeline reads are decoded; everything else is ignored.
type QueryResponse struct {
	Record struct {
		Metrics          map[string]*Metric `json:"metrics"`
		CollectionPeriod json.RawMessage    `json:"collectionPeriod"`
	} `json:"record"`
}

// Metric is one raw upstream metric entry.
type Metric struct {
	Percentiles  *Percentiles    `json:"percentiles"`
	Distribution json.RawMessage `json:"distribution"`
}

// Percentiles holds the raw percentile cut points.
type Percentiles struct {
	P75 rawNumber `json:"p75"`
	P90 rawNumber `json:"p90"`
	P99 rawNumber `json:"p99"`
}

// rawNumber tolerates the upstream reporting some metrics (layout shift)
// as JSON strings rather than numbers. Empty means absent.
type rawNumber string

func (n *rawNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = rawNumber(s)
		return nil
	}
	*n = rawNumber(data)
	return nil
}

// cruxErrorResponse captures a structured error body from the CrUX API.
type cruxErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Fetch issues a single query for one URL. Any transport failure, non-2xx
// status, or undecodable body is surfaced as a CRUX_UPSTREAM *models.APIError.
// One attempt only; the caller decides how a failure affects its batch.
func (c *Client) Fetch(ctx context.Context, targetURL string) (*QueryResponse, error) {
	body, err := json.Marshal(queryRequest{URL: targetURL})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	endpoint := c.apiURL + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream,
			fmt.Sprintf("Failed to fetch CrUX data: %v", err), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream,
			"Failed to fetch CrUX data: unreadable response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamStatusError(resp.StatusCode, respBody)
	}

	var query QueryResponse
	if err := json.Unmarshal(respBody, &query); err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream,
			"Failed to fetch CrUX data: malformed response", err)
	}

	return &query, nil
}

// upstreamStatusError builds the error for a non-2xx CrUX response,
// preferring the upstream's own message when the body parses.
func upstreamStatusError(statusCode int, body []byte) *models.APIError {
	var errResp cruxErrorResponse
	msg := fmt.Sprintf("Failed to fetch CrUX data: CrUX API returned %d", statusCode)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = fmt.Sprintf("Failed to fetch CrUX data: CrUX API returned %d: %s", statusCode, errResp.Error.Message)
	}
	return models.NewAPIError(models.ErrCodeUpstream, msg, nil)
}
