// Command cruxlens-mcp exposes the CruxLens HTTP API as MCP tools over
// stdio, so agent clients can look up Chrome UX Report field data for a
// batch of URLs.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// analyzeResponse mirrors the CruxLens batch report.
type analyzeResponse struct {
	Results []struct {
		URL     string `json:"url"`
		Metrics map[string]struct {
			P75    *float64 `json:"p75"`
			Status string   `json:"status"`
		} `json:"metrics"`
	} `json:"results"`
	Errors []struct {
		URL   string `json:"url"`
		Error string `json:"error"`
	} `json:"errors"`
	Summary map[string]struct {
		Avg   float64 `json:"avg"`
		Min   float64 `json:"min"`
		Max   float64 `json:"max"`
		Count int     `json:"count"`
	} `json:"summary"`
	TotalURLs    int    `json:"totalUrls"`
	SuccessCount int    `json:"successCount"`
	Error        string `json:"error"`
	Message      string `json:"message"`
}

// healthResponse mirrors the CruxLens health report.
type healthResponse struct {
	Status        string `json:"status"`
	APIConfigured bool   `json:"apiConfigured"`
	Version       string `json:"version"`
}

func main() {
	apiURL := os.Getenv("CRUXLENS_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	s := server.NewMCPServer(
		"cruxlens",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	analyzeTool := mcp.NewTool("analyze_urls",
		mcp.WithDescription("Look up real-user web performance data (Chrome UX Report) for up to 20 URLs: largest contentful paint, cumulative layout shift, and first contentful paint percentiles plus per-batch summary statistics."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to analyze (1-20). Scheme is optional; https is assumed."),
		),
	)
	s.AddTool(analyzeTool, handleAnalyzeURLs(apiURL))

	healthTool := mcp.NewTool("health",
		mcp.WithDescription("Check whether the CruxLens service is up and has a CrUX API key configured."),
	)
	s.AddTool(healthTool, handleHealth(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleAnalyzeURLs(apiURL string) server.ToolHandlerFunc {
	// Worst case is 20 sequential upstream calls at 10s each.
	client := &http.Client{Timeout: 240 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		payload := map[string]interface{}{"urls": urls}
		body, err := json.Marshal(payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/analyze-url", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var report analyzeResponse
		if err := json.Unmarshal(respBody, &report); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if resp.StatusCode != http.StatusOK {
			msg := report.Error
			if report.Message != "" {
				msg += ": " + report.Message
			}
			if msg == "" {
				msg = fmt.Sprintf("API returned %d", resp.StatusCode)
			}
			return mcp.NewToolResultError(msg), nil
		}

		return mcp.NewToolResultText(formatReport(&report)), nil
	}
}

func handleHealth(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/health", nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var health healthResponse
		if err := json.Unmarshal(respBody, &health); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"status: %s\napiConfigured: %t\nversion: %s",
			health.Status, health.APIConfigured, health.Version,
		)), nil
	}
}

// formatReport renders a batch report as readable text for the MCP client.
func formatReport(report *analyzeResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Analyzed %d URL(s), %d succeeded\n\n", report.TotalURLs, report.SuccessCount))

	for _, r := range report.Results {
		sb.WriteString(fmt.Sprintf("--- %s ---\n", r.URL))
		for _, metric := range []string{"lcp", "cls", "fcp"} {
			m, ok := r.Metrics[metric]
			if !ok || m.Status != "available" || m.P75 == nil {
				sb.WriteString(fmt.Sprintf("  %s: unavailable\n", metric))
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s p75: %g\n", metric, *m.P75))
		}
		sb.WriteString("\n")
	}

	for _, e := range report.Errors {
		sb.WriteString(fmt.Sprintf("--- %s ---\n  error: %s\n\n", e.URL, e.Error))
	}

	if len(report.Summary) > 0 {
		sb.WriteString("Summary (p75 across successful URLs):\n")
		for _, metric := range []string{"lcp", "cls", "fcp"} {
			s, ok := report.Summary[metric]
			if !ok || s.Count == 0 {
				sb.WriteString(fmt.Sprintf("  %s: no data\n", metric))
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s: avg %g, min %g, max %g (n=%d)\n", metric, s.Avg, s.Min, s.Max, s.Count))
		}
	}

	return sb.String()
}
