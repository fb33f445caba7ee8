package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cruxlens/cruxlens/config"
	"github.com/cruxlens/cruxlens/crux"
	"github.com/cruxlens/cruxlens/models"
)

func testRouterConfig() *config.Config {
	return &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubUpstream fakes the CrUX API: any URL containing "fail" gets a 404.
func stubUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			URL string `json:"url"`
		}
		_ = json.Unmarshal(body, &req)

		if strings.Contains(req.URL, "fail") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": {"message": "no data"}}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"record": {
				"metrics": {
					"largest_contentful_paint": {"percentiles": {"p75": 1500}, "distribution": []}
				},
				"collectionPeriod": {}
			}
		}`))
	}))
}

func newTestService(t *testing.T, upstreamURL string) *crux.Service {
	t.Helper()
	client, err := crux.NewClient(config.CruxConfig{
		APIKey:  "test-key",
		APIURL:  upstreamURL,
		Timeout: 5 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return crux.NewService(client, quietLogger())
}

func postAnalyze(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-url", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyze_Success(t *testing.T) {
	ts := stubUpstream(t)
	defer ts.Close()

	router := NewRouter(newTestService(t, ts.URL), testRouterConfig(), quietLogger())
	w := postAnalyze(t, router, `{"urls": ["example.com", "example.com", "https://other.example"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body)
	}

	var report models.BatchReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	// Duplicates collapse before fetching.
	if report.TotalURLs != 2 {
		t.Errorf("totalUrls = %d, want 2", report.TotalURLs)
	}
	if report.SuccessCount != 2 {
		t.Errorf("successCount = %d, want 2", report.SuccessCount)
	}
	if report.Results[0].URL != "https://example.com" {
		t.Errorf("first result url = %q, want normalized https://example.com", report.Results[0].URL)
	}
	if report.Summary.LCP.Count != 2 || report.Summary.LCP.Avg != 1500 {
		t.Errorf("lcp summary = %+v", report.Summary.LCP)
	}
}

func TestAnalyze_PartialFailureStill200(t *testing.T) {
	ts := stubUpstream(t)
	defer ts.Close()

	router := NewRouter(newTestService(t, ts.URL), testRouterConfig(), quietLogger())
	w := postAnalyze(t, router, `{"urls": ["a.example", "will-fail.example", "b.example"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body)
	}

	var report models.BatchReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.TotalURLs != 3 || report.SuccessCount != 2 || len(report.Errors) != 1 {
		t.Errorf("report counts = total %d success %d errors %d, want 3/2/1",
			report.TotalURLs, report.SuccessCount, len(report.Errors))
	}
}

func TestAnalyze_ValidationErrors(t *testing.T) {
	upstreamCalls := 0
	counting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		upstreamCalls++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"record":{}}`))
	}))
	defer counting.Close()

	router := NewRouter(newTestService(t, counting.URL), testRouterConfig(), quietLogger())

	var tooMany []string
	for i := 0; i < 21; i++ {
		tooMany = append(tooMany, fmt.Sprintf("site-%d.example", i))
	}
	tooManyBody, _ := json.Marshal(map[string]any{"urls": tooMany})

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{"urls": `},
		{name: "missing urls", body: `{}`},
		{name: "empty urls", body: `{"urls": []}`},
		{name: "21 urls", body: string(tooManyBody)},
		{name: "invalid entry", body: `{"urls": ["ok.example", ""]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postAnalyze(t, router, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body)
			}

			var resp struct {
				Error   string         `json:"error"`
				Details map[string]any `json:"details"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Error != "Invalid input" {
				t.Errorf("error = %q, want %q", resp.Error, "Invalid input")
			}
			if len(resp.Details) == 0 {
				t.Error("details missing from validation error")
			}
		})
	}

	// Validation failures must never reach the upstream.
	if upstreamCalls != 0 {
		t.Errorf("upstream called %d times during validation failures", upstreamCalls)
	}
}

func TestAnalyze_NotConfigured503(t *testing.T) {
	router := NewRouter(nil, testRouterConfig(), quietLogger())
	w := postAnalyze(t, router, `{"urls": ["example.com"]}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503; body %s", w.Code, w.Body)
	}

	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error != "CrUX API error" || resp.Message == "" {
		t.Errorf("body = %+v, want CrUX API error with message", resp)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name           string
		svc            func(t *testing.T) *crux.Service
		wantConfigured bool
	}{
		{
			name:           "not configured",
			svc:            func(*testing.T) *crux.Service { return nil },
			wantConfigured: false,
		},
		{
			name: "configured",
			svc: func(t *testing.T) *crux.Service {
				return newTestService(t, "http://127.0.0.1:0")
			},
			wantConfigured: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(tt.svc(t), testRouterConfig(), quietLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}

			var health models.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
				t.Fatalf("decode health: %v", err)
			}
			if health.Status != "ok" {
				t.Errorf("status = %q, want ok", health.Status)
			}
			if health.APIConfigured != tt.wantConfigured {
				t.Errorf("apiConfigured = %t, want %t", health.APIConfigured, tt.wantConfigured)
			}
			if health.Version == "" || health.Timestamp == "" {
				t.Errorf("version/timestamp missing: %+v", health)
			}
		})
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := NewRouter(nil, testRouterConfig(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}

	// Incoming IDs are echoed back.
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q, want fixed-id", got)
	}
}

func TestRouter_CORS(t *testing.T) {
	router := NewRouter(nil, testRouterConfig(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want allowed origin", got)
	}

	// Unlisted origin gets no CORS headers.
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q for unlisted origin, want empty", got)
	}

	// Preflight short-circuits with 204.
	req = httptest.NewRequest(http.MethodOptions, "/api/analyze-url", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testRouterConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	router := NewRouter(nil, cfg, quietLogger())

	// Burst of 1: first analyze request passes (503, not configured),
	// second is rate limited. Health stays unthrottled.
	w := postAnalyze(t, router, `{"urls": ["example.com"]}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("first request status = %d, want 503", w.Code)
	}

	w = postAnalyze(t, router, `{"urls": ["example.com"]}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200 despite rate limit", rec.Code)
	}
}
