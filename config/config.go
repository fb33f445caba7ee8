package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCruxAPIURL is the Chrome UX Report API query endpoint.
const DefaultCruxAPIURL = "https://chromeuxreport.googleapis.com/v1/records:queryRecord"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Crux      CruxConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig

	// Debug switches the HTTP framework into debug mode.
	Debug bool // default: false
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
}

// CruxConfig controls the upstream Chrome UX Report API client.
type CruxConfig struct {
	// APIKey is the CrUX API credential. Required for analysis requests;
	// the service starts without it but reports apiConfigured=false and
	// rejects analysis with 503.
	APIKey string

	// APIURL is the CrUX query endpoint.
	APIURL string // default: DefaultCruxAPIURL

	// Timeout is the per-URL upstream request deadline.
	Timeout time.Duration // default: 10s
}

// CORSConfig controls cross-origin access.
type CORSConfig struct {
	// AllowedOrigins lists origins permitted to call the API.
	// "*" allows any origin. Empty disables CORS headers.
	AllowedOrigins []string
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per client IP.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("CRUXLENS_HOST", "0.0.0.0"),
			Port: envIntOr("CRUXLENS_PORT", 8080),
		},
		Crux: CruxConfig{
			APIKey:  os.Getenv("CRUX_API_KEY"),
			APIURL:  envOr("CRUX_API_URL", DefaultCruxAPIURL),
			Timeout: envDurationOr("CRUX_API_TIMEOUT", 10*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: envSliceOr("CRUXLENS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000", "http://127.0.0.1:3000",
			}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("CRUXLENS_RATE_RPS", 5.0),
			Burst:             envIntOr("CRUXLENS_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("CRUXLENS_LOG_LEVEL", "info"),
			Format: envOr("CRUXLENS_LOG_FORMAT", "json"),
		},
		Debug: envBoolOr("CRUXLENS_DEBUG", false),
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
