// Package urlnorm validates and normalizes batches of user-supplied URLs.
//
// Entries may omit the scheme ("example.com", "//example.com"); https is
// assumed. Hostnames are converted to their ASCII (punycode) form so that
// internationalized domains dedup and fetch consistently.
package urlnorm

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

const (
	// MaxURLLength is the maximum accepted length of a normalized URL.
	MaxURLLength = 2048

	// MaxBatchSize is the maximum number of URLs accepted per request,
	// enforced before deduplication.
	MaxBatchSize = 20
)

// BatchError reports which entries of a batch failed validation.
// Fields maps a field name ("urls", "urls[3]") to a message.
type BatchError struct {
	Fields map[string]string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("invalid URL batch: %d field error(s)", len(e.Fields))
}

// Normalize trims an entry, injects the https scheme when absent, and
// validates the result as an absolute http/https URL.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("URL must not be empty")
	}

	switch {
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	case !hasHTTPScheme(s):
		s = "https://" + s
	}

	if len(s) > MaxURLLength {
		return "", fmt.Errorf("URL exceeds %d characters", MaxURLLength)
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("not a valid URL: %v", err)
	}
	if u.Host == "" || u.Hostname() == "" {
		return "", fmt.Errorf("URL has no host")
	}

	host, err := idna.ToASCII(u.Hostname())
	if err != nil {
		return "", fmt.Errorf("invalid hostname %q: %v", u.Hostname(), err)
	}
	if host != u.Hostname() {
		if port := u.Port(); port != "" {
			u.Host = host + ":" + port
		} else {
			u.Host = host
		}
		s = u.String()
	}

	return s, nil
}

// NormalizeBatch validates a raw batch and returns the ordered,
// deduplicated, scheme-complete URL list. The size ceiling applies to the
// raw input; any single invalid entry fails the whole batch with
// per-field detail in a *BatchError.
func NormalizeBatch(raws []string) ([]string, error) {
	if len(raws) == 0 {
		return nil, &BatchError{Fields: map[string]string{
			"urls": "at least one URL is required",
		}}
	}
	if len(raws) > MaxBatchSize {
		return nil, &BatchError{Fields: map[string]string{
			"urls": fmt.Sprintf("at most %d URLs per request, got %d", MaxBatchSize, len(raws)),
		}}
	}

	fields := make(map[string]string)
	seen := make(map[string]struct{}, len(raws))
	out := make([]string, 0, len(raws))

	for i, raw := range raws {
		normalized, err := Normalize(raw)
		if err != nil {
			fields[fmt.Sprintf("urls[%d]", i)] = err.Error()
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}

	if len(fields) > 0 {
		return nil, &BatchError{Fields: fields}
	}
	return out, nil
}

// hasHTTPScheme reports whether s starts with http:// or https://,
// case-insensitively.
func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
