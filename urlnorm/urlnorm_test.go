package urlnorm

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare domain", in: "example.com", want: "https://example.com"},
		{name: "protocol-relative", in: "//example.com", want: "https://example.com"},
		{name: "already https", in: "https://example.com", want: "https://example.com"},
		{name: "already http", in: "http://example.com", want: "http://example.com"},
		{name: "uppercase scheme", in: "HTTPS://example.com", want: "HTTPS://example.com"},
		{name: "surrounding whitespace", in: "  example.com \n", want: "https://example.com"},
		{name: "path and query kept", in: "example.com/a?b=c", want: "https://example.com/a?b=c"},
		{name: "idn host to punycode", in: "bücher.de", want: "https://xn--bcher-kva.de"},
		{name: "idn host with port", in: "bücher.de:8080/x", want: "https://xn--bcher-kva.de:8080/x"},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
		{name: "no host", in: "https://", wantErr: true},
		{name: "control character", in: "https://exa mple.com\x7f", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_LengthCeiling(t *testing.T) {
	long := "example.com/" + strings.Repeat("a", MaxURLLength)
	if _, err := Normalize(long); err == nil {
		t.Fatal("expected error for oversized URL, got nil")
	}
}

func TestNormalizeBatch_DedupPreservesOrder(t *testing.T) {
	got, err := NormalizeBatch([]string{"b.com", "a.com", "https://b.com", "a.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"https://b.com", "https://a.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeBatch = %v, want %v", got, want)
	}
}

func TestNormalizeBatch_ExactDuplicates(t *testing.T) {
	got, err := NormalizeBatch([]string{"a.com", "a.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "https://a.com" {
		t.Errorf("NormalizeBatch = %v, want [https://a.com]", got)
	}
}

func TestNormalizeBatch_NeverGrows(t *testing.T) {
	in := []string{"a.com", "b.com", "c.com", "a.com", "//b.com"}
	got, err := NormalizeBatch(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > len(in) {
		t.Errorf("output size %d exceeds input size %d", len(got), len(in))
	}
}

func TestNormalizeBatch_Empty(t *testing.T) {
	_, err := NormalizeBatch(nil)
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected *BatchError, got %v", err)
	}
	if _, ok := batchErr.Fields["urls"]; !ok {
		t.Errorf("expected field error on %q, got %v", "urls", batchErr.Fields)
	}
}

func TestNormalizeBatch_CeilingBeforeDedup(t *testing.T) {
	// 21 copies of the same URL would dedup to one entry, but the ceiling
	// applies to the raw input.
	raws := make([]string, MaxBatchSize+1)
	for i := range raws {
		raws[i] = "example.com"
	}
	_, err := NormalizeBatch(raws)
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected *BatchError for %d entries, got %v", len(raws), err)
	}
}

func TestNormalizeBatch_OneBadEntryFailsAll(t *testing.T) {
	_, err := NormalizeBatch([]string{"a.com", "", "b.com"})
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected *BatchError, got %v", err)
	}
	if _, ok := batchErr.Fields["urls[1]"]; !ok {
		t.Errorf("expected field error on urls[1], got %v", batchErr.Fields)
	}
	if len(batchErr.Fields) != 1 {
		t.Errorf("expected exactly one field error, got %v", batchErr.Fields)
	}
}

func TestNormalizeBatch_MaxBatchAccepted(t *testing.T) {
	raws := make([]string, MaxBatchSize)
	for i := range raws {
		raws[i] = fmt.Sprintf("site-%d.com", i)
	}
	got, err := NormalizeBatch(raws)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != MaxBatchSize {
		t.Errorf("got %d URLs, want %d", len(got), MaxBatchSize)
	}
}
