package graphapi

import (
	"strings"
	"testing"
)

func TestValidateBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		allowed []string
		wantErr string
	}{
		{"empty defaults ok", "", nil, ""},
		{"default host ok", "https://graph.facebook.com", nil, ""},
		{"video host ok", "https://graph-video.facebook.com/", nil, ""},
		{"http rejected", "http://graph.facebook.com", nil, "https is required"},
		{"unknown host rejected", "https://evil.example.com", nil, "not allowed"},
		{"userinfo rejected", "https://user@graph.facebook.com", nil, "userinfo"},
		{"query rejected", "https://graph.facebook.com?x=1", nil, "query and fragment"},
		{"relative rejected", "graph.facebook.com", nil, "absolute URL"},
		{"custom allow list", "https://proxy.internal", []string{"proxy.internal"}, ""},
		{"custom allow list miss", "https://graph.facebook.com", []string{"proxy.internal"}, "not allowed"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateBaseURL(tt.baseURL, tt.allowed)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	if got := normalizeBaseURL("  https://graph.facebook.com/  "); got != "https://graph.facebook.com" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := normalizeBaseURL(""); got != defaultBaseURL {
		t.Fatalf("empty input should default, got %q", got)
	}
}
