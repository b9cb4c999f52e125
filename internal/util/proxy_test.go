package util

import (
	"net/http"
	"net/url"
	"testing"
)

func proxyFor(t *testing.T, fn func(*http.Request) (*url.URL, error), rawURL string) *url.URL {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		t.Fatalf("Expected no error building request, got %v", err)
	}
	u, err := fn(req)
	if err != nil {
		t.Fatalf("Expected no error selecting proxy, got %v", err)
	}
	return u
}

func TestNewProxyFunc_SchemeSelection(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "http://sproxy:3129", "")

	if u := proxyFor(t, fn, "http://example.com/doc.csv"); u == nil || u.Host != "proxy:3128" {
		t.Errorf("Expected http proxy, got %v", u)
	}
	if u := proxyFor(t, fn, "https://example.com/doc.csv"); u == nil || u.Host != "sproxy:3129" {
		t.Errorf("Expected https proxy, got %v", u)
	}
}

func TestNewProxyFunc_HTTPProxyCoversHTTPS(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "", "")

	if u := proxyFor(t, fn, "https://example.com/"); u == nil || u.Host != "proxy:3128" {
		t.Errorf("Expected fallback to http proxy, got %v", u)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "", "bund.de, .example.org")

	tests := []struct {
		url      string
		bypassed bool
	}{
		{"https://www.bund.de/doc", true},
		{"https://bund.de/doc", true},
		{"https://bsi.bund.de/doc", true},
		{"https://notbund.de/doc", false},
		{"https://sub.example.org/doc", true},
		{"https://other.com/doc", false},
	}

	for _, tt := range tests {
		u := proxyFor(t, fn, tt.url)
		if tt.bypassed && u != nil {
			t.Errorf("Expected %s to bypass the proxy, got %v", tt.url, u)
		}
		if !tt.bypassed && u == nil {
			t.Errorf("Expected %s to use the proxy", tt.url)
		}
	}
}
