package util

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func proxyFor(t *testing.T, fn func(*http.Request) (*url.URL, error), target string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	u, err := fn(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if u == nil {
		return ""
	}
	return u.String()
}

func TestNewProxyFunc_SchemeRouting(t *testing.T) {
	fn := NewProxyFunc("http://proxy-a:3128", "http://proxy-b:3128", "")

	if got := proxyFor(t, fn, "http://example.com/search"); got != "http://proxy-a:3128" {
		t.Errorf("Expected the HTTP proxy, got %q", got)
	}
	if got := proxyFor(t, fn, "https://example.com/search"); got != "http://proxy-b:3128" {
		t.Errorf("Expected the HTTPS proxy, got %q", got)
	}
}

func TestNewProxyFunc_HTTPProxyCoversBoth(t *testing.T) {
	fn := NewProxyFunc("http://proxy-a:3128", "", "")

	if got := proxyFor(t, fn, "https://example.com/search"); got != "http://proxy-a:3128" {
		t.Errorf("Expected the HTTP proxy to apply to HTTPS, got %q", got)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	fn := NewProxyFunc("http://proxy-a:3128", "", "example.com, internal")

	if got := proxyFor(t, fn, "https://api.example.com/v1"); got != "" {
		t.Errorf("Expected a direct connection for a bypassed host, got %q", got)
	}
	if got := proxyFor(t, fn, "https://other.org/"); got != "http://proxy-a:3128" {
		t.Errorf("Expected the proxy for other hosts, got %q", got)
	}
}

func TestNewProxyFunc_Wildcard(t *testing.T) {
	fn := NewProxyFunc("http://proxy-a:3128", "", "*")

	if got := proxyFor(t, fn, "https://anything.example.org/"); got != "" {
		t.Errorf("Expected a direct connection for every host, got %q", got)
	}
}
