// Package util holds small helpers shared across packages, free of project
// dependencies.
package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc builds the Transport proxy callback for outbound search
// traffic. Explicit proxy URLs win over the environment; hosts matched by
// noProxy (comma-separated names, suffix match, "*" for all) connect
// directly.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	skip := splitNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if hostMatches(req.URL.Hostname(), skip) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func splitNoProxy(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimPrefix(part, "."))
		}
	}
	return out
}

func hostMatches(host string, patterns []string) bool {
	for _, p := range patterns {
		if p == "*" || host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}
