package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SearxNG queries a self-hosted SearXNG instance's /search endpoint. It is
// the keyless alternative to Serper for installations that cannot send paper
// titles to a commercial API.
type SearxNG struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Name implements Provider.
func (s *SearxNG) Name() string { return "searxng" }

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements Provider.
func (s *SearxNG) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if s.BaseURL == "" {
		return nil, fmt.Errorf("searxng base URL not configured")
	}
	if limit <= 0 {
		limit = 3
	}

	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse searxng base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/search") {
		u.Path = strings.TrimRight(u.Path, "/") + "/search"
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("categories", "science,general")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build searxng request: %w", err)
	}

	hc := s.HTTPClient
	if hc == nil {
		timeout := s.Timeout
		if timeout <= 0 {
			timeout = DefaultSerperTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w (status %d)", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrAuth, resp.StatusCode)
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "searxng request failed"}
	}

	var sr searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	results := make([]Result, 0, limit)
	for _, r := range sr.Results {
		if r.Title == "" {
			continue
		}
		results = append(results, Result{
			Title:   StripMarkup(r.Title),
			URL:     r.URL,
			Snippet: StripMarkup(r.Content),
			Source:  s.Name(),
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
