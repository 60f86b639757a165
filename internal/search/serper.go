package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/papercheck/papercheck/internal/util"
)

const (
	// SerperBaseURL is the Google Serper search endpoint.
	SerperBaseURL = "https://google.serper.dev"

	// DefaultSerperTimeout bounds one HTTP round trip.
	DefaultSerperTimeout = 15 * time.Second

	// DefaultRateLimit respects Serper's documented free-tier limits with
	// headroom for concurrent verification runs.
	DefaultRateLimit = 3.0
	DefaultBurst     = 3
)

// SerperClient is a rate-limited client for the Serper web search API. The
// limiter sits inside the client so every caller shares one egress budget no
// matter how many goroutines issue lookups.
type SerperClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

// SerperOption configures a SerperClient.
type SerperOption func(*SerperClient)

// WithAPIKey sets the X-API-KEY credential.
func WithAPIKey(key string) SerperOption {
	return func(c *SerperClient) { c.apiKey = key }
}

// WithBaseURL points the client at a different endpoint (tests).
func WithBaseURL(url string) SerperOption {
	return func(c *SerperClient) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) SerperOption {
	return func(c *SerperClient) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) SerperOption {
	return func(c *SerperClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit replaces the default egress budget.
func WithRateLimit(perSecond float64, burst int) SerperOption {
	return func(c *SerperClient) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithProxy routes requests through explicit proxies, falling back to the
// environment when both are empty.
func WithProxy(httpProxy, httpsProxy, noProxy string) SerperOption {
	return func(c *SerperClient) {
		c.httpClient.Transport = &http.Transport{
			Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
		}
	}
}

// NewSerperClient creates a Serper search client.
func NewSerperClient(opts ...SerperOption) *SerperClient {
	c := &SerperClient{
		httpClient: &http.Client{Timeout: DefaultSerperTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultBurst),
		baseURL:    SerperBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Provider.
func (c *SerperClient) Name() string { return "serper" }

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search implements Provider. Zero results is a valid, non-error outcome.
func (c *SerperClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if limit <= 0 {
		limit = 3
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(serperRequest{Query: query, Num: limit})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w (status %d)", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrAuth, resp.StatusCode)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(msg)}
	}

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	results := make([]Result, 0, len(sr.Organic))
	for _, o := range sr.Organic {
		results = append(results, Result{
			Title:   StripMarkup(o.Title),
			URL:     o.Link,
			Snippet: StripMarkup(o.Snippet),
			Source:  c.Name(),
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
