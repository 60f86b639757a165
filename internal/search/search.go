// Package search wraps the external search collaborators the authenticity
// verifier talks to. Providers return ranked results or a classified error;
// they never retry on their own and never touch verification logic.
package search

import (
	"context"
	"fmt"

	"github.com/papercheck/papercheck/internal/model"
)

// Result is a single search hit from any provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"` // provider name for observability
}

// Provider is the minimal search interface. Implementations classify
// failures through the sentinel errors in this package so the verifier can
// fold them into per-entry verdicts.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// NewProvider builds the configured provider. An empty Serper API key is not
// an error here; the caller decides whether to degrade to a skipped state.
func NewProvider(cfg model.SearchConfig) (Provider, error) {
	switch cfg.Provider {
	case "serper":
		opts := []SerperOption{
			WithAPIKey(cfg.APIKey),
			WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
			WithTimeout(cfg.Timeout),
			WithProxy(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		return NewSerperClient(opts...), nil
	case "searxng":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("searxng provider requires search.base_url")
		}
		return &SearxNG{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file provider requires search.file_path")
		}
		return &FileProvider{Path: cfg.FilePath}, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}
