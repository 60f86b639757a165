package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FileProvider serves results from a local JSON fixture: an array of
// {"title", "url", "snippet"} objects. It exists for offline runs and tests;
// results whose title or snippet share a word with the query are returned in
// file order.
type FileProvider struct {
	Path string
}

// Name implements Provider.
func (f *FileProvider) Name() string { return "file" }

// Search implements Provider.
func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, fmt.Errorf("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read search fixture: %w", err)
	}
	var raw []Result
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if limit <= 0 {
		limit = 3
	}

	words := strings.Fields(strings.ToLower(query))
	var out []Result
	for _, r := range raw {
		if r.Title == "" {
			continue
		}
		if !matchesAny(strings.ToLower(r.Title+" "+r.Snippet), words) {
			continue
		}
		r.Source = f.Name()
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func matchesAny(text string, words []string) bool {
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		w = strings.Trim(w, `"`)
		if w != "" && strings.Contains(text, w) {
			return true
		}
	}
	return false
}
