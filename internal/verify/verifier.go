// Package verify implements bibliography authenticity verification: each
// active entry is looked up against the external search collaborator and
// scored by lexical overlap. Verification degrades, never aborts: one entry's
// failure is that entry's verdict and nothing more.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/papercheck/papercheck/internal/cache"
	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/search"
)

// Verifier runs bounded-concurrency lookups over active bibliography entries.
type Verifier struct {
	provider search.Provider
	store    cache.Cache // nil disables caching

	concurrency        int
	lookupTimeout      time.Duration
	verifiedThreshold  float64
	ambiguousThreshold float64
	maxResults         int
	cacheTTL           time.Duration
}

// New creates a verifier. The store may be nil; the provider may not.
func New(provider search.Provider, store cache.Cache, cfg model.VerifyConfig, maxResults int, cacheTTL time.Duration) *Verifier {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Verifier{
		provider:           provider,
		store:              store,
		concurrency:        concurrency,
		lookupTimeout:      cfg.LookupTimeout,
		verifiedThreshold:  cfg.VerifiedThreshold,
		ambiguousThreshold: cfg.AmbiguousThreshold,
		maxResults:         maxResults,
		cacheTTL:           cacheTTL,
	}
}

// VerifyEntries verifies all entries and returns one verdict per entry in
// input order. The bool result reports incompleteness: true when cancellation
// stopped lookups from being issued. Partial verdict sets are valid results.
func (v *Verifier) VerifyEntries(ctx context.Context, entries []model.BibEntry) ([]model.Verdict, model.VerificationStats, bool) {
	verdicts := make([]model.Verdict, len(entries))
	if len(entries) == 0 {
		return verdicts, model.VerificationStats{}, false
	}

	var incomplete atomic.Bool
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.concurrency)

	for i, entry := range entries {
		wg.Add(1)
		go func(idx int, e model.BibEntry) {
			defer wg.Done()

			// Cancellation stops new lookups; in-flight ones finish on
			// their own contexts.
			select {
			case <-ctx.Done():
				incomplete.Store(true)
				verdicts[idx] = model.Verdict{
					Key:    e.Key,
					Title:  e.Title,
					Status: model.VerdictLookupFailed,
					Cause:  "verification cancelled before lookup",
					Line:   e.Line,
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			verdicts[idx] = v.verifyOne(ctx, e)
		}(i, entry)
	}
	wg.Wait()

	return verdicts, Stats(verdicts), incomplete.Load()
}

// verifyOne resolves a single entry to a verdict. Every failure path returns
// a verdict with a cause; nothing escapes as an error.
func (v *Verifier) verifyOne(ctx context.Context, e model.BibEntry) model.Verdict {
	verdict := model.Verdict{Key: e.Key, Title: e.Title, Line: e.Line}

	if strings.TrimSpace(e.Title) == "" {
		verdict.Status = model.VerdictLookupFailed
		verdict.Cause = "entry has no title to search for"
		return verdict
	}

	query := BuildQuery(e)
	results, err := v.lookup(ctx, query)
	if err != nil {
		verdict.Status = model.VerdictLookupFailed
		verdict.Cause = lookupCause(err, v.lookupTimeout)
		log.Debug().Str("key", e.Key).Err(err).Msg("bibliography lookup failed")
		return verdict
	}

	best, score := bestMatch(e.Title, results)
	verdict.Confidence = score
	switch {
	case score >= v.verifiedThreshold:
		verdict.Status = model.VerdictVerified
	case score >= v.ambiguousThreshold:
		verdict.Status = model.VerdictAmbiguous
	default:
		verdict.Status = model.VerdictUnverified
	}
	if best != nil {
		verdict.Evidence = best.Title
		verdict.URL = best.URL
	}
	return verdict
}

// lookup issues one search with the per-lookup timeout, going through the
// cache when one is configured. Only successful result sets are cached.
func (v *Verifier) lookup(ctx context.Context, query string) ([]search.Result, error) {
	key := cache.Key("lookup", v.provider.Name(), NormalizeQuery(query))

	if v.store != nil {
		if data, ok := v.store.Get(key); ok {
			var cached []search.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			// Unreadable cache entries are treated as misses.
			_ = v.store.Delete(key)
		}
	}

	lctx := ctx
	if v.lookupTimeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, v.lookupTimeout)
		defer cancel()
	}

	results, err := v.provider.Search(lctx, query, v.maxResults)
	if err != nil {
		return nil, err
	}

	if v.store != nil {
		if data, err := json.Marshal(results); err == nil {
			if err := v.store.Set(key, data, v.cacheTTL); err != nil {
				log.Debug().Err(err).Msg("lookup cache write failed")
			}
		}
	}
	return results, nil
}

// BuildQuery constructs the search query: exact title phrase plus the first
// author and year when present.
func BuildQuery(e model.BibEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q", strings.TrimSpace(e.Title))
	if a := e.FirstAuthor(); a != "" {
		b.WriteString(" ")
		b.WriteString(a)
	}
	if e.Year != "" {
		b.WriteString(" ")
		b.WriteString(e.Year)
	}
	return b.String()
}

// bestMatch scores the entry title against every result, looking at the
// result title and, damped, its snippet. Snippets mention titles in passing,
// so a snippet-only match counts for less.
func bestMatch(title string, results []search.Result) (*search.Result, float64) {
	var best *search.Result
	bestScore := 0.0
	for i := range results {
		r := &results[i]
		score := TitleSimilarity(title, r.Title)
		if s := 0.9 * TitleSimilarity(title, r.Snippet); s > score {
			score = s
		}
		if score > bestScore {
			bestScore = score
			best = r
		}
	}
	if bestScore > 1 {
		bestScore = 1
	}
	return best, bestScore
}

// lookupCause renders the retained failure detail for a lookup-failed
// verdict.
func lookupCause(err error, timeout time.Duration) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("lookup timed out after %v", timeout)
	case errors.Is(err, context.Canceled):
		return "lookup cancelled"
	case search.IsRateLimited(err):
		return "search quota exceeded: " + err.Error()
	case search.IsAuth(err):
		return "search authentication failed: " + err.Error()
	default:
		return err.Error()
	}
}

// Stats aggregates a verdict set.
func Stats(verdicts []model.Verdict) model.VerificationStats {
	s := model.VerificationStats{Active: len(verdicts)}
	for _, v := range verdicts {
		switch v.Status {
		case model.VerdictVerified:
			s.Verified++
		case model.VerdictUnverified:
			s.Unverified++
		case model.VerdictAmbiguous:
			s.Ambiguous++
		case model.VerdictLookupFailed:
			s.LookupFailed++
		}
	}
	if s.Active > 0 {
		s.AuthenticityRate = float64(s.Verified) / float64(s.Active)
	}
	return s
}
