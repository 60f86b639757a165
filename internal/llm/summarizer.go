package llm

import (
	"context"
	"fmt"

	"github.com/papercheck/papercheck/internal/model"
)

// Summarizer drives a provider to produce the report's advisory summary.
type Summarizer struct {
	provider  Provider
	maxTokens int
}

// NewSummarizer builds a summarizer for the configured provider. It fails
// when no provider is configured or the provider cannot be constructed.
func NewSummarizer(cfg Config) (*Summarizer, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("no llm provider configured")
	}
	return &Summarizer{provider: provider, maxTokens: cfg.MaxTokens}, nil
}

// Summarize generates the advisory summary for a finished report. Generation
// problems that still yield text become warnings on the summary instead of
// errors.
func (s *Summarizer) Summarize(ctx context.Context, rep *model.Report) (*model.AdvisorySummary, error) {
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Prompt:    BuildPrompt(rep),
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	adv := &model.AdvisorySummary{
		Provider: s.provider.Name(),
		Model:    resp.Model,
		Text:     resp.Summary,
	}
	if resp.Summary == "" {
		adv.Warnings = append(adv.Warnings, "provider returned an empty summary")
	}
	if resp.Truncated {
		adv.Warnings = append(adv.Warnings, "summary was cut off at the token limit")
	}
	return adv, nil
}
