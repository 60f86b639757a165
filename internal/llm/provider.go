// Package llm generates the optional advisory summary appended to a report.
// The summary is commentary for the paper's author; it is produced after
// aggregation and can never change findings, verdicts, or the pass result.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/papercheck/papercheck/internal/model"
)

// Provider is one LLM backend.
type Provider interface {
	// Name returns the provider name as it appears in the report.
	Name() string

	// Summarize turns the prompt into advisory prose.
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)
}

// SummarizeRequest is the provider-agnostic generation request.
type SummarizeRequest struct {
	Prompt    string
	Model     string // Overrides the configured model when set
	MaxTokens int
}

// SummarizeResponse is the provider-agnostic generation result.
type SummarizeResponse struct {
	Summary    string
	Model      string // Model that actually answered
	TokensUsed int
	Truncated  bool // Generation stopped at the token limit
}

// Config holds LLM provider configuration.
type Config struct {
	Provider  string // openai, ollama, "" for disabled
	Model     string
	APIKey    string
	BaseURL   string // Custom endpoint, e.g. an OpenAI-compatible proxy
	Timeout   int    // Seconds
	MaxTokens int
}

const systemPrompt = "You are an assistant that writes short advisory notes " +
	"about automated paper-quality reports. The report is the only ground " +
	"truth: never invent findings and never dispute verdicts."

// BuildPrompt renders the report into the generation prompt. Only aggregate
// numbers and a capped sample of findings go in, so prompt size stays bounded
// regardless of paper size.
func BuildPrompt(rep *model.Report) string {
	var b strings.Builder

	b.WriteString("Below is an automated quality report for a paper. Write 3 to 5 sentences\n")
	b.WriteString("for the paper's author: what to fix first and why. Mention only problems\n")
	b.WriteString("listed in the report.\n\n")

	fmt.Fprintf(&b, "Subject: %s\n", rep.Subject)
	fmt.Fprintf(&b, "Result: %s (%d errors, %d warnings, %d info)\n",
		passWord(rep.Summary.Pass), rep.Summary.Errors, rep.Summary.Warnings, rep.Summary.Infos)

	b.WriteString("Categories:\n")
	for _, cr := range rep.Categories {
		if cr.Note != "" {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", cr.Category, cr.Status, cr.Note)
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", cr.Category, cr.Status)
		}
	}

	if rep.Stats.Active > 0 {
		fmt.Fprintf(&b, "Bibliography: %d of %d cited works verified, %d unverified, %d ambiguous, %d lookups failed\n",
			rep.Stats.Verified, rep.Stats.Active, rep.Stats.Unverified, rep.Stats.Ambiguous, rep.Stats.LookupFailed)
	}

	if samples := sampleFindings(rep, 10); len(samples) > 0 {
		b.WriteString("Sample findings:\n")
		for _, f := range samples {
			if f.Line > 0 {
				fmt.Fprintf(&b, "- [%s] line %d: %s\n", f.Severity, f.Line, f.Message)
			} else {
				fmt.Fprintf(&b, "- [%s] %s\n", f.Severity, f.Message)
			}
		}
	}

	return b.String()
}

// sampleFindings takes up to max findings, errors first, preserving category
// order within each severity.
func sampleFindings(rep *model.Report, max int) []model.Finding {
	var out []model.Finding
	for _, sev := range []model.Severity{model.SeverityError, model.SeverityWarning, model.SeverityInfo} {
		for _, cr := range rep.Categories {
			for _, f := range cr.Findings {
				if f.Severity != sev {
					continue
				}
				out = append(out, f)
				if len(out) == max {
					return out
				}
			}
		}
	}
	return out
}

func passWord(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
