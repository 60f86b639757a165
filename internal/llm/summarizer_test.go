package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/papercheck/papercheck/internal/model"
)

type fakeProvider struct {
	resp *SummarizeResponse
	err  error

	lastPrompt string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Summarize(_ context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	f.lastPrompt = req.Prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func sampleReport() *model.Report {
	return &model.Report{
		Subject: "my-paper",
		Categories: []model.CategoryResult{
			{
				Category: model.CategorySparsity,
				Status:   model.StatusFailed,
				Errors:   1,
				Findings: []model.Finding{
					{Category: model.CategorySparsity, Severity: model.SeverityError, Message: "document is mostly fragments"},
					{Category: model.CategorySparsity, Severity: model.SeverityWarning, Line: 4, Message: "sparse paragraph"},
				},
			},
			{Category: model.CategoryCitation, Status: model.StatusPassed},
			{Category: model.CategoryBibliography, Status: model.StatusSkipped, Note: "no bibliography supplied"},
		},
		Summary: model.Summary{Pass: false, TotalFindings: 2, Errors: 1, Warnings: 1},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleReport())

	for _, want := range []string{
		"Subject: my-paper",
		"FAIL (1 errors, 1 warnings",
		"sparsity: failed",
		"bibliography: skipped (no bibliography supplied)",
		"document is mostly fragments",
		"line 4: sparse paragraph",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}

	// Errors must come before warnings so a capped sample keeps the worst.
	errIdx := strings.Index(prompt, "document is mostly fragments")
	warnIdx := strings.Index(prompt, "sparse paragraph")
	if errIdx > warnIdx {
		t.Error("expected error findings to be listed before warnings")
	}
}

func TestBuildPromptCapsSamples(t *testing.T) {
	rep := sampleReport()
	var many []model.Finding
	for i := 0; i < 50; i++ {
		many = append(many, model.Finding{
			Category: model.CategorySparsity,
			Severity: model.SeverityWarning,
			Line:     i + 1,
			Message:  fmt.Sprintf("sparse paragraph %d", i),
		})
	}
	rep.Categories[0].Findings = many

	prompt := BuildPrompt(rep)
	if n := strings.Count(prompt, "sparse paragraph"); n > 10 {
		t.Errorf("expected at most 10 sample findings, got %d", n)
	}
}

func TestSummarizerAttachesMetadata(t *testing.T) {
	fake := &fakeProvider{resp: &SummarizeResponse{Summary: "Fix sparsity.", Model: "m1"}}
	s := &Summarizer{provider: fake, maxTokens: 100}

	adv, err := s.Summarize(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if adv.Provider != "fake" || adv.Model != "m1" || adv.Text != "Fix sparsity." {
		t.Errorf("unexpected advisory: %+v", adv)
	}
	if len(adv.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", adv.Warnings)
	}
	if !strings.Contains(fake.lastPrompt, "Subject: my-paper") {
		t.Error("summarizer did not build the report prompt")
	}
}

func TestSummarizerWarnsOnTruncation(t *testing.T) {
	fake := &fakeProvider{resp: &SummarizeResponse{Summary: "Partial", Model: "m1", Truncated: true}}
	s := &Summarizer{provider: fake}

	adv, err := s.Summarize(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if len(adv.Warnings) != 1 || !strings.Contains(adv.Warnings[0], "token limit") {
		t.Errorf("expected a truncation warning, got %v", adv.Warnings)
	}
}

func TestNewProviderFactory(t *testing.T) {
	if p, err := NewProvider(Config{}); err != nil || p != nil {
		t.Errorf("empty provider should disable, got %v, %v", p, err)
	}
	if _, err := NewProvider(Config{Provider: "watson"}); err == nil {
		t.Error("expected error for unknown provider")
	}
	p, err := NewProvider(Config{Provider: "ollama", Model: "llama3.1"})
	if err != nil {
		t.Fatalf("ollama provider failed: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("unexpected provider name %q", p.Name())
	}
	if _, err := NewSummarizer(Config{}); err == nil {
		t.Error("summarizer with no provider should fail")
	}
}
