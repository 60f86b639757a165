package detect

import (
	"strings"
	"testing"

	"github.com/papercheck/papercheck/internal/bibtex"
	"github.com/papercheck/papercheck/internal/markup"
	"github.com/papercheck/papercheck/internal/model"
)

func TestCitation_MalformedShape(t *testing.T) {
	doc := markup.Parse("paper", "As shown in [not a key] the effect holds.")

	findings := NewCitation(model.CitationConfig{Enabled: true}).Detect(doc, nil)

	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d: %v", len(findings), findings)
	}
	f := findings[0]
	if f.Severity != model.SeverityWarning {
		t.Errorf("Expected warning severity, got %s", f.Severity)
	}
	if !strings.Contains(f.Message, "[@key] form") {
		t.Errorf("Expected a shape message, got %q", f.Message)
	}
}

func TestCitation_DanglingKey(t *testing.T) {
	doc := markup.Parse("paper", "Prior work [@known2020] and [@ghost2021] agree.")
	bib := bibtex.Parse("@article{known2020, title={Known Work}}")

	findings := NewCitation(model.CitationConfig{Enabled: true}).Detect(doc, bib)

	if len(findings) != 1 {
		t.Fatalf("Expected 1 dangling finding, got %d: %v", len(findings), findings)
	}
	f := findings[0]
	if f.Severity != model.SeverityError {
		t.Errorf("Expected error severity for a dangling key, got %s", f.Severity)
	}
	if !strings.Contains(f.Message, "ghost2021") {
		t.Errorf("Expected the dangling key in the message, got %q", f.Message)
	}
}

func TestCitation_NoBibliographySkipsKeyCheck(t *testing.T) {
	doc := markup.Parse("paper", "Prior work [@whatever2020] is cited.")

	findings := NewCitation(model.CitationConfig{Enabled: true}).Detect(doc, nil)

	if len(findings) != 0 {
		t.Fatalf("Expected no findings without a bibliography, got %v", findings)
	}
}

func TestCitation_CleanDocument(t *testing.T) {
	doc := markup.Parse("paper", "Both [@a2020] and [@b2021] hold up.")
	bib := bibtex.Parse("@article{a2020, title={A}}\n@article{b2021, title={B}}")

	findings := NewCitation(model.CitationConfig{Enabled: true}).Detect(doc, bib)

	if len(findings) != 0 {
		t.Fatalf("Expected no findings, got %v", findings)
	}
}
