package detect

import (
	"fmt"

	"github.com/papercheck/papercheck/internal/model"
)

// Code flags every code span: academic prose should contain none. Fenced
// blocks are the strongest signal of a technical document pasted into a
// paper, so they alone carry error severity.
type Code struct {
	cfg model.CodeConfig
}

// NewCode creates the code-block detector.
func NewCode(cfg model.CodeConfig) *Code {
	return &Code{cfg: cfg}
}

// Category implements Detector.
func (c *Code) Category() model.Category { return model.CategoryCode }

// Detect implements Detector.
func (c *Code) Detect(doc *model.Document, _ *model.Bibliography) []model.Finding {
	var findings []model.Finding

	for _, span := range doc.CodeSpans {
		var f model.Finding
		switch span.Kind {
		case model.CodeFenced:
			label := "fenced code block"
			if span.Language != "" {
				label = fmt.Sprintf("fenced %s code block", span.Language)
			}
			f = model.Finding{
				Category:   model.CategoryCode,
				Severity:   model.SeverityError,
				Line:       span.StartLine,
				Message:    fmt.Sprintf("%s of %d lines", label, span.EndLine-span.StartLine+1),
				Suggestion: "move the code to a repository or appendix and describe it in prose",
			}
		case model.CodeInline:
			f = model.Finding{
				Category:   model.CategoryCode,
				Severity:   model.SeverityWarning,
				Line:       span.StartLine,
				Message:    fmt.Sprintf("inline code span %q", truncateSpan(span.Text)),
				Suggestion: "name the identifier in prose or italics instead of code markup",
			}
		case model.CodeIndented:
			f = model.Finding{
				Category:   model.CategoryCode,
				Severity:   model.SeverityWarning,
				Line:       span.StartLine,
				Message:    fmt.Sprintf("indented code block of %d lines", span.EndLine-span.StartLine+1),
				Suggestion: "if this is a quotation, use quote markup; if code, it does not belong in the paper",
			}
		default:
			continue
		}
		f.Data = map[string]any{"kind": string(span.Kind)}
		findings = append(findings, f)
	}

	return findings
}

func truncateSpan(s string) string {
	if r := []rune(s); len(r) > 40 {
		return string(r[:40]) + "..."
	}
	return s
}
