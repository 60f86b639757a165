package detect

import (
	"fmt"

	"github.com/papercheck/papercheck/internal/model"
)

// Citation checks citation token shape and, when a bibliography is supplied,
// key existence. Without a bibliography only shape is checked; dangling-key
// detection is skipped rather than guessed at.
type Citation struct {
	cfg model.CitationConfig
}

// NewCitation creates the citation-format detector.
func NewCitation(cfg model.CitationConfig) *Citation {
	return &Citation{cfg: cfg}
}

// Category implements Detector.
func (c *Citation) Category() model.Category { return model.CategoryCitation }

// Detect implements Detector.
func (c *Citation) Detect(doc *model.Document, bib *model.Bibliography) []model.Finding {
	var findings []model.Finding

	for _, tok := range doc.Citations {
		if !tok.WellFormed {
			findings = append(findings, model.Finding{
				Category:   model.CategoryCitation,
				Severity:   model.SeverityWarning,
				Line:       tok.Line,
				Start:      tok.Start,
				End:        tok.End,
				Message:    fmt.Sprintf("bracketed reference %s does not use the [@key] form", tok.Raw),
				Suggestion: "cite as [@key] with a key from the bibliography",
			})
			continue
		}
		if bib == nil {
			continue
		}
		if _, ok := bib.Lookup(tok.Key); !ok {
			findings = append(findings, model.Finding{
				Category:   model.CategoryCitation,
				Severity:   model.SeverityError,
				Line:       tok.Line,
				Start:      tok.Start,
				End:        tok.End,
				Message:    fmt.Sprintf("dangling citation [@%s]: no bibliography entry with this key", tok.Key),
				Suggestion: "add the entry to the bibliography or fix the key",
			})
		}
	}

	return findings
}
