package detect

import (
	"fmt"

	"github.com/papercheck/papercheck/internal/model"
)

// ReferenceCount checks citation density: the count of distinct well-formed
// citation keys against a configurable minimum. It emits at most one
// document-level finding and never an error; short communications legitimately
// cite few works, so a low count informs rather than fails the run.
type ReferenceCount struct {
	cfg model.ReferenceCountConfig
}

// NewReferenceCount creates the citation-density detector.
func NewReferenceCount(cfg model.ReferenceCountConfig) *ReferenceCount {
	return &ReferenceCount{cfg: cfg}
}

// Category implements Detector.
func (r *ReferenceCount) Category() model.Category { return model.CategoryReferenceCount }

// Detect implements Detector.
func (r *ReferenceCount) Detect(doc *model.Document, _ *model.Bibliography) []model.Finding {
	count := len(doc.ActiveKeys())
	if count >= r.cfg.Minimum {
		return nil
	}

	// Warn when clearly below expectation, stay informational when close.
	severity := model.SeverityInfo
	if count*3 < r.cfg.Minimum*2 {
		severity = model.SeverityWarning
	}

	return []model.Finding{{
		Category: model.CategoryReferenceCount,
		Severity: severity,
		Message: fmt.Sprintf("document cites %d distinct works; at least %d expected for a full paper",
			count, r.cfg.Minimum),
		Suggestion: "ground more of the argument in prior work, or lower the minimum if this is a short communication",
		Data: map[string]any{
			"count":   count,
			"minimum": r.cfg.Minimum,
		},
	}}
}
