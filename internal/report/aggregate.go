// Package report merges detector findings and authenticity verdicts into the
// final verification report and renders it. Aggregation is pure bookkeeping:
// nothing here re-runs a detector or issues a lookup.
package report

import (
	"fmt"
	"time"

	"github.com/papercheck/papercheck/internal/model"
)

// Options carries everything aggregation needs. Enabled marks which detector
// categories ran; a category absent from the map is reported as skipped.
// BibSkipNote, when set, marks the bibliography category skipped with that
// reason regardless of verdicts.
type Options struct {
	Subject     string
	Findings    []model.Finding
	Anomalies   []model.Anomaly
	Verdicts    []model.Verdict
	Stats       model.VerificationStats
	Incomplete  bool
	Enabled     map[model.Category]bool
	BibSkipNote string

	// DetectorSkipNote overrides the reason shown for detector categories
	// that did not run, for bibliography-only checks.
	DetectorSkipNote string
}

// Build assembles the report. Category order is fixed so rendering and
// machine consumers see a stable layout.
func Build(opts Options) *model.Report {
	byCategory := make(map[model.Category][]model.Finding)
	for _, f := range opts.Findings {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}
	for _, f := range verdictFindings(opts.Verdicts) {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}

	r := &model.Report{
		Subject:     opts.Subject,
		GeneratedAt: time.Now().UTC(),
		Anomalies:   opts.Anomalies,
		Verdicts:    opts.Verdicts,
		Stats:       opts.Stats,
		Incomplete:  opts.Incomplete,
	}

	for _, cat := range model.Categories() {
		cr := model.CategoryResult{Category: cat, Findings: byCategory[cat]}

		switch {
		case cat == model.CategoryBibliography && opts.BibSkipNote != "":
			cr.Status = model.StatusSkipped
			cr.Note = opts.BibSkipNote
			cr.Findings = nil
		case cat != model.CategoryBibliography && !opts.Enabled[cat]:
			cr.Status = model.StatusSkipped
			if opts.DetectorSkipNote != "" {
				cr.Note = opts.DetectorSkipNote
			} else {
				cr.Note = "detector disabled"
			}
			cr.Findings = nil
		default:
			for _, f := range cr.Findings {
				switch f.Severity {
				case model.SeverityError:
					cr.Errors++
				case model.SeverityWarning:
					cr.Warnings++
				case model.SeverityInfo:
					cr.Infos++
				}
			}
			if cr.Errors > 0 {
				cr.Status = model.StatusFailed
			} else {
				cr.Status = model.StatusPassed
			}
		}

		r.Categories = append(r.Categories, cr)
	}

	r.Summary = summarize(r.Categories)
	return r
}

// verdictFindings translates authenticity verdicts into bibliography-category
// findings so pass/fail needs no special casing: an unverified entry is an
// error, ambiguity and failed lookups degrade without failing.
func verdictFindings(verdicts []model.Verdict) []model.Finding {
	var out []model.Finding
	for _, v := range verdicts {
		switch v.Status {
		case model.VerdictUnverified:
			out = append(out, model.Finding{
				Category: model.CategoryBibliography,
				Severity: model.SeverityError,
				Line:     v.Line,
				Message: fmt.Sprintf("cited work [@%s] could not be located by search (confidence %.2f)",
					v.Key, v.Confidence),
				Suggestion: "check the reference for typos or fabrication; search for the exact title manually",
				Data:       map[string]any{"key": v.Key, "confidence": v.Confidence},
			})
		case model.VerdictAmbiguous:
			out = append(out, model.Finding{
				Category: model.CategoryBibliography,
				Severity: model.SeverityWarning,
				Line:     v.Line,
				Message: fmt.Sprintf("search results for [@%s] only partially match the title (confidence %.2f)",
					v.Key, v.Confidence),
				Suggestion: "confirm the citation against the matched result",
				Data:       map[string]any{"key": v.Key, "confidence": v.Confidence, "evidence": v.Evidence},
			})
		case model.VerdictLookupFailed:
			out = append(out, model.Finding{
				Category:   model.CategoryBibliography,
				Severity:   model.SeverityWarning,
				Line:       v.Line,
				Message:    fmt.Sprintf("could not verify [@%s]: %s", v.Key, v.Cause),
				Suggestion: "re-run verification; the failure is environmental, not a judgement on the entry",
				Data:       map[string]any{"key": v.Key, "cause": v.Cause},
			})
		}
	}
	return out
}

func summarize(categories []model.CategoryResult) model.Summary {
	s := model.Summary{Pass: true}
	for _, c := range categories {
		switch c.Status {
		case model.StatusPassed:
			s.CategoriesPassed++
		case model.StatusFailed:
			s.CategoriesFailed++
			s.Pass = false
		case model.StatusSkipped:
			s.CategoriesSkipped++
		}
		s.TotalFindings += len(c.Findings)
		s.Errors += c.Errors
		s.Warnings += c.Warnings
		s.Infos += c.Infos
	}
	return s
}
