package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/papercheck/papercheck/internal/model"
)

// RenderOptions controls markdown output. JSON output ignores them.
type RenderOptions struct {
	Footer bool // Append the papercheck attribution line
}

var categoryTitles = map[model.Category]string{
	model.CategorySparsity:       "Content sparsity",
	model.CategoryStereotype:     "Stereotyped phrasing",
	model.CategoryFormula:        "Unmarked formulas",
	model.CategoryCitation:       "Citation format",
	model.CategoryImage:          "Image links",
	model.CategoryCode:           "Code blocks",
	model.CategoryReferenceCount: "Reference count",
	model.CategoryBibliography:   "Bibliography authenticity",
}

// CategoryTitle returns the human heading for a category.
func CategoryTitle(c model.Category) string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// RenderJSON serializes the full report, indented for direct file output.
func RenderJSON(r *model.Report) ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(b, '\n'), nil
}

// RenderMarkdown produces the human report. The function is pure text
// assembly over an already-built report.
func RenderMarkdown(r *model.Report, opts RenderOptions) string {
	var b strings.Builder

	b.WriteString("# Paper Verification Report\n\n")
	fmt.Fprintf(&b, "**Subject**: %s\n", r.Subject)
	fmt.Fprintf(&b, "**Generated**: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "**Result**: %s\n", resultLine(r.Summary))
	if r.Incomplete {
		b.WriteString("**Note**: verification was interrupted; bibliography verdicts may be partial\n")
	}
	b.WriteString("\n")

	for i, cr := range r.Categories {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, CategoryTitle(cr.Category))
		b.WriteString(statusLine(cr))
		b.WriteString("\n")

		if cr.Category == model.CategoryBibliography && cr.Status != model.StatusSkipped {
			writeVerdicts(&b, r)
		}

		if len(cr.Findings) > 0 {
			b.WriteString("\n")
			for _, f := range cr.Findings {
				writeFinding(&b, f)
			}
		}
		b.WriteString("\n")
	}

	if len(r.Anomalies) > 0 {
		b.WriteString("## Structural anomalies\n\n")
		b.WriteString("Irregularities hit while parsing the inputs. They are reported for\ntransparency and do not affect the verdict.\n\n")
		for _, a := range r.Anomalies {
			if a.Line > 0 {
				fmt.Fprintf(&b, "- %s line %d: %s\n", a.Source, a.Line, a.Message)
			} else {
				fmt.Fprintf(&b, "- %s: %s\n", a.Source, a.Message)
			}
		}
		b.WriteString("\n")
	}

	if r.Advisory != nil && r.Advisory.Text != "" {
		b.WriteString("## Advisory summary\n\n")
		b.WriteString(r.Advisory.Text)
		if !strings.HasSuffix(r.Advisory.Text, "\n") {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\n*Written by %s; informational only, no effect on the result.*\n\n", advisoryAttribution(r.Advisory))
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Findings: %d (%d errors, %d warnings, %d info)\n",
		r.Summary.TotalFindings, r.Summary.Errors, r.Summary.Warnings, r.Summary.Infos)
	fmt.Fprintf(&b, "- Categories: %d passed, %d failed, %d skipped\n",
		r.Summary.CategoriesPassed, r.Summary.CategoriesFailed, r.Summary.CategoriesSkipped)
	fmt.Fprintf(&b, "- Overall: %s\n", passWord(r.Summary.Pass))

	if opts.Footer {
		b.WriteString("\n---\n*papercheck: automated paper quality and bibliography authenticity checks*\n")
	}

	return b.String()
}

func resultLine(s model.Summary) string {
	if s.Pass {
		return fmt.Sprintf("✅ PASS (%d warnings, %d info)", s.Warnings, s.Infos)
	}
	return fmt.Sprintf("❌ FAIL (%d errors, %d warnings, %d info)", s.Errors, s.Warnings, s.Infos)
}

func passWord(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func statusLine(cr model.CategoryResult) string {
	switch cr.Status {
	case model.StatusPassed:
		if n := cr.Warnings + cr.Infos; n > 0 {
			return fmt.Sprintf("**Status**: ✅ passed (%d warnings, %d info)\n", cr.Warnings, cr.Infos)
		}
		return "**Status**: ✅ passed\n"
	case model.StatusFailed:
		return fmt.Sprintf("**Status**: ❌ failed (%d errors, %d warnings, %d info)\n", cr.Errors, cr.Warnings, cr.Infos)
	default:
		return fmt.Sprintf("**Status**: ⏭️ skipped (%s)\n", cr.Note)
	}
}

func writeFinding(b *strings.Builder, f model.Finding) {
	if f.Line > 0 {
		fmt.Fprintf(b, "- [%s] line %d: %s\n", f.Severity, f.Line, f.Message)
	} else {
		fmt.Fprintf(b, "- [%s] %s\n", f.Severity, f.Message)
	}
	if f.Suggestion != "" {
		fmt.Fprintf(b, "  - fix: %s\n", f.Suggestion)
	}
}

var verdictIcons = map[model.VerdictStatus]string{
	model.VerdictVerified:     "✅",
	model.VerdictAmbiguous:    "⚠️",
	model.VerdictUnverified:   "❌",
	model.VerdictLookupFailed: "❓",
}

func writeVerdicts(b *strings.Builder, r *model.Report) {
	if len(r.Verdicts) == 0 {
		return
	}
	b.WriteString("\n")
	for _, v := range r.Verdicts {
		icon := verdictIcons[v.Status]
		switch v.Status {
		case model.VerdictLookupFailed:
			fmt.Fprintf(b, "- %s [@%s] lookup failed: %s\n", icon, v.Key, v.Cause)
		case model.VerdictVerified, model.VerdictAmbiguous:
			fmt.Fprintf(b, "- %s [@%s] %s (confidence %.2f): %q", icon, v.Key, v.Status, v.Confidence, v.Evidence)
			if v.URL != "" {
				fmt.Fprintf(b, " <%s>", v.URL)
			}
			b.WriteString("\n")
		default:
			fmt.Fprintf(b, "- %s [@%s] %s (confidence %.2f)\n", icon, v.Key, v.Status, v.Confidence)
		}
	}
	st := r.Stats
	fmt.Fprintf(b, "\n**Authenticity**: %d/%d entries verified (%.0f%%)\n",
		st.Verified, st.Active, st.AuthenticityRate*100)
}

func advisoryAttribution(a *model.AdvisorySummary) string {
	if a.Model != "" {
		return a.Provider + "/" + a.Model
	}
	return a.Provider
}
