package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/papercheck/papercheck/internal/model"
)

var (
	greekRe       = regexp.MustCompile(`[α-ωΑ-Ω]`)
	mathSymRe     = regexp.MustCompile(`[∑∏∫∞≤≥≠±∝∈∀∃]`)
	equationRe    = regexp.MustCompile(`\b[a-zA-Z]\s*=\s*[a-zA-Z0-9+\-*/^(][a-zA-Z0-9+\-*/^()\s]{2,}`)
	superscriptRe = regexp.MustCompile(`\b[a-zA-Z0-9]\^\{?[a-zA-Z0-9]`)
	subscriptRe   = regexp.MustCompile(`\b[a-zA-Z]_\{?[a-zA-Z0-9]`)
	imageMarkupRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mathBlockRe   = regexp.MustCompile(`(?s)\$\$.*?\$\$`)
)

// formulaPatterns pairs each heuristic with its name and severity. Equation
// shapes are the strongest signal of math pasted outside delimiters; single
// symbols may be legitimate prose (units, names) so they only warn.
var formulaPatterns = []struct {
	name     string
	re       *regexp.Regexp
	severity model.Severity
	label    string
}{
	{"equation", equationRe, model.SeverityError, "equation-shaped text"},
	{"greek", greekRe, model.SeverityWarning, "bare Greek letter"},
	{"symbol", mathSymRe, model.SeverityWarning, "bare math symbol"},
	{"superscript", superscriptRe, model.SeverityWarning, "caret superscript"},
	{"subscript", subscriptRe, model.SeverityWarning, "underscore subscript"},
}

// Formula flags mathematical notation that sits outside math delimiters.
// Lines inside code spans and lines carrying $ delimiters are never scanned;
// rendering inside those regions is someone else's business.
type Formula struct {
	cfg model.FormulaConfig
}

// NewFormula creates the bare-math detector.
func NewFormula(cfg model.FormulaConfig) *Formula {
	return &Formula{cfg: cfg}
}

// Category implements Detector.
func (f *Formula) Category() model.Category { return model.CategoryFormula }

// Detect implements Detector.
func (f *Formula) Detect(doc *model.Document, _ *model.Bibliography) []model.Finding {
	var findings []model.Finding

	// Display-math blocks can span lines; blank every line they cover first.
	mathLines := displayMathLines(doc.Text)

	for i, raw := range doc.Lines {
		n := i + 1
		if doc.CodeLine(n) || mathLines[n] {
			continue
		}
		if strings.Contains(raw, "$") {
			// Inline math on the line; delimiter placement is the author's
			// tooling problem, not a bare-notation defect.
			continue
		}
		line := maskNonProse(raw)

		for _, c := range f.scanLine(line, n) {
			findings = append(findings, model.Finding{
				Category:   model.CategoryFormula,
				Severity:   c.severity,
				Line:       c.Line,
				Start:      c.Start,
				End:        c.End,
				Message:    fmt.Sprintf("%s %q outside math delimiters", c.label, c.Text),
				Suggestion: "wrap the notation in $...$ (or $$...$$ for display math)",
				Data: map[string]any{
					"pattern": c.Pattern,
					"context": c.Context,
				},
			})
		}
	}

	return findings
}

type scoredCandidate struct {
	model.FormulaCandidate
	severity model.Severity
	label    string
}

// scanLine applies the formula heuristics to one masked line. Overlapping
// matches collapse into the first pattern that claimed the span, so a single
// "x^2" is one finding, not two.
func (f *Formula) scanLine(line string, n int) []scoredCandidate {
	var out []scoredCandidate
	claimed := make([][]int, 0, 4)

	for _, p := range formulaPatterns {
		for _, loc := range p.re.FindAllStringIndex(line, -1) {
			if overlapsAny(loc[0], loc[1], claimed) {
				continue
			}
			claimed = append(claimed, loc)
			out = append(out, scoredCandidate{
				FormulaCandidate: model.FormulaCandidate{
					Text:    strings.TrimSpace(line[loc[0]:loc[1]]),
					Context: trimContext(line),
					Pattern: p.name,
					Line:    n,
					Start:   loc[0],
					End:     loc[1],
				},
				severity: p.severity,
				label:    p.label,
			})
		}
	}
	return out
}

// displayMathLines returns the set of 1-based lines covered by $$...$$
// blocks.
func displayMathLines(text string) map[int]bool {
	covered := make(map[int]bool)
	for _, loc := range mathBlockRe.FindAllStringIndex(text, -1) {
		startLine := 1 + strings.Count(text[:loc[0]], "\n")
		endLine := 1 + strings.Count(text[:loc[1]], "\n")
		for n := startLine; n <= endLine; n++ {
			covered[n] = true
		}
	}
	return covered
}

// maskNonProse blanks image markup and inline code so their payloads (paths,
// identifiers) cannot look like math.
func maskNonProse(line string) string {
	line = imageMarkupRe.ReplaceAllStringFunc(line, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
	return maskInlineCodeSpans(line)
}

var inlineCodeSpanRe = regexp.MustCompile("`[^`\n]+`")

func maskInlineCodeSpans(line string) string {
	return inlineCodeSpanRe.ReplaceAllStringFunc(line, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
}

func overlapsAny(start, end int, spans [][]int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

func trimContext(line string) string {
	t := strings.TrimSpace(line)
	if r := []rune(t); len(r) > 80 {
		t = string(r[:80]) + "..."
	}
	return t
}
