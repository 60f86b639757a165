package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/papercheck/papercheck/internal/model"
)

// templatePhrases is the fixed vocabulary of connectives that formulaic
// writing leans on. Matching is case-insensitive and word-bounded.
var templatePhrases = []string{
	"firstly",
	"secondly",
	"thirdly",
	"lastly",
	"in conclusion",
	"in summary",
	"to summarize",
	"to sum up",
	"all in all",
	"in a word",
	"furthermore",
	"moreover",
	"in addition",
	"additionally",
	"last but not least",
	"it is worth noting",
	"it should be noted",
	"needless to say",
	"as we all know",
	"as mentioned above",
	"on the one hand",
	"on the other hand",
	"plays an important role",
	"with the rapid development",
}

// Stereotype flags templated connective phrases, bold runs abused as
// pseudo-headings, and monotone paragraph openings.
type Stereotype struct {
	cfg       model.StereotypeConfig
	heading   *regexp.Regexp
	firstWord *regexp.Regexp
}

// NewStereotype creates the templated-phrasing detector.
func NewStereotype(cfg model.StereotypeConfig) *Stereotype {
	return &Stereotype{
		cfg: cfg,
		// **Short run**: at line start, optionally behind a list or number marker.
		heading: regexp.MustCompile(fmt.Sprintf(
			`^\s*(?:\d+[.)]\s*|[-*+]\s*)?\*\*([^*\n]{1,%d})\*\*\s*[::]`, cfg.MaxHeadingChars)),
		firstWord: regexp.MustCompile(`[a-zA-Z]+`),
	}
}

// Category implements Detector.
func (s *Stereotype) Category() model.Category { return model.CategoryStereotype }

// Detect implements Detector.
func (s *Stereotype) Detect(doc *model.Document, _ *model.Bibliography) []model.Finding {
	var findings []model.Finding
	occurrences := 0

	for i, line := range doc.Lines {
		n := i + 1
		if doc.CodeLine(n) {
			continue
		}
		lower := strings.ToLower(line)

		for _, phrase := range templatePhrases {
			for _, start := range wordBoundedIndexes(lower, phrase) {
				occurrences++
				findings = append(findings, model.Finding{
					Category:   model.CategoryStereotype,
					Severity:   model.SeverityWarning,
					Line:       n,
					Start:      start,
					End:        start + len(phrase),
					Message:    fmt.Sprintf("template phrase %q", line[start:start+len(phrase)]),
					Suggestion: "vary the transition or drop it; repeated connectives read as boilerplate",
				})
			}
		}

		if m := s.heading.FindStringSubmatch(line); m != nil {
			findings = append(findings, model.Finding{
				Category:   model.CategoryStereotype,
				Severity:   model.SeverityWarning,
				Line:       n,
				Message:    fmt.Sprintf("bold run %q used as a pseudo-heading", m[1]),
				Suggestion: "promote it to a real heading or write it into the paragraph",
			})
		}
	}

	if doc.WordCount > 0 {
		freq := float64(occurrences) * 1000 / float64(doc.WordCount)
		if freq > s.cfg.PerThousandWords {
			findings = append(findings, model.Finding{
				Category: model.CategoryStereotype,
				Severity: model.SeverityError,
				Message: fmt.Sprintf("template phrases appear %.1f times per 1000 words (threshold %.1f)",
					freq, s.cfg.PerThousandWords),
				Suggestion: "the connective density suggests generated or heavily templated text; rewrite transitions",
				Data: map[string]any{
					"occurrences":        occurrences,
					"words":              doc.WordCount,
					"per_thousand_words": freq,
					"formula":            "occurrences * 1000 / words",
				},
			})
		}
	}

	if f, ok := s.diversity(doc); ok {
		findings = append(findings, f)
	}

	return findings
}

// diversity reports the distinct-opening-word ratio across paragraphs as one
// document-level finding. Healthy variety is still reported, at info level,
// so the score stays visible for tuning.
func (s *Stereotype) diversity(doc *model.Document) (model.Finding, bool) {
	if len(doc.Paragraphs) < s.cfg.MinParagraphs {
		return model.Finding{}, false
	}

	seen := make(map[string]bool)
	total := 0
	for _, p := range doc.Paragraphs {
		w := s.firstWord.FindString(p.Text)
		if w == "" {
			continue
		}
		total++
		seen[strings.ToLower(w)] = true
	}
	if total < s.cfg.MinParagraphs {
		return model.Finding{}, false
	}

	ratio := float64(len(seen)) / float64(total)
	severity := model.SeverityInfo
	msg := fmt.Sprintf("paragraph openings are varied (%d distinct across %d paragraphs)", len(seen), total)
	if ratio < s.cfg.Diversity {
		severity = model.SeverityWarning
		msg = fmt.Sprintf("paragraphs open with only %d distinct words across %d paragraphs", len(seen), total)
	}

	return model.Finding{
		Category: model.CategoryStereotype,
		Severity: severity,
		Message:  msg,
		Data: map[string]any{
			"diversity":  ratio,
			"distinct":   len(seen),
			"paragraphs": total,
			"formula":    "distinct_opening_words / paragraphs",
		},
	}, true
}

// wordBoundedIndexes returns the start offsets of phrase in s where both ends
// sit on word boundaries.
func wordBoundedIndexes(s, phrase string) []int {
	var out []int
	for from := 0; ; {
		i := strings.Index(s[from:], phrase)
		if i < 0 {
			return out
		}
		start := from + i
		end := start + len(phrase)
		if boundaryAt(s, start-1) && boundaryAt(s, end) {
			out = append(out, start)
		}
		from = start + 1
	}
}

// boundaryAt reports whether position i is outside the string or holds a
// non-letter byte.
func boundaryAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z')
}
