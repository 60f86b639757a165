package detect

import (
	"fmt"
	"sort"

	"github.com/papercheck/papercheck/internal/model"
)

// Sparsity flags paragraphs with too little prose behind them and, when the
// whole document reads like an outline, the document itself. Thresholds are
// conservative on purpose: a short transition paragraph is normal writing.
type Sparsity struct {
	cfg model.SparsityConfig
}

// NewSparsity creates the sparse-content detector.
func NewSparsity(cfg model.SparsityConfig) *Sparsity {
	return &Sparsity{cfg: cfg}
}

// Category implements Detector.
func (s *Sparsity) Category() model.Category { return model.CategorySparsity }

// Detect implements Detector.
func (s *Sparsity) Detect(doc *model.Document, _ *model.Bibliography) []model.Finding {
	var findings []model.Finding

	// Paragraphs at or under the minimum are noise (stray markup, separators)
	// and are excluded from both per-paragraph and document accounting.
	var paras []model.Paragraph
	for _, p := range doc.Paragraphs {
		if p.CharCount > s.cfg.MinParagraphChars {
			paras = append(paras, p)
		}
	}
	if len(paras) == 0 {
		return nil
	}

	short, veryShort, listy := 0, 0, 0
	lengths := make([]int, 0, len(paras))

	for _, p := range paras {
		lengths = append(lengths, p.CharCount)
		if p.CharCount < s.cfg.ShortParagraphChars {
			short++
		}
		if p.CharCount < s.cfg.VeryShortChars {
			veryShort++
		}
		listRatio := 0.0
		if p.LineCount > 0 {
			listRatio = float64(p.ListLines) / float64(p.LineCount)
		}
		if listRatio > 0.5 {
			listy++
		}

		density := s.density(p, listRatio)
		if density < s.cfg.ParagraphDensity && p.CharCount < s.cfg.ShortParagraphChars {
			findings = append(findings, model.Finding{
				Category: model.CategorySparsity,
				Severity: model.SeverityWarning,
				Line:     p.StartLine,
				Message:  fmt.Sprintf("paragraph carries little content (density %.2f, %d chars)", density, p.CharCount),
				Suggestion: "expand the point into full prose or fold it into a neighboring paragraph",
				Data: map[string]any{
					"density":         density,
					"chars":           p.CharCount,
					"sentences":       p.SentenceCount,
					"list_line_ratio": listRatio,
					"formula":         "0.5*min(1, chars/short_chars) + 0.3*(1-list_ratio) + 0.2*min(1, sentences/3)",
				},
			})
		}
	}

	n := float64(len(paras))
	shortRatio := float64(short) / n
	veryShortRatio := float64(veryShort) / n
	listRatio := float64(listy) / n

	score := 0.0
	if shortRatio > s.cfg.ShortRatio {
		score += 0.3
	}
	if veryShortRatio > s.cfg.VeryShortRatio {
		score += 0.2
	}
	if listRatio > s.cfg.ListRatio {
		score += 0.2
	}

	if score >= s.cfg.DocumentScore {
		findings = append(findings, model.Finding{
			Category: model.CategorySparsity,
			Severity: model.SeverityError,
			Message: fmt.Sprintf("document reads as an outline: %.0f%% of paragraphs are short, %.0f%% list-like",
				shortRatio*100, listRatio*100),
			Suggestion: "rewrite list fragments as connected prose; academic text should argue, not enumerate",
			Data: map[string]any{
				"score":            score,
				"short_ratio":      shortRatio,
				"very_short_ratio": veryShortRatio,
				"list_ratio":       listRatio,
				"paragraphs":       len(paras),
				"median_chars":     median(lengths),
				"formula":          "0.3*(short>threshold) + 0.2*(very_short>threshold) + 0.2*(list>threshold)",
			},
		})
	}

	return findings
}

// density blends length, structure and sentence count into one score in
// [0,1]. Long multi-sentence prose approaches 1; a bare list line sits near 0.
func (s *Sparsity) density(p model.Paragraph, listRatio float64) float64 {
	lengthPart := clamp01(float64(p.CharCount) / float64(s.cfg.ShortParagraphChars))
	sentencePart := clamp01(float64(p.SentenceCount) / 3)
	return 0.5*lengthPart + 0.3*(1-listRatio) + 0.2*sentencePart
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func median(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]int, len(vals))
	copy(sorted, vals)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}
