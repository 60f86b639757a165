package detect

import (
	"fmt"
	"os"

	"github.com/papercheck/papercheck/internal/model"
)

// Image flags image references that will not survive the document moving:
// network URLs (hard error: remote content rots), relative paths (warning:
// may resolve today, breaks on relocation), and absolute paths whose target
// does not exist. The existence check is the one piece of local I/O in the
// detector set; it is synchronous and cheap.
type Image struct {
	cfg model.ImageConfig

	// statFunc is swapped in tests.
	statFunc func(string) (os.FileInfo, error)
}

// NewImage creates the image-link detector.
func NewImage(cfg model.ImageConfig) *Image {
	return &Image{cfg: cfg, statFunc: os.Stat}
}

// Category implements Detector.
func (d *Image) Category() model.Category { return model.CategoryImage }

// Detect implements Detector.
func (d *Image) Detect(doc *model.Document, _ *model.Bibliography) []model.Finding {
	var findings []model.Finding

	for _, img := range doc.Images {
		switch img.Kind {
		case model.PathNetwork:
			findings = append(findings, model.Finding{
				Category:   model.CategoryImage,
				Severity:   model.SeverityError,
				Line:       img.Line,
				Start:      img.Start,
				End:        img.End,
				Message:    fmt.Sprintf("image %q loads from a network URL", img.Path),
				Suggestion: "store the figure with the paper and reference it by path",
				Data:       map[string]any{"kind": string(img.Kind)},
			})
		case model.PathRelative:
			findings = append(findings, model.Finding{
				Category:   model.CategoryImage,
				Severity:   model.SeverityWarning,
				Line:       img.Line,
				Start:      img.Start,
				End:        img.End,
				Message:    fmt.Sprintf("image %q uses a relative path", img.Path),
				Suggestion: "relative references break when the document moves; keep figures alongside it or use an absolute path",
				Data:       map[string]any{"kind": string(img.Kind)},
			})
		case model.PathAbsolute:
			// Path shape is fine; only a missing target is a defect.
			if _, err := d.statFunc(img.Path); err != nil {
				findings = append(findings, model.Finding{
					Category:   model.CategoryImage,
					Severity:   model.SeverityError,
					Line:       img.Line,
					Start:      img.Start,
					End:        img.End,
					Message:    fmt.Sprintf("image file %q does not exist", img.Path),
					Suggestion: "fix the path or add the missing figure",
					Data:       map[string]any{"kind": string(img.Kind), "missing": true},
				})
			}
		}
	}

	return findings
}
