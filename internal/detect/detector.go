// Package detect holds the heuristic detectors. Each detector is a pure
// function of the document and bibliography models: no I/O besides the image
// existence check, no shared state, so the set can run in parallel and twice
// on the same input always yields the same findings.
package detect

import (
	"sync"

	"github.com/papercheck/papercheck/internal/model"
)

// Detector is one quality heuristic. Detect never fails; defects become
// findings and anything unrecognizable is simply not flagged.
type Detector interface {
	Category() model.Category
	Detect(doc *model.Document, bib *model.Bibliography) []model.Finding
}

// Build returns the enabled detectors in report order.
func Build(cfg model.DetectorsConfig) []Detector {
	var ds []Detector
	if cfg.Sparsity.Enabled {
		ds = append(ds, NewSparsity(cfg.Sparsity))
	}
	if cfg.Stereotype.Enabled {
		ds = append(ds, NewStereotype(cfg.Stereotype))
	}
	if cfg.Formula.Enabled {
		ds = append(ds, NewFormula(cfg.Formula))
	}
	if cfg.Citation.Enabled {
		ds = append(ds, NewCitation(cfg.Citation))
	}
	if cfg.Image.Enabled {
		ds = append(ds, NewImage(cfg.Image))
	}
	if cfg.Code.Enabled {
		ds = append(ds, NewCode(cfg.Code))
	}
	if cfg.ReferenceCount.Enabled {
		ds = append(ds, NewReferenceCount(cfg.ReferenceCount))
	}
	return ds
}

// Enabled reports which categories will run under this configuration. The
// report aggregator marks the rest as skipped.
func Enabled(cfg model.DetectorsConfig) map[model.Category]bool {
	return map[model.Category]bool{
		model.CategorySparsity:       cfg.Sparsity.Enabled,
		model.CategoryStereotype:     cfg.Stereotype.Enabled,
		model.CategoryFormula:        cfg.Formula.Enabled,
		model.CategoryCitation:       cfg.Citation.Enabled,
		model.CategoryImage:          cfg.Image.Enabled,
		model.CategoryCode:           cfg.Code.Enabled,
		model.CategoryReferenceCount: cfg.ReferenceCount.Enabled,
	}
}

// Run executes all detectors concurrently and concatenates their findings in
// detector order, so output is deterministic regardless of scheduling.
func Run(doc *model.Document, bib *model.Bibliography, detectors []Detector) []model.Finding {
	results := make([][]model.Finding, len(detectors))

	var wg sync.WaitGroup
	for i, d := range detectors {
		wg.Add(1)
		go func(i int, d Detector) {
			defer wg.Done()
			results[i] = d.Detect(doc, bib)
		}(i, d)
	}
	wg.Wait()

	var findings []model.Finding
	for _, r := range results {
		findings = append(findings, r...)
	}
	return findings
}
