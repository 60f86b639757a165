package report

import (
	"strings"
	"testing"

	"github.com/papercheck/papercheck/internal/model"
)

func allEnabled() map[model.Category]bool {
	enabled := make(map[model.Category]bool)
	for _, c := range model.Categories() {
		if c != model.CategoryBibliography {
			enabled[c] = true
		}
	}
	return enabled
}

func TestBuild_CleanReportPasses(t *testing.T) {
	r := Build(Options{Subject: "paper.md", Enabled: allEnabled()})

	if !r.Summary.Pass {
		t.Error("Expected a clean report to pass")
	}
	if len(r.Categories) != 8 {
		t.Fatalf("Expected 8 categories, got %d", len(r.Categories))
	}
	for i, cat := range model.Categories() {
		if r.Categories[i].Category != cat {
			t.Errorf("Expected %s at position %d, got %s", cat, i, r.Categories[i].Category)
		}
	}
	if r.Summary.CategoriesPassed != 8 {
		t.Errorf("Expected 8 passed categories, got %d", r.Summary.CategoriesPassed)
	}
	if r.GeneratedAt.IsZero() {
		t.Error("Expected a generation timestamp")
	}
}

func TestBuild_ErrorFailsItsCategory(t *testing.T) {
	r := Build(Options{
		Subject: "paper.md",
		Enabled: allEnabled(),
		Findings: []model.Finding{
			{Category: model.CategoryCitation, Severity: model.SeverityError, Line: 3, Message: "dangling citation"},
			{Category: model.CategoryCode, Severity: model.SeverityWarning, Line: 8, Message: "inline code span"},
		},
	})

	if r.Summary.Pass {
		t.Error("Expected the report to fail")
	}

	citation, ok := r.Category(model.CategoryCitation)
	if !ok {
		t.Fatal("Expected a citation category result")
	}
	if citation.Status != model.StatusFailed || citation.Errors != 1 {
		t.Errorf("Expected citation failed with 1 error, got %s with %d", citation.Status, citation.Errors)
	}

	code, ok := r.Category(model.CategoryCode)
	if !ok {
		t.Fatal("Expected a code category result")
	}
	if code.Status != model.StatusPassed || code.Warnings != 1 {
		t.Errorf("Expected code passed with 1 warning, got %s with %d", code.Status, code.Warnings)
	}

	if r.Summary.Errors != 1 || r.Summary.Warnings != 1 || r.Summary.TotalFindings != 2 {
		t.Errorf("Unexpected summary totals: %+v", r.Summary)
	}
	if r.Summary.CategoriesFailed != 1 || r.Summary.CategoriesPassed != 7 {
		t.Errorf("Unexpected category counts: %+v", r.Summary)
	}
}

func TestBuild_DisabledCategorySkipped(t *testing.T) {
	enabled := allEnabled()
	enabled[model.CategorySparsity] = false

	r := Build(Options{
		Subject: "paper.md",
		Enabled: enabled,
		Findings: []model.Finding{
			{Category: model.CategorySparsity, Severity: model.SeverityError, Message: "should be dropped"},
		},
	})

	sparsity, _ := r.Category(model.CategorySparsity)
	if sparsity.Status != model.StatusSkipped {
		t.Errorf("Expected sparsity skipped, got %s", sparsity.Status)
	}
	if sparsity.Note != "detector disabled" {
		t.Errorf("Expected the default skip note, got %q", sparsity.Note)
	}
	if len(sparsity.Findings) != 0 {
		t.Errorf("Expected findings dropped for a skipped category, got %v", sparsity.Findings)
	}
	if !r.Summary.Pass {
		t.Error("Expected skipped findings not to fail the report")
	}
	if r.Summary.CategoriesSkipped != 1 {
		t.Errorf("Expected only sparsity skipped, got %d", r.Summary.CategoriesSkipped)
	}
}

func TestBuild_DetectorSkipNoteOverride(t *testing.T) {
	r := Build(Options{
		Subject:          "refs.bib",
		Enabled:          nil,
		DetectorSkipNote: "bibliography-only run",
	})

	sparsity, _ := r.Category(model.CategorySparsity)
	if sparsity.Status != model.StatusSkipped || sparsity.Note != "bibliography-only run" {
		t.Errorf("Expected the override note, got %s %q", sparsity.Status, sparsity.Note)
	}
}

func TestBuild_BibliographySkipNote(t *testing.T) {
	r := Build(Options{
		Subject:     "paper.md",
		Enabled:     allEnabled(),
		BibSkipNote: "no bibliography supplied",
	})

	bib, _ := r.Category(model.CategoryBibliography)
	if bib.Status != model.StatusSkipped {
		t.Errorf("Expected bibliography skipped, got %s", bib.Status)
	}
	if bib.Note != "no bibliography supplied" {
		t.Errorf("Expected the skip note, got %q", bib.Note)
	}
}

func TestBuild_VerdictsBecomeBibliographyFindings(t *testing.T) {
	verdicts := []model.Verdict{
		{Key: "good2020", Status: model.VerdictVerified, Confidence: 0.95},
		{Key: "fake2021", Status: model.VerdictUnverified, Confidence: 0.1, Line: 12},
		{Key: "maybe2019", Status: model.VerdictAmbiguous, Confidence: 0.6, Evidence: "A Similar Title"},
		{Key: "offline2018", Status: model.VerdictLookupFailed, Cause: "search quota exceeded"},
	}

	r := Build(Options{
		Subject:  "paper.md",
		Enabled:  allEnabled(),
		Verdicts: verdicts,
	})

	bib, _ := r.Category(model.CategoryBibliography)
	if bib.Status != model.StatusFailed {
		t.Errorf("Expected bibliography failed on an unverified entry, got %s", bib.Status)
	}
	if bib.Errors != 1 || bib.Warnings != 2 {
		t.Errorf("Expected 1 error and 2 warnings, got %d and %d", bib.Errors, bib.Warnings)
	}
	if len(bib.Findings) != 3 {
		t.Fatalf("Expected 3 findings (verified entries produce none), got %d", len(bib.Findings))
	}

	var foundUnverified, foundFailed bool
	for _, f := range bib.Findings {
		if strings.Contains(f.Message, "fake2021") && f.Severity == model.SeverityError {
			foundUnverified = true
			if f.Line != 12 {
				t.Errorf("Expected the bibliography line carried over, got %d", f.Line)
			}
		}
		if strings.Contains(f.Message, "offline2018") && strings.Contains(f.Message, "search quota exceeded") {
			foundFailed = true
		}
	}
	if !foundUnverified {
		t.Error("Expected an error finding for the unverified entry")
	}
	if !foundFailed {
		t.Error("Expected the lookup failure cause in the finding")
	}

	if len(r.Verdicts) != 4 {
		t.Errorf("Expected all verdicts retained on the report, got %d", len(r.Verdicts))
	}
}
