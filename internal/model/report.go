package model

import "time"

// Severity grades a finding. A category fails only on error-severity
// findings; warnings and infos inform without failing the run.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Category identifies which detector produced a finding.
type Category string

const (
	CategorySparsity       Category = "sparsity"
	CategoryStereotype     Category = "stereotype"
	CategoryFormula        Category = "formula"
	CategoryCitation       Category = "citation"
	CategoryImage          Category = "image"
	CategoryCode           Category = "code"
	CategoryReferenceCount Category = "reference_count"
	CategoryBibliography   Category = "bibliography"
)

// Categories lists all report categories in rendering order.
func Categories() []Category {
	return []Category{
		CategorySparsity,
		CategoryStereotype,
		CategoryFormula,
		CategoryCitation,
		CategoryImage,
		CategoryCode,
		CategoryReferenceCount,
		CategoryBibliography,
	}
}

// Finding is a single located defect reported by a detector. Line 0 means the
// finding applies to the document as a whole.
type Finding struct {
	Category   Category       `json:"category"`
	Severity   Severity       `json:"severity"`
	Line       int            `json:"line,omitempty"`       // 1-based, 0 for document-level
	Start      int            `json:"start,omitempty"`      // Byte offset within the line when known
	End        int            `json:"end,omitempty"`        // Byte offset one past the span when known
	Message    string         `json:"message"`              // Human-readable description
	Suggestion string         `json:"suggestion,omitempty"` // Optional fix text
	Data       map[string]any `json:"data,omitempty"`       // Measured values behind the flag (density, ratios, counts)
}

// VerdictStatus is the authenticity verifier's per-entry conclusion.
type VerdictStatus string

const (
	VerdictVerified     VerdictStatus = "verified"      // Strong lexical match in search results
	VerdictAmbiguous    VerdictStatus = "ambiguous"     // Moderate overlap, needs a human look
	VerdictUnverified   VerdictStatus = "unverified"    // No meaningful overlap with any result
	VerdictLookupFailed VerdictStatus = "lookup_failed" // Lookup could not be completed
)

// Verdict is the authenticity conclusion for one active bibliography entry.
type Verdict struct {
	Key        string        `json:"key"`
	Title      string        `json:"title,omitempty"`
	Status     VerdictStatus `json:"status"`
	Confidence float64       `json:"confidence"`         // Best similarity score in [0,1]
	Evidence   string        `json:"evidence,omitempty"` // Matched result title or snippet
	URL        string        `json:"url,omitempty"`      // Matched result link
	Cause      string        `json:"cause,omitempty"`    // Failure detail when lookup_failed
	Line       int           `json:"line,omitempty"`     // Bibliography line of the entry
}

// VerificationStats aggregates the verdict set.
type VerificationStats struct {
	Active           int     `json:"active"`            // Entries submitted for verification
	Verified         int     `json:"verified"`
	Unverified       int     `json:"unverified"`
	Ambiguous        int     `json:"ambiguous"`
	LookupFailed     int     `json:"lookup_failed"`
	AuthenticityRate float64 `json:"authenticity_rate"` // verified / active, 0 when no active entries
}

// CategoryStatus is the per-category outcome.
type CategoryStatus string

const (
	StatusPassed  CategoryStatus = "passed"  // No error-severity finding
	StatusFailed  CategoryStatus = "failed"  // At least one error-severity finding
	StatusSkipped CategoryStatus = "skipped" // Detector disabled or inputs missing
)

// CategoryResult groups the findings of one category with its outcome.
type CategoryResult struct {
	Category Category       `json:"category"`
	Status   CategoryStatus `json:"status"`
	Note     string         `json:"note,omitempty"` // Skip reason, empty otherwise
	Findings []Finding      `json:"findings,omitempty"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
	Infos    int            `json:"infos"`
}

// Summary holds report-wide totals.
type Summary struct {
	Pass              bool `json:"pass"` // All non-skipped categories passed
	TotalFindings     int  `json:"total_findings"`
	Errors            int  `json:"errors"`
	Warnings          int  `json:"warnings"`
	Infos             int  `json:"infos"`
	CategoriesPassed  int  `json:"categories_passed"`
	CategoriesFailed  int  `json:"categories_failed"`
	CategoriesSkipped int  `json:"categories_skipped"`
}

// Report is the complete verification result for one paper.
type Report struct {
	Subject     string    `json:"subject"`               // Paper display name
	GeneratedAt time.Time `json:"generated_at"`

	Categories []CategoryResult `json:"categories"`          // Fixed rendering order
	Anomalies  []Anomaly        `json:"anomalies,omitempty"` // Structural anomalies from both parsers

	Verdicts []Verdict         `json:"verdicts,omitempty"` // Authenticity verdicts for active entries
	Stats    VerificationStats `json:"stats"`

	Summary    Summary `json:"summary"`
	Incomplete bool    `json:"incomplete"` // True when verification was cancelled mid-run

	Advisory *AdvisorySummary `json:"advisory,omitempty"` // Optional LLM prose summary, never affects results
}

// AdvisorySummary is an optional machine-written prose digest of the report.
// It is generated after aggregation and can never change findings, verdicts
// or statuses.
type AdvisorySummary struct {
	Provider string   `json:"provider"`           // openai, ollama
	Model    string   `json:"model,omitempty"`
	Text     string   `json:"text,omitempty"`     // Markdown prose
	Warnings []string `json:"warnings,omitempty"` // Generation problems, e.g. truncation
}

// Category returns the result for the given category, if present.
func (r *Report) Category(c Category) (*CategoryResult, bool) {
	for i := range r.Categories {
		if r.Categories[i].Category == c {
			return &r.Categories[i], true
		}
	}
	return nil, false
}
