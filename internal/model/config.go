package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the full runtime configuration tree. Every heuristic threshold
// lives here under a name so detectors stay tunable without code changes.
type Config struct {
	Detectors DetectorsConfig `yaml:"detectors" json:"detectors"`
	Search    SearchConfig    `yaml:"search" json:"search"`
	Verify    VerifyConfig    `yaml:"verify" json:"verify"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	LLM       LLMConfig       `yaml:"llm" json:"llm"`
}

// DetectorsConfig holds per-detector switches and thresholds.
type DetectorsConfig struct {
	Sparsity       SparsityConfig       `yaml:"sparsity" json:"sparsity"`
	Stereotype     StereotypeConfig     `yaml:"stereotype" json:"stereotype"`
	Formula        FormulaConfig        `yaml:"formula" json:"formula"`
	Citation       CitationConfig       `yaml:"citation" json:"citation"`
	Image          ImageConfig          `yaml:"image" json:"image"`
	Code           CodeConfig           `yaml:"code" json:"code"`
	ReferenceCount ReferenceCountConfig `yaml:"reference_count" json:"reference_count"`
}

// SparsityConfig tunes the sparse-content detector.
type SparsityConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// MinParagraphChars excludes trivial paragraphs from scoring entirely.
	MinParagraphChars int `yaml:"min_paragraph_chars" json:"min_paragraph_chars"`

	// Short and very-short cutoffs feed the document-level ratio score.
	ShortParagraphChars int     `yaml:"short_paragraph_chars" json:"short_paragraph_chars"`
	VeryShortChars      int     `yaml:"very_short_chars" json:"very_short_chars"`
	ShortRatio          float64 `yaml:"short_ratio" json:"short_ratio"`
	VeryShortRatio      float64 `yaml:"very_short_ratio" json:"very_short_ratio"`
	ListRatio           float64 `yaml:"list_ratio" json:"list_ratio"`

	// ParagraphDensity flags individual paragraphs; DocumentScore fails the
	// whole category.
	ParagraphDensity float64 `yaml:"paragraph_density" json:"paragraph_density"`
	DocumentScore    float64 `yaml:"document_score" json:"document_score"`
}

// StereotypeConfig tunes the templated-phrasing detector. PerThousandWords is
// the phrase frequency that fails the category; Diversity is the
// distinct-opening-word ratio below which the detector warns, measured only
// when the document has at least MinParagraphs paragraphs. Bold runs up to
// MaxHeadingChars count as pseudo-headings.
type StereotypeConfig struct {
	Enabled          bool    `yaml:"enabled" json:"enabled"`
	PerThousandWords float64 `yaml:"per_thousand_words" json:"per_thousand_words"`
	Diversity        float64 `yaml:"diversity" json:"diversity"`
	MinParagraphs    int     `yaml:"min_paragraphs" json:"min_paragraphs"`
	MaxHeadingChars  int     `yaml:"max_heading_chars" json:"max_heading_chars"`
}

// FormulaConfig tunes the bare-math detector.
type FormulaConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// CitationConfig tunes the citation-format detector.
type CitationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// ImageConfig tunes the image-link detector.
type ImageConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// CodeConfig tunes the code-block detector.
type CodeConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// ReferenceCountConfig tunes the citation-density detector.
type ReferenceCountConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Minimum int  `yaml:"minimum" json:"minimum"` // Distinct active keys expected
}

// SearchConfig configures the external search collaborator. BaseURL overrides
// the provider's default endpoint; FilePath points the file provider at its
// fixture.
type SearchConfig struct {
	Provider          string        `yaml:"provider" json:"provider"` // serper, searxng, file
	APIKey            string        `yaml:"api_key" json:"-"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	FilePath          string        `yaml:"file_path" json:"file_path"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int           `yaml:"burst" json:"burst"`
	MaxResults        int           `yaml:"max_results" json:"max_results"`
	HTTPProxy         string        `yaml:"http_proxy" json:"-"`
	HTTPSProxy        string        `yaml:"https_proxy" json:"-"`
	NoProxy           string        `yaml:"no_proxy" json:"-"`
}

// VerifyConfig configures the bibliography authenticity verifier.
type VerifyConfig struct {
	Enabled            bool          `yaml:"enabled" json:"enabled"`
	Concurrency        int           `yaml:"concurrency" json:"concurrency"` // In-flight lookup bound
	LookupTimeout      time.Duration `yaml:"lookup_timeout" json:"lookup_timeout"`
	VerifiedThreshold  float64       `yaml:"verified_threshold" json:"verified_threshold"`
	AmbiguousThreshold float64       `yaml:"ambiguous_threshold" json:"ambiguous_threshold"`
}

// CacheConfig configures the lookup cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// OutputConfig configures rendering.
type OutputConfig struct {
	Format        string `yaml:"format" json:"format"` // markdown, json
	IncludeFooter bool   `yaml:"include_footer" json:"include_footer"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// LLMConfig configures the optional advisory summarizer. Provider "" keeps it
// disabled; the summarizer can never change findings or statuses.
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "", openai, ollama
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"api_key" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // Seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// DefaultConfig returns the documented defaults. Thresholds are conservative:
// legitimate short paragraphs and low-citation paper types should not fail.
func DefaultConfig() Config {
	return Config{
		Detectors: DetectorsConfig{
			Sparsity: SparsityConfig{
				Enabled:             true,
				MinParagraphChars:   20,
				ShortParagraphChars: 300,
				VeryShortChars:      100,
				ShortRatio:          0.6,
				VeryShortRatio:      0.4,
				ListRatio:           0.3,
				ParagraphDensity:    0.45,
				DocumentScore:       0.5,
			},
			Stereotype: StereotypeConfig{
				Enabled:          true,
				PerThousandWords: 5.0,
				Diversity:        0.4,
				MinParagraphs:    5,
				MaxHeadingChars:  15,
			},
			Formula:  FormulaConfig{Enabled: true},
			Citation: CitationConfig{Enabled: true},
			Image:    ImageConfig{Enabled: true},
			Code:     CodeConfig{Enabled: true},
			ReferenceCount: ReferenceCountConfig{
				Enabled: true,
				Minimum: 15,
			},
		},
		Search: SearchConfig{
			Provider:          "serper",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 3.0,
			Burst:             3,
			MaxResults:        3,
		},
		Verify: VerifyConfig{
			Enabled:            true,
			Concurrency:        4,
			LookupTimeout:      10 * time.Second,
			VerifiedThreshold:  0.75,
			AmbiguousThreshold: 0.45,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       DefaultCacheDir(),
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			Format:        "markdown",
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 600,
		},
	}
}

// WithOnly returns a copy of the configuration with only the named checks
// enabled. Names are report categories; "bibliography" selects authenticity
// verification, every other name selects its detector. An empty list keeps
// the configuration unchanged.
func (c Config) WithOnly(checks []string) (Config, error) {
	if len(checks) == 0 {
		return c, nil
	}

	out := c
	out.Detectors.Sparsity.Enabled = false
	out.Detectors.Stereotype.Enabled = false
	out.Detectors.Formula.Enabled = false
	out.Detectors.Citation.Enabled = false
	out.Detectors.Image.Enabled = false
	out.Detectors.Code.Enabled = false
	out.Detectors.ReferenceCount.Enabled = false
	out.Verify.Enabled = false

	for _, name := range checks {
		switch Category(strings.ToLower(strings.TrimSpace(name))) {
		case CategorySparsity:
			out.Detectors.Sparsity.Enabled = true
		case CategoryStereotype:
			out.Detectors.Stereotype.Enabled = true
		case CategoryFormula:
			out.Detectors.Formula.Enabled = true
		case CategoryCitation:
			out.Detectors.Citation.Enabled = true
		case CategoryImage:
			out.Detectors.Image.Enabled = true
		case CategoryCode:
			out.Detectors.Code.Enabled = true
		case CategoryReferenceCount:
			out.Detectors.ReferenceCount.Enabled = true
		case CategoryBibliography:
			out.Verify.Enabled = true
		default:
			return c, fmt.Errorf("unknown check %q (categories: %s)", name, strings.Join(categoryNames(), ", "))
		}
	}
	return out, nil
}

func categoryNames() []string {
	var names []string
	for _, c := range Categories() {
		names = append(names, string(c))
	}
	return names
}

// DefaultCacheDir returns ~/.papercheck/cache, falling back to a temp path
// when the home directory cannot be resolved.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "papercheck-cache")
	}
	return filepath.Join(home, ".papercheck", "cache")
}

// Validate rejects configurations the engine cannot run with. These are the
// fatal configuration-failure class: they abort before any report exists.
func (c *Config) Validate() error {
	if c.Verify.Concurrency < 1 {
		return fmt.Errorf("verify.concurrency must be at least 1, got %d", c.Verify.Concurrency)
	}
	if c.Verify.LookupTimeout <= 0 {
		return fmt.Errorf("verify.lookup_timeout must be positive, got %v", c.Verify.LookupTimeout)
	}
	if c.Verify.AmbiguousThreshold > c.Verify.VerifiedThreshold {
		return fmt.Errorf("verify.ambiguous_threshold %.2f exceeds verified_threshold %.2f",
			c.Verify.AmbiguousThreshold, c.Verify.VerifiedThreshold)
	}
	if c.Detectors.ReferenceCount.Minimum < 0 {
		return fmt.Errorf("reference_count.minimum cannot be negative, got %d", c.Detectors.ReferenceCount.Minimum)
	}
	switch c.Search.Provider {
	case "serper", "searxng", "file":
	default:
		return fmt.Errorf("unknown search provider %q (supported: serper, searxng, file)", c.Search.Provider)
	}
	switch c.Output.Format {
	case "markdown", "json":
	default:
		return fmt.Errorf("unknown output format %q (supported: markdown, json)", c.Output.Format)
	}
	return nil
}
