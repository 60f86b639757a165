package model

// Document is the parsed, addressable form of a paper. All detectors operate
// on this model; none of them re-reads the raw text from disk.
type Document struct {
	Subject    string             `json:"subject"`              // Display name (usually the file name)
	Text       string             `json:"-"`                    // Full raw text
	Lines      []string           `json:"-"`                    // Raw text split into lines (1-based access via Line-1)
	WordCount  int                `json:"word_count"`           // Whitespace-delimited words outside code spans
	Paragraphs []Paragraph        `json:"paragraphs,omitempty"` // Prose blocks between blank lines
	Headings   []Heading          `json:"headings,omitempty"`   // Markup headings
	Citations  []CitationToken    `json:"citations,omitempty"`  // Every citation-shaped span, well-formed or not
	Images     []ImageToken       `json:"images,omitempty"`     // Image references
	CodeSpans  []CodeSpan         `json:"code_spans,omitempty"` // Fenced, inline and indented code
	Anomalies  []Anomaly          `json:"anomalies,omitempty"`  // Parse-time irregularities (never fatal)
}

// Paragraph is a contiguous block of prose between blank lines. Heading and
// code lines never belong to a paragraph.
type Paragraph struct {
	Text          string `json:"text"`           // Joined paragraph text
	StartLine     int    `json:"start_line"`     // 1-based line of the first paragraph line
	CharCount     int    `json:"char_count"`     // Runes in Text
	SentenceCount int    `json:"sentence_count"` // Terminator-delimited sentences (at least 1)
	LineCount     int    `json:"line_count"`     // Physical lines the paragraph spans
	ListLines     int    `json:"list_lines"`     // Lines that start with a list marker
}

// Heading is a markup heading line. Headings are excluded from paragraph and
// sparsity accounting but kept for diagnostics.
type Heading struct {
	Level int    `json:"level"` // 1-6
	Text  string `json:"text"`  // Heading text without the marker
	Line  int    `json:"line"`  // 1-based line number
}

// CitationToken is a citation-shaped span. Exactly one token is produced per
// occurrence, whether or not it parses cleanly.
type CitationToken struct {
	Raw        string `json:"raw"`           // The span as written, brackets included
	Key        string `json:"key,omitempty"` // Extracted key; empty when malformed
	Line       int    `json:"line"`          // 1-based line number
	Start      int    `json:"start"`         // Byte offset of '[' within the line
	End        int    `json:"end"`           // Byte offset one past ']' within the line
	WellFormed bool   `json:"well_formed"`   // Key matches the sigil syntax exactly
}

// PathKind classifies how an image reference addresses its target.
type PathKind string

const (
	PathNetwork  PathKind = "network"  // http:// or https:// URL
	PathAbsolute PathKind = "absolute" // Rooted filesystem path
	PathRelative PathKind = "relative" // Everything else
)

// ImageToken is one image reference in the document.
type ImageToken struct {
	Raw   string   `json:"raw"`   // Full markup as written
	Alt   string   `json:"alt"`   // Alt text
	Path  string   `json:"path"`  // Target path with any title suffix stripped
	Kind  PathKind `json:"kind"`  // Path classification
	Line  int      `json:"line"`  // 1-based line number
	Start int      `json:"start"` // Byte offset of '!' within the line
	End   int      `json:"end"`   // Byte offset one past the closing ')'
}

// CodeKind classifies a code span.
type CodeKind string

const (
	CodeFenced   CodeKind = "fenced"   // ``` fenced block
	CodeInline   CodeKind = "inline"   // Backtick span inside prose
	CodeIndented CodeKind = "indented" // Four-space indented block
)

// CodeSpan is one region of code-like content. Formula detection skips these
// regions entirely.
type CodeSpan struct {
	Kind      CodeKind `json:"kind"`
	Text      string   `json:"text"`               // Span content without fence markers
	Language  string   `json:"language,omitempty"` // Fence info string when present
	StartLine int      `json:"start_line"`         // 1-based first line of the span
	EndLine   int      `json:"end_line"`           // 1-based last line of the span
}

// FormulaCandidate is a run of characters that looks like mathematical
// notation outside any math-delimiter region or code span.
type FormulaCandidate struct {
	Text    string `json:"text"`    // The matched notation
	Context string `json:"context"` // Trimmed surrounding line text
	Pattern string `json:"pattern"` // Which heuristic matched (greek, symbol, equation, ...)
	Line    int    `json:"line"`    // 1-based line number
	Start   int    `json:"start"`   // Byte offset within the line
	End     int    `json:"end"`     // Byte offset one past the match
}

// AnomalySource identifies which parser recorded an anomaly.
type AnomalySource string

const (
	AnomalyDocument     AnomalySource = "document"
	AnomalyBibliography AnomalySource = "bibliography"
)

// Anomaly is a parse-time irregularity. Anomalies are diagnostic data, not
// quality findings, and never abort parsing.
type Anomaly struct {
	Source  AnomalySource `json:"source"`
	Line    int           `json:"line,omitempty"` // 1-based, 0 when not tied to a line
	Message string        `json:"message"`
}

// ActiveKeys returns the distinct keys of well-formed citation tokens in
// first-use order. This drives the reference-count detector and restricts
// authenticity verification to entries the paper actually cites.
func (d *Document) ActiveKeys() []string {
	seen := make(map[string]bool, len(d.Citations))
	var keys []string
	for _, c := range d.Citations {
		if !c.WellFormed || c.Key == "" {
			continue
		}
		if !seen[c.Key] {
			seen[c.Key] = true
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// CodeLine reports whether the given 1-based line falls inside any fenced or
// indented code span. Inline spans do not cover whole lines.
func (d *Document) CodeLine(line int) bool {
	for _, s := range d.CodeSpans {
		if s.Kind == CodeInline {
			continue
		}
		if line >= s.StartLine && line <= s.EndLine {
			return true
		}
	}
	return false
}
