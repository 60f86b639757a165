// Package markup builds the document model: a single linear pass over the
// paper text that produces paragraphs, headings, citation tokens, image
// tokens and code spans, all with original line positions. Parsing never
// fails; malformed input is recorded as structural anomalies on the model.
package markup

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/papercheck/papercheck/internal/model"
)

var (
	headingRe    = regexp.MustCompile(`^ {0,3}(#{1,6})\s+(.*?)\s*#*\s*$`)
	listMarkerRe = regexp.MustCompile(`^\s*(?:[-*+]\s+|\d+[.)]\s+)`)
	indentedRe   = regexp.MustCompile(`^(?:\t| {4,})\S`)
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	bracketRe    = regexp.MustCompile(`\[([^\[\]\n]*)\]`)
	inlineCodeRe = regexp.MustCompile("`[^`\n]+`")
	keyRe        = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:.+/-]*$`)
	numericRefRe = regexp.MustCompile(`^\d+(?:\s*[-,]\s*\d+)*$`)
	imageTitleRe = regexp.MustCompile(`^(\S+)\s+"[^"]*"$`)
	sentenceRe   = regexp.MustCompile(`[.!?。！？]+(?:\s|$)`)
)

// Parse builds the document model from raw paper text. The returned model is
// best-effort and always usable: irregularities land in Anomalies.
func Parse(subject, text string) *model.Document {
	doc := &model.Document{
		Subject: subject,
		Text:    text,
		Lines:   splitLines(text),
	}

	codeLines := scanCodeSpans(doc)
	scanStructure(doc, codeLines)
	scanTokens(doc, codeLines)
	doc.WordCount = countWords(doc.Lines, codeLines)

	return doc
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// scanCodeSpans finds fenced, indented and inline code. It returns a set of
// 1-based line numbers covered by fenced or indented spans; later passes skip
// those lines entirely.
func scanCodeSpans(doc *model.Document) map[int]bool {
	covered := make(map[int]bool)

	inFence := false
	fenceStart := 0
	fenceLang := ""
	var fenceBody []string

	for i, line := range doc.Lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)

		if inFence {
			covered[n] = true
			if strings.HasPrefix(trimmed, "```") {
				doc.CodeSpans = append(doc.CodeSpans, model.CodeSpan{
					Kind:      model.CodeFenced,
					Text:      strings.Join(fenceBody, "\n"),
					Language:  fenceLang,
					StartLine: fenceStart,
					EndLine:   n,
				})
				inFence = false
				fenceBody = nil
			} else {
				fenceBody = append(fenceBody, line)
			}
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			inFence = true
			fenceStart = n
			fenceLang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			covered[n] = true
			continue
		}

		// Indented code: a run of 4-space lines right after a blank line.
		if indentedRe.MatchString(line) && blankBefore(doc.Lines, i) && !listMarkerRe.MatchString(line) {
			start := n
			var body []string
			j := i
			for j < len(doc.Lines) && indentedRe.MatchString(doc.Lines[j]) {
				covered[j+1] = true
				body = append(body, doc.Lines[j])
				j++
			}
			doc.CodeSpans = append(doc.CodeSpans, model.CodeSpan{
				Kind:      model.CodeIndented,
				Text:      strings.Join(body, "\n"),
				StartLine: start,
				EndLine:   j,
			})
			continue
		}

		for _, m := range inlineCodeRe.FindAllString(line, -1) {
			doc.CodeSpans = append(doc.CodeSpans, model.CodeSpan{
				Kind:      model.CodeInline,
				Text:      strings.Trim(m, "`"),
				StartLine: n,
				EndLine:   n,
			})
		}
	}

	if inFence {
		doc.Anomalies = append(doc.Anomalies, model.Anomaly{
			Source:  model.AnomalyDocument,
			Line:    fenceStart,
			Message: "code fence opened but never closed; treating the rest of the document as code",
		})
		doc.CodeSpans = append(doc.CodeSpans, model.CodeSpan{
			Kind:      model.CodeFenced,
			Text:      strings.Join(fenceBody, "\n"),
			Language:  fenceLang,
			StartLine: fenceStart,
			EndLine:   len(doc.Lines),
		})
	}

	return covered
}

// blankBefore reports whether the line above index i is blank or absent.
// Indented runs glued to prose are treated as continuation, not code.
func blankBefore(lines []string, i int) bool {
	if i == 0 {
		return true
	}
	return strings.TrimSpace(lines[i-1]) == ""
}

// scanStructure builds headings and paragraphs. Every non-blank, non-heading,
// non-code line lands in exactly one paragraph.
func scanStructure(doc *model.Document, codeLines map[int]bool) {
	var cur *model.Paragraph
	var curLines []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.Join(curLines, " ")
		cur.CharCount = utf8.RuneCountInString(cur.Text)
		cur.SentenceCount = countSentences(cur.Text)
		cur.LineCount = len(curLines)
		doc.Paragraphs = append(doc.Paragraphs, *cur)
		cur = nil
		curLines = nil
	}

	for i, line := range doc.Lines {
		n := i + 1
		if codeLines[n] {
			flush()
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			doc.Headings = append(doc.Headings, model.Heading{
				Level: len(m[1]),
				Text:  m[2],
				Line:  n,
			})
			continue
		}
		if cur == nil {
			cur = &model.Paragraph{StartLine: n}
		}
		if listMarkerRe.MatchString(line) {
			cur.ListLines++
		}
		curLines = append(curLines, strings.TrimSpace(line))
	}
	flush()
}

// scanTokens extracts image and citation tokens with per-line offsets.
func scanTokens(doc *model.Document, codeLines map[int]bool) {
	for i, raw := range doc.Lines {
		n := i + 1
		if codeLines[n] {
			continue
		}
		line := maskInlineCode(raw)

		imageSpans := [][]int{}
		for _, loc := range imageRe.FindAllStringSubmatchIndex(line, -1) {
			alt := line[loc[2]:loc[3]]
			target := strings.TrimSpace(line[loc[4]:loc[5]])
			path := target
			if m := imageTitleRe.FindStringSubmatch(target); m != nil {
				path = m[1]
			}
			doc.Images = append(doc.Images, model.ImageToken{
				Raw:   line[loc[0]:loc[1]],
				Alt:   alt,
				Path:  path,
				Kind:  classifyPath(path),
				Line:  n,
				Start: loc[0],
				End:   loc[1],
			})
			imageSpans = append(imageSpans, []int{loc[0], loc[1]})
		}

		for _, loc := range bracketRe.FindAllStringSubmatchIndex(line, -1) {
			start, end := loc[0], loc[1]
			if insideAny(start, imageSpans) {
				continue
			}
			// Link text: [label](target) is markup, not a citation.
			if end < len(line) && line[end] == '(' {
				continue
			}
			content := line[loc[2]:loc[3]]
			if strings.HasPrefix(content, "@") {
				key := content[1:]
				doc.Citations = append(doc.Citations, model.CitationToken{
					Raw:        line[start:end],
					Key:        key,
					Line:       n,
					Start:      start,
					End:        end,
					WellFormed: keyRe.MatchString(key),
				})
				continue
			}
			if skippableBracket(content) {
				continue
			}
			doc.Citations = append(doc.Citations, model.CitationToken{
				Raw:        line[start:end],
				Line:       n,
				Start:      start,
				End:        end,
				WellFormed: false,
			})
		}

		// A sigil opened on this line with no closing bracket anywhere after it.
		if idx := strings.Index(line, "[@"); idx >= 0 && !strings.Contains(line[idx:], "]") {
			doc.Anomalies = append(doc.Anomalies, model.Anomaly{
				Source:  model.AnomalyDocument,
				Line:    n,
				Message: "citation sigil opened but never closed",
			})
		}
	}
}

// skippableBracket reports bracketed spans that are some other convention
// rather than a broken citation: URLs, numeric reference styles, footnotes,
// empty brackets.
func skippableBracket(content string) bool {
	c := strings.TrimSpace(content)
	if c == "" {
		return true
	}
	if strings.Contains(c, "http") || strings.Contains(c, "://") {
		return true
	}
	if strings.HasPrefix(c, "^") {
		return true
	}
	return numericRefRe.MatchString(c)
}

// maskInlineCode blanks inline code spans with spaces so token scanning
// ignores their content while offsets keep pointing at the original line.
func maskInlineCode(line string) string {
	return inlineCodeRe.ReplaceAllStringFunc(line, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
}

func insideAny(pos int, spans [][]int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

func classifyPath(path string) model.PathKind {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return model.PathNetwork
	}
	if filepath.IsAbs(path) {
		return model.PathAbsolute
	}
	return model.PathRelative
}

func countSentences(text string) int {
	n := len(sentenceRe.FindAllString(text, -1))
	if n == 0 && strings.TrimSpace(text) != "" {
		return 1
	}
	return n
}

func countWords(lines []string, codeLines map[int]bool) int {
	total := 0
	for i, line := range lines {
		if codeLines[i+1] {
			continue
		}
		line = inlineCodeRe.ReplaceAllString(line, " ")
		total += len(strings.Fields(line))
	}
	return total
}
