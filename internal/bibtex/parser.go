// Package bibtex builds the bibliography model from BibTeX-style text. The
// parser is deliberately forgiving: an unparsable record becomes a structural
// anomaly and parsing continues at the next record, never failing the run.
package bibtex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/papercheck/papercheck/internal/model"
)

var (
	typeRe        = regexp.MustCompile(`^@([A-Za-z]+)`)
	entryStartRe  = regexp.MustCompile(`^@([A-Za-z]+)\s*\{\s*([^,\s{}]+)\s*,`)
	authorSplitRe = regexp.MustCompile(`(?i)\s+and\s+`)
)

// Skipped record types that carry no citable work.
var nonEntryTypes = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

// Parse builds the bibliography model. Duplicate keys keep the first
// occurrence; the later duplicate is dropped with an anomaly so the
// authenticity pass issues exactly one verdict per key.
func Parse(text string) *model.Bibliography {
	bib := &model.Bibliography{}
	lines := strings.Split(text, "\n")
	seen := make(map[string]int)

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(strings.TrimSuffix(lines[i], "\r"))
		if line == "" || strings.HasPrefix(line, "%") || !strings.HasPrefix(line, "@") {
			i++
			continue
		}

		if t := typeRe.FindStringSubmatch(line); t != nil && nonEntryTypes[strings.ToLower(t[1])] {
			_, next, _ := collectBody(lines, i)
			i = next
			continue
		}

		m := entryStartRe.FindStringSubmatch(line)
		if m == nil {
			bib.Anomalies = append(bib.Anomalies, model.Anomaly{
				Source:  model.AnomalyBibliography,
				Line:    i + 1,
				Message: fmt.Sprintf("unparsable record start %q; skipping to the next record", truncate(line, 60)),
			})
			i++
			continue
		}

		entryType := strings.ToLower(m[1])
		key := m[2]
		startLine := i + 1

		body, next, closed := collectBody(lines, i)
		i = next
		if !closed {
			bib.Anomalies = append(bib.Anomalies, model.Anomaly{
				Source:  model.AnomalyBibliography,
				Line:    startLine,
				Message: fmt.Sprintf("record %q opened but never closed; fields read best-effort", key),
			})
		}
		if nonEntryTypes[entryType] {
			continue
		}

		fields := parseFields(body)

		if prev, dup := seen[key]; dup {
			bib.Anomalies = append(bib.Anomalies, model.Anomaly{
				Source:  model.AnomalyBibliography,
				Line:    startLine,
				Message: fmt.Sprintf("duplicate key %q (first defined at line %d); later record dropped", key, prev),
			})
			continue
		}
		seen[key] = startLine

		entry := model.BibEntry{
			Key:   key,
			Type:  entryType,
			Title: fields["title"],
			Year:  fields["year"],
			Venue: firstNonEmpty(fields["journal"], fields["booktitle"], fields["publisher"], fields["howpublished"]),
			Line:  startLine,
		}
		if a := fields["author"]; a != "" {
			for _, name := range authorSplitRe.Split(a, -1) {
				if name = strings.TrimSpace(name); name != "" {
					entry.Authors = append(entry.Authors, name)
				}
			}
		}
		if entry.Title == "" {
			bib.Anomalies = append(bib.Anomalies, model.Anomaly{
				Source:  model.AnomalyBibliography,
				Line:    startLine,
				Message: fmt.Sprintf("entry %q has no title; it cannot be verified against search results", key),
			})
		}
		bib.Entries = append(bib.Entries, entry)
	}

	bib.Index()
	return bib
}

// collectBody gathers the record body from its opening line through the
// matching closing brace, counting brace depth across lines. It returns the
// body text (opening "@type{key," stripped), the index of the next unread
// line, and whether the record was properly closed.
func collectBody(lines []string, start int) (string, int, bool) {
	var b strings.Builder
	depth := 0
	first := true

	for i := start; i < len(lines); i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		if first {
			// Drop everything through the key comma.
			if idx := strings.Index(line, ","); idx >= 0 {
				depth = 1
				line = line[idx+1:]
			}
			first = false
		}
		for j, r := range line {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					b.WriteString(line[:j])
					b.WriteString("\n")
					return b.String(), i + 1, true
				}
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), len(lines), false
}

// parseFields splits a record body into name/value pairs. Values may be
// brace-delimited with nesting, quote-delimited, or bare; everything is
// whitespace-normalized and brace-stripped.
func parseFields(body string) map[string]string {
	fields := make(map[string]string)
	rs := []rune(body)
	i := 0

	for i < len(rs) {
		// Field name.
		for i < len(rs) && !isNameRune(rs[i]) {
			i++
		}
		start := i
		for i < len(rs) && isNameRune(rs[i]) {
			i++
		}
		if start == i {
			break
		}
		name := strings.ToLower(string(rs[start:i]))

		// Equals sign.
		for i < len(rs) && (rs[i] == ' ' || rs[i] == '\t' || rs[i] == '\n') {
			i++
		}
		if i >= len(rs) || rs[i] != '=' {
			continue
		}
		i++
		for i < len(rs) && (rs[i] == ' ' || rs[i] == '\t' || rs[i] == '\n') {
			i++
		}
		if i >= len(rs) {
			break
		}

		var value string
		switch rs[i] {
		case '{':
			depth := 1
			i++
			vstart := i
			for i < len(rs) && depth > 0 {
				switch rs[i] {
				case '{':
					depth++
				case '}':
					depth--
				}
				i++
			}
			end := i
			if depth == 0 {
				end = i - 1
			}
			value = string(rs[vstart:end])
		case '"':
			i++
			vstart := i
			for i < len(rs) && rs[i] != '"' {
				i++
			}
			value = string(rs[vstart:i])
			if i < len(rs) {
				i++
			}
		default:
			vstart := i
			for i < len(rs) && rs[i] != ',' && rs[i] != '\n' {
				i++
			}
			value = string(rs[vstart:i])
		}

		fields[name] = cleanValue(value)

		for i < len(rs) && rs[i] != ',' {
			i++
		}
		if i < len(rs) {
			i++
		}
	}
	return fields
}

func isNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-'
}

// cleanValue strips protective braces and collapses whitespace runs.
func cleanValue(v string) string {
	v = strings.ReplaceAll(v, "{", "")
	v = strings.ReplaceAll(v, "}", "")
	return strings.Join(strings.Fields(v), " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
