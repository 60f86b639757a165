package model

import "strings"

// Bibliography is the parsed form of a bibliography file. Entry order follows
// the source file; duplicate keys keep the first occurrence only.
type Bibliography struct {
	Entries   []BibEntry `json:"entries"`
	Anomalies []Anomaly  `json:"anomalies,omitempty"`

	byKey map[string]int
}

// BibEntry is one bibliography record.
type BibEntry struct {
	Key     string   `json:"key"`               // Citation key, unique within the bibliography
	Type    string   `json:"type"`              // Record type (article, inproceedings, ...)
	Title   string   `json:"title"`             // Work title, brace-stripped
	Authors []string `json:"authors,omitempty"` // Ordered author names as written
	Year    string   `json:"year,omitempty"`    // Kept as text: "2021", "in press"
	Venue   string   `json:"venue,omitempty"`   // Journal, booktitle or publisher
	Line    int      `json:"line"`              // 1-based line of the record start
}

// FirstAuthor returns the surname-ish portion of the first author, used for
// search query construction. "Dean, Jeffrey" yields "Dean"; "Jeffrey Dean"
// yields "Dean".
func (e *BibEntry) FirstAuthor() string {
	if len(e.Authors) == 0 {
		return ""
	}
	name := strings.TrimSpace(e.Authors[0])
	if name == "" {
		return ""
	}
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	parts := strings.Fields(name)
	return parts[len(parts)-1]
}

// Index builds the key lookup table. Parsers call this once after populating
// Entries.
func (b *Bibliography) Index() {
	b.byKey = make(map[string]int, len(b.Entries))
	for i, e := range b.Entries {
		if _, dup := b.byKey[e.Key]; !dup {
			b.byKey[e.Key] = i
		}
	}
}

// Lookup returns the entry for a citation key.
func (b *Bibliography) Lookup(key string) (*BibEntry, bool) {
	if b == nil || b.byKey == nil {
		return nil, false
	}
	i, ok := b.byKey[key]
	if !ok {
		return nil, false
	}
	return &b.Entries[i], true
}

// ActiveEntries returns the entries whose keys appear in the given active-key
// list, preserving document citation order. Keys without a bibliography entry
// are skipped here; the citation detector reports them as dangling.
func (b *Bibliography) ActiveEntries(keys []string) []BibEntry {
	var out []BibEntry
	for _, k := range keys {
		if e, ok := b.Lookup(k); ok {
			out = append(out, *e)
		}
	}
	return out
}
