package search

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup flattens HTML fragments some engines embed in result titles
// and snippets (highlight tags, entities) into plain text. Similarity scoring
// downstream must see words, not markup.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.WriteString(z.Token().Data)
		}
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		// Fragment was markup through and through; better the raw string
		// than nothing.
		return s
	}
	return out
}
