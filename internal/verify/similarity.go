package verify

import (
	"strings"
	"unicode"
)

// stopwords are dropped before overlap scoring; they carry no identity and a
// title made of them alone is unverifiable anyway.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "on": true, "in": true,
	"for": true, "and": true, "or": true, "to": true, "with": true, "by": true,
	"at": true, "from": true, "via": true, "is": true, "its": true,
}

// TitleSimilarity scores how much of the entry title survives in a candidate
// string: stopword-filtered token containment in [0,1]. Containment rather
// than symmetric overlap, because search results append site names and dates
// that must not dilute a perfect title match.
func TitleSimilarity(title, candidate string) float64 {
	tt := tokens(title)
	if len(tt) == 0 {
		return 0
	}
	ct := make(map[string]bool)
	for _, t := range tokens(candidate) {
		ct[t] = true
	}

	hits := 0
	for _, t := range tt {
		if ct[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(tt))
}

// tokens lowercases, strips everything but letters and digits, and drops
// stopwords and single-rune fragments.
func tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// NormalizeQuery canonicalizes a query for cache keying: lowercase, collapsed
// to single spaces, punctuation removed. Two queries that differ only in
// quoting or spacing must share a cache slot.
func NormalizeQuery(q string) string {
	return strings.Join(tokensKeepAll(q), " ")
}

func tokensKeepAll(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
