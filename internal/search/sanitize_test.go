package search

import "testing"

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text untouched", "Attention Is All You Need", "Attention Is All You Need"},
		{"highlight tags removed", "Deep <b>Residual</b> Learning", "Deep Residual Learning"},
		{"nested tags removed", "<span><em>BERT</em> model</span>", "BERT model"},
		{"entities decoded", "Tracking &amp; Mapping", "Tracking & Mapping"},
		{"whitespace collapsed", "  spaced\t\t<b>out</b>   words ", "spaced out words"},
		{"pure markup falls back to raw", "<b></b>", "<b></b>"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
