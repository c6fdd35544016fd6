package blog

import (
	"strings"
	"testing"

	"github.com/eringen/spacetraveling/richtext"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestEstimateMinutes(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 0},
		{1, 1},
		{199, 1},
		{200, 1},
		{201, 2},
		{400, 2},
		{401, 3},
	}
	for _, tt := range tests {
		if got := EstimateMinutes(tt.words); got != tt.want {
			t.Errorf("EstimateMinutes(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name     string
		sections []Section
		want     string
	}{
		{"empty", nil, "0 min"},
		{"intro", []Section{{Heading: "Intro", Body: richtext.RichText{{Type: richtext.TypeParagraph, Text: "one two three"}}}}, "1 min"},
		{"exactly 200", []Section{{Body: richtext.RichText{{Text: words(200)}}}}, "1 min"},
		{"201 across heading and body", []Section{{Heading: "Heading", Body: richtext.RichText{{Text: words(200)}}}}, "2 min"},
		{"absent heading and body", []Section{{}, {Heading: "   "}}, "0 min"},
		{"multiple sections", []Section{
			{Heading: "A b", Body: richtext.RichText{{Text: words(150)}, {Text: words(49)}}},
			{Heading: "c", Body: richtext.RichText{{Text: "  spaced\n\tout  "}}},
		}, "2 min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadingTime(tt.sections); got != tt.want {
				t.Errorf("ReadingTime = %q, want %q (words=%d)", got, tt.want, WordCount(tt.sections))
			}
		})
	}
}

func TestWordCountIntroScenario(t *testing.T) {
	sections := []Section{{Heading: "Intro", Body: richtext.RichText{{Text: "one two three"}}}}
	if got := WordCount(sections); got != 4 {
		t.Errorf("WordCount = %d, want 4", got)
	}
}
