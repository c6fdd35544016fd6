package blog

import (
	"strconv"

	"github.com/eringen/spacetraveling/richtext"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

// WordCount counts the words of every heading and every body block.
func WordCount(sections []Section) int {
	words := 0
	for _, s := range sections {
		words += richtext.WordCount(s.Heading)
		for _, b := range s.Body {
			words += richtext.WordCount(b.Text)
		}
	}
	return words
}

// EstimateMinutes rounds words/WordsPerMinute up to a whole minute.
func EstimateMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// ReadingTime formats the estimate as "<N> min".
func ReadingTime(sections []Section) string {
	return strconv.Itoa(EstimateMinutes(WordCount(sections))) + " min"
}
