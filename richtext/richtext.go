// Package richtext models Prismic structured text and renders it.
package richtext

import (
	"strings"

	"github.com/goccy/go-json"
)

// Block types.
const (
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
	TypeEmbed        = "embed"
)

// Span types.
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
	SpanLabel     = "label"
)

// SpanData carries hyperlink targets and label names.
type SpanData struct {
	LinkType string `json:"link_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Span marks a character range of a block. Offsets count characters.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// Block is one paragraph, heading, list item, image or embed.
type Block struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Spans []Span `json:"spans,omitempty"`
	URL   string `json:"url,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// RichText is an ordered list of blocks.
type RichText []Block

// UnmarshalJSON accepts a block list, a bare string (one paragraph) or null.
func (rt *RichText) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	switch {
	case trimmed == "null" || trimmed == "":
		*rt = nil
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*rt = nil
			return nil
		}
		*rt = RichText{{Type: TypeParagraph, Text: s}}
		return nil
	}
	var blocks []Block
	if err := json.Unmarshal(b, &blocks); err != nil {
		return err
	}
	*rt = blocks
	return nil
}

// AsText joins the text of every block with a single space.
func AsText(rt RichText) string {
	parts := make([]string, 0, len(rt))
	for _, b := range rt {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, " ")
}

// WordCount counts maximal runs of non-whitespace characters.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Text is a field that may be stored either as key text (a JSON string)
// or as a title/rich-text block list. Both decode to plain text.
type Text string

// UnmarshalJSON flattens rich text with AsText.
func (t *Text) UnmarshalJSON(b []byte) error {
	var rt RichText
	if err := rt.UnmarshalJSON(b); err != nil {
		return err
	}
	*t = Text(AsText(rt))
	return nil
}

func (t Text) String() string {
	return string(t)
}
