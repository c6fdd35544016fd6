package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// HTML returns a templ.Component that renders rt as sanitized HTML.
func HTML(rt RichText) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, rt)
		_, err := w.Write(policy.SanitizeBytes(buf.Bytes()))
		return err
	})
}

// Render writes the unsanitized HTML representation of rt to buf.
func Render(buf *bytes.Buffer, rt RichText) {
	list := ""
	closeList := func() {
		if list != "" {
			buf.WriteString("</" + list + ">")
			list = ""
		}
	}
	openList := func(tag string) {
		if list == tag {
			return
		}
		closeList()
		buf.WriteString("<" + tag + ">")
		list = tag
	}

	for _, b := range rt {
		switch b.Type {
		case TypeListItem:
			openList("ul")
			buf.WriteString("<li>" + FormatSpans(b.Text, b.Spans) + "</li>")
			continue
		case TypeOListItem:
			openList("ol")
			buf.WriteString("<li>" + FormatSpans(b.Text, b.Spans) + "</li>")
			continue
		}
		closeList()

		switch {
		case b.Type == TypeImage:
			if b.URL != "" {
				buf.WriteString(`<img src="` + html.EscapeString(b.URL) + `" alt="` + html.EscapeString(b.Alt) + `" loading="lazy">`)
			}
		case b.Type == TypeEmbed:
			if b.URL != "" {
				buf.WriteString(`<p><a href="` + html.EscapeString(b.URL) + `">` + html.EscapeString(b.URL) + `</a></p>`)
			}
		case b.Type == TypePreformatted:
			buf.WriteString("<pre>" + html.EscapeString(b.Text) + "</pre>")
		case headingLevel(b.Type) > 0:
			tag := b.Type[:1] + b.Type[len(b.Type)-1:]
			buf.WriteString("<" + tag + ">" + FormatSpans(b.Text, b.Spans) + "</" + tag + ">")
		case b.Text == "":
		default:
			buf.WriteString("<p>" + FormatSpans(b.Text, b.Spans) + "</p>")
		}
	}
	closeList()
}

// headingLevel returns 1-6 for heading1..heading6 and 0 otherwise.
func headingLevel(t string) int {
	if len(t) != len("heading1") || !strings.HasPrefix(t, "heading") {
		return 0
	}
	n := int(t[len(t)-1] - '0')
	if n < 1 || n > 6 {
		return 0
	}
	return n
}

// FormatSpans escapes text and wraps the span ranges in inline tags.
// Overlapping spans are closed and reopened so the output nests properly.
func FormatSpans(text string, spans []Span) string {
	runes := []rune(text)
	valid := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End > len(runes) || s.Start >= s.End || openTag(s) == "" {
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return newlines(html.EscapeString(text))
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End > valid[j].End
	})

	var b strings.Builder
	var stack []Span
	next := 0
	for i := 0; i <= len(runes); i++ {
		// close everything that ends here, reopening spans that continue
		if hasEnding(stack, i) {
			var reopen []Span
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				b.WriteString(closeTag(top))
				if top.End > i {
					reopen = append(reopen, top)
				}
				if !hasEnding(stack, i) {
					break
				}
			}
			for j := len(reopen) - 1; j >= 0; j-- {
				b.WriteString(openTag(reopen[j]))
				stack = append(stack, reopen[j])
			}
		}
		for next < len(valid) && valid[next].Start == i {
			b.WriteString(openTag(valid[next]))
			stack = append(stack, valid[next])
			next++
		}
		if i < len(runes) {
			b.WriteString(newlines(html.EscapeString(string(runes[i]))))
		}
	}
	return b.String()
}

func hasEnding(stack []Span, i int) bool {
	for _, s := range stack {
		if s.End == i {
			return true
		}
	}
	return false
}

func openTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "<strong>"
	case SpanEm:
		return "<em>"
	case SpanHyperlink:
		if s.Data == nil || s.Data.URL == "" {
			return ""
		}
		return `<a href="` + html.EscapeString(s.Data.URL) + `">`
	case SpanLabel:
		if s.Data == nil || s.Data.Label == "" {
			return "<span>"
		}
		return `<span class="` + html.EscapeString(s.Data.Label) + `">`
	}
	return ""
}

func closeTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "</strong>"
	case SpanEm:
		return "</em>"
	case SpanHyperlink:
		return "</a>"
	}
	return "</span>"
}

func newlines(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}
