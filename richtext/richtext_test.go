package richtext

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestUnmarshalRichText(t *testing.T) {
	tests := []struct {
		input string
		want  string
		count int
	}{
		{`[{"type":"heading1","text":"Hello","spans":[]},{"type":"paragraph","text":"world again","spans":[]}]`, "Hello world again", 2},
		{`"plain key text"`, "plain key text", 1},
		{`""`, "", 0},
		{`null`, "", 0},
	}
	for _, tt := range tests {
		var rt RichText
		if err := json.Unmarshal([]byte(tt.input), &rt); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.input, err)
		}
		if len(rt) != tt.count {
			t.Errorf("Unmarshal(%s) blocks = %d, want %d", tt.input, len(rt), tt.count)
		}
		if got := AsText(rt); got != tt.want {
			t.Errorf("AsText(%s) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTextAcceptsBothShapes(t *testing.T) {
	var data struct {
		Title  Text `json:"title"`
		Author Text `json:"author"`
		Absent Text `json:"absent"`
	}
	in := `{"title":[{"type":"heading1","text":"Como utilizar Hooks","spans":[]}],"author":"Joseph Oliveira"}`
	if err := json.Unmarshal([]byte(in), &data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if data.Title != "Como utilizar Hooks" {
		t.Errorf("Title = %q", data.Title)
	}
	if data.Author != "Joseph Oliveira" {
		t.Errorf("Author = %q", data.Author)
	}
	if data.Absent != "" {
		t.Errorf("Absent = %q", data.Absent)
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"  one two\tthree\n", 3},
		{"ação é café", 3},
	}
	for _, tt := range tests {
		if got := WordCount(tt.input); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFormatSpans(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		spans []Span
		want  string
	}{
		{"plain", "a < b", nil, "a &lt; b"},
		{"strong", "hello world", []Span{{Start: 0, End: 5, Type: SpanStrong}}, "<strong>hello</strong> world"},
		{"nested", "hello world", []Span{{Start: 0, End: 11, Type: SpanStrong}, {Start: 6, End: 11, Type: SpanEm}}, "<strong>hello <em>world</em></strong>"},
		{"overlap", "abcd", []Span{{Start: 0, End: 3, Type: SpanStrong}, {Start: 1, End: 4, Type: SpanEm}}, "<strong>a<em>bc</em></strong><em>d</em>"},
		{"link", "go here", []Span{{Start: 3, End: 7, Type: SpanHyperlink, Data: &SpanData{URL: "https://example.com"}}}, `go <a href="https://example.com">here</a>`},
		{"out of range dropped", "abc", []Span{{Start: 1, End: 9, Type: SpanStrong}}, "abc"},
		{"multibyte offsets", "çãoX", []Span{{Start: 2, End: 3, Type: SpanEm}}, "çã<em>o</em>X"},
		{"newline", "a\nb", nil, "a<br>b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSpans(tt.text, tt.spans); got != tt.want {
				t.Errorf("FormatSpans = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderGroupsLists(t *testing.T) {
	rt := RichText{
		{Type: TypeParagraph, Text: "intro"},
		{Type: TypeListItem, Text: "one"},
		{Type: TypeListItem, Text: "two"},
		{Type: TypeOListItem, Text: "first"},
		{Type: "heading2", Text: "Next"},
	}
	var buf bytes.Buffer
	Render(&buf, rt)
	want := "<p>intro</p><ul><li>one</li><li>two</li></ul><ol><li>first</li></ol><h2>Next</h2>"
	if got := buf.String(); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestHTMLSanitizes(t *testing.T) {
	rt := RichText{
		{Type: TypeParagraph, Text: "click", Spans: []Span{{Start: 0, End: 5, Type: SpanHyperlink, Data: &SpanData{URL: "javascript:alert(1)"}}}},
		{Type: TypePreformatted, Text: "<script>x</script>"},
	}
	var buf bytes.Buffer
	if err := HTML(rt).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := buf.String()
	if strings.Contains(got, "javascript:") {
		t.Errorf("expected javascript URL to be stripped: %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("expected escaped script: %q", got)
	}
	if !strings.Contains(got, "click") {
		t.Errorf("expected link text to survive: %q", got)
	}
}
