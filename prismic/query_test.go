package prismic

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestPredicateString(t *testing.T) {
	tests := []struct {
		pred Predicate
		want string
	}{
		{At(PathType, "posts"), `[at(document.type, "posts")]`},
		{At(UIDPath("posts"), `say "hi"`), `[at(my.posts.uid, "say \"hi\"")]`},
		{Any(PathTags, "go", "web"), `[any(document.tags, ["go", "web"])]`},
	}
	for _, tt := range tests {
		if got := tt.pred.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestEncodeOrderings(t *testing.T) {
	got := EncodeOrderings([]Ordering{
		{Field: PathFirstPublicationDate, Desc: true},
		{Field: "my.posts.title"},
	})
	want := "[document.first_publication_date desc,my.posts.title]"
	if got != want {
		t.Errorf("EncodeOrderings = %s, want %s", got, want)
	}
}

func TestQueryValuesOmitsEmpty(t *testing.T) {
	v := Query{}.Values()
	if len(v) != 0 {
		t.Errorf("expected no params, got %v", v)
	}
	v = Query{Ref: "r", Page: 3, After: "doc-1", Lang: "pt-br"}.Values()
	if v.Get("page") != "3" || v.Get("after") != "doc-1" || v.Get("lang") != "pt-br" || v.Get("ref") != "r" {
		t.Errorf("unexpected params: %v", v)
	}
}

func TestDateJSON(t *testing.T) {
	var d struct {
		A Date `json:"a"`
		B Date `json:"b"`
		C Date `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"2021-03-25T19:25:28+0000","b":"2021-03-25T19:25:28Z","c":null}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.A.Equal(d.B.Time) {
		t.Errorf("layouts should parse to the same instant: %v vs %v", d.A, d.B)
	}
	if !d.C.IsZero() {
		t.Errorf("null should be zero, got %v", d.C)
	}
	out, err := json.Marshal(d.A)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2021-03-25T19:25:28+0000"` {
		t.Errorf("marshal = %s", out)
	}
}
