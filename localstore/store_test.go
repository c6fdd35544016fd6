package localstore

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/eringen/spacetraveling/prismic"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "documents.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func post(id, uid string, day int, published bool) Document {
	data, _ := json.Marshal(map[string]any{"title": "Title " + uid, "author": "Ana", "content": []any{}})
	at := time.Date(2021, 3, day, 10, 0, 0, 0, time.UTC)
	return Document{
		Document: prismic.Document{
			ID:                   id,
			UID:                  uid,
			Type:                 "posts",
			Tags:                 []string{"Go", " web "},
			FirstPublicationDate: prismic.Date{Time: at},
			LastPublicationDate:  prismic.Date{Time: at},
			Data:                 data,
		},
		Published: published,
	}
}

func seedPosts(t *testing.T, s *Store) {
	t.Helper()
	docs := []Document{
		post("a", "post-1", 1, true),
		post("b", "post-2", 2, true),
		post("c", "post-3", 3, true),
		post("d", "post-4", 4, false),
	}
	if _, err := s.Seed(context.Background(), docs); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
}

func resultUIDs(resp *prismic.Response) []string {
	out := make([]string, len(resp.Results))
	for i, d := range resp.Results {
		out[i] = d.UID
	}
	return out
}

func sameUIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var typePosts = prismic.At(prismic.PathType, "posts")

func TestSaveAndQueryByUID(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s)

	resp, err := s.Query(context.Background(), prismic.Query{
		Predicates: []prismic.Predicate{typePosts, prismic.At(prismic.UIDPath("posts"), "post-2")},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	got := resp.Results[0]
	if got.ID != "b" || got.Type != "posts" {
		t.Errorf("unexpected document: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "web" {
		t.Errorf("Tags = %v, want [go web]", got.Tags)
	}
	if !got.FirstPublicationDate.Equal(time.Date(2021, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("FirstPublicationDate = %v", got.FirstPublicationDate)
	}
}

func TestMasterRefHidesDrafts(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s)
	ctx := context.Background()

	resp, err := s.Query(ctx, prismic.Query{Predicates: []prismic.Predicate{typePosts}})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if resp.TotalResultsSize != 3 {
		t.Errorf("master total = %d, want 3", resp.TotalResultsSize)
	}

	resp, err = s.Query(ctx, prismic.Query{Ref: "preview-token", Predicates: []prismic.Predicate{typePosts}})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if resp.TotalResultsSize != 4 {
		t.Errorf("preview total = %d, want 4", resp.TotalResultsSize)
	}
}

func TestQueryOrderingAndPagination(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s)
	ctx := context.Background()

	resp, err := s.Query(ctx, prismic.Query{
		Predicates: []prismic.Predicate{typePosts},
		PageSize:   2,
		Orderings:  []prismic.Ordering{{Field: prismic.PathFirstPublicationDate, Desc: true}},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := resultUIDs(resp); !sameUIDs(got, []string{"post-3", "post-2"}) {
		t.Errorf("page 1 = %v", got)
	}
	if resp.TotalPages != 2 || resp.NextPage == "" || resp.PrevPage != "" {
		t.Fatalf("unexpected paging: total=%d next=%q prev=%q", resp.TotalPages, resp.NextPage, resp.PrevPage)
	}

	next, err := s.Next(ctx, resp.NextPage)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got := resultUIDs(next); !sameUIDs(got, []string{"post-1"}) {
		t.Errorf("page 2 = %v", got)
	}
	if next.NextPage != "" {
		t.Errorf("expected last page, got next %q", next.NextPage)
	}
	if next.PrevPage == "" {
		t.Error("expected prev cursor on page 2")
	}
}

func TestQueryAfter(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s)
	ctx := context.Background()

	tests := []struct {
		after string
		desc  bool
		want  []string
	}{
		{"b", false, []string{"post-3"}},
		{"b", true, []string{"post-1"}},
		{"c", false, nil},
		{"a", true, nil},
		{"unknown", false, nil},
	}
	for _, tt := range tests {
		resp, err := s.Query(ctx, prismic.Query{
			Predicates: []prismic.Predicate{typePosts},
			PageSize:   1,
			After:      tt.after,
			Orderings:  []prismic.Ordering{{Field: prismic.PathFirstPublicationDate, Desc: tt.desc}},
		})
		if err != nil {
			t.Fatalf("Query(after=%s) failed: %v", tt.after, err)
		}
		if got := resultUIDs(resp); !sameUIDs(got, tt.want) {
			t.Errorf("after=%s desc=%v: got %v, want %v", tt.after, tt.desc, got, tt.want)
		}
	}
}

func TestQueryProjection(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s)

	resp, err := s.Query(context.Background(), prismic.Query{
		Predicates: []prismic.Predicate{prismic.At(prismic.PathID, "a")},
		Fetch:      []string{"posts.title"},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	var data map[string]any
	if err := json.Unmarshal(resp.Results[0].Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data) != 1 || data["title"] != "Title post-1" {
		t.Errorf("projected data = %v", data)
	}
}

func TestQueryTags(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s)

	resp, err := s.Query(context.Background(), prismic.Query{
		Predicates: []prismic.Predicate{prismic.Any(prismic.PathTags, "WEB", "rust")},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if resp.TotalResultsSize != 3 {
		t.Errorf("tag total = %d, want 3", resp.TotalResultsSize)
	}
}

func TestUnsupportedPredicate(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Query(context.Background(), prismic.Query{
		Predicates: []prismic.Predicate{prismic.At("my.posts.title", "x")},
	})
	if !errors.Is(err, ErrUnsupportedPredicate) {
		t.Errorf("expected ErrUnsupportedPredicate, got %v", err)
	}
}

func TestNextRejectsForeignCursor(t *testing.T) {
	s := setupTestStore(t)
	for _, cursor := range []string{"https://repo.cdn.prismic.io/api/v2/documents/search?ref=x", "localstore:!!!"} {
		if _, err := s.Next(context.Background(), cursor); !errors.Is(err, prismic.ErrForeignCursor) {
			t.Errorf("Next(%q): expected ErrForeignCursor, got %v", cursor, err)
		}
	}
}

func TestNextRejectsTamperedCursor(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s)
	ctx := context.Background()

	resp, err := s.Query(ctx, prismic.Query{Ref: MasterRef, Predicates: []prismic.Predicate{typePosts}, PageSize: 1})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if _, err := s.Next(ctx, resp.NextPage); err != nil {
		t.Fatalf("Next with a genuine cursor: %v", err)
	}

	// same signature, payload switched to a preview ref
	payload, sig, _ := strings.Cut(strings.TrimPrefix(resp.NextPage, cursorPrefix), ".")
	b, _ := base64.RawURLEncoding.DecodeString(payload)
	var q prismic.Query
	if err := json.Unmarshal(b, &q); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	q.Ref = "preview"
	b, _ = json.Marshal(q)
	forged := cursorPrefix + base64.RawURLEncoding.EncodeToString(b) + "." + sig

	other := setupTestStore(t)
	seedPosts(t, other)
	for name, cursor := range map[string]string{
		"forged ref":    forged,
		"unsigned":      cursorPrefix + payload,
		"another store": resp.NextPage,
	} {
		target := s
		if name == "another store" {
			target = other
		}
		if _, err := target.Next(ctx, cursor); !errors.Is(err, prismic.ErrForeignCursor) {
			t.Errorf("%s: expected ErrForeignCursor, got %v", name, err)
		}
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	seedPosts(t, s)
	ctx := context.Background()

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "nonexistent"); err != nil {
		t.Errorf("Delete on nonexistent should not error, got: %v", err)
	}
	resp, err := s.Query(ctx, prismic.Query{Predicates: []prismic.Predicate{prismic.At(prismic.PathID, "a")}})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("document should be gone, got %v", resultUIDs(resp))
	}
}

func TestLoadFixtures(t *testing.T) {
	f, err := os.Open("testdata/fixtures.yaml")
	if err != nil {
		t.Fatalf("open fixtures: %v", err)
	}
	defer f.Close()

	docs, err := LoadFixtures(f)
	if err != nil {
		t.Fatalf("LoadFixtures failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("docs = %d, want 3", len(docs))
	}
	if !docs[0].Published || docs[2].Published {
		t.Errorf("unexpected publication state: %v %v", docs[0].Published, docs[2].Published)
	}
	if docs[1].LastPublicationDate.Equal(docs[1].FirstPublicationDate.Time) {
		t.Errorf("second fixture should have been edited")
	}

	s := setupTestStore(t)
	n, err := s.Seed(context.Background(), docs)
	if err != nil || n != 3 {
		t.Fatalf("Seed = %d, %v", n, err)
	}
	resp, err := s.Query(context.Background(), prismic.Query{Predicates: []prismic.Predicate{typePosts}})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := resultUIDs(resp); !sameUIDs(got, []string{"criando-um-app-cra-do-zero", "como-utilizar-hooks"}) {
		t.Errorf("seeded posts = %v", got)
	}
}

func TestLoadFixturesAssignsIDs(t *testing.T) {
	docs, err := LoadFixtures(strings.NewReader("documents:\n  - uid: x\n    data: {title: X}\n"))
	if err != nil {
		t.Fatalf("LoadFixtures failed: %v", err)
	}
	if docs[0].ID == "" || docs[0].Type != "posts" || !docs[0].Published {
		t.Errorf("unexpected defaults: %+v", docs[0])
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{",", nil},
		{",go,", []string{"go"}},
		{",go,web,", []string{"go", "web"}},
		{",go, web ,rust,", []string{"go", "web", "rust"}},
	}

	for _, tt := range tests {
		got := ParseTags(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("ParseTags(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseTags(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}
