package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/spacetraveling/prismic"
)

// ErrNotFound is returned when no post matches a slug or id.
var ErrNotFound = errors.New("blog: post not found")

// Source is a document-query backend: the Prismic client or the local store.
type Source interface {
	Query(ctx context.Context, q prismic.Query) (*prismic.Response, error)
	Next(ctx context.Context, cursor string) (*prismic.Response, error)
}

// MasterRefResolver is implemented by sources that version content by ref.
type MasterRefResolver interface {
	MasterRef(ctx context.Context) (string, error)
}

// Fetcher runs the post queries the site needs against a Source.
type Fetcher struct {
	source   Source
	docType  string
	pageSize int
}

// NewFetcher creates a Fetcher for documents of docType, listing pageSize
// posts per page.
func NewFetcher(src Source, docType string, pageSize int) *Fetcher {
	if docType == "" {
		docType = "posts"
	}
	if pageSize <= 0 {
		pageSize = 2
	}
	return &Fetcher{source: src, docType: docType, pageSize: pageSize}
}

// ResolveRef pins ref to a concrete content version so that several queries
// read the same one. A non-empty ref is returned as is; sources without refs
// keep the empty ref.
func (f *Fetcher) ResolveRef(ctx context.Context, ref string) (string, error) {
	if ref != "" {
		return ref, nil
	}
	r, ok := f.source.(MasterRefResolver)
	if !ok {
		return "", nil
	}
	ref, err := r.MasterRef(ctx)
	if err != nil {
		return "", fmt.Errorf("blog: resolve master ref: %w", err)
	}
	return ref, nil
}

func (f *Fetcher) typePredicate() prismic.Predicate {
	return prismic.At(prismic.PathType, f.docType)
}

func (f *Fetcher) summaryFields() []string {
	return []string{f.docType + ".title", f.docType + ".subtitle", f.docType + ".author"}
}

// FirstPage fetches the newest page of post summaries.
func (f *Fetcher) FirstPage(ctx context.Context, ref string) (Page, error) {
	resp, err := f.source.Query(ctx, prismic.Query{
		Ref:        ref,
		Predicates: []prismic.Predicate{f.typePredicate()},
		Fetch:      f.summaryFields(),
		PageSize:   f.pageSize,
		Page:       1,
		Orderings:  []prismic.Ordering{{Field: prismic.PathFirstPublicationDate, Desc: true}},
	})
	if err != nil {
		return Page{}, fmt.Errorf("blog: list posts: %w", err)
	}
	return toPage(resp)
}

// NextPage fetches the page cursor points at.
func (f *Fetcher) NextPage(ctx context.Context, cursor Cursor) (Page, error) {
	if cursor == "" {
		return Page{}, nil
	}
	resp, err := f.source.Next(ctx, string(cursor))
	if err != nil {
		return Page{}, fmt.Errorf("blog: next page: %w", err)
	}
	return toPage(resp)
}

// List fetches the first page into a fresh PostList.
func (f *Fetcher) List(ctx context.Context, ref string) (*PostList, error) {
	first, err := f.FirstPage(ctx, ref)
	if err != nil {
		return nil, err
	}
	return NewPostList(first), nil
}

// All walks every page and returns all post summaries, newest first.
func (f *Fetcher) All(ctx context.Context, ref string) ([]PostSummary, error) {
	list, err := f.List(ctx, ref)
	if err != nil {
		return nil, err
	}
	for list.HasMore() {
		if _, err := list.LoadMore(ctx, f); err != nil {
			return nil, err
		}
	}
	return list.Posts, nil
}

// Post fetches the post with the given slug.
func (f *Fetcher) Post(ctx context.Context, ref, slug string) (PostDetail, error) {
	return f.one(ctx, ref, prismic.At(prismic.UIDPath(f.docType), slug))
}

// PostByID fetches the post with the given document id.
func (f *Fetcher) PostByID(ctx context.Context, ref, id string) (PostDetail, error) {
	return f.one(ctx, ref, prismic.At(prismic.PathID, id))
}

func (f *Fetcher) one(ctx context.Context, ref string, pred prismic.Predicate) (PostDetail, error) {
	resp, err := f.source.Query(ctx, prismic.Query{
		Ref:        ref,
		Predicates: []prismic.Predicate{f.typePredicate(), pred},
		PageSize:   1,
	})
	if err != nil {
		if errors.Is(err, prismic.ErrNotFound) {
			return PostDetail{}, ErrNotFound
		}
		return PostDetail{}, fmt.Errorf("blog: get post: %w", err)
	}
	if len(resp.Results) == 0 {
		return PostDetail{}, ErrNotFound
	}
	return DetailFromDocument(resp.Results[0])
}

// Neighbors resolves the posts published right before and right after post.
func (f *Fetcher) Neighbors(ctx context.Context, ref string, post PostDetail) (Neighbors, error) {
	prev, err := f.neighbor(ctx, ref, post, true)
	if err != nil {
		return Neighbors{}, err
	}
	next, err := f.neighbor(ctx, ref, post, false)
	if err != nil {
		return Neighbors{}, err
	}
	return Neighbors{Previous: prev, Next: next}, nil
}

// neighbor asks for one document after post in ascending (next) or
// descending (previous) publication order.
func (f *Fetcher) neighbor(ctx context.Context, ref string, post PostDetail, older bool) (*NeighborReference, error) {
	resp, err := f.source.Query(ctx, prismic.Query{
		Ref:        ref,
		Predicates: []prismic.Predicate{f.typePredicate()},
		Fetch:      []string{f.docType + ".title"},
		PageSize:   1,
		After:      post.ID,
		Orderings:  []prismic.Ordering{{Field: prismic.PathFirstPublicationDate, Desc: older}},
	})
	if err != nil {
		return nil, fmt.Errorf("blog: neighbor of %s: %w", post.UID, err)
	}
	return NeighborFromResponse(resp, post.UID)
}

// NeighborFromResponse takes the lone result of a neighbor query. A result
// that is the current post itself means there is no neighbor.
func NeighborFromResponse(resp *prismic.Response, currentUID string) (*NeighborReference, error) {
	if resp == nil || len(resp.Results) == 0 {
		return nil, nil
	}
	doc := resp.Results[0]
	if doc.UID == "" || doc.UID == currentUID {
		return nil, nil
	}
	s, err := SummaryFromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &NeighborReference{UID: s.UID, Title: s.Title}, nil
}

func toPage(resp *prismic.Response) (Page, error) {
	page := Page{Next: Cursor(resp.NextPage)}
	page.Results = make([]PostSummary, 0, len(resp.Results))
	for _, doc := range resp.Results {
		s, err := SummaryFromDocument(doc)
		if err != nil {
			return Page{}, err
		}
		page.Results = append(page.Results, s)
	}
	return page, nil
}
