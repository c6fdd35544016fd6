package blog

import "context"

// Cursor points at the next page of a post list. Empty means the list is
// exhausted.
type Cursor string

// Page is one fetched page of summaries.
type Page struct {
	Results []PostSummary
	Next    Cursor
}

// PageFetcher fetches the page a cursor points at.
type PageFetcher interface {
	NextPage(ctx context.Context, cursor Cursor) (Page, error)
}

// PostList is the list/cursor pair held by one rendered list page.
type PostList struct {
	Posts []PostSummary
	Next  Cursor

	seen map[string]struct{}
}

// NewPostList starts a list from its first page.
func NewPostList(first Page) *PostList {
	l := &PostList{seen: make(map[string]struct{})}
	l.append(first.Results)
	l.Next = first.Next
	return l
}

// HasMore reports whether a "load more" control should be shown.
func (l *PostList) HasMore() bool {
	return l.Next != ""
}

// LoadMore fetches exactly one page at the current cursor and appends its
// posts, skipping uids already in the list. The cursor is replaced by the
// page's cursor even when the page is empty. On error the list and cursor
// are left unchanged. It returns the number of posts appended.
func (l *PostList) LoadMore(ctx context.Context, f PageFetcher) (int, error) {
	if !l.HasMore() {
		return 0, nil
	}
	page, err := f.NextPage(ctx, l.Next)
	if err != nil {
		return 0, err
	}
	added := l.append(page.Results)
	if page.Next == l.Next {
		// a cursor that points at itself would be fetched forever
		l.Next = ""
	} else {
		l.Next = page.Next
	}
	return added, nil
}

func (l *PostList) append(posts []PostSummary) int {
	if l.seen == nil {
		l.seen = make(map[string]struct{}, len(l.Posts))
		for _, p := range l.Posts {
			l.seen[p.UID] = struct{}{}
		}
	}
	added := 0
	for _, p := range posts {
		if _, ok := l.seen[p.UID]; ok {
			continue
		}
		l.seen[p.UID] = struct{}{}
		l.Posts = append(l.Posts, p)
		added++
	}
	return added
}
